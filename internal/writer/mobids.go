package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/logging"
	"bobbin/internal/timeline"
)

// mobIDStrategy is one way to recover a clip's stable identity. Strategies
// run in order; the first non-zero answer wins.
type mobIDStrategy struct {
	name    string
	resolve func(*timeline.Clip) aafmodel.MobID
}

// gatherClipMobIDs resolves an identity for every clip up front, before any
// mob is created, so a failure leaves the container untouched.
func gatherClipMobIDs(tl *timeline.Timeline, opts Options, log *slog.Logger) (map[*timeline.Clip]aafmodel.MobID, error) {
	strategies := []mobIDStrategy{
		{name: "clip metadata", resolve: mobIDFromClipMetadata},
		{name: "media reference metadata", resolve: mobIDFromMediaReference},
		{name: "referenced container", resolve: mobIDFromContainer},
	}
	if opts.PreferFileMobID {
		// The container strategy moves to the front; the metadata strategies
		// keep their relative order behind it.
		strategies = []mobIDStrategy{strategies[2], strategies[0], strategies[1]}
	}
	if opts.UseEmptyMobIDs {
		strategies = append(strategies, mobIDStrategy{
			name:    "synthesized",
			resolve: func(*timeline.Clip) aafmodel.MobID { return aafmodel.NewMobID() },
		})
	}

	out := map[*timeline.Clip]aafmodel.MobID{}
	for _, clip := range timeline.FindClips(tl.Tracks) {
		gap, err := consideredGap(clip)
		if err != nil {
			return nil, err
		}
		if gap {
			continue
		}
		resolved := false
		for _, strategy := range strategies {
			if id := strategy.resolve(clip); !id.IsZero() {
				log.Debug("resolved clip identity",
					logging.Args(
						logging.String("clip", clip.Name),
						logging.String("strategy", strategy.name),
					)...)
				out[clip] = id
				resolved = true
				break
			}
		}
		if !resolved {
			return nil, adapter.Wrap(adapter.ErrIdentity, "write", "mob id",
				fmt.Sprintf("cannot determine a mob ID for clip %q", clip.Name), nil)
		}
	}
	return out, nil
}

func mobIDFromClipMetadata(clip *timeline.Clip) aafmodel.MobID {
	return metaMobID(clip.Meta.AAF()["SourceID"])
}

func mobIDFromMediaReference(clip *timeline.Clip) aafmodel.MobID {
	ref := clip.ActiveRef()
	if ref == nil {
		return ""
	}
	meta := ref.Meta.AAF()
	if id := metaMobID(meta["MobID"]); !id.IsZero() {
		return id
	}
	return metaMobID(meta["SourceID"])
}

// mobIDFromContainer opens the referenced container file and adopts its
// master mob's identity, but only when there is exactly one candidate.
func mobIDFromContainer(clip *timeline.Clip) aafmodel.MobID {
	ref := clip.ActiveRef()
	if ref == nil || ref.Missing() {
		return ""
	}
	path := filePathFromURL(ref.TargetURL)
	if !strings.EqualFold(filepath.Ext(path), ".aaf") {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	source, err := aafmodel.Open(path)
	if err != nil {
		return ""
	}
	defer source.Close()

	masters := source.Content.MasterMobs()
	if len(masters) != 1 {
		return ""
	}
	return masters[0].ID
}

func metaMobID(v any) aafmodel.MobID {
	s, ok := v.(string)
	if !ok || s == "" {
		return ""
	}
	id, err := aafmodel.ParseMobID(s)
	if err != nil {
		return ""
	}
	return id
}

// filePathFromURL strips the file scheme from a media target; anything
// else is treated as a local path already.
func filePathFromURL(target string) string {
	for _, prefix := range []string{"file://localhost", "file://"} {
		if strings.HasPrefix(target, prefix) {
			return strings.TrimPrefix(target, prefix)
		}
	}
	return target
}
