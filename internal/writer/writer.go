package writer

import (
	"fmt"
	"log/slog"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// Options controls a single write pass.
type Options struct {
	// PreferFileMobID resolves clip identities from referenced container
	// files before clip metadata.
	PreferFileMobID bool
	// UseEmptyMobIDs synthesizes identities for clips that carry none.
	UseEmptyMobIDs bool
	// EmbedEssence copies referenced media into the container.
	EmbedEssence bool
	// CreateEdgeCode adds a frame-count slot to every master mob.
	CreateEdgeCode bool
}

// Write transcribes the timeline into the open container. The caller owns
// the file handle; nothing is persisted here.
func Write(tl *timeline.Timeline, file *aafmodel.File, opts Options, log *slog.Logger) error {
	prepared := Stackify(tl)

	if err := Precheck(prepared); err != nil {
		return err
	}

	ft, err := newFileTranscriber(prepared, file, opts, logging.NewComponentLogger(log, "writer"))
	if err != nil {
		return err
	}

	var defaultEditRate float64
	for _, child := range prepared.Tracks.Children {
		track, ok := child.(*timeline.Track)
		if !ok || len(track.Children) == 0 {
			continue
		}

		tt, err := ft.trackTranscriber(track)
		if err != nil {
			return err
		}
		if defaultEditRate == 0 {
			defaultEditRate = tt.editRate
		}

		for i := range track.Children {
			comp, err := tt.transcribeChild(track.Children, i)
			if err != nil {
				return err
			}
			if comp != nil {
				tt.sequence.Children = append(tt.sequence.Children, comp)
			}
		}
		tt.finish()
	}

	// A timecode slot on the composition keeps conforming tools happy even
	// when the timeline carries no global start.
	if defaultEditRate != 0 || prepared.GlobalStart != nil {
		ft.addTimecode(prepared, defaultEditRate)
	}
	return nil
}

// Stackify returns a copy of the timeline where every nested track sits
// inside a stack. The graph model nests through scoped containers, so a bare
// track inside a track has no direct expression.
func Stackify(tl *timeline.Timeline) *timeline.Timeline {
	out := tl.Clone()
	for _, child := range out.Tracks.Children {
		if track, ok := child.(*timeline.Track); ok {
			stackifyIn(track)
		}
	}
	return out
}

func stackifyIn(item timeline.Item) {
	switch node := item.(type) {
	case *timeline.Track:
		for i, child := range node.Children {
			if nested, ok := child.(*timeline.Track); ok {
				stack := &timeline.Stack{}
				stack.Append(nested)
				node.Children[i] = stack
			}
			stackifyIn(node.Children[i])
		}
	case *timeline.Stack:
		for _, child := range node.Children {
			stackifyIn(child)
		}
	}
}

// consideredGap reports whether the item writes out as filler. Gaps do, as
// do clips over a slug generator reference; any other generator kind has no
// container expression.
func consideredGap(item timeline.Item) (bool, error) {
	switch node := item.(type) {
	case *timeline.Gap:
		return true, nil
	case *timeline.Clip:
		ref := node.ActiveRef()
		if ref == nil || !ref.IsGenerator() {
			return false, nil
		}
		if ref.GeneratorKind == "Slug" {
			return true, nil
		}
		return false, adapter.Wrap(adapter.ErrUnsupported, "write", "generator",
			fmt.Sprintf("cannot express generator references of kind %q", ref.GeneratorKind), nil)
	}
	return false, nil
}

// visibleRange is the trimmed range widened by the handles adjacent
// transitions reach into, undoing the trim the read-side fix-up applied.
func visibleRange(siblings []timeline.Item, idx int) opentime.TimeRange {
	tr, _ := timeline.TrimmedRange(siblings[idx])
	start, duration := tr.Start, tr.Duration
	if idx > 0 {
		if pre, ok := siblings[idx-1].(*timeline.Transition); ok {
			start = start.Sub(pre.InOffset)
			duration = duration.Add(pre.InOffset)
		}
	}
	if idx < len(siblings)-1 {
		if post, ok := siblings[idx+1].(*timeline.Transition); ok {
			duration = duration.Add(post.OutOffset)
		}
	}
	return opentime.NewRange(start, duration)
}

// nearestTimecode snaps an edit rate to the closest displayable timecode
// rate.
func nearestTimecode(rate float64) float64 {
	supported := []float64{24, 25, 30, 60}
	nearest, minDiff := 0.0, -1.0
	for _, valid := range supported {
		if valid == rate {
			return rate
		}
		diff := rate - valid
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			nearest = valid
		}
	}
	return nearest
}
