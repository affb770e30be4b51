package bobbin

import (
	"testing"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

func emptyContainer() *aafmodel.File {
	return &aafmodel.File{
		Content:    &aafmodel.ContentStorage{},
		Dictionary: aafmodel.NewDictionary(),
	}
}

func buildCut() *timeline.Timeline {
	tl := timeline.New("cut")
	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Name = "V1"

	gap := &timeline.Gap{}
	gapRange := opentime.NewRange(opentime.New(0, 24), opentime.New(24, 24))
	gap.SourceRange = &gapRange

	clip := &timeline.Clip{}
	clip.Name = "shot"
	sr := opentime.NewRange(opentime.New(10, 24), opentime.New(20, 24))
	clip.SourceRange = &sr
	ar := opentime.NewRange(opentime.New(0, 24), opentime.New(100, 24))
	clip.SetReferences([]timeline.NamedReference{{
		Key: timeline.DefaultMediaKey,
		Ref: &timeline.MediaReference{TargetURL: "file:///media/shot.dnx", AvailableRange: &ar},
	}})
	clip.EnsureMeta()[timeline.Namespace] = map[string]any{"SourceID": string(aafmodel.NewMobID())}

	track.Append(gap, clip)
	tl.Tracks.Append(track)
	return tl
}

func TestRoundTrip(t *testing.T) {
	f := emptyContainer()
	if err := WriteContent(buildCut(), f, adapter.WriteOptions{}, logging.NewNop()); err != nil {
		t.Fatalf("write: %v", err)
	}

	tl, err := ReadContent(f.Content, adapter.DefaultReadOptions(), logging.NewNop())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tl.Name != "cut" {
		t.Fatalf("timeline name = %q", tl.Name)
	}

	tracks := timeline.FindTracks(tl.Tracks)
	if len(tracks) != 1 {
		t.Fatalf("tracks = %d, want the simplified single track", len(tracks))
	}
	if len(tracks[0].Children) != 2 {
		t.Fatalf("track children = %d, want gap and clip", len(tracks[0].Children))
	}
	if gap, ok := tracks[0].Children[0].(*timeline.Gap); !ok || gap.Duration().Value != 24 {
		t.Fatalf("first child = %#v, want 24 frame gap", tracks[0].Children[0])
	}

	clips := timeline.FindClips(tl.Tracks)
	if len(clips) != 1 || clips[0].Name != "shot" {
		t.Fatalf("clips = %v", clips)
	}
	clip := clips[0]
	if clip.SourceRange.Start.Value != 10 || clip.SourceRange.Duration.Value != 20 {
		t.Fatalf("clip range = %v, want the original trim", *clip.SourceRange)
	}
	ref := clip.ActiveRef()
	if ref == nil || ref.TargetURL != "file:///media/shot.dnx" {
		t.Fatalf("media reference = %+v", ref)
	}
	if ref.AvailableRange == nil || ref.AvailableRange.Duration.Value != 100 {
		t.Fatalf("available range = %v, want the media's 100 frames", ref.AvailableRange)
	}
}

func TestPreWriteHookRewritesTimeline(t *testing.T) {
	t.Cleanup(adapter.ClearHooks)
	err := adapter.RegisterHook(adapter.PreWriteTranscribe,
		func(tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error) {
			renamed := tl.Clone()
			renamed.Name = "hooked"
			return renamed, nil
		})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	f := emptyContainer()
	if err := WriteContent(buildCut(), f, adapter.WriteOptions{}, logging.NewNop()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if comps := f.Content.CompositionMobs(); len(comps) != 1 || comps[0].Name != "hooked" {
		t.Fatalf("composition mobs = %+v, want the hook's rename", comps)
	}
}
