package simplify

import (
	"testing"

	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

func clipWithRange(name string, start, duration float64) *timeline.Clip {
	clip := &timeline.Clip{}
	clip.Name = name
	sr := opentime.NewRange(opentime.New(start, 24), opentime.New(duration, 24))
	clip.SourceRange = &sr
	return clip
}

func TestCollapsesWrapperContainers(t *testing.T) {
	tl := timeline.New("t")

	inner := &timeline.Track{Kind: timeline.KindVideo}
	inner.Append(clipWithRange("shot", 0, 48))
	wrapperStack := &timeline.Stack{}
	wrapperStack.Append(inner)
	outer := &timeline.Track{Kind: timeline.KindVideo}
	outer.Append(wrapperStack)
	tl.Tracks.Append(outer)

	Simplify(tl)

	if len(tl.Tracks.Children) != 1 {
		t.Fatalf("expected 1 top-level track, got %d", len(tl.Tracks.Children))
	}
	track, ok := tl.Tracks.Children[0].(*timeline.Track)
	if !ok {
		t.Fatalf("top-level child is %T, want track", tl.Tracks.Children[0])
	}
	if len(track.Children) != 1 {
		t.Fatalf("expected 1 track child, got %d", len(track.Children))
	}
	if _, ok := track.Children[0].(*timeline.Clip); !ok {
		t.Fatalf("track child is %T, want clip", track.Children[0])
	}
}

func TestTopLevelTrackSurvivesCollapse(t *testing.T) {
	tl := timeline.New("t")
	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(clipWithRange("only", 0, 10))
	tl.Tracks.Append(track)

	Simplify(tl)

	if len(tl.Tracks.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tl.Tracks.Children))
	}
	if _, ok := tl.Tracks.Children[0].(*timeline.Track); !ok {
		t.Fatalf("top-level child collapsed to %T", tl.Tracks.Children[0])
	}
}

func TestDropsGapOnlyBranches(t *testing.T) {
	tl := timeline.New("t")

	gapTrack := &timeline.Track{Kind: timeline.KindVideo}
	gap := &timeline.Gap{}
	sr := opentime.NewRange(opentime.New(0, 24), opentime.New(100, 24))
	gap.SourceRange = &sr
	gapTrack.Append(gap)

	clipTrack := &timeline.Track{Kind: timeline.KindVideo}
	clipTrack.Append(clipWithRange("keep", 0, 100))

	tl.Tracks.Append(gapTrack, clipTrack)

	Simplify(tl)

	if len(tl.Tracks.Children) != 1 {
		t.Fatalf("expected gap-only track to be dropped, got %d children", len(tl.Tracks.Children))
	}
	clips := timeline.FindClips(tl.Tracks)
	if len(clips) != 1 || clips[0].Name != "keep" {
		t.Fatalf("surviving clips: %v", clips)
	}
}

func TestValuableMetadataBlocksCollapse(t *testing.T) {
	tl := timeline.New("t")

	inner := &timeline.Stack{}
	inner.Name = "identity"
	inner.EnsureMeta()[timeline.Namespace] = map[string]any{
		"ClassName":    "CompositionMob",
		"UserComments": map[string]any{"Project": "alpha"},
	}
	inner.Append(clipWithRange("shot", 0, 10))

	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(inner)
	other := &timeline.Track{Kind: timeline.KindVideo}
	other.Append(clipWithRange("b", 0, 10))
	tl.Tracks.Append(track, other)

	Simplify(tl)

	var found bool
	timeline.Walk(tl.Tracks, func(item timeline.Item) bool {
		if stack, ok := item.(*timeline.Stack); ok && stack.Name == "identity" {
			found = true
		}
		return true
	})
	if !found {
		t.Fatal("container with user comments should survive")
	}
}

func TestRedundantCollapseComposesRanges(t *testing.T) {
	tl := timeline.New("t")

	nested := &timeline.Stack{}
	nestedRange := opentime.NewRange(opentime.New(5, 24), opentime.New(10, 24))
	nested.SourceRange = &nestedRange
	nested.Append(clipWithRange("shot", 100, 50))

	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(nested)
	tl.Tracks.Append(track)

	Simplify(tl)

	clips := timeline.FindClips(tl.Tracks)
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	sr := clips[0].SourceRange
	if sr == nil || sr.Start.Value != 105 || sr.Duration.Value != 10 {
		t.Fatalf("clip range = %v, want start 105 duration 10", sr)
	}
}

func TestTrimStackTracksRebasesRange(t *testing.T) {
	stack := &timeline.Stack{}
	stackRange := opentime.NewRange(opentime.New(10, 24), opentime.New(20, 24))
	stack.SourceRange = &stackRange

	track := &timeline.Track{Kind: timeline.KindVideo}
	first := clipWithRange("first", 0, 15)
	marker := &timeline.Marker{Name: "gone"}
	marker.MarkedRange = opentime.NewRange(opentime.New(0, 24), opentime.New(1, 24))
	first.Markers = append(first.Markers, marker)
	second := clipWithRange("second", 0, 15)
	track.Append(first, second)
	stack.Append(track)

	trimStackTracks(stack)

	if stack.SourceRange.Start.Value != 0 || stack.SourceRange.Duration.Value != 20 {
		t.Fatalf("stack range = %v, want rebased to start 0", *stack.SourceRange)
	}
	clips := timeline.FindClips(stack)
	if len(clips) != 2 {
		t.Fatalf("expected both clips to survive, got %d", len(clips))
	}
	if clips[0].SourceRange.Start.Value != 10 || clips[0].SourceRange.Duration.Value != 5 {
		t.Fatalf("first clip range = %v, want start 10 duration 5", *clips[0].SourceRange)
	}
	if clips[1].SourceRange.Duration.Value != 15 {
		t.Fatalf("second clip range = %v, want untouched", *clips[1].SourceRange)
	}
	if len(clips[0].Markers) != 0 {
		t.Fatal("marker outside the trimmed range should be dropped")
	}
}

func TestTrimSkippedWhenTransitionsPresent(t *testing.T) {
	stack := &timeline.Stack{}
	stackRange := opentime.NewRange(opentime.New(10, 24), opentime.New(20, 24))
	stack.SourceRange = &stackRange

	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(
		clipWithRange("a", 0, 15),
		&timeline.Transition{
			InOffset:  opentime.New(3, 24),
			OutOffset: opentime.New(3, 24),
		},
		clipWithRange("b", 0, 15),
	)
	stack.Append(track)

	trimStackTracks(stack)

	if stack.SourceRange.Start.Value != 10 {
		t.Fatal("range should be untouched when transitions are present")
	}
	if len(track.Children) != 3 {
		t.Fatalf("children = %d, want untouched 3", len(track.Children))
	}
}

func TestEnsureStackTracksWrapsWithKind(t *testing.T) {
	stack := &timeline.Stack{}
	clip := clipWithRange("bare", 0, 10)
	clip.EnsureMeta()[timeline.Namespace] = map[string]any{"MediaKind": "Picture"}
	stack.Append(clip)

	ensureStackTracks(stack)

	track, ok := stack.Children[0].(*timeline.Track)
	if !ok {
		t.Fatalf("child is %T, want wrapping track", stack.Children[0])
	}
	if track.Kind != timeline.KindVideo {
		t.Fatalf("wrapper kind = %q, want Video", track.Kind)
	}
	if track.Name != "bare" || len(track.Children) != 1 {
		t.Fatalf("wrapper = %q with %d children", track.Name, len(track.Children))
	}
}

func TestFlattenKeepsTimeEffectDuration(t *testing.T) {
	tl := timeline.New("t")

	retimed := clipWithRange("slow", 0, 25)
	retimed.Effects = append(retimed.Effects, &timeline.Effect{
		Kind:       timeline.EffectLinearTimeWarp,
		TimeScalar: 0.25,
	})
	wrapper := &timeline.Track{Kind: timeline.KindVideo}
	wrapperRange := opentime.NewRange(opentime.New(0, 24), opentime.New(100, 24))
	wrapper.SourceRange = &wrapperRange
	wrapper.Append(retimed)

	outer := &timeline.Track{Kind: timeline.KindVideo}
	outer.Append(wrapper, clipWithRange("tail", 0, 10))
	tl.Tracks.Append(outer)

	Simplify(tl)

	clips := timeline.FindClips(tl.Tracks)
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	if clips[0].Duration().Value != 100 {
		t.Fatalf("retimed clip duration = %v, want the wrapper's 100", clips[0].Duration().Value)
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	build := func() *timeline.Timeline {
		tl := timeline.New("t")
		inner := &timeline.Track{Kind: timeline.KindVideo}
		inner.Append(clipWithRange("shot", 0, 48))
		stack := &timeline.Stack{}
		stack.Append(inner)
		outer := &timeline.Track{Kind: timeline.KindVideo}
		outer.Append(stack)
		tl.Tracks.Append(outer)
		return tl
	}

	once := Simplify(build())
	twice := Simplify(Simplify(build()))

	count := func(tl *timeline.Timeline) (n int) {
		timeline.Walk(tl.Tracks, func(timeline.Item) bool { n++; return true })
		return n
	}
	if count(once) != count(twice) {
		t.Fatalf("node count changed on resimplification: %d vs %d", count(once), count(twice))
	}
}
