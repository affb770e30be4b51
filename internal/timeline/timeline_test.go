package timeline_test

import (
	"testing"

	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

func clipWithRange(name string, start, dur float64) *timeline.Clip {
	r := opentime.NewRange(opentime.New(start, 24), opentime.New(dur, 24))
	c := &timeline.Clip{}
	c.Name = name
	c.SourceRange = &r
	return c
}

func TestEveryItemExposesSharedBase(t *testing.T) {
	items := []timeline.Item{
		&timeline.Clip{},
		&timeline.Gap{},
		&timeline.Track{},
		&timeline.Stack{},
		&timeline.Transition{},
	}
	for _, item := range items {
		base := item.Base()
		if base == nil {
			t.Fatalf("%T exposes no shared state", item)
		}
		base.Name = "named"
		if item.Base().Name != "named" {
			t.Fatalf("%T shared state does not round-trip through Base", item)
		}
	}
}

func TestContentDurationSkipsTransitions(t *testing.T) {
	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(
		clipWithRange("a", 0, 10),
		&timeline.Transition{
			InOffset:  opentime.New(2, 24),
			OutOffset: opentime.New(2, 24),
		},
		clipWithRange("b", 0, 20),
	)
	if got := track.ContentDuration(); got.Value != 30 {
		t.Fatalf("content duration = %v, want 30", got)
	}
}

func TestRangeOfChildAndChildAtTime(t *testing.T) {
	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(clipWithRange("a", 0, 10), clipWithRange("b", 5, 20))

	r := track.RangeOfChild(1)
	if r.Start.Value != 10 || r.Duration.Value != 20 {
		t.Fatalf("range of child 1 = %v", r)
	}

	item, idx := track.ChildAtTime(opentime.New(12, 24))
	if idx != 1 {
		t.Fatalf("child at 12 = index %d", idx)
	}
	if item.Base().Name != "b" {
		t.Fatalf("child at 12 = %q", item.Base().Name)
	}
	if _, idx := track.ChildAtTime(opentime.New(30, 24)); idx != -1 {
		t.Fatal("expected no child past the end")
	}
}

func TestLocalTimeHonorsSourceStart(t *testing.T) {
	track := &timeline.Track{Kind: timeline.KindVideo}
	track.Append(clipWithRange("a", 0, 10), clipWithRange("b", 5, 20))

	local := track.LocalTime(opentime.New(12, 24), 1)
	// 12 - 10 (child start in track) + 5 (child source start)
	if local.Value != 7 {
		t.Fatalf("local time = %v, want 7", local)
	}
}

func TestSetReferencesDeduplicatesKeys(t *testing.T) {
	clip := &timeline.Clip{}
	clip.SetReferences([]timeline.NamedReference{
		{Key: "tape", Ref: &timeline.MediaReference{TargetURL: "file:///a"}},
		{Key: "tape", Ref: &timeline.MediaReference{TargetURL: "file:///b"}},
		{Key: "tape", Ref: &timeline.MediaReference{TargetURL: "file:///c"}},
	})
	if len(clip.MediaRefs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(clip.MediaRefs))
	}
	keys := map[string]bool{}
	for _, nr := range clip.MediaRefs {
		if keys[nr.Key] {
			t.Fatalf("duplicate key %q", nr.Key)
		}
		keys[nr.Key] = true
	}
	if clip.ActiveKey != "tape" {
		t.Fatalf("active key = %q", clip.ActiveKey)
	}
	if clip.ActiveRef().TargetURL != "file:///a" {
		t.Fatalf("active ref = %q", clip.ActiveRef().TargetURL)
	}
}

func TestCloneIsDeep(t *testing.T) {
	track := &timeline.Track{Kind: timeline.KindAudio}
	clip := clipWithRange("a", 0, 10)
	clip.EnsureMeta().EnsureAAF()["SourceID"] = "urn:uuid:123"
	clip.Markers = append(clip.Markers, &timeline.Marker{Name: "m", Color: timeline.ColorRed})
	track.Append(clip)

	dup := track.Clone().(*timeline.Track)
	dupClip := dup.Children[0].(*timeline.Clip)
	dupClip.Meta.AAF()["SourceID"] = "urn:uuid:456"
	dupClip.Markers[0].Name = "changed"

	if clip.Meta.AAF()["SourceID"] != "urn:uuid:123" {
		t.Fatal("clone shared metadata with original")
	}
	if clip.Markers[0].Name != "m" {
		t.Fatal("clone shared markers with original")
	}
}

func TestStackDurationIsLongestChild(t *testing.T) {
	stack := &timeline.Stack{}
	a := &timeline.Track{Kind: timeline.KindVideo}
	a.Append(clipWithRange("a", 0, 10))
	b := &timeline.Track{Kind: timeline.KindAudio}
	b.Append(clipWithRange("b", 0, 25))
	stack.Append(a, b)
	if got := stack.Duration(); got.Value != 25 {
		t.Fatalf("stack duration = %v, want 25", got)
	}
}
