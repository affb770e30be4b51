package reader

import (
	"errors"
	"testing"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

func testScope(editRate float64) scope {
	return scope{
		mob:      &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.CompositionMob},
		slot:     &aafmodel.Slot{ID: 1, EditRate: editRate},
		editRate: editRate,
	}
}

func newTestContext(content *aafmodel.ContentStorage) *Context {
	if content == nil {
		content = &aafmodel.ContentStorage{}
	}
	return NewContext(content, Options{}, logging.NewNop())
}

func TestMobStrategiesPrecedence(t *testing.T) {
	content := &aafmodel.ContentStorage{}
	master := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.MasterMob}
	comp := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.CompositionMob}
	top := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.CompositionMob, TopLevel: true}
	content.AppendMob(master)
	content.AppendMob(comp)
	content.AppendMob(top)

	mobs := MobsForTranscription(content)
	if len(mobs) != 1 || mobs[0] != top {
		t.Fatalf("expected top-level mob to win, got %v", mobs)
	}

	top.TopLevel = false
	mobs = MobsForTranscription(content)
	if len(mobs) != 2 || mobs[0] != comp {
		t.Fatalf("expected composition mobs next, got %v", mobs)
	}

	content.Mobs = []*aafmodel.Mob{master}
	mobs = MobsForTranscription(content)
	if len(mobs) != 1 || mobs[0] != master {
		t.Fatal("expected master mob fallback")
	}

	if MobsForTranscription(&aafmodel.ContentStorage{}) != nil {
		t.Fatal("expected empty selection for empty storage")
	}
}

func TestBrokenReferenceDegradesToGap(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:   aafmodel.KindSourceClip,
		Length: 42,
		RefMob: aafmodel.NewMobID(),
	}

	item, _, err := ctx.transcribeComponent(comp, testScope(24))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	gap, ok := item.(*timeline.Gap)
	if !ok {
		t.Fatalf("expected gap, got %T", item)
	}
	if gap.Duration().Value != 42 {
		t.Fatalf("gap duration = %v, want 42", gap.Duration().Value)
	}
}

func TestTimeWarpSlopeFromControlPoints(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:   aafmodel.KindOperationGroup,
		Length: 100,
		Operation: &aafmodel.OperationDef{
			Name:       "Motion Control",
			IsTimeWarp: true,
		},
		Parameters: []*aafmodel.Parameter{{
			Name:          "PARAM_SPEED_OFFSET_MAP_U",
			Interpolation: "LinearInterp",
			Points: []aafmodel.ControlPoint{
				{Time: "0", Value: "0"},
				{Time: "99/100", Value: "1"},
			},
		}},
	}

	effect, err := ctx.classifyOperation(comp)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if effect.Kind != timeline.EffectLinearTimeWarp {
		t.Fatalf("expected linear time warp, got %v", effect.Kind)
	}
	want := 1.0 / (99.0 / 100.0)
	if diff := effect.TimeScalar - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("time scalar = %v, want %v", effect.TimeScalar, want)
	}
}

func TestFreezeFrameFromRatioMatchingLength(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:   aafmodel.KindOperationGroup,
		Length: 250,
		Operation: &aafmodel.OperationDef{
			Name:       "Motion Control",
			IsTimeWarp: true,
		},
		Parameters: []*aafmodel.Parameter{
			{Name: "PARAM_SPEED_OFFSET_MAP_U", Interpolation: "LinearInterp"},
			{Name: "SpeedRatio", Value: "250"},
		},
	}

	effect, err := ctx.classifyOperation(comp)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if effect.Kind != timeline.EffectFreezeFrame {
		t.Fatalf("expected freeze frame, got %v", effect.Kind)
	}
}

func TestFancyTimeWarpFromManyPoints(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:   aafmodel.KindOperationGroup,
		Length: 100,
		Operation: &aafmodel.OperationDef{
			Name:       "Motion Control",
			IsTimeWarp: true,
		},
		Parameters: []*aafmodel.Parameter{{
			Name:          "PARAM_SPEED_OFFSET_MAP_U",
			Interpolation: "LinearInterp",
			Points: []aafmodel.ControlPoint{
				{Time: "0", Value: "0"},
				{Time: "1/2", Value: "2"},
				{Time: "1", Value: "3"},
			},
		}},
	}

	effect, err := ctx.classifyOperation(comp)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if effect.Kind != timeline.EffectTimeWarp {
		t.Fatalf("expected opaque time effect, got %v", effect.Kind)
	}
}

func TestSpeedRatioFraction(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:   aafmodel.KindOperationGroup,
		Length: 100,
		Operation: &aafmodel.OperationDef{
			Name:       "Motion Control",
			IsTimeWarp: true,
		},
		Parameters: []*aafmodel.Parameter{
			{Name: "PARAM_SPEED_OFFSET_MAP_U", Interpolation: "LinearInterp"},
			{Name: "SpeedRatio", Value: "2/1"},
		},
	}

	effect, err := ctx.classifyOperation(comp)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if effect.Kind != timeline.EffectLinearTimeWarp || effect.TimeScalar != 0.5 {
		t.Fatalf("expected scalar 1/2, got %v %v", effect.Kind, effect.TimeScalar)
	}
}

func TestSelectorDisabledAlternate(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:     aafmodel.KindSelector,
		Length:   30,
		Selected: &aafmodel.Component{Kind: aafmodel.KindFiller, Length: 30},
		Alternates: []*aafmodel.Component{
			{Kind: aafmodel.KindFiller, Length: 30, Name: "muted"},
		},
	}

	item, _, err := ctx.transcribeComponent(comp, testScope(24))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if !item.Base().Disabled {
		t.Fatal("expected disabled alternate")
	}

	comp.Alternates = nil
	if _, _, err := ctx.transcribeComponent(comp, testScope(24)); !errors.Is(err, adapter.ErrAdapter) {
		t.Fatalf("expected adapter error for missing alternate, got %v", err)
	}
}

func TestDeclaredLengthMismatchFailsHard(t *testing.T) {
	gap := gapOfLength(10, 24)
	comp := &aafmodel.Component{Kind: aafmodel.KindFiller, Length: 12}
	if err := assertDeclaredLength(gap, comp); !errors.Is(err, adapter.ErrAdapter) {
		t.Fatalf("expected adapter error, got %v", err)
	}
}

func TestTransitionOffsetsFromCutPoint(t *testing.T) {
	ctx := newTestContext(nil)
	comp := &aafmodel.Component{
		Kind:     aafmodel.KindTransition,
		Length:   20,
		CutPoint: 8,
	}

	item, _, err := ctx.transcribeComponent(comp, testScope(24))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	transition := item.(*timeline.Transition)
	if transition.InOffset.Value != 8 || transition.OutOffset.Value != 12 {
		t.Fatalf("offsets = %v/%v, want 8/12", transition.InOffset.Value, transition.OutOffset.Value)
	}
	if transition.Duration().Value != 20 {
		t.Fatalf("duration = %v, want 20", transition.Duration().Value)
	}
}

func TestFixTransitionsTrimsNeighbors(t *testing.T) {
	tl := timeline.New("t")
	track := &timeline.Track{Kind: timeline.KindVideo}

	a := &timeline.Clip{}
	srA := opentime.NewRange(opentime.New(0, 24), opentime.New(48, 24))
	a.SourceRange = &srA

	tr := &timeline.Transition{
		InOffset:  opentime.New(6, 24),
		OutOffset: opentime.New(6, 24),
	}

	b := &timeline.Clip{}
	srB := opentime.NewRange(opentime.New(100, 24), opentime.New(48, 24))
	b.SourceRange = &srB

	track.Append(a, tr, b)
	tl.Tracks.Append(track)

	FixTransitions(tl)

	if a.SourceRange.Duration.Value != 42 {
		t.Fatalf("preceding clip duration = %v, want 42", a.SourceRange.Duration.Value)
	}
	if b.SourceRange.Start.Value != 106 || b.SourceRange.Duration.Value != 42 {
		t.Fatalf("following clip range = %v, want start 106 duration 42", *b.SourceRange)
	}
}

func TestSourceClipResolvesMasterMobToClip(t *testing.T) {
	content := &aafmodel.ContentStorage{}

	source := &aafmodel.Mob{
		ID:   aafmodel.NewMobID(),
		Kind: aafmodel.SourceMob,
		Name: "tape A",
		Descriptor: &aafmodel.Descriptor{
			Kind:     aafmodel.DescriptorCDCI,
			Locators: []aafmodel.Locator{{URL: "/media/a.dnx"}},
		},
	}
	sourceSlot := source.CreateTimelineSlot(24)
	sourceSlot.Segment = &aafmodel.Component{
		Kind: aafmodel.KindSourceClip, MediaKind: "Picture", Length: 100,
	}
	content.AppendMob(source)

	master := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.MasterMob, Name: "clip A"}
	masterSlot := master.CreateTimelineSlot(24)
	masterSlot.Segment = &aafmodel.Component{
		Kind: aafmodel.KindSourceClip, MediaKind: "Picture",
		Length: 100, RefMob: source.ID, RefSlot: sourceSlot.ID,
	}
	content.AppendMob(master)

	comp := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.CompositionMob, TopLevel: true, Name: "seq"}
	compSlot := comp.CreateTimelineSlot(24)
	compSlot.PhysicalTrack = 1
	compSlot.Segment = &aafmodel.Component{
		Kind: aafmodel.KindSequence, MediaKind: "Picture",
		Length: 50,
		Children: []*aafmodel.Component{{
			Kind: aafmodel.KindSourceClip, MediaKind: "Picture",
			Start: 10, Length: 50, RefMob: master.ID, RefSlot: masterSlot.ID,
		}},
	}
	content.AppendMob(comp)

	tl, err := Read(content, Options{AttachMarkers: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	clips := timeline.FindClips(tl.Tracks)
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	clip := clips[0]
	if clip.Name != "clip A" {
		t.Fatalf("clip name = %q", clip.Name)
	}
	ref := clip.ActiveRef()
	if ref == nil || ref.TargetURL != "file:///media/a.dnx" {
		t.Fatalf("unexpected media reference: %+v", ref)
	}
}

func TestMarkerColorEstimation(t *testing.T) {
	if c, ok := markerColorFromString("Yellow"); !ok || c != timeline.ColorYellow {
		t.Fatalf("name parse failed: %v %v", c, ok)
	}
	if _, ok := markerColorFromString("chartreuse"); ok {
		t.Fatal("unknown name should not parse")
	}

	cases := []struct {
		rgb  aafmodel.RGBColor
		want timeline.Color
	}{
		{aafmodel.RGBColor{Red: 65535, Green: 0, Blue: 0}, timeline.ColorRed},
		{aafmodel.RGBColor{Red: 0, Green: 65535, Blue: 0}, timeline.ColorGreen},
		{aafmodel.RGBColor{Red: 41471, Green: 12134, Blue: 6564}, timeline.ColorRed},
		{aafmodel.RGBColor{Red: 65535, Green: 42405, Blue: 0}, timeline.ColorOrange},
		{aafmodel.RGBColor{Red: 5000, Green: 5000, Blue: 5000}, timeline.ColorBlack},
		{aafmodel.RGBColor{Red: 60000, Green: 60000, Blue: 60000}, timeline.ColorWhite},
	}
	for _, tc := range cases {
		if got := markerColorFromRGB(&tc.rgb); got != tc.want {
			t.Fatalf("markerColorFromRGB(%+v) = %v, want %v", tc.rgb, got, tc.want)
		}
	}
}

func TestAttachMarkersRelocates(t *testing.T) {
	tl := timeline.New("t")

	target := &timeline.Track{Kind: timeline.KindVideo}
	target.EnsureMeta()[timeline.Namespace] = map[string]any{
		"SlotID":              2,
		"PhysicalTrackNumber": 3,
	}
	first := &timeline.Clip{}
	srFirst := opentime.NewRange(opentime.New(0, 24), opentime.New(500, 24))
	first.SourceRange = &srFirst
	second := &timeline.Clip{ItemBase: timeline.ItemBase{Name: "target clip"}}
	srSecond := opentime.NewRange(opentime.New(40, 24), opentime.New(100, 24))
	second.SourceRange = &srSecond
	target.Append(first, second)
	tl.Tracks.Append(target)

	carrier := &timeline.Track{}
	marker := &timeline.Marker{Name: "note", Color: timeline.ColorRed}
	marker.MarkedRange = opentime.NewRange(opentime.New(518, 24), opentime.New(1, 24))
	marker.EnsureMeta()[timeline.Namespace] = map[string]any{
		"AttachedSlotID":              2,
		"AttachedPhysicalTrackNumber": 3,
	}
	carrier.Markers = append(carrier.Markers, marker)
	tl.Tracks.Append(carrier)

	AttachMarkers(tl, logging.NewNop())

	if len(second.Markers) != 1 {
		t.Fatalf("marker not attached to overlapping clip: %d", len(second.Markers))
	}
	// 518 - 500 (item start in track) + 40 (item source start)
	if got := second.Markers[0].MarkedRange.Start.Value; got != 58 {
		t.Fatalf("marker local start = %v, want 58", got)
	}
	if len(carrier.Markers) != 0 {
		t.Fatal("marker left on carrier track")
	}
}

func TestAttachMarkersUnresolvableTargetGoesToTimeline(t *testing.T) {
	tl := timeline.New("t")
	carrier := &timeline.Track{}
	marker := &timeline.Marker{Name: "orphan"}
	marker.MarkedRange = opentime.NewRange(opentime.New(10, 24), opentime.New(1, 24))
	marker.EnsureMeta()[timeline.Namespace] = map[string]any{
		"AttachedSlotID":              9,
		"AttachedPhysicalTrackNumber": 9,
	}
	carrier.Markers = append(carrier.Markers, marker)
	tl.Tracks.Append(carrier)

	AttachMarkers(tl, logging.NewNop())

	if len(tl.Tracks.Markers) != 1 {
		t.Fatal("orphan marker should land on the root stack")
	}
}

func TestDescriptiveMarkerDefaults(t *testing.T) {
	ctx := newTestContext(nil)
	sc := scope{
		mob:      &aafmodel.Mob{Kind: aafmodel.CompositionMob},
		slot:     &aafmodel.Slot{ID: 4, Kind: aafmodel.EventSlot, EditRate: 24, PhysicalTrack: 3},
		editRate: 24,
	}
	comp := &aafmodel.Component{
		Kind:           aafmodel.KindDescriptiveMarker,
		Comment:        "fix color here",
		Position:       518,
		NullLength:     true,
		DescribedSlots: []int{2},
		ColorRGB:       &aafmodel.RGBColor{Red: 0, Green: 0, Blue: 65535},
	}

	_, marker, err := ctx.transcribeComponent(comp, sc)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if marker == nil {
		t.Fatal("expected marker")
	}
	if marker.Name != "fix color here" || marker.Color != timeline.ColorBlue {
		t.Fatalf("marker = %+v", marker)
	}
	if marker.MarkedRange.Duration.Value != 1 {
		t.Fatalf("null length should default to one frame, got %v", marker.MarkedRange.Duration.Value)
	}
	meta := marker.Meta.AAF()
	if metaInt(meta, "AttachedSlotID") != 2 || metaInt(meta, "AttachedPhysicalTrackNumber") != 3 {
		t.Fatalf("attachment keys missing: %v", meta)
	}
}
