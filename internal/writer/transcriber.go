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

// Well-known definition identities, shared with every tool that reads the
// container format.
const (
	paramDefPanID               = "urn:uuid:e4962322-2267-11d3-8a4c-0050040ef7d2"
	paramDefLevelID             = "urn:uuid:e4962320-2267-11d3-8a4c-0050040ef7d2"
	paramDefAvidByteOrderID     = "urn:uuid:c0038672-a8cf-11d3-a05b-006094eb75cb"
	paramDefAvidEffectID        = "urn:uuid:93994bd6-a81d-11d3-a05b-006094eb75cb"
	paramDefOpacityID           = "urn:uuid:8d56813d-847e-11d5-935a-50f857c10000"
	paramDefVValExtrapolationID = "urn:uuid:0e24dd54-66cd-4f1a-b0a0-670ac3a7a0b3"
	operationDefMonoPanID       = "urn:uuid:9d2ea893-0968-11d3-8a38-0050040ef7d2"
	operationDefSubmasterID     = "urn:uuid:f1db0f3d-8d64-11d3-80df-006008143e6f"
	interpolationDefLinearID    = "urn:uuid:5b6c85a4-0ede-11d3-80a9-006008143e6f"
)

// fileTranscriber owns the container-wide state of one write: the
// composition mob, the mob caches that keep identities unique, and the
// resolved clip identities.
type fileTranscriber struct {
	tl   *timeline.Timeline
	file *aafmodel.File
	opts Options
	log  *slog.Logger

	composition *aafmodel.Mob
	masterMobs  map[aafmodel.MobID]*aafmodel.Mob
	tapeMobs    map[aafmodel.MobID]*aafmodel.Mob
	clipMobIDs  map[*timeline.Clip]aafmodel.MobID
}

func newFileTranscriber(tl *timeline.Timeline, file *aafmodel.File, opts Options, log *slog.Logger) (*fileTranscriber, error) {
	clipMobIDs, err := gatherClipMobIDs(tl, opts, log)
	if err != nil {
		return nil, err
	}

	composition := &aafmodel.Mob{
		ID:       aafmodel.NewMobID(),
		Kind:     aafmodel.CompositionMob,
		Name:     tl.Name,
		TopLevel: true,
	}
	file.Content.AppendMob(composition)

	ft := &fileTranscriber{
		tl:          tl,
		file:        file,
		opts:        opts,
		log:         log,
		composition: composition,
		masterMobs:  map[aafmodel.MobID]*aafmodel.Mob{},
		tapeMobs:    map[aafmodel.MobID]*aafmodel.Mob{},
		clipMobIDs:  clipMobIDs,
	}

	ft.transcribeUserComments(tl.Meta, composition)
	if err := ft.transcribeMobAttributes(tl.Meta, composition); err != nil {
		return nil, err
	}
	return ft, nil
}

// transcribeUserComments copies round-trip user comments onto a mob,
// skipping values the container cannot hold.
func (f *fileTranscriber) transcribeUserComments(meta timeline.Metadata, mob *aafmodel.Mob) {
	comments, _ := meta.AAF()["UserComments"].(map[string]any)
	for key, val := range comments {
		switch val.(type) {
		case string, int, int64, float64:
			if mob.Comments == nil {
				mob.Comments = map[string]any{}
			}
			mob.Comments[key] = val
		default:
			f.log.Warn("skipping unsupported user comment",
				logging.Args(
					logging.String("key", key),
					logging.String("type", fmt.Sprintf("%T", val)),
				)...)
		}
	}
}

// transcribeMobAttributes copies round-trip mob attributes onto a mob. An
// unsupported value type fails the write; attributes steer tool behavior
// and dropping one silently would corrupt the result.
func (f *fileTranscriber) transcribeMobAttributes(meta timeline.Metadata, mob *aafmodel.Mob) error {
	attrs, _ := meta.AAF()["MobAttributeList"].(map[string]any)
	for key, val := range attrs {
		switch val.(type) {
		case string, int, int64, float64:
			if mob.Attributes == nil {
				mob.Attributes = map[string]any{}
			}
			mob.Attributes[key] = val
		default:
			return adapter.Wrap(adapter.ErrUnsupported, "write", "mob attributes",
				fmt.Sprintf("cannot store attribute %q of type %T", key, val), nil)
		}
	}
	return nil
}

// addTimecode appends the composition's timecode slot. The global start
// wins over the first track's edit rate when both are present.
func (f *fileTranscriber) addTimecode(tl *timeline.Timeline, defaultEditRate float64) {
	editRate := defaultEditRate
	var start int64
	if tl.GlobalStart != nil {
		editRate = tl.GlobalStart.Rate
		start = int64(tl.GlobalStart.Value)
	}

	fps := nearestTimecode(editRate)
	slot := f.composition.CreateTimelineSlot(editRate)
	slot.Name = "TC"
	slot.PhysicalTrack = 1
	slot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindTimecode,
		MediaKind: "Timecode",
		Start:     start,
		Length:    int64(tl.Duration().Value),
		FPS:       int(fps),
		Drop:      fps != editRate,
	}
}

// trackTranscriber owns the per-track state: the composition slot, the
// sequence clips land in, and for audio the pan group wrapping it.
type trackTranscriber struct {
	root  *fileTranscriber
	track *timeline.Track
	log   *slog.Logger

	editRate     float64
	mediaKind    string
	masterSlotID int

	slot     *aafmodel.Slot
	sequence *aafmodel.Component
	panGroup *aafmodel.Component
}

func (f *fileTranscriber) trackTranscriber(track *timeline.Track) (*trackTranscriber, error) {
	t := &trackTranscriber{root: f, track: track, log: f.log}
	switch track.Kind {
	case timeline.KindVideo:
		t.mediaKind = "Picture"
		t.masterSlotID = 1
	case timeline.KindAudio:
		t.mediaKind = "Sound"
		t.masterSlotID = 2
	default:
		return nil, adapter.Wrap(adapter.ErrUnsupported, "write", "track",
			fmt.Sprintf("unsupported track kind %q", track.Kind), nil)
	}
	t.editRate = track.Children[0].Duration().Rate

	t.slot = f.composition.CreateTimelineSlot(t.editRate)
	t.slot.Name = track.Name
	t.sequence = &aafmodel.Component{Kind: aafmodel.KindSequence, MediaKind: t.mediaKind}

	if track.Kind == timeline.KindAudio {
		// Sound slots carry the sequence inside a pan group so per-clip
		// pan automation has somewhere to attach.
		f.file.Dictionary.RegisterOperation(aafmodel.OperationDef{
			Identification: operationDefMonoPanID,
			Name:           "Audio Pan",
			Description:    "Mono Audio Pan",
			NumberInputs:   1,
			DataDef:        t.mediaKind,
		})
		op := f.file.Dictionary.Operations[operationDefMonoPanID]
		t.panGroup = &aafmodel.Component{
			Kind:      aafmodel.KindOperationGroup,
			MediaKind: t.mediaKind,
			Operation: &op,
			Children:  []*aafmodel.Component{t.sequence},
		}
		t.slot.Segment = t.panGroup
	} else {
		t.slot.Segment = t.sequence
	}
	return t, nil
}

// finish settles the declared lengths once all children are in place. Each
// transition overlaps its neighbors, so it subtracts from the total.
func (t *trackTranscriber) finish() {
	var total int64
	for _, comp := range t.sequence.Children {
		if comp.Kind == aafmodel.KindTransition {
			total -= comp.Length
			continue
		}
		total += comp.Length
	}
	t.sequence.Length = total
	if t.panGroup != nil {
		t.panGroup.Length = total
	}
}

// transcribeChild converts one track child. A nil component with a nil
// error means the child was deliberately dropped.
func (t *trackTranscriber) transcribeChild(siblings []timeline.Item, idx int) (*aafmodel.Component, error) {
	switch node := siblings[idx].(type) {
	case *timeline.Gap:
		return t.filler(siblings, idx), nil
	case *timeline.Clip:
		gap, err := consideredGap(node)
		if err != nil {
			return nil, err
		}
		if gap {
			return t.filler(siblings, idx), nil
		}
		return t.sourceClip(node, visibleRange(siblings, idx))
	case *timeline.Transition:
		return t.transition(node)
	case *timeline.Track:
		return t.nestedSequence(node)
	case *timeline.Stack:
		return t.submasterGroup(node)
	default:
		return nil, adapter.Wrap(adapter.ErrUnsupported, "write", "track",
			fmt.Sprintf("unsupported composition child %T", siblings[idx]), nil)
	}
}

func (t *trackTranscriber) filler(siblings []timeline.Item, idx int) *aafmodel.Component {
	return &aafmodel.Component{
		Kind:      aafmodel.KindFiller,
		MediaKind: t.mediaKind,
		Length:    int64(visibleRange(siblings, idx).Duration.Value),
	}
}

// nestedSequence converts a nested track into a plain sequence component.
func (t *trackTranscriber) nestedSequence(track *timeline.Track) (*aafmodel.Component, error) {
	seq := &aafmodel.Component{Kind: aafmodel.KindSequence, MediaKind: t.mediaKind}
	for i := range track.Children {
		comp, err := t.transcribeChild(track.Children, i)
		if err != nil {
			return nil, err
		}
		if comp == nil {
			continue
		}
		seq.Children = append(seq.Children, comp)
		if comp.Kind == aafmodel.KindTransition {
			seq.Length -= comp.Length
		} else {
			seq.Length += comp.Length
		}
	}
	return seq, nil
}

// submasterGroup converts a stack into a submaster operation group, the
// container's expression for vertically composed sources.
func (t *trackTranscriber) submasterGroup(stack *timeline.Stack) (*aafmodel.Component, error) {
	t.root.file.Dictionary.RegisterOperation(aafmodel.OperationDef{
		Identification: operationDefSubmasterID,
		Name:           "Submaster",
		Description:    "Submaster Video",
		NumberInputs:   -1,
		Category:       "OperationCategory_Effect",
		DataDef:        t.mediaKind,
	})
	op := t.root.file.Dictionary.Operations[operationDefSubmasterID]

	group := &aafmodel.Component{
		Kind:      aafmodel.KindOperationGroup,
		MediaKind: t.mediaKind,
		Operation: &op,
	}
	for i := range stack.Children {
		comp, err := t.transcribeChild(stack.Children, i)
		if err != nil {
			return nil, err
		}
		if comp == nil {
			continue
		}
		group.Children = append(group.Children, comp)
		group.Length += comp.Length
	}
	return group, nil
}

// sourceClip converts a clip into a source clip component backed by the
// three-tier mob chain, or by copied essence when embedding is on.
func (t *trackTranscriber) sourceClip(clip *timeline.Clip, visible opentime.TimeRange) (*aafmodel.Component, error) {
	ref := clip.ActiveRef()
	available := *ref.AvailableRange

	var master *aafmodel.Mob
	var masterSlot *aafmodel.Slot
	var err error
	if t.root.opts.EmbedEssence && !ref.Missing() {
		master, masterSlot, err = t.embedClip(clip)
	} else {
		master, masterSlot, err = t.referenceChain(clip)
	}
	if err != nil {
		return nil, err
	}

	t.root.transcribeUserComments(clip.Meta, master)
	if err := t.root.transcribeMobAttributes(clip.Meta, master); err != nil {
		return nil, err
	}
	t.root.transcribeUserComments(ref.Meta, master)
	if err := t.root.transcribeMobAttributes(ref.Meta, master); err != nil {
		return nil, err
	}

	if t.root.opts.CreateEdgeCode {
		t.addEdgeCode(master, available)
	}
	if !visible.Start.AlmostEqual(available.Start) || !visible.Duration.AlmostEqual(available.Duration) {
		masterSlot.Props = aafmodel.Props{
			"MarkIn":  int64(visible.Start.Value),
			"MarkOut": int64(visible.EndExclusive().Value),
		}
	}

	comp := &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		Name:      clip.Name,
		MediaKind: t.mediaKind,
		Start:     int64(visible.Start.Sub(available.Start).Value),
		Length:    int64(visible.Duration.Value),
		RefMob:    master.ID,
		RefSlot:   masterSlot.ID,
	}
	if t.track.Kind == timeline.KindAudio {
		t.appendPan(clip, int64(visible.Duration.Value))
	}
	return comp, nil
}

// referenceChain builds (or reuses) the tape, file, and master mobs a
// relinkable clip needs, and returns the master's clip-facing slot.
func (t *trackTranscriber) referenceChain(clip *timeline.Clip) (*aafmodel.Mob, *aafmodel.Slot, error) {
	ref := clip.ActiveRef()
	available := *ref.AvailableRange

	tape := t.uniqueTapeMob(clip)
	tapeSlot := t.tapeMobSlot(tape, available)

	fileMob := &aafmodel.Mob{
		ID:         aafmodel.NewMobID(),
		Kind:       aafmodel.SourceMob,
		Name:       clip.Name,
		Descriptor: t.defaultDescriptor(clip),
	}
	t.root.file.Content.AppendMob(fileMob)
	fileSlot := fileMob.CreateTimelineSlot(t.editRate)
	fileSlot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		MediaKind: t.mediaKind,
		Length:    int64(available.Duration.Value),
		RefMob:    tape.ID,
		RefSlot:   tapeSlot.ID,
	}

	master := t.uniqueMasterMob(clip)
	masterSlot := master.Slot(t.masterSlotID)
	if masterSlot == nil {
		masterSlot = &aafmodel.Slot{ID: t.masterSlotID, Kind: aafmodel.TimelineSlot, EditRate: t.editRate}
		master.Slots = append(master.Slots, masterSlot)
	}
	masterSlot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		MediaKind: t.mediaKind,
		Length:    int64(available.Duration.Value),
		RefMob:    fileMob.ID,
		RefSlot:   fileSlot.ID,
	}
	return master, masterSlot, nil
}

// uniqueMasterMob returns the master mob for the clip's identity, creating
// it on first use. Clips cut from the same source share one master.
func (t *trackTranscriber) uniqueMasterMob(clip *timeline.Clip) *aafmodel.Mob {
	mobID := t.root.clipMobIDs[clip]
	if mob := t.root.masterMobs[mobID]; mob != nil {
		return mob
	}
	mob := &aafmodel.Mob{ID: mobID, Kind: aafmodel.MasterMob, Name: clip.Name}
	t.root.masterMobs[mobID] = mob
	t.root.file.Content.AppendMob(mob)
	return mob
}

// uniqueTapeMob returns the physical-source mob for the clip's identity,
// creating it with a timecode slot on first use.
func (t *trackTranscriber) uniqueTapeMob(clip *timeline.Clip) *aafmodel.Mob {
	mobID := t.root.clipMobIDs[clip]
	if mob := t.root.tapeMobs[mobID]; mob != nil {
		return mob
	}

	ref := clip.ActiveRef()
	available := *ref.AvailableRange
	mob := &aafmodel.Mob{
		ID:         aafmodel.NewMobID(),
		Kind:       aafmodel.SourceMob,
		Name:       clip.Name,
		Descriptor: &aafmodel.Descriptor{Kind: aafmodel.DescriptorImport},
	}
	if ref.TargetURL != "" {
		mob.Descriptor.Locators = append(mob.Descriptor.Locators, aafmodel.Locator{URL: ref.TargetURL})
	}

	fps := nearestTimecode(t.editRate)
	tc := mob.CreateTimelineSlot(t.editRate)
	tc.Name = "TC"
	tc.PhysicalTrack = 1
	tc.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindTimecode,
		MediaKind: "Timecode",
		Start:     int64(available.Start.Value),
		Length:    int64(available.Duration.Value),
		FPS:       int(fps),
		Drop:      fps != t.editRate,
	}

	t.root.tapeMobs[mobID] = mob
	t.root.file.Content.AppendMob(mob)
	return mob
}

// tapeMobSlot appends the media slot a file mob chain hangs off. Its
// segment is a dangling source clip, the conventional end of the chain.
func (t *trackTranscriber) tapeMobSlot(tape *aafmodel.Mob, available opentime.TimeRange) *aafmodel.Slot {
	slot := tape.CreateTimelineSlot(t.editRate)
	slot.Name = tape.Name
	slot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		MediaKind: t.mediaKind,
		Length:    int64(available.Duration.Value),
	}
	return slot
}

// addEdgeCode gives the master mob a film frame-count slot. Slot ID 20 is
// the conventional home; a second clip on the same master reuses it.
func (t *trackTranscriber) addEdgeCode(master *aafmodel.Mob, available opentime.TimeRange) {
	const edgeCodeSlotID = 20
	if master.Slot(edgeCodeSlotID) != nil {
		return
	}
	slot := &aafmodel.Slot{
		ID:            edgeCodeSlotID,
		Kind:          aafmodel.TimelineSlot,
		Name:          "EC1",
		EditRate:      t.editRate,
		PhysicalTrack: 6,
	}
	slot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindEdgeCode,
		MediaKind: "Edgecode",
		Start:     int64(available.Start.Value),
		Length:    int64(available.Duration.Value),
		Props: aafmodel.Props{
			"AvEdgeType": 3,
			"AvFilmType": 0,
			"FilmKind":   "Ft35MM",
			"CodeFormat": "EtNull",
		},
	}
	master.Slots = append(master.Slots, slot)
}

// appendPan attaches one pan automation curve to the track's pan group.
// Without recorded keyframes the clip pans flat center.
func (t *trackTranscriber) appendPan(clip *timeline.Clip, length int64) {
	dict := t.root.file.Dictionary
	dict.RegisterParameter(aafmodel.ParameterDef{
		Identification: paramDefPanID,
		Name:           "Pan",
		Description:    "Pan",
		TypeName:       "Rational",
	})
	dict.RegisterInterpolation(aafmodel.InterpolationDef{
		Identification: interpolationDefLinearID,
		Name:           "LinearInterp",
		Description:    "Linear keyframe interpolation",
	})

	pan := &aafmodel.Parameter{Name: "Pan", Interpolation: "LinearInterp"}
	if points := recordedPanPoints(clip); len(points) > 0 {
		pan.Points = points
	} else {
		pan.Points = []aafmodel.ControlPoint{
			{Source: 2, Time: fmt.Sprintf("0/%d", length), Value: "1/2"},
			{Source: 2, Time: fmt.Sprintf("%d/%d", length-1, length), Value: "1/2"},
		}
	}
	if t.panGroup != nil {
		t.panGroup.Parameters = append(t.panGroup.Parameters, pan)
	}
}

// recordedPanPoints recovers pan keyframes a read pass stashed in the
// clip's round-trip metadata.
func recordedPanPoints(clip *timeline.Clip) []aafmodel.ControlPoint {
	pan, _ := clip.Meta.AAF()["Pan"].(map[string]any)
	raw, _ := pan["ControlPoints"].([]any)
	points := make([]aafmodel.ControlPoint, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		cp := aafmodel.ControlPoint{
			Time:  fmt.Sprint(m["Time"]),
			Value: fmt.Sprint(m["Value"]),
		}
		if src, ok := metaInt(m["ControlPointSource"]); ok {
			cp.Source = src
		}
		points = append(points, cp)
	}
	return points
}

// metaInt coerces the numeric shapes round-trip metadata stores integers
// in.
func metaInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
