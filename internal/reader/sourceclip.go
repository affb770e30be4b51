package reader

import (
	"bobbin/internal/aafmodel"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// transcribeSourceClip resolves a SourceClip at composition level. A master
// or composition target is transcribed (memoized) and the referenced slot's
// track becomes the result; a broken reference degrades to a gap.
func (c *Context) transcribeSourceClip(comp *aafmodel.Component, sc scope) (timeline.Item, error) {
	editRate := sc.editRate
	duration := opentime.FromFrames(comp.Length, editRate)
	sourceRange := opentime.NewRange(opentime.FromFrames(comp.Start, editRate), duration)

	target := c.content.Mob(comp.RefMob)

	var (
		mobTimeline *timeline.Timeline
		slotTrack   *timeline.Track
	)
	if target != nil && (target.Kind == aafmodel.MasterMob || target.Kind == aafmodel.CompositionMob) {
		var err error
		mobTimeline, err = c.transcribeMob(target)
		if err != nil {
			return nil, err
		}
		for _, track := range trackChildren(mobTimeline.Tracks) {
			if metaInt(track.Meta.AAF(), "SlotID") == comp.RefSlot {
				slotTrack = track.Clone().(*timeline.Track)
				break
			}
		}
	}

	if target == nil || slotTrack == nil {
		c.log.Warn("unresolvable source clip reference, creating gap",
			logging.Args(
				logging.String(logging.FieldMobID, string(comp.RefMob)),
				logging.Int(logging.FieldSlotID, comp.RefSlot),
			)...)
		return gapOfLength(comp.Length, editRate), nil
	}

	if target.Kind == aafmodel.CompositionMob {
		stack := &timeline.Stack{}
		stack.Name = mobTimeline.Name
		meta := map[string]any{}
		for k, v := range mobTimeline.Meta.AAF() {
			meta[k] = v
		}
		meta["MediaKind"] = comp.MediaKind
		stack.EnsureMeta()[timeline.Namespace] = meta
		stack.Append(slotTrack)
		stack.SourceRange = &sourceRange

		if markerTrack := c.cloneSiblingMarkers(mobTimeline, slotTrack, comp); markerTrack != nil {
			stack.Append(markerTrack)
		}
		return stack, nil
	}

	slotTrack.SourceRange = &sourceRange
	return slotTrack, nil
}

// cloneSiblingMarkers copies markers recorded on the referenced mob's other
// tracks when they point at the referenced slot, parked on a synthetic track
// over a gap of matching range so reattachment can find them later.
func (c *Context) cloneSiblingMarkers(mobTimeline *timeline.Timeline, slotTrack *timeline.Track, comp *aafmodel.Component) *timeline.Track {
	trackNumber := metaInt(slotTrack.Meta.AAF(), "PhysicalTrackNumber")

	var markerTrack *timeline.Track
	for _, track := range trackChildren(mobTimeline.Tracks) {
		if metaInt(track.Meta.AAF(), "SlotID") == comp.RefSlot {
			continue
		}
		subTracks := timeline.FindTracks(track)
		for _, current := range subTracks {
			for _, marker := range current.Markers {
				meta := marker.Meta.AAF()
				if metaInt(meta, "AttachedSlotID") != comp.RefSlot ||
					metaInt(meta, "AttachedPhysicalTrackNumber") != trackNumber {
					continue
				}
				if markerTrack == nil {
					markerTrack = &timeline.Track{Kind: track.Kind}
					markerTrack.Name = track.Name
					gap := &timeline.Gap{}
					gapRange := slotTrack.AvailableRange()
					gap.SourceRange = &gapRange
					markerTrack.Append(gap)
				}
				markerTrack.Markers = append(markerTrack.Markers, marker.Clone())
			}
		}
	}
	return markerTrack
}

// transcribeMasterMob builds the per-slot clip tracks of a master mob,
// resolving each source clip through its full reference chain.
func (c *Context) transcribeMasterMob(mob *aafmodel.Mob) (*timeline.Timeline, error) {
	c.log.Debug("transcribing master mob",
		logging.Args(logging.String(logging.FieldMobName, mob.Name))...)

	tl := timeline.New(normName(mob.Name))
	tl.EnsureMeta()[timeline.Namespace] = mobMetadata(mob)
	c.cache[mob.ID] = tl

	for _, slot := range mob.Slots {
		if slot.Kind == aafmodel.EventSlot {
			track, err := c.transcribeEventSlot(slot, mob)
			if err != nil {
				return nil, err
			}
			tl.Tracks.Append(track)
			continue
		}

		track := &timeline.Track{}
		track.Name = normName(slot.Name)
		track.EnsureMeta()[timeline.Namespace] = slotMetadata(slot)
		if slot.Segment != nil {
			track.Kind = timeline.KindFromMediaKind(slot.Segment.MediaKind)
		}

		for _, group := range essenceGroups(slot.Segment) {
			item, err := c.transcribeEssenceChoice(mob, slot, group)
			if err != nil {
				return nil, err
			}
			track.Append(item)
		}
		tl.Tracks.Append(track)
	}

	// Master mobs carry no transitions, so markers can attach immediately.
	AttachMarkers(tl, c.log)
	return tl, nil
}

// essenceGroups flattens a slot segment into groups of choices: an
// EssenceGroup contributes its choice list, anything else a singleton.
func essenceGroups(segment *aafmodel.Component) [][]*aafmodel.Component {
	var groups [][]*aafmodel.Component
	for _, comp := range aafmodel.SegmentComponents(segment) {
		if comp.Kind == aafmodel.KindEssenceGroup {
			groups = append(groups, comp.Children)
		} else {
			groups = append(groups, []*aafmodel.Component{comp})
		}
	}
	return groups
}

// transcribeEssenceChoice transcribes the first usable choice of one essence
// group inside a master mob slot.
func (c *Context) transcribeEssenceChoice(mob *aafmodel.Mob, slot *aafmodel.Slot, choices []*aafmodel.Component) (timeline.Item, error) {
	globalStart := mobStartTimecode(mob)

	for _, comp := range choices {
		if comp.Length == 0 {
			continue
		}
		if comp.Kind != aafmodel.KindSourceClip {
			return gapOfLength(comp.Length, slot.EditRate), nil
		}
		return c.transcribeMasterClip(mob, slot, comp, globalStart)
	}
	return nil, nil
}

// transcribeMasterClip walks the reference chain bottom-up: source mob hops
// contribute media references, the master hop produces the clip itself.
func (c *Context) transcribeMasterClip(mob *aafmodel.Mob, slot *aafmodel.Slot, comp *aafmodel.Component, globalStart *opentime.TimeRange) (timeline.Item, error) {
	chain := c.referenceChain(mob, slot, comp)

	var (
		inRange *opentime.TimeRange
		refs    []timeline.NamedReference
		clip    *timeline.Clip
	)
	for i := len(chain) - 1; i >= 0; i-- {
		hop := chain[i]

		var startTC *opentime.TimeRange
		if hop.mob.Kind == aafmodel.SourceMob {
			startTC = mobStartTimecode(hop.mob)
		}
		availableRange := sourceClipRanges(hop.slot, hop.clip, inRange, startTC)

		switch hop.mob.Kind {
		case aafmodel.SourceMob:
			refs = append(refs, c.sourceMobReferences(hop.mob, availableRange, globalStart)...)
		case aafmodel.MasterMob:
			reverseRefs(refs)
			clip = c.buildMasterClip(hop.mob, availableRange, refs, globalStart)
			clip.EnsureMeta()[timeline.Namespace] = mobMetadata(hop.mob)
			clip.Meta.AAF()["MediaKind"] = comp.MediaKind
		}
		r := availableRange
		inRange = &r
	}

	if clip == nil {
		c.log.Warn("reference chain ended without a master mob, creating gap",
			logging.Args(logging.String(logging.FieldMobID, string(comp.RefMob)))...)
		return gapOfLength(comp.Length, slot.EditRate), nil
	}
	return clip, nil
}

// sourceMobReferences builds one media reference per locator URL on a source
// mob descriptor; a mob with no usable locator contributes a missing
// reference carrying the mob's name.
func (c *Context) sourceMobReferences(mob *aafmodel.Mob, availableRange opentime.TimeRange, globalStart *opentime.TimeRange) []timeline.NamedReference {
	name := normName(mob.Name)
	if name == "" {
		name = string(mob.ID)
	}

	if globalStart != nil {
		availableRange = opentime.NewRange(
			availableRange.Start.Add(globalStart.Start),
			availableRange.Duration,
		)
	}

	var urls []string
	if mob.Descriptor != nil {
		for _, locator := range mob.Descriptor.Locators {
			if locator.URL != "" {
				urls = append(urls, transcribeURL(locator.URL))
			}
		}
	}
	if len(urls) == 0 {
		urls = []string{""}
	}

	meta := mobMetadata(mob)
	refs := make([]timeline.NamedReference, 0, len(urls))
	for _, url := range urls {
		ar := availableRange
		ref := &timeline.MediaReference{
			Name:           name,
			TargetURL:      url,
			AvailableRange: &ar,
		}
		ref.EnsureMeta()[timeline.Namespace] = meta
		refs = append(refs, timeline.NamedReference{Key: name, Ref: ref})
	}
	return refs
}

// buildMasterClip assembles the clip for the master hop of a chain. A
// "UNC Path" user comment becomes a prepended external reference, kept for
// compatibility with material in the wild.
func (c *Context) buildMasterClip(mob *aafmodel.Mob, sourceRange opentime.TimeRange, refs []timeline.NamedReference, globalStart *opentime.TimeRange) *timeline.Clip {
	if globalStart != nil {
		sourceRange = opentime.NewRange(
			sourceRange.Start.Add(globalStart.Start),
			sourceRange.Duration,
		)
	}

	clip := &timeline.Clip{}
	clip.Name = normName(mob.Name)
	sr := sourceRange
	clip.SourceRange = &sr

	if unc, ok := mob.Comments["UNC Path"].(string); ok && unc != "" {
		ar := sourceRange
		ref := &timeline.MediaReference{
			Name:           "UNC Path",
			TargetURL:      transcribeURL(unc),
			AvailableRange: &ar,
		}
		refs = append([]timeline.NamedReference{{Key: ref.Name, Ref: ref}}, refs...)
	}

	if len(refs) > 0 {
		named := make([]timeline.NamedReference, 0, len(refs))
		named = append(named, timeline.NamedReference{Key: timeline.DefaultMediaKey, Ref: refs[0].Ref})
		named = append(named, refs[1:]...)
		clip.SetReferences(named)
	}
	return clip
}

func reverseRefs(refs []timeline.NamedReference) {
	for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
		refs[i], refs[j] = refs[j], refs[i]
	}
}

// trackChildren returns the stack's direct track children.
func trackChildren(stack *timeline.Stack) []*timeline.Track {
	var out []*timeline.Track
	for _, child := range stack.Children {
		if track, ok := child.(*timeline.Track); ok {
			out = append(out, track)
		}
	}
	return out
}

// metaInt reads an integer out of a metadata bag, tolerating the numeric
// types JSON decoding produces.
func metaInt(meta map[string]any, key string) int {
	if meta == nil {
		return -1
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return -1
	}
}
