package reader

import (
	"fmt"
	"log/slog"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// Options controls a single read pass.
type Options struct {
	// AttachMarkers relocates event markers onto the items their positions
	// fall within after transcription.
	AttachMarkers bool
	// BakeKeyframedProperties expands keyframed parameter values into
	// per-frame baked values in the metadata bag.
	BakeKeyframedProperties bool
}

// Context carries the state of one read pass. The mob memoization cache lives
// here, never in package state, so concurrent reads do not share anything.
type Context struct {
	content *aafmodel.ContentStorage
	log     *slog.Logger
	opts    Options
	cache   map[aafmodel.MobID]*timeline.Timeline
}

// NewContext prepares a read pass over the given content storage.
func NewContext(content *aafmodel.ContentStorage, opts Options, log *slog.Logger) *Context {
	return &Context{
		content: content,
		log:     logging.NewComponentLogger(log, "reader"),
		opts:    opts,
		cache:   map[aafmodel.MobID]*timeline.Timeline{},
	}
}

// Read transcribes the storage into a timeline: mob selection, per-mob
// transcription, transition fix-up, and (optionally) marker reattachment.
// Structural simplification is the caller's business.
func Read(content *aafmodel.ContentStorage, opts Options, log *slog.Logger) (*timeline.Timeline, error) {
	ctx := NewContext(content, opts, log)

	mobs := MobsForTranscription(content)
	if len(mobs) == 0 {
		ctx.log.Warn("no mobs found to transcribe, producing empty timeline")
		return timeline.New(""), nil
	}
	if len(mobs) > 1 {
		ctx.log.Warn("multiple candidate mobs, transcribing the first",
			logging.Args(logging.Int("skipped", len(mobs)-1))...)
	}

	tl, err := ctx.transcribeMob(mobs[0])
	if err != nil {
		return nil, err
	}

	FixTransitions(tl)

	if opts.AttachMarkers {
		AttachMarkers(tl, ctx.log)
	}
	return tl, nil
}

// scope is the graph context a component is transcribed in: the owning mob
// and slot plus the parent component chain back up to the slot segment.
type scope struct {
	mob      *aafmodel.Mob
	slot     *aafmodel.Slot
	parent   *aafmodel.Component
	editRate float64
}

func (sc scope) child(parent *aafmodel.Component) scope {
	next := sc
	next.parent = parent
	return next
}

func (c *Context) transcribeMob(mob *aafmodel.Mob) (*timeline.Timeline, error) {
	if cached, ok := c.cache[mob.ID]; ok {
		c.log.Debug("reusing transcribed mob",
			logging.Args(logging.String(logging.FieldMobID, string(mob.ID)))...)
		return cached, nil
	}

	switch mob.Kind {
	case aafmodel.MasterMob:
		return c.transcribeMasterMob(mob)
	case aafmodel.CompositionMob:
		return c.transcribeCompositionMob(mob)
	default:
		return nil, adapter.Wrap(adapter.ErrAdapter, "read", "mob",
			fmt.Sprintf("unexpected %s at transcription entry", mob.Kind), nil)
	}
}

func (c *Context) transcribeCompositionMob(mob *aafmodel.Mob) (*timeline.Timeline, error) {
	c.log.Debug("transcribing composition mob",
		logging.Args(logging.String(logging.FieldMobName, mob.Name))...)

	tl := timeline.New(normName(mob.Name))
	tl.EnsureMeta()[timeline.Namespace] = mobMetadata(mob)

	// Insert before recursing so reference cycles terminate at the cache.
	c.cache[mob.ID] = tl

	for _, slot := range mob.Slots {
		track, err := c.transcribeSlot(slot, mob)
		if err != nil {
			return nil, err
		}
		tl.Tracks.Append(track)
	}

	if tc := mobStartTimecode(mob); tc != nil {
		start := tc.Start
		tl.GlobalStart = &start
	}
	return tl, nil
}

func (c *Context) transcribeSlot(slot *aafmodel.Slot, mob *aafmodel.Mob) (*timeline.Track, error) {
	if slot.Kind == aafmodel.EventSlot {
		return c.transcribeEventSlot(slot, mob)
	}

	track := &timeline.Track{}
	track.Name = normName(slot.Name)
	track.EnsureMeta()[timeline.Namespace] = slotMetadata(slot)
	if slot.Segment != nil {
		track.Kind = timeline.KindFromMediaKind(slot.Segment.MediaKind)
	}

	sc := scope{mob: mob, slot: slot, editRate: slot.EditRate}
	item, marker, err := c.transcribeComponent(slot.Segment, sc)
	if err != nil {
		return nil, err
	}
	if marker != nil {
		track.Markers = append(track.Markers, marker)
	}
	track.Append(item)
	return track, nil
}

// transcribeEventSlot turns an event slot into a childless track carrying the
// slot's markers; the reattachment pass moves them to their real homes.
func (c *Context) transcribeEventSlot(slot *aafmodel.Slot, mob *aafmodel.Mob) (*timeline.Track, error) {
	track := &timeline.Track{}
	track.Name = normName(slot.Name)
	track.EnsureMeta()[timeline.Namespace] = slotMetadata(slot)

	sc := scope{mob: mob, slot: slot, editRate: slot.EditRate}
	for _, comp := range aafmodel.SegmentComponents(slot.Segment) {
		_, marker, err := c.transcribeComponent(comp, sc)
		if err != nil {
			return nil, err
		}
		if marker != nil {
			track.Markers = append(track.Markers, marker)
		}
	}
	return track, nil
}

// transcribeComponent dispatches over the closed component kind set. It
// returns at most one of (item, marker); unknown kinds return neither.
func (c *Context) transcribeComponent(comp *aafmodel.Component, sc scope) (timeline.Item, *timeline.Marker, error) {
	if comp == nil {
		return nil, nil, nil
	}

	var (
		item timeline.Item
		err  error
	)
	meta := componentMetadata(comp, c.opts.BakeKeyframedProperties)

	switch comp.Kind {
	case aafmodel.KindSourceClip:
		item, err = c.transcribeSourceClip(comp, sc)

	case aafmodel.KindSequence:
		item, err = c.transcribeSequence(comp, sc, meta)

	case aafmodel.KindOperationGroup:
		item, err = c.transcribeOperationGroup(comp, sc, meta)

	case aafmodel.KindTransition:
		item, err = c.transcribeTransition(comp, sc, meta)

	case aafmodel.KindFiller, aafmodel.KindScopeReference:
		item = gapOfLength(comp.Length, sc.editRate)

	case aafmodel.KindNestedScope:
		stack := &timeline.Stack{}
		for _, child := range comp.Children {
			childItem, _, childErr := c.transcribeComponent(child, sc.child(comp))
			if childErr != nil {
				return nil, nil, childErr
			}
			stack.Append(childItem)
		}
		item = stack

	case aafmodel.KindSelector:
		item, err = c.transcribeSelector(comp, sc, meta)

	case aafmodel.KindEssenceGroup:
		// Only the first resolvable choice survives.
		for _, choice := range comp.Children {
			childItem, _, childErr := c.transcribeComponent(choice, sc.child(comp))
			if childErr != nil {
				return nil, nil, childErr
			}
			if childItem != nil {
				item = childItem
				break
			}
		}

	case aafmodel.KindDescriptiveMarker:
		marker := c.transcribeDescriptiveMarker(comp, sc, meta)
		return nil, marker, nil

	case aafmodel.KindTimecode, aafmodel.KindEdgeCode, aafmodel.KindPulldown:
		// No tree structure.
		return nil, nil, nil

	default:
		c.log.Debug("skipping unrecognized component",
			logging.Args(logging.String("kind", comp.Kind.String()))...)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, nil
	}

	c.finishItem(item, comp, meta)
	if err := assertDeclaredLength(item, comp); err != nil {
		return nil, nil, err
	}
	return item, nil, nil
}

// finishItem applies the common post-processing: name fill and metadata
// attachment.
func (c *Context) finishItem(item timeline.Item, comp *aafmodel.Component, meta map[string]any) {
	base := item.Base()
	if base.Name == "" {
		base.Name = comp.Name
	}
	if base.Meta.AAF() == nil {
		base.EnsureMeta()[timeline.Namespace] = meta
	}
}

// assertDeclaredLength is the strict half of the lenient read: a transcribed
// item whose trimmed duration disagrees with the declared component length
// means the transcription itself is wrong.
func assertDeclaredLength(item timeline.Item, comp *aafmodel.Component) error {
	if comp.Length == 0 {
		return nil
	}
	base := item.Base()
	if base.SourceRange == nil {
		return nil
	}
	if base.SourceRange.Duration.Value != float64(comp.Length) {
		return adapter.Wrap(adapter.ErrAdapter, "read", comp.Kind.String(),
			fmt.Sprintf("wrong duration: produced %v, declared %d",
				base.SourceRange.Duration.Value, comp.Length), nil)
	}
	return nil
}

func (c *Context) transcribeSequence(comp *aafmodel.Component, sc scope, meta map[string]any) (timeline.Item, error) {
	track := &timeline.Track{}

	// A sequence nested below another sequence or scope is an addressable
	// track of its own; record its slot identity so markers can find it.
	if sc.parent != nil &&
		(sc.parent.Kind == aafmodel.KindSequence || sc.parent.Kind == aafmodel.KindNestedScope) {
		if sc.slot != nil {
			meta["SlotID"] = sc.slot.ID
		}
		for i, sibling := range sc.parent.Children {
			if sibling == comp {
				meta["PhysicalTrackNumber"] = i + 1
				break
			}
		}
	}

	for _, child := range comp.Children {
		item, marker, err := c.transcribeComponent(child, sc.child(comp))
		if err != nil {
			return nil, err
		}
		if marker != nil {
			track.Markers = append(track.Markers, marker)
		}
		track.Append(item)
	}
	return track, nil
}

func (c *Context) transcribeSelector(comp *aafmodel.Component, sc scope, meta map[string]any) (timeline.Item, error) {
	selected := comp.Selected

	// A Filler or ScopeReference in the selected position means the real
	// content is the (single) alternate, shown disabled.
	if selected != nil &&
		(selected.Kind == aafmodel.KindFiller || selected.Kind == aafmodel.KindScopeReference) {
		if len(comp.Alternates) != 1 {
			return nil, adapter.Wrap(adapter.ErrAdapter, "read", "selector",
				fmt.Sprintf("unexpected number of alternates: %d", len(comp.Alternates)), nil)
		}
		item, _, err := c.transcribeComponent(comp.Alternates[0], sc.child(comp))
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, adapter.Wrap(adapter.ErrAdapter, "read", "selector",
				"disabled alternate did not transcribe", nil)
		}
		item.Base().Disabled = true
		return item, nil
	}

	item, _, err := c.transcribeComponent(selected, sc.child(comp))
	if err != nil {
		return nil, err
	}
	if _, isGap := item.(*timeline.Gap); isGap || item == nil {
		return nil, adapter.Wrap(adapter.ErrAdapter, "read", "selector",
			"selected component did not produce content", nil)
	}

	// Alternates are parked in metadata, never in the live tree.
	if len(comp.Alternates) > 0 {
		alternates := make([]any, 0, len(comp.Alternates))
		for _, alt := range comp.Alternates {
			altItem, _, altErr := c.transcribeComponent(alt, sc.child(comp))
			if altErr != nil {
				return nil, altErr
			}
			if altItem != nil {
				alternates = append(alternates, map[string]any{
					"Name":   altItem.Base().Name,
					"Length": alt.Length,
				})
			}
		}
		meta["alternates"] = alternates
	}
	return item, nil
}

func gapOfLength(length int64, editRate float64) *timeline.Gap {
	gap := &timeline.Gap{}
	sr := opentime.NewRange(
		opentime.New(0, editRate),
		opentime.FromFrames(length, editRate),
	)
	gap.SourceRange = &sr
	return gap
}

