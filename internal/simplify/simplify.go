package simplify

import (
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// place records where an item sits relative to the timeline root. The
// top-level tracks directly under the root stack are protected from the
// redundant-container collapse so the timeline always keeps its track layer.
type place int

const (
	placeNested place = iota
	placeRoot
	placeTopLevel
)

// Simplify reduces the timeline's tree in place and returns it. The root
// stack is only replaced when simplification of the whole tree yields another
// stack; otherwise the in-place simplified children stand.
func Simplify(tl *timeline.Timeline) *timeline.Timeline {
	if tl == nil || tl.Tracks == nil {
		return tl
	}
	if result, ok := simplifyItem(tl.Tracks, placeRoot).(*timeline.Stack); ok {
		tl.Tracks = result
	}
	return tl
}

func simplifyItem(item timeline.Item, pl place) timeline.Item {
	childPlace := placeNested
	if pl == placeRoot {
		childPlace = placeTopLevel
	}

	switch node := item.(type) {
	case *timeline.Track:
		for i, child := range node.Children {
			node.Children[i] = simplifyItem(child, childPlace)
		}
		flattenTrackChildren(node)
		if result, ok := collapseRedundant(node, pl); ok {
			return result
		}

	case *timeline.Stack:
		for i, child := range node.Children {
			node.Children[i] = simplifyItem(child, childPlace)
		}
		dropWorthlessChildren(node)
		flattenStackChildren(node)
		ensureStackTracks(node)
		trimStackTracks(node)
		if result, ok := collapseRedundant(node, pl); ok {
			return result
		}
		// Every direct child of the root must be a track.
		if pl == placeRoot {
			ensureStackTracks(node)
		}
	}
	return item
}

// flattenTrackChildren splices flattenable child tracks into their parent,
// re-examining spliced content so nested wrappers collapse in one pass.
func flattenTrackChildren(track *timeline.Track) {
	c := len(track.Children) - 1
	for c >= 0 {
		child, ok := track.Children[c].(*timeline.Track)
		if !ok || !trackItemCanFlatten(child) {
			c--
			continue
		}

		if child.SourceRange != nil {
			child = timeline.TrackTrimmedToRange(child, *child.SourceRange)
		}

		children := append([]timeline.Item(nil), child.Children...)
		if len(children) == 1 {
			first := children[0]
			base := first.Base()
			base.Effects = append(base.Effects, child.Effects...)

			// A time effect changes the item's own duration; keep the
			// wrapper's declared duration when the wrapper goes away.
			if base.HasTimeEffect() {
				fixTimeEffectDuration(first, child.SourceRange)
			}
		}

		num := len(children)
		track.Children = splice(track.Children, c, children)
		track.Markers = append(track.Markers, child.Markers...)
		track.Disabled = track.Disabled || child.Disabled

		c = c + num - 1
	}
}

func trackItemCanFlatten(track *timeline.Track) bool {
	if valuableMetadata(track) {
		return false
	}
	if len(track.Children) == 1 {
		return true
	}
	if track.HasEffects() || hasTransitions(track) {
		return false
	}
	return true
}

// dropWorthlessChildren removes stack children that hold nothing but gaps and
// empty containers.
func dropWorthlessChildren(stack *timeline.Stack) {
	for i := len(stack.Children) - 1; i >= 0; i-- {
		if !containsSomethingValuable(stack.Children[i]) {
			stack.Children = append(stack.Children[:i], stack.Children[i+1:]...)
		}
	}
}

// flattenStackChildren splices child stacks (and single-track wrappers around
// stacks) into their parent stack.
func flattenStackChildren(stack *timeline.Stack) {
	c := len(stack.Children) - 1
	for c >= 0 {
		inner, ok := stackFlattenTarget(stack.Children[c])
		if ok {
			num := len(inner.Children)
			stack.Children = splice(stack.Children, c, inner.Children)
			stack.Markers = append(stack.Markers, inner.Markers...)
			stack.Disabled = stack.Disabled || inner.Disabled
			c = c + num
		}
		c--
	}
}

// stackFlattenTarget returns the stack to splice when the child is a plain
// stack, or a single-child track wrapping one. Effects or identity metadata
// on either level block the flatten.
func stackFlattenTarget(item timeline.Item) (*timeline.Stack, bool) {
	if item.Base().HasEffects() || valuableMetadata(item) {
		return nil, false
	}
	switch node := item.(type) {
	case *timeline.Stack:
		return node, true
	case *timeline.Track:
		if len(node.Children) != 1 {
			return nil, false
		}
		inner, ok := node.Children[0].(*timeline.Stack)
		if !ok || inner.HasEffects() || valuableMetadata(inner) {
			return nil, false
		}
		return inner, true
	}
	return nil, false
}

// ensureStackTracks wraps non-track stack children in a track, carrying the
// child's recorded media kind onto the wrapper.
func ensureStackTracks(stack *timeline.Stack) {
	for i, child := range stack.Children {
		if _, ok := child.(*timeline.Track); ok {
			continue
		}
		wrapper := &timeline.Track{}
		if kind, ok := child.Base().Meta.AAF()["MediaKind"].(string); ok {
			wrapper.Kind = timeline.KindFromMediaKind(kind)
		}
		wrapper.Name = child.Base().Name
		wrapper.Append(child)
		stack.Children[i] = wrapper
	}
}

// trimStackTracks cuts a trimmed stack's tracks down to the stack's source
// range, then rebases the range at zero. Transitions anywhere in the stack
// make the trim unsafe, so it is skipped.
func trimStackTracks(stack *timeline.Stack) {
	if stack.SourceRange == nil || hasTransitions(stack) {
		return
	}
	for i, child := range stack.Children {
		track, ok := child.(*timeline.Track)
		if !ok {
			continue
		}
		trimmed := timeline.TrackTrimmedToRange(track, *stack.SourceRange)
		for _, sub := range trimmed.Children {
			trimMarkers(sub)
		}
		stack.Children[i] = trimmed
	}
	duration := stack.SourceRange.Duration
	rebased := opentime.NewRange(opentime.New(0, duration.Rate), duration)
	stack.SourceRange = &rebased
}

// trimMarkers drops markers whose start no longer falls inside the item's
// trimmed range.
func trimMarkers(item timeline.Item) {
	base := item.Base()
	if base.SourceRange == nil {
		return
	}
	kept := base.Markers[:0]
	for _, marker := range base.Markers {
		if base.SourceRange.Contains(marker.MarkedRange.Start) {
			kept = append(kept, marker)
		}
	}
	base.Markers = kept
}

// fixTimeEffectDuration keeps the discarded wrapper's declared duration on
// the retimed item.
func fixTimeEffectDuration(item timeline.Item, sr *opentime.TimeRange) {
	if sr == nil {
		return
	}
	base := item.Base()
	if base.SourceRange == nil {
		return
	}
	fixed := opentime.NewRange(base.SourceRange.Start, sr.Duration)
	base.SourceRange = &fixed
}

// collapseRedundant replaces a single-child container carrying nothing of its
// own with (a copy of) that child. Top-level tracks survive unless their only
// child is itself a track.
func collapseRedundant(comp timeline.Item, pl place) (timeline.Item, bool) {
	children := compositeChildren(comp)
	if len(children) != 1 || valuableMetadata(comp) {
		return nil, false
	}

	_, isTrack := comp.(*timeline.Track)
	_, childIsTrack := children[0].(*timeline.Track)
	if isTrack && pl == placeTopLevel && !childIsTrack {
		return nil, false
	}

	result := children[0].Clone()
	base := comp.Base()
	rb := result.Base()

	if base.Disabled {
		rb.Disabled = true
	}
	rb.Markers = append(rb.Markers, base.Markers...)
	rb.Effects = append(rb.Effects, base.Effects...)

	// The parent's trim wins; the child's start offsets into it.
	if base.SourceRange != nil {
		sr := rb.SourceRange
		if sr == nil {
			if tr, ok := timeline.TrimmedRange(result); ok {
				sr = &tr
			} else {
				cp := *base.SourceRange
				rb.SourceRange = &cp
			}
		}
		if sr != nil {
			merged := opentime.NewRange(
				sr.Start.Add(base.SourceRange.Start),
				base.SourceRange.Duration,
			)
			rb.SourceRange = &merged
		}
	}
	return result, true
}

// valuableMetadata reports whether the item carries composition identity
// worth keeping a container for.
func valuableMetadata(item timeline.Item) bool {
	meta := item.Base().Meta.AAF()
	if meta == nil || meta["ClassName"] != "CompositionMob" {
		return false
	}
	comments, ok := meta["UserComments"].(map[string]any)
	return ok && len(comments) > 0
}

// containsSomethingValuable reports whether the subtree holds anything beyond
// gaps and empty containers.
func containsSomethingValuable(item timeline.Item) bool {
	base := item.Base()
	if len(base.Effects) > 0 || len(base.Markers) > 0 {
		return true
	}
	if valuableMetadata(item) {
		return true
	}

	switch item.(type) {
	case *timeline.Stack, *timeline.Track:
		children := compositeChildren(item)
		if len(children) == 0 {
			return false
		}
		for _, child := range children {
			if containsSomethingValuable(child) {
				return true
			}
		}
		return false
	case *timeline.Gap:
		return false
	}
	return true
}

// hasTransitions reports whether any direct child row of the item holds a
// transition among its own children.
func hasTransitions(item timeline.Item) bool {
	rows := compositeChildren(item)
	if _, ok := item.(*timeline.Track); ok {
		rows = []timeline.Item{item}
	}
	for _, row := range rows {
		for _, sub := range compositeChildren(row) {
			if _, ok := sub.(*timeline.Transition); ok {
				return true
			}
		}
	}
	return false
}

func compositeChildren(item timeline.Item) []timeline.Item {
	switch node := item.(type) {
	case *timeline.Stack:
		return node.Children
	case *timeline.Track:
		return node.Children
	}
	return nil
}

func splice(items []timeline.Item, at int, repl []timeline.Item) []timeline.Item {
	out := make([]timeline.Item, 0, len(items)-1+len(repl))
	out = append(out, items[:at]...)
	out = append(out, repl...)
	out = append(out, items[at+1:]...)
	return out
}
