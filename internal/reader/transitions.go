package reader

import (
	"bobbin/internal/aafmodel"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// transcribeTransition converts a Transition component. The cut point splits
// the declared length into the in/out offsets; the embedded operation group's
// parameters and point list are kept in metadata for the return trip.
func (c *Context) transcribeTransition(comp *aafmodel.Component, sc scope, meta map[string]any) (timeline.Item, error) {
	transition := &timeline.Transition{TransitionType: timeline.TransitionTypeSMPTEDissolve}

	if comp.OpGroup != nil {
		opMeta := componentMetadata(comp.OpGroup, false)
		meta["OperationGroup"] = map[string]any{
			"Operation":  opMeta["Operation"],
			"Parameters": opMeta["Parameters"],
		}
		if varying := varyingParameter(comp.OpGroup); varying != nil {
			points := make([]any, 0, len(varying.Points))
			for _, cp := range varying.Points {
				points = append(points, map[string]any{
					"Value": cp.Value,
					"Time":  cp.Time,
				})
			}
			meta["PointList"] = points
		}
	}

	inOffset := comp.CutPoint
	outOffset := comp.Length - inOffset
	transition.InOffset = opentime.FromFrames(inOffset, sc.editRate)
	transition.OutOffset = opentime.FromFrames(outOffset, sc.editRate)
	return transition, nil
}

// varyingParameter returns the group's first keyframed parameter, or nil.
func varyingParameter(group *aafmodel.Component) *aafmodel.Parameter {
	for _, p := range group.Parameters {
		if len(p.Points) > 0 {
			return p
		}
	}
	return nil
}

// FixTransitions reconciles the two overlap models: the graph encodes a
// transition as overlapping its neighbors, the tree as a zero-footprint item
// between trimmed neighbors. Runs once over the whole tree after read.
func FixTransitions(tl *timeline.Timeline) {
	if tl == nil || tl.Tracks == nil {
		return
	}
	fixTransitionsIn(tl.Tracks)
}

func fixTransitionsIn(item timeline.Item) {
	track, isTrack := item.(*timeline.Track)
	if isTrack {
		for i, child := range track.Children {
			if _, ok := child.(*timeline.Transition); ok {
				continue
			}
			base := child.Base()

			if i > 0 {
				if pre, ok := track.Children[i-1].(*timeline.Transition); ok {
					sr := ensureSourceRange(child)
					trimmed := opentime.NewRange(
						sr.Start.Add(pre.InOffset),
						sr.Duration.Sub(pre.InOffset),
					)
					base.SourceRange = &trimmed
				}
			}
			if i < len(track.Children)-1 {
				if post, ok := track.Children[i+1].(*timeline.Transition); ok {
					sr := ensureSourceRange(child)
					trimmed := opentime.NewRange(
						sr.Start,
						sr.Duration.Sub(post.OutOffset),
					)
					base.SourceRange = &trimmed
				}
			}
		}
	}

	switch node := item.(type) {
	case *timeline.Stack:
		for _, child := range node.Children {
			fixTransitionsIn(child)
		}
	case *timeline.Track:
		for _, child := range node.Children {
			fixTransitionsIn(child)
		}
	}
}

func ensureSourceRange(item timeline.Item) opentime.TimeRange {
	base := item.Base()
	if base.SourceRange != nil {
		return *base.SourceRange
	}
	d := item.Duration()
	sr := opentime.NewRange(opentime.New(0, d.Rate), d)
	base.SourceRange = &sr
	return sr
}
