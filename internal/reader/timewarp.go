package reader

import (
	"fmt"

	"bobbin/internal/aafmodel"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

const (
	motionControlName = "Motion Control"
	speedOffsetMap    = "PARAM_SPEED_OFFSET_MAP_U"
	speedRatioName    = "SpeedRatio"
)

// transcribeOperationGroup wraps the group's input segments in a Stack and
// classifies the operation into an effect attached to it.
func (c *Context) transcribeOperationGroup(comp *aafmodel.Component, sc scope, meta map[string]any) (timeline.Item, error) {
	stack := &timeline.Stack{}
	if comp.Operation != nil {
		stack.Name = comp.Operation.Name
	}

	// Trust the length declared on the group.
	sr := opentime.NewRange(
		opentime.New(0, sc.editRate),
		opentime.FromFrames(comp.Length, sc.editRate),
	)
	stack.SourceRange = &sr

	effect, err := c.classifyOperation(comp)
	if err != nil {
		return nil, err
	}
	if effect != nil {
		effect.EnsureMeta()[timeline.Namespace] = map[string]any{
			"Operation":  meta["Operation"],
			"Parameters": meta["Parameters"],
		}
		stack.Effects = append(stack.Effects, effect)
	}

	for _, segment := range comp.Children {
		item, _, childErr := c.transcribeComponent(segment, sc.child(comp))
		if childErr != nil {
			return nil, childErr
		}
		stack.Append(item)
	}
	return stack, nil
}

// classifyOperation maps an operation onto the effect taxonomy. Motion
// Control with a linear offset map classifies as a time warp; everything else
// passes through opaquely.
func (c *Context) classifyOperation(comp *aafmodel.Component) (*timeline.Effect, error) {
	op := comp.Operation
	if op == nil {
		return nil, nil
	}

	if !op.IsTimeWarp {
		return &timeline.Effect{Kind: timeline.EffectOpaque, Name: op.Name}, nil
	}
	if op.Name != motionControlName {
		return &timeline.Effect{Kind: timeline.EffectTimeWarp, Name: op.Name}, nil
	}

	offsetMap := comp.Parameter(speedOffsetMap)
	if offsetMap == nil || offsetMap.Interpolation != "LinearInterp" {
		return fancyTimeWarp(comp), nil
	}
	return c.linearTimeWarp(comp, offsetMap)
}

// linearTimeWarp derives the time scalar. Two control points anchored at the
// origin give the slope directly; the recorded speed ratio is only a
// fallback because real files often carry a wrong one.
func (c *Context) linearTimeWarp(comp *aafmodel.Component, offsetMap *aafmodel.Parameter) (*timeline.Effect, error) {
	points := offsetMap.Points

	var scalar float64
	switch {
	case len(points) > 2:
		return fancyTimeWarp(comp), nil

	case len(points) == 2 && pointAtOrigin(points[0]):
		t1, err := points[1].TimeFloat()
		if err != nil {
			return nil, err
		}
		v1, err := points[1].ValueFloat()
		if err != nil {
			return nil, err
		}
		if t1 == 0 {
			return fancyTimeWarp(comp), nil
		}
		scalar = v1 / t1

	default:
		ratioParam := comp.Parameter(speedRatioName)
		if ratioParam == nil {
			return fancyTimeWarp(comp), nil
		}
		ratio := fmt.Sprint(ratioParam.Value)

		switch {
		case ratio == fmt.Sprint(comp.Length):
			// The ratio matching the length is how a freeze frame is spelled.
			scalar = 0
		default:
			value, err := aafmodel.ParseRational(ratio)
			if err != nil {
				return nil, err
			}
			if value == 0 {
				return fancyTimeWarp(comp), nil
			}
			// The tree model's scalar is the reciprocal of the stored ratio.
			scalar = 1 / value
		}
	}

	if scalar == 0 {
		return &timeline.Effect{Kind: timeline.EffectFreezeFrame}, nil
	}
	return &timeline.Effect{Kind: timeline.EffectLinearTimeWarp, TimeScalar: scalar}, nil
}

// fancyTimeWarp is the unsupported many-point speed map: carried through as
// an opaque time effect with no scalar.
func fancyTimeWarp(comp *aafmodel.Component) *timeline.Effect {
	return &timeline.Effect{Kind: timeline.EffectTimeWarp, Name: comp.Name}
}

func pointAtOrigin(p aafmodel.ControlPoint) bool {
	t, err1 := p.TimeFloat()
	v, err2 := p.ValueFloat()
	return err1 == nil && err2 == nil && t == 0 && v == 0
}
