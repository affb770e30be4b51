package writer

import (
	"fmt"

	"bobbin/internal/aafmodel"
	"bobbin/internal/logging"
	"bobbin/internal/timeline"
)

// transition converts a dissolve back into a transition component with its
// operation group. Anything but an SMPTE dissolve is dropped with a
// warning; the neighboring clips already carry the full media.
func (t *trackTranscriber) transition(node *timeline.Transition) (*aafmodel.Component, error) {
	if node.TransitionType != timeline.TransitionTypeSMPTEDissolve {
		t.log.Warn("dropping unsupported transition type",
			logging.Args(logging.String("type", string(node.TransitionType)))...)
		return nil, nil
	}

	dict := t.root.file.Dictionary
	dict.RegisterInterpolation(aafmodel.InterpolationDef{
		Identification: interpolationDefLinearID,
		Name:           "LinearInterp",
		Description:    "Linear keyframe interpolation",
	})

	meta := node.Meta.AAF()
	length := int64(node.Duration().Value)

	opGroup := &aafmodel.Component{
		Kind:       aafmodel.KindOperationGroup,
		MediaKind:  t.mediaKind,
		Length:     length,
		Operation:  t.transitionOperation(meta),
		Parameters: []*aafmodel.Parameter{t.transitionLevel(meta)},
	}

	cutPoint, _ := metaInt(meta["CutPoint"])
	return &aafmodel.Component{
		Kind:      aafmodel.KindTransition,
		MediaKind: t.mediaKind,
		Length:    length,
		CutPoint:  int64(cutPoint),
		OpGroup:   opGroup,
	}, nil
}

// transitionOperation registers and returns the dissolve's operation
// definition from the round-trip metadata the pre-write check validated.
func (t *trackTranscriber) transitionOperation(meta map[string]any) *aafmodel.OperationDef {
	group, _ := meta["OperationGroup"].(map[string]any)
	opMeta, _ := group["Operation"].(map[string]any)

	bypass, _ := metaInt(opMeta["Bypass"])
	inputs, _ := metaInt(opMeta["NumberInputs"])
	isTimeWarp, _ := opMeta["IsTimeWarp"].(bool)
	def := aafmodel.OperationDef{
		Identification: fmt.Sprint(opMeta["Identification"]),
		Name:           fmt.Sprint(opMeta["Name"]),
		Description:    fmt.Sprint(opMeta["Description"]),
		IsTimeWarp:     isTimeWarp,
		Bypass:         bypass,
		NumberInputs:   inputs,
		Category:       fmt.Sprint(opMeta["OperationCategory"]),
		DataDef:        t.mediaKind,
	}
	t.root.file.Dictionary.RegisterOperation(def)
	return &def
}

// transitionLevel builds the dissolve's level curve. Video dissolves ramp
// foreground opacity; audio dissolves ramp level. The first and last
// recorded keyframes define the ramp.
func (t *trackTranscriber) transitionLevel(meta map[string]any) *aafmodel.Parameter {
	dict := t.root.file.Dictionary

	var name string
	if t.track.Kind == timeline.KindVideo {
		dict.RegisterParameter(aafmodel.ParameterDef{
			Identification: paramDefAvidByteOrderID,
			Name:           "AvidParameterByteOrder",
			TypeName:       "aafUInt16",
		})
		dict.RegisterParameter(aafmodel.ParameterDef{
			Identification: paramDefAvidEffectID,
			Name:           "AvidEffectID",
			TypeName:       "AvidBagOfBits",
		})
		dict.RegisterParameter(aafmodel.ParameterDef{
			Identification: paramDefOpacityID,
			Name:           "AFX_FG_KEY_OPACITY_U",
			Description:    "Foreground Key Opacity",
			TypeName:       "Rational",
		})
		name = "AFX_FG_KEY_OPACITY_U"
	} else {
		dict.RegisterParameter(aafmodel.ParameterDef{
			Identification: paramDefLevelID,
			Name:           "ParameterDef_Level",
			TypeName:       "Rational",
		})
		name = "ParameterDef_Level"
	}

	level := &aafmodel.Parameter{Name: name, Interpolation: "LinearInterp"}
	points, _ := meta["PointList"].([]any)
	for i, entry := range points {
		if i > 0 && i < len(points)-1 {
			continue
		}
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		level.Points = append(level.Points, aafmodel.ControlPoint{
			Time:     fmt.Sprint(m["Time"]),
			Value:    fmt.Sprint(m["Value"]),
			EditHint: "Proportional",
		})
	}
	return level
}
