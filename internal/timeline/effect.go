package timeline

// EffectKind classifies an effect attached to an item.
type EffectKind int

const (
	// EffectOpaque is an effect with no recognized structure; it is carried
	// through conversions untouched.
	EffectOpaque EffectKind = iota
	// EffectTimeWarp is a time effect the adapter cannot express as a single
	// scalar (nonlinear speed maps and friends). TimeScalar is unset.
	EffectTimeWarp
	// EffectLinearTimeWarp retimes its item by a constant TimeScalar.
	EffectLinearTimeWarp
	// EffectFreezeFrame holds a single frame; it is the distinct zero-scalar
	// variant of a linear time warp.
	EffectFreezeFrame
)

func (k EffectKind) String() string {
	switch k {
	case EffectOpaque:
		return "Effect"
	case EffectTimeWarp:
		return "TimeEffect"
	case EffectLinearTimeWarp:
		return "LinearTimeWarp"
	case EffectFreezeFrame:
		return "FreezeFrame"
	default:
		return "<unknown effect>"
	}
}

// Effect is a speed/time-warp classification or an opaque passthrough.
type Effect struct {
	Kind       EffectKind
	Name       string
	EffectName string
	// TimeScalar is meaningful for EffectLinearTimeWarp only; a freeze frame
	// is represented by the dedicated kind, never by a zero scalar.
	TimeScalar float64
	Meta       Metadata
}

// IsTimeWarp reports whether the effect retimes its item.
func (e *Effect) IsTimeWarp() bool {
	switch e.Kind {
	case EffectTimeWarp, EffectLinearTimeWarp, EffectFreezeFrame:
		return true
	default:
		return false
	}
}

// EnsureMeta returns the effect's metadata bag, allocating it on first use.
func (e *Effect) EnsureMeta() Metadata {
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	return e.Meta
}

// Clone deep-copies the effect.
func (e *Effect) Clone() *Effect {
	return &Effect{
		Kind:       e.Kind,
		Name:       e.Name,
		EffectName: e.EffectName,
		TimeScalar: e.TimeScalar,
		Meta:       e.Meta.Clone(),
	}
}
