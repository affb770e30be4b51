package aafmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// Props is a free-form property bag attached to graph objects. Values must
// stay JSON-serializable so the container store can persist them.
type Props map[string]any

// Clone deep-copies the bag.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = clonePropValue(v)
	}
	return out
}

func clonePropValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = clonePropValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = clonePropValue(child)
		}
		return out
	default:
		return v
	}
}

// ComponentKind enumerates the closed set of segment-tree node variants.
type ComponentKind int

const (
	KindSourceClip ComponentKind = iota
	KindSequence
	KindOperationGroup
	KindTransition
	KindFiller
	KindNestedScope
	KindScopeReference
	KindTimecode
	KindEdgeCode
	KindPulldown
	KindDescriptiveMarker
	KindSelector
	KindEssenceGroup
)

func (k ComponentKind) String() string {
	switch k {
	case KindSourceClip:
		return "SourceClip"
	case KindSequence:
		return "Sequence"
	case KindOperationGroup:
		return "OperationGroup"
	case KindTransition:
		return "Transition"
	case KindFiller:
		return "Filler"
	case KindNestedScope:
		return "NestedScope"
	case KindScopeReference:
		return "ScopeReference"
	case KindTimecode:
		return "Timecode"
	case KindEdgeCode:
		return "EdgeCode"
	case KindPulldown:
		return "Pulldown"
	case KindDescriptiveMarker:
		return "DescriptiveMarker"
	case KindSelector:
		return "Selector"
	case KindEssenceGroup:
		return "EssenceGroup"
	default:
		return "<unknown component>"
	}
}

// OperationDef describes the operation applied by an OperationGroup or a
// Transition's embedded group.
type OperationDef struct {
	Identification string `json:"identification,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	IsTimeWarp     bool   `json:"is_time_warp,omitempty"`
	Bypass         int    `json:"bypass,omitempty"`
	NumberInputs   int    `json:"number_inputs,omitempty"`
	Category       string `json:"category,omitempty"`
	DataDef        string `json:"data_def,omitempty"`
}

// ControlPoint is one keyframe of a varying parameter. Time and Value are
// rational strings ("99/100") or plain decimal strings.
type ControlPoint struct {
	Time     string `json:"time"`
	Value    string `json:"value"`
	Source   int    `json:"source,omitempty"`
	EditHint string `json:"edit_hint,omitempty"`
}

// TimeFloat parses the control point's time coordinate.
func (p ControlPoint) TimeFloat() (float64, error) { return ParseRational(p.Time) }

// ValueFloat parses the control point's value coordinate.
func (p ControlPoint) ValueFloat() (float64, error) { return ParseRational(p.Value) }

// ParseRational parses "n/d" fractions and plain decimal strings.
func ParseRational(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("parse rational %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return 0, fmt.Errorf("parse rational %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("parse rational %q: zero denominator", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rational %q: %w", s, err)
	}
	return v, nil
}

// Parameter is a named effect parameter, either a constant Value or a
// keyframed point list with an interpolation tag.
type Parameter struct {
	Name          string         `json:"name"`
	Interpolation string         `json:"interpolation,omitempty"`
	Value         any            `json:"value,omitempty"`
	Points        []ControlPoint `json:"points,omitempty"`
}

// RGBColor is a 16-bit-per-channel marker color record.
type RGBColor struct {
	Red   uint32 `json:"red"`
	Green uint32 `json:"green"`
	Blue  uint32 `json:"blue"`
}

// Component is one node of the segment tree inside a slot. Kind selects
// which fields are meaningful:
//
//	SourceClip        Start, Length, RefMob, RefSlot
//	Sequence          Children (ordered)
//	OperationGroup    Operation, Parameters, Children (input segments)
//	Transition        Length, CutPoint, OpGroup
//	Filler/ScopeRef   Length
//	NestedScope       Children (parallel slots)
//	Selector          Selected, Alternates
//	EssenceGroup      Children (choices)
//	DescriptiveMarker Position, Length, Comment, DescribedSlots, color fields
//	Timecode          Start, Length, FPS, Drop
//	EdgeCode/Pulldown Length (no tree structure)
type Component struct {
	Kind      ComponentKind `json:"kind"`
	Name      string        `json:"name,omitempty"`
	MediaKind string        `json:"media_kind,omitempty"`
	Length    int64         `json:"length,omitempty"`

	// SourceClip / Timecode
	Start   int64 `json:"start,omitempty"`
	RefMob  MobID `json:"ref_mob,omitempty"`
	RefSlot int   `json:"ref_slot,omitempty"`
	FPS     int   `json:"fps,omitempty"`
	Drop    bool  `json:"drop,omitempty"`

	// Sequence / OperationGroup / NestedScope / EssenceGroup
	Children []*Component `json:"children,omitempty"`

	// OperationGroup
	Operation  *OperationDef `json:"operation,omitempty"`
	Parameters []*Parameter  `json:"parameters,omitempty"`

	// Transition
	CutPoint int64      `json:"cut_point,omitempty"`
	OpGroup  *Component `json:"op_group,omitempty"`

	// Selector
	Selected   *Component   `json:"selected,omitempty"`
	Alternates []*Component `json:"alternates,omitempty"`

	// DescriptiveMarker
	Position       int64     `json:"position,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	DescribedSlots []int     `json:"described_slots,omitempty"`
	ColorName      string    `json:"color_name,omitempty"`
	ColorRGB       *RGBColor `json:"color_rgb,omitempty"`
	// NullLength distinguishes "length property present but null" from zero.
	NullLength bool `json:"null_length,omitempty"`

	Props Props `json:"props,omitempty"`
}

// Parameter returns the named parameter of an OperationGroup, or nil.
func (c *Component) Parameter(name string) *Parameter {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SourceClipIn returns the first SourceClip at the top level of a slot
// segment, unwrapping a Sequence wrapper when present.
func SourceClipIn(segment *Component) *Component {
	return componentIn(segment, KindSourceClip)
}

// TimecodeIn returns the first Timecode at the top level of a slot segment.
func TimecodeIn(segment *Component) *Component {
	return componentIn(segment, KindTimecode)
}

func componentIn(segment *Component, kind ComponentKind) *Component {
	if segment == nil {
		return nil
	}
	if segment.Kind == kind {
		return segment
	}
	if segment.Kind == KindSequence {
		for _, child := range segment.Children {
			if child.Kind == kind {
				return child
			}
		}
	}
	return nil
}

// SegmentComponents flattens a slot segment into its ordered top-level
// components, unwrapping a Sequence wrapper.
func SegmentComponents(segment *Component) []*Component {
	if segment == nil {
		return nil
	}
	if segment.Kind == KindSequence {
		return segment.Children
	}
	return []*Component{segment}
}
