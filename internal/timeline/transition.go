package timeline

import "bobbin/internal/opentime"

// TransitionTypeSMPTEDissolve is the only transition type the graph model
// expresses.
const TransitionTypeSMPTEDissolve = "SMPTE_Dissolve"

// Transition overlaps its flanking siblings by InOffset before the cut and
// OutOffset after it. It occupies no footprint of its own in track timing.
type Transition struct {
	ItemBase
	TransitionType string
	InOffset       opentime.RationalTime
	OutOffset      opentime.RationalTime
}

// Duration is the total overlapped span, in + out.
func (t *Transition) Duration() opentime.RationalTime {
	return t.InOffset.Add(t.OutOffset)
}

// Clone deep-copies the transition.
func (t *Transition) Clone() Item {
	out := &Transition{
		TransitionType: t.TransitionType,
		InOffset:       t.InOffset,
		OutOffset:      t.OutOffset,
	}
	t.ItemBase.cloneInto(&out.ItemBase)
	return out
}
