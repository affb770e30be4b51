package aafmodel

// Clone deep-copies the parameter and its point list.
func (p *Parameter) Clone() *Parameter {
	if p == nil {
		return nil
	}
	out := *p
	out.Points = append([]ControlPoint(nil), p.Points...)
	return &out
}

// Clone deep-copies the component tree.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := *c
	out.Props = c.Props.Clone()
	if c.Operation != nil {
		op := *c.Operation
		out.Operation = &op
	}
	if c.ColorRGB != nil {
		rgb := *c.ColorRGB
		out.ColorRGB = &rgb
	}
	out.Parameters = make([]*Parameter, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		out.Parameters = append(out.Parameters, p.Clone())
	}
	out.Children = cloneComponents(c.Children)
	out.Alternates = cloneComponents(c.Alternates)
	out.Selected = c.Selected.Clone()
	out.OpGroup = c.OpGroup.Clone()
	out.DescribedSlots = append([]int(nil), c.DescribedSlots...)
	return &out
}

func cloneComponents(in []*Component) []*Component {
	if in == nil {
		return nil
	}
	out := make([]*Component, 0, len(in))
	for _, c := range in {
		out = append(out, c.Clone())
	}
	return out
}

// Clone deep-copies the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	out.Locators = append([]Locator(nil), d.Locators...)
	out.Props = d.Props.Clone()
	return &out
}

// Clone deep-copies the slot and its segment.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	out := *s
	out.Segment = s.Segment.Clone()
	out.Props = s.Props.Clone()
	return &out
}

// Clone deep-copies the mob, keeping its identity.
func (m *Mob) Clone() *Mob {
	if m == nil {
		return nil
	}
	out := *m
	out.Slots = make([]*Slot, 0, len(m.Slots))
	for _, slot := range m.Slots {
		out.Slots = append(out.Slots, slot.Clone())
	}
	out.Comments = Props(m.Comments).Clone()
	out.Attributes = Props(m.Attributes).Clone()
	out.Descriptor = m.Descriptor.Clone()
	out.Props = m.Props.Clone()
	return &out
}

// Clone copies the essence payload.
func (e *EssenceData) Clone() *EssenceData {
	if e == nil {
		return nil
	}
	return &EssenceData{MobID: e.MobID, Data: append([]byte(nil), e.Data...)}
}
