package timeline

import "bobbin/internal/opentime"

// ItemBase carries the state shared by every tree item. The zero value is an
// enabled, unnamed item with no trim and no metadata.
type ItemBase struct {
	Name        string
	Disabled    bool
	SourceRange *opentime.TimeRange
	Markers     []*Marker
	Effects     []*Effect
	Meta        Metadata
}

// Item is implemented by every node that can appear in a composition.
type Item interface {
	// Base exposes the shared item state for generic passes.
	Base() *ItemBase
	// Duration is the item's trimmed duration.
	Duration() opentime.RationalTime
	// Clone deep-copies the item and its children.
	Clone() Item
}

// Base returns the shared state; it makes any embedding type an Item.
func (b *ItemBase) Base() *ItemBase { return b }

// EnsureMeta returns the metadata bag, allocating it on first use.
func (b *ItemBase) EnsureMeta() Metadata {
	if b.Meta == nil {
		b.Meta = Metadata{}
	}
	return b.Meta
}

// HasEffects reports whether the item carries any effects.
func (b *ItemBase) HasEffects() bool { return len(b.Effects) > 0 }

// HasTimeEffect reports whether any attached effect retimes the item.
func (b *ItemBase) HasTimeEffect() bool {
	for _, effect := range b.Effects {
		if effect.IsTimeWarp() {
			return true
		}
	}
	return false
}

func (b *ItemBase) cloneInto(dst *ItemBase) {
	dst.Name = b.Name
	dst.Disabled = b.Disabled
	if b.SourceRange != nil {
		sr := *b.SourceRange
		dst.SourceRange = &sr
	}
	dst.Markers = make([]*Marker, 0, len(b.Markers))
	for _, m := range b.Markers {
		dst.Markers = append(dst.Markers, m.Clone())
	}
	dst.Effects = make([]*Effect, 0, len(b.Effects))
	for _, e := range b.Effects {
		dst.Effects = append(dst.Effects, e.Clone())
	}
	dst.Meta = b.Meta.Clone()
}
