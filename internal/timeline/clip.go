package timeline

import "bobbin/internal/opentime"

// DefaultMediaKey names the active media reference on a clip unless the
// source container recorded something more specific.
const DefaultMediaKey = "DEFAULT_MEDIA"

// MediaReference points a clip at its media. An empty TargetURL marks a
// missing reference (media known to exist but not locatable). A non-empty
// GeneratorKind marks synthesized media with no location at all, such as a
// slug.
type MediaReference struct {
	Name           string
	TargetURL      string
	GeneratorKind  string
	AvailableRange *opentime.TimeRange
	Meta           Metadata
}

// Missing reports whether the reference has no resolvable location.
func (r *MediaReference) Missing() bool { return r.TargetURL == "" }

// IsGenerator reports whether the reference synthesizes its media.
func (r *MediaReference) IsGenerator() bool { return r.GeneratorKind != "" }

// EnsureMeta returns the reference's metadata bag, allocating on first use.
func (r *MediaReference) EnsureMeta() Metadata {
	if r.Meta == nil {
		r.Meta = Metadata{}
	}
	return r.Meta
}

// Clone deep-copies the reference.
func (r *MediaReference) Clone() *MediaReference {
	out := &MediaReference{
		Name:          r.Name,
		TargetURL:     r.TargetURL,
		GeneratorKind: r.GeneratorKind,
		Meta:          r.Meta.Clone(),
	}
	if r.AvailableRange != nil {
		ar := *r.AvailableRange
		out.AvailableRange = &ar
	}
	return out
}

// NamedReference is one entry in a clip's ordered media reference list.
type NamedReference struct {
	Key string
	Ref *MediaReference
}

// Clip is a source range plus one or more named media references.
type Clip struct {
	ItemBase
	MediaRefs []NamedReference
	ActiveKey string
}

// ActiveRef returns the reference selected by ActiveKey, or nil.
func (c *Clip) ActiveRef() *MediaReference {
	key := c.ActiveKey
	if key == "" {
		key = DefaultMediaKey
	}
	for _, nr := range c.MediaRefs {
		if nr.Key == key {
			return nr.Ref
		}
	}
	if len(c.MediaRefs) > 0 {
		return c.MediaRefs[0].Ref
	}
	return nil
}

// SetReferences installs an ordered reference list, deduplicating keys by
// suffixing repeats, and marks the first entry active.
func (c *Clip) SetReferences(refs []NamedReference) {
	seen := map[string]int{}
	out := make([]NamedReference, 0, len(refs))
	for _, nr := range refs {
		key := nr.Key
		for {
			if _, dup := seen[key]; !dup {
				break
			}
			seen[nr.Key]++
			key = nr.Key + "_" + itoa2(seen[nr.Key])
		}
		seen[key] = 0
		out = append(out, NamedReference{Key: key, Ref: nr.Ref})
	}
	c.MediaRefs = out
	if len(out) > 0 {
		c.ActiveKey = out[0].Key
	}
}

func itoa2(n int) string {
	if n < 10 {
		return string([]byte{'0', byte('0' + n)})
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// AvailableRange is the active reference's media range, or nil when unknown.
func (c *Clip) AvailableRange() *opentime.TimeRange {
	if ref := c.ActiveRef(); ref != nil {
		return ref.AvailableRange
	}
	return nil
}

// Duration returns the clip's trimmed duration.
func (c *Clip) Duration() opentime.RationalTime {
	if c.SourceRange != nil {
		return c.SourceRange.Duration
	}
	if ar := c.AvailableRange(); ar != nil {
		return ar.Duration
	}
	return opentime.RationalTime{}
}

// Clone deep-copies the clip and its references.
func (c *Clip) Clone() Item {
	out := &Clip{ActiveKey: c.ActiveKey}
	c.ItemBase.cloneInto(&out.ItemBase)
	out.MediaRefs = make([]NamedReference, 0, len(c.MediaRefs))
	for _, nr := range c.MediaRefs {
		out.MediaRefs = append(out.MediaRefs, NamedReference{Key: nr.Key, Ref: nr.Ref.Clone()})
	}
	return out
}

// Gap is an opaque span with no media.
type Gap struct {
	ItemBase
}

// Duration returns the gap's trimmed duration.
func (g *Gap) Duration() opentime.RationalTime {
	if g.SourceRange != nil {
		return g.SourceRange.Duration
	}
	return opentime.RationalTime{}
}

// Clone deep-copies the gap.
func (g *Gap) Clone() Item {
	out := &Gap{}
	g.ItemBase.cloneInto(&out.ItemBase)
	return out
}
