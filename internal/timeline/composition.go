package timeline

import "bobbin/internal/opentime"

// TrackKind classifies a track's media. Kinds outside the recognized set are
// carried through with their original tag prefixed by "AAF_".
type TrackKind string

const (
	KindVideo TrackKind = "Video"
	KindAudio TrackKind = "Audio"
)

// Composite is the shared ordered-children state of Stack and Track.
type Composite struct {
	ItemBase
	Children []Item
}

// Append adds items to the end of the child list, skipping nils.
func (c *Composite) Append(items ...Item) {
	for _, item := range items {
		if item != nil {
			c.Children = append(c.Children, item)
		}
	}
}

func (c *Composite) cloneChildren() []Item {
	out := make([]Item, 0, len(c.Children))
	for _, child := range c.Children {
		out = append(out, child.Clone())
	}
	return out
}

// Stack layers its children in parallel; its duration is the longest child.
type Stack struct {
	Composite
}

// Duration returns the stack's trimmed duration.
func (s *Stack) Duration() opentime.RationalTime {
	if s.SourceRange != nil {
		return s.SourceRange.Duration
	}
	var longest opentime.RationalTime
	for _, child := range s.Children {
		if d := child.Duration(); longest.IsZero() || d.Cmp(longest) > 0 {
			longest = d
		}
	}
	return longest
}

// Clone deep-copies the stack.
func (s *Stack) Clone() Item {
	out := &Stack{}
	s.ItemBase.cloneInto(&out.ItemBase)
	out.Children = s.cloneChildren()
	return out
}

// Track sequences its children end to end. Transitions overlap their
// neighbors and contribute nothing to track timing.
type Track struct {
	Composite
	Kind TrackKind
}

// ContentDuration sums the durations of all non-transition children.
func (t *Track) ContentDuration() opentime.RationalTime {
	var total opentime.RationalTime
	for _, child := range t.Children {
		if _, ok := child.(*Transition); ok {
			continue
		}
		d := child.Duration()
		if total.Rate == 0 {
			total.Rate = d.Rate
		}
		total = total.Add(d)
	}
	return total
}

// AvailableRange is the untrimmed span of the track's content.
func (t *Track) AvailableRange() opentime.TimeRange {
	d := t.ContentDuration()
	return opentime.NewRange(opentime.New(0, d.Rate), d)
}

// Duration returns the track's trimmed duration.
func (t *Track) Duration() opentime.RationalTime {
	if t.SourceRange != nil {
		return t.SourceRange.Duration
	}
	return t.ContentDuration()
}

// RangeOfChild returns the span child idx occupies in the track's content
// space. Transitions report a zero-duration range at the cut.
func (t *Track) RangeOfChild(idx int) opentime.TimeRange {
	var cursor opentime.RationalTime
	for i, child := range t.Children {
		d := child.Duration()
		if _, ok := child.(*Transition); ok {
			d = opentime.RationalTime{Rate: d.Rate}
		}
		if cursor.Rate == 0 {
			cursor.Rate = d.Rate
		}
		if i == idx {
			return opentime.NewRange(cursor, d)
		}
		cursor = cursor.Add(d)
	}
	return opentime.TimeRange{}
}

// ChildAtTime returns the child overlapping tm in content space along with
// its index, or (nil, -1) when tm is outside the track.
func (t *Track) ChildAtTime(tm opentime.RationalTime) (Item, int) {
	for i, child := range t.Children {
		if _, ok := child.(*Transition); ok {
			continue
		}
		if t.RangeOfChild(i).Contains(tm) {
			return child, i
		}
	}
	return nil, -1
}

// LocalTime converts tm from track content space into child idx's local
// space, honoring the child's own source-range start.
func (t *Track) LocalTime(tm opentime.RationalTime, idx int) opentime.RationalTime {
	r := t.RangeOfChild(idx)
	local := tm.Sub(r.Start)
	if sr := t.Children[idx].Base().SourceRange; sr != nil {
		local = local.Add(sr.Start)
	}
	return local
}

// Clone deep-copies the track.
func (t *Track) Clone() Item {
	out := &Track{Kind: t.Kind}
	t.ItemBase.cloneInto(&out.ItemBase)
	out.Children = t.cloneChildren()
	return out
}

// Timeline is the root of the tree model: an ordered stack of tracks plus an
// optional global start offset.
type Timeline struct {
	Name        string
	GlobalStart *opentime.RationalTime
	Tracks      *Stack
	Meta        Metadata
}

// New returns an empty timeline with an allocated root stack.
func New(name string) *Timeline {
	return &Timeline{Name: name, Tracks: &Stack{}}
}

// EnsureMeta returns the timeline's metadata bag, allocating on first use.
func (tl *Timeline) EnsureMeta() Metadata {
	if tl.Meta == nil {
		tl.Meta = Metadata{}
	}
	return tl.Meta
}

// Duration is the duration of the root stack.
func (tl *Timeline) Duration() opentime.RationalTime {
	if tl.Tracks == nil {
		return opentime.RationalTime{}
	}
	return tl.Tracks.Duration()
}

// Clone deep-copies the timeline.
func (tl *Timeline) Clone() *Timeline {
	out := &Timeline{Name: tl.Name, Meta: tl.Meta.Clone()}
	if tl.GlobalStart != nil {
		gs := *tl.GlobalStart
		out.GlobalStart = &gs
	}
	if tl.Tracks != nil {
		out.Tracks = tl.Tracks.Clone().(*Stack)
	}
	return out
}

// Walk visits item and every descendant depth-first, parents before children.
// The visitor may return false to prune a subtree.
func Walk(item Item, visit func(Item) bool) {
	if item == nil || !visit(item) {
		return
	}
	switch node := item.(type) {
	case *Stack:
		for _, child := range node.Children {
			Walk(child, visit)
		}
	case *Track:
		for _, child := range node.Children {
			Walk(child, visit)
		}
	}
}

// FindTracks returns every track in the subtree in visit order.
func FindTracks(item Item) []*Track {
	var out []*Track
	Walk(item, func(node Item) bool {
		if track, ok := node.(*Track); ok {
			out = append(out, track)
		}
		return true
	})
	return out
}

// FindClips returns every clip in the subtree in visit order.
func FindClips(item Item) []*Clip {
	var out []*Clip
	Walk(item, func(node Item) bool {
		if clip, ok := node.(*Clip); ok {
			out = append(out, clip)
		}
		return true
	})
	return out
}
