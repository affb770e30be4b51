package aafmodel

// MobKind distinguishes the three mob usages.
type MobKind int

const (
	// CompositionMob holds edit decisions.
	CompositionMob MobKind = iota
	// MasterMob is the user-facing identity of a clip.
	MasterMob
	// SourceMob references physical/tape or file essence.
	SourceMob
)

func (k MobKind) String() string {
	switch k {
	case CompositionMob:
		return "CompositionMob"
	case MasterMob:
		return "MasterMob"
	case SourceMob:
		return "SourceMob"
	default:
		return "<unknown mob>"
	}
}

// SlotKind distinguishes timeline slots from event slots.
type SlotKind int

const (
	// TimelineSlot carries a time-ordered segment.
	TimelineSlot SlotKind = iota
	// EventSlot carries discrete positioned events such as markers.
	EventSlot
)

func (k SlotKind) String() string {
	switch k {
	case TimelineSlot:
		return "TimelineSlot"
	case EventSlot:
		return "EventSlot"
	default:
		return "<unknown slot>"
	}
}

// Slot is a named, rate-tagged track-like container inside a mob.
type Slot struct {
	ID            int        `json:"id"`
	Kind          SlotKind   `json:"kind"`
	Name          string     `json:"name,omitempty"`
	EditRate      float64    `json:"edit_rate"`
	PhysicalTrack int        `json:"physical_track,omitempty"`
	Segment       *Component `json:"segment,omitempty"`
	Props         Props      `json:"props,omitempty"`
}

// Mob is an identity-bearing node of the graph model.
type Mob struct {
	ID         MobID          `json:"id"`
	Kind       MobKind        `json:"kind"`
	Name       string         `json:"name,omitempty"`
	TopLevel   bool           `json:"top_level,omitempty"`
	Slots      []*Slot        `json:"slots,omitempty"`
	Comments   map[string]any `json:"comments,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Descriptor *Descriptor    `json:"descriptor,omitempty"`
	Props      Props          `json:"props,omitempty"`
}

// Slot returns the slot with the given ID, or nil.
func (m *Mob) Slot(id int) *Slot {
	for _, slot := range m.Slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

// NextSlotID returns the lowest unused slot ID, starting at 1.
func (m *Mob) NextSlotID() int {
	next := 1
	for _, slot := range m.Slots {
		if slot.ID >= next {
			next = slot.ID + 1
		}
	}
	return next
}

// CreateTimelineSlot appends a timeline slot with a fresh ID.
func (m *Mob) CreateTimelineSlot(editRate float64) *Slot {
	slot := &Slot{ID: m.NextSlotID(), Kind: TimelineSlot, EditRate: editRate}
	m.Slots = append(m.Slots, slot)
	return slot
}

// ContentStorage is the root collection of mobs and essence in a container.
type ContentStorage struct {
	Mobs    []*Mob
	Essence []*EssenceData
}

// Mob returns the mob with the given ID, or nil.
func (c *ContentStorage) Mob(id MobID) *Mob {
	for _, mob := range c.Mobs {
		if mob.ID == id {
			return mob
		}
	}
	return nil
}

// AppendMob adds a mob to the storage, preserving insertion order.
func (c *ContentStorage) AppendMob(mob *Mob) {
	c.Mobs = append(c.Mobs, mob)
}

// TopLevelMobs returns mobs flagged as top-level, in insertion order.
func (c *ContentStorage) TopLevelMobs() []*Mob {
	return c.filter(func(m *Mob) bool { return m.TopLevel })
}

// CompositionMobs returns all composition mobs, in insertion order.
func (c *ContentStorage) CompositionMobs() []*Mob {
	return c.filter(func(m *Mob) bool { return m.Kind == CompositionMob })
}

// MasterMobs returns all master mobs, in insertion order.
func (c *ContentStorage) MasterMobs() []*Mob {
	return c.filter(func(m *Mob) bool { return m.Kind == MasterMob })
}

// SourceMobs returns all source mobs, in insertion order.
func (c *ContentStorage) SourceMobs() []*Mob {
	return c.filter(func(m *Mob) bool { return m.Kind == SourceMob })
}

func (c *ContentStorage) filter(keep func(*Mob) bool) []*Mob {
	var out []*Mob
	for _, mob := range c.Mobs {
		if keep(mob) {
			out = append(out, mob)
		}
	}
	return out
}

// EssenceData is raw sample data embedded in the container, keyed by the
// owning source mob.
type EssenceData struct {
	MobID MobID
	Data  []byte
}
