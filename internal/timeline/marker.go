package timeline

import "bobbin/internal/opentime"

// Color is the closed set of marker colors the tree model understands.
type Color string

const (
	ColorRed     Color = "RED"
	ColorOrange  Color = "ORANGE"
	ColorYellow  Color = "YELLOW"
	ColorGreen   Color = "GREEN"
	ColorCyan    Color = "CYAN"
	ColorBlue    Color = "BLUE"
	ColorPurple  Color = "PURPLE"
	ColorMagenta Color = "MAGENTA"
	ColorPink    Color = "PINK"
	ColorBlack   Color = "BLACK"
	ColorWhite   Color = "WHITE"
)

// Colors lists every recognized marker color.
func Colors() []Color {
	return []Color{
		ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorCyan,
		ColorBlue, ColorPurple, ColorMagenta, ColorPink, ColorBlack,
		ColorWhite,
	}
}

// Marker is a colored, timed annotation owned by exactly one item.
type Marker struct {
	Name        string
	Color       Color
	MarkedRange opentime.TimeRange
	Meta        Metadata
}

// EnsureMeta returns the marker's metadata bag, allocating it on first use.
func (m *Marker) EnsureMeta() Metadata {
	if m.Meta == nil {
		m.Meta = Metadata{}
	}
	return m.Meta
}

// Clone deep-copies the marker.
func (m *Marker) Clone() *Marker {
	return &Marker{
		Name:        m.Name,
		Color:       m.Color,
		MarkedRange: m.MarkedRange,
		Meta:        m.Meta.Clone(),
	}
}
