package reader

import (
	"math"
	"strings"

	"bobbin/internal/aafmodel"
	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// transcribeDescriptiveMarker builds a marker from an event-slot component.
// Outside an event slot there is nothing to attach it to, so it is dropped
// with a log line.
func (c *Context) transcribeDescriptiveMarker(comp *aafmodel.Component, sc scope, meta map[string]any) *timeline.Marker {
	if sc.slot == nil || sc.slot.Kind != aafmodel.EventSlot {
		c.log.Warn("cannot attach marker, missing event slot in hierarchy",
			logging.Args(logging.String("comment", comp.Comment))...)
		return nil
	}

	marker := &timeline.Marker{Name: comp.Comment}

	if len(comp.DescribedSlots) > 0 {
		meta["AttachedSlotID"] = comp.DescribedSlots[0]
	}
	meta["AttachedPhysicalTrackNumber"] = sc.slot.PhysicalTrack

	color, ok := markerColorFromString(comp.ColorName)
	if !ok {
		color = markerColorFromRGB(comp.ColorRGB)
	}
	marker.Color = color

	length := comp.Length
	if comp.NullLength || length == 0 {
		// The length property exists but can be null; a marker still
		// occupies one frame.
		length = 1
	}
	marker.MarkedRange = opentime.NewRange(
		opentime.FromFrames(comp.Position, sc.editRate),
		opentime.FromFrames(length, sc.editRate),
	)
	marker.EnsureMeta()[timeline.Namespace] = meta
	return marker
}

// markerColorFromString matches a recorded color name against the closed
// color set, case-insensitively.
func markerColorFromString(name string) (timeline.Color, bool) {
	if name == "" {
		return "", false
	}
	upper := timeline.Color(strings.ToUpper(name))
	for _, color := range timeline.Colors() {
		if color == upper {
			return color, true
		}
	}
	return "", false
}

// exact 16-bit primaries short-circuit the hue estimate.
var exactMarkerColors = map[aafmodel.RGBColor]timeline.Color{
	{Red: 65535, Green: 0, Blue: 0}:         timeline.ColorRed,
	{Red: 0, Green: 65535, Blue: 0}:         timeline.ColorGreen,
	{Red: 0, Green: 0, Blue: 65535}:         timeline.ColorBlue,
	{Red: 0, Green: 0, Blue: 0}:             timeline.ColorBlack,
	{Red: 65535, Green: 65535, Blue: 65535}: timeline.ColorWhite,
}

// markerColorFromRGB estimates the nearest color of the closed set for an
// arbitrary 16-bit RGB record, via hue bucketing with lightness and
// saturation guards. Red is the fallback.
func markerColorFromRGB(rgb *aafmodel.RGBColor) timeline.Color {
	if rgb == nil {
		return timeline.ColorRed
	}
	if color, ok := exactMarkerColors[*rgb]; ok {
		return color
	}

	red := float64(rgb.Red) / 65535.0
	green := float64(rgb.Green) / 65535.0
	blue := float64(rgb.Blue) / 65535.0

	hue, lightness, saturation := rgbToHLS(red, green, blue)

	if saturation < 0.2 {
		if lightness > 0.65 {
			return timeline.ColorWhite
		}
		return timeline.ColorBlack
	}
	if lightness < 0.13 {
		return timeline.ColorBlack
	}
	if lightness > 0.9 {
		return timeline.ColorWhite
	}

	nearest := colorFromHue(hue)
	if nearest == timeline.ColorRed && lightness > 0.53 {
		nearest = timeline.ColorPink
	}
	if nearest == timeline.ColorMagenta && hue < 0.89 && lightness < 0.42 {
		// darker magentas look more like purple
		nearest = timeline.ColorPurple
	}
	return nearest
}

// colorFromHue buckets a [0,1) hue into the closed color set.
func colorFromHue(hue float64) timeline.Color {
	switch {
	case hue <= 0.04 || hue > 0.93:
		return timeline.ColorRed
	case hue <= 0.13:
		return timeline.ColorOrange
	case hue <= 0.2:
		return timeline.ColorYellow
	case hue <= 0.43:
		return timeline.ColorGreen
	case hue <= 0.52:
		return timeline.ColorCyan
	case hue <= 0.74:
		return timeline.ColorBlue
	case hue <= 0.82:
		return timeline.ColorPurple
	default:
		return timeline.ColorMagenta
	}
}

// rgbToHLS converts normalized RGB to hue/lightness/saturation.
func rgbToHLS(r, g, b float64) (h, l, s float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2

	if maxC == minC {
		return 0, l, 0
	}

	delta := maxC - minC
	if l <= 0.5 {
		s = delta / (maxC + minC)
	} else {
		s = delta / (2 - maxC - minC)
	}

	rc := (maxC - r) / delta
	gc := (maxC - g) / delta
	bc := (maxC - b) / delta
	switch maxC {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return h, l, s
}
