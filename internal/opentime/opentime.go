// Package opentime implements the rational time values and time ranges the
// conversion passes do their arithmetic in. A RationalTime is a sample count
// at an edit rate; a TimeRange is a start plus a duration at that rate.
package opentime

import (
	"fmt"
	"math"
)

// RationalTime is a point (or span) measured in samples at a given rate.
type RationalTime struct {
	Value float64
	Rate  float64
}

// New constructs a RationalTime from a value and a rate.
func New(value, rate float64) RationalTime {
	return RationalTime{Value: value, Rate: rate}
}

// FromFrames builds a RationalTime from a whole frame number.
func FromFrames(frame int64, rate float64) RationalTime {
	return RationalTime{Value: float64(frame), Rate: rate}
}

// RescaledTo returns the same moment expressed at a different rate.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	if t.Rate == rate || t.Rate == 0 {
		return RationalTime{Value: t.Value, Rate: rate}
	}
	return RationalTime{Value: t.Value * rate / t.Rate, Rate: rate}
}

// Add returns t + other, expressed at t's rate.
func (t RationalTime) Add(other RationalTime) RationalTime {
	return RationalTime{Value: t.Value + other.RescaledTo(t.Rate).Value, Rate: t.Rate}
}

// Sub returns t - other, expressed at t's rate.
func (t RationalTime) Sub(other RationalTime) RationalTime {
	return RationalTime{Value: t.Value - other.RescaledTo(t.Rate).Value, Rate: t.Rate}
}

// Cmp compares two times, rescaling other to t's rate. It returns -1, 0 or 1.
func (t RationalTime) Cmp(other RationalTime) int {
	o := other.RescaledTo(t.Rate)
	switch {
	case t.Value < o.Value:
		return -1
	case t.Value > o.Value:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the time is the zero value.
func (t RationalTime) IsZero() bool {
	return t.Value == 0 && t.Rate == 0
}

// AlmostEqual reports whether two times agree within half a sample.
func (t RationalTime) AlmostEqual(other RationalTime) bool {
	return math.Abs(t.Value-other.RescaledTo(t.Rate).Value) < 0.5
}

func (t RationalTime) String() string {
	return fmt.Sprintf("%g@%g", t.Value, t.Rate)
}

// TimeRange is a half-open interval [Start, Start+Duration).
type TimeRange struct {
	Start    RationalTime
	Duration RationalTime
}

// NewRange constructs a TimeRange from start and duration.
func NewRange(start, duration RationalTime) TimeRange {
	return TimeRange{Start: start, Duration: duration}
}

// RangeFromStartEnd builds a range spanning [start, endExclusive).
func RangeFromStartEnd(start, endExclusive RationalTime) TimeRange {
	return TimeRange{Start: start, Duration: endExclusive.Sub(start)}
}

// EndExclusive returns the first time after the range.
func (r TimeRange) EndExclusive() RationalTime {
	return r.Start.Add(r.Duration)
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t RationalTime) bool {
	return r.Start.Cmp(t) <= 0 && r.EndExclusive().Cmp(t) > 0
}

// Intersects reports whether r and other overlap by at least one sample.
func (r TimeRange) Intersects(other TimeRange) bool {
	return r.Start.Cmp(other.EndExclusive()) < 0 && other.Start.Cmp(r.EndExclusive()) < 0
}

// ContainsRange reports whether other lies entirely inside r.
func (r TimeRange) ContainsRange(other TimeRange) bool {
	return r.Start.Cmp(other.Start) <= 0 && r.EndExclusive().Cmp(other.EndExclusive()) >= 0
}

// Clamped limits the range so it does not extend beyond other.
func (r TimeRange) Clamped(other TimeRange) TimeRange {
	start := r.Start
	if start.Cmp(other.Start) < 0 {
		start = other.Start.RescaledTo(start.Rate)
	}
	end := r.EndExclusive()
	if end.Cmp(other.EndExclusive()) > 0 {
		end = other.EndExclusive().RescaledTo(end.Rate)
	}
	if end.Cmp(start) < 0 {
		end = start
	}
	return RangeFromStartEnd(start, end)
}

// Extended returns the smallest range covering both r and other.
func (r TimeRange) Extended(other TimeRange) TimeRange {
	start := r.Start
	if other.Start.Cmp(start) < 0 {
		start = other.Start.RescaledTo(start.Rate)
	}
	end := r.EndExclusive()
	if other.EndExclusive().Cmp(end) > 0 {
		end = other.EndExclusive().RescaledTo(end.Rate)
	}
	return RangeFromStartEnd(start, end)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s +%s)", r.Start, r.Duration)
}
