package opentime_test

import (
	"testing"

	"bobbin/internal/opentime"
)

func TestRescaledTo(t *testing.T) {
	tm := opentime.New(48, 24)
	got := tm.RescaledTo(48)
	if got.Value != 96 || got.Rate != 48 {
		t.Fatalf("unexpected rescale: %v", got)
	}
}

func TestAddSubAcrossRates(t *testing.T) {
	a := opentime.New(10, 24)
	b := opentime.New(24, 48) // 12 frames at 24
	sum := a.Add(b)
	if sum.Value != 22 || sum.Rate != 24 {
		t.Fatalf("unexpected sum: %v", sum)
	}
	diff := sum.Sub(b)
	if diff.Value != 10 {
		t.Fatalf("unexpected diff: %v", diff)
	}
}

func TestRangeContains(t *testing.T) {
	r := opentime.NewRange(opentime.New(10, 24), opentime.New(5, 24))
	if !r.Contains(opentime.New(10, 24)) {
		t.Fatal("range should contain its start")
	}
	if r.Contains(opentime.New(15, 24)) {
		t.Fatal("range end is exclusive")
	}
	if r.Contains(opentime.New(9, 24)) {
		t.Fatal("range should not contain times before start")
	}
}

func TestClamped(t *testing.T) {
	r := opentime.NewRange(opentime.New(0, 24), opentime.New(100, 24))
	bound := opentime.NewRange(opentime.New(10, 24), opentime.New(20, 24))
	got := r.Clamped(bound)
	if got.Start.Value != 10 || got.Duration.Value != 20 {
		t.Fatalf("unexpected clamp: %v", got)
	}
}

func TestClampedDisjointCollapses(t *testing.T) {
	r := opentime.NewRange(opentime.New(0, 24), opentime.New(5, 24))
	bound := opentime.NewRange(opentime.New(50, 24), opentime.New(5, 24))
	got := r.Clamped(bound)
	if got.Duration.Value != 0 {
		t.Fatalf("disjoint clamp should collapse to empty, got %v", got)
	}
}

func TestExtended(t *testing.T) {
	a := opentime.NewRange(opentime.New(0, 24), opentime.New(10, 24))
	b := opentime.NewRange(opentime.New(20, 24), opentime.New(5, 24))
	got := a.Extended(b)
	if got.Start.Value != 0 || got.Duration.Value != 25 {
		t.Fatalf("unexpected extension: %v", got)
	}
}
