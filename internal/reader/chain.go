package reader

import (
	"strings"

	"bobbin/internal/aafmodel"
	"bobbin/internal/opentime"
)

// chainHop is one link of a composition→master→source reference chain.
type chainHop struct {
	mob  *aafmodel.Mob
	slot *aafmodel.Slot
	clip *aafmodel.Component
}

// referenceChain follows SourceClip references hop by hop until a mob or
// slot cannot be resolved. The starting hop is included.
func (c *Context) referenceChain(mob *aafmodel.Mob, slot *aafmodel.Slot, clip *aafmodel.Component) []chainHop {
	chain := []chainHop{{mob: mob, slot: slot, clip: clip}}
	for {
		next := c.content.Mob(clip.RefMob)
		if next == nil {
			return chain
		}
		nextSlot := next.Slot(clip.RefSlot)
		if nextSlot == nil {
			return chain
		}
		nextClip := aafmodel.SourceClipIn(nextSlot.Segment)
		if nextClip == nil {
			return chain
		}
		chain = append(chain, chainHop{mob: next, slot: nextSlot, clip: nextClip})
		mob, slot, clip = next, nextSlot, nextClip
	}
}

// mobStartTimecode finds the mob's primary timecode: the slot with physical
// track number 1 whose segment carries a Timecode component.
func mobStartTimecode(mob *aafmodel.Mob) *opentime.TimeRange {
	for _, slot := range mob.Slots {
		tc := aafmodel.TimecodeIn(slot.Segment)
		if tc == nil {
			continue
		}
		if slot.PhysicalTrack != 1 {
			continue
		}
		r := opentime.NewRange(
			opentime.FromFrames(tc.Start, slot.EditRate),
			opentime.FromFrames(tc.Length, slot.EditRate),
		)
		return &r
	}
	return nil
}

// sourceClipRanges computes one hop's available range: the clip's own
// start/length at the slot's edit rate, shifted by the mob's primary
// timecode when given, then clamped into the previous hop's range.
func sourceClipRanges(slot *aafmodel.Slot, clip *aafmodel.Component, inRange, startTC *opentime.TimeRange) opentime.TimeRange {
	editRate := slot.EditRate

	start := opentime.FromFrames(clip.Start, editRate)
	duration := opentime.FromFrames(clip.Length, editRate)

	if startTC != nil {
		start = start.Add(startTC.Start.RescaledTo(editRate))
		tcDuration := startTC.Duration.RescaledTo(editRate)
		if tcDuration.Cmp(duration) > 0 {
			duration = tcDuration
		}
	}

	if inRange != nil {
		start = start.Add(inRange.Start.RescaledTo(editRate))
		return opentime.NewRange(start, duration).Clamped(*inRange)
	}
	return opentime.NewRange(start, duration)
}

// transcribeURL normalizes a locator path into a file URL.
func transcribeURL(target string) string {
	if !strings.HasPrefix(target, "file://") {
		target = "file://" + target
	}
	return strings.ReplaceAll(target, "\\", "/")
}
