package reader

import (
	"log/slog"

	"bobbin/internal/logging"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// AttachMarkers relocates markers recorded on tracks onto the item their
// timeline position falls within, transforming marked ranges into the new
// parent's space. Markers whose target cannot be resolved stay where the
// transcription put them.
func AttachMarkers(tl *timeline.Timeline, log *slog.Logger) {
	if tl == nil || tl.Tracks == nil {
		return
	}
	if log == nil {
		log = logging.NewNop()
	}

	// Track mapping by the slot identity recorded during transcription.
	type slotKey struct {
		slotID      int
		trackNumber int
	}
	tracksMap := map[slotKey]*timeline.Track{}
	for _, track := range timeline.FindTracks(tl.Tracks) {
		meta := track.Meta.AAF()
		slotID := metaInt(meta, "SlotID")
		trackNumber := metaInt(meta, "PhysicalTrackNumber")
		if slotID < 0 || trackNumber < 0 {
			continue
		}
		tracksMap[slotKey{slotID, trackNumber}] = track
	}

	for _, current := range timeline.FindTracks(tl.Tracks) {
		markers := current.Markers
		current.Markers = nil

		for _, marker := range markers {
			meta := marker.Meta.AAF()
			target := tracksMap[slotKey{
				metaInt(meta, "AttachedSlotID"),
				metaInt(meta, "AttachedPhysicalTrackNumber"),
			}]

			if target == nil {
				// Exports with partial track selections record attachment
				// keys that do not resolve; those markers live on the root
				// stack instead.
				log.Warn("cannot find target track for marker, attaching to timeline",
					logging.Args(logging.String("marker", marker.Name))...)
				tl.Tracks.Markers = append(tl.Tracks.Markers, marker)
				continue
			}

			item := findChildAtTime(target, marker.MarkedRange.Start)
			if item == nil {
				item = target
			}

			local, ok := localMarkerTime(target, marker.MarkedRange.Start, item)
			if !ok {
				log.Warn("cannot transform marker into item space, leaving on track",
					logging.Args(
						logging.String("marker", marker.Name),
						logging.String(logging.FieldTrack, target.Name),
					)...)
				item = target
				local = marker.MarkedRange.Start
			}

			marker.MarkedRange = opentime.NewRange(local, marker.MarkedRange.Duration)
			base := item.Base()
			base.Markers = append(base.Markers, marker)

			log.Debug("attached marker",
				logging.Args(
					logging.String("marker", marker.Name),
					logging.String("item", base.Name),
				)...)
		}
	}
}

// findChildAtTime resolves the most specific marker-capable item at tm,
// passing through transitions to the flanking sibling whose range holds the
// time and recursing into nested compositions.
func findChildAtTime(track *timeline.Track, tm opentime.RationalTime) timeline.Item {
	item, idx := track.ChildAtTime(tm)
	if item == nil {
		return nil
	}

	// ChildAtTime skips transitions, so idx points at a real item. Recurse
	// into nested compositions for a more specific target.
	switch nested := item.(type) {
	case *timeline.Track:
		local := track.LocalTime(tm, idx)
		if deeper := findChildAtTime(nested, local); deeper != nil {
			return deeper
		}
	case *timeline.Stack:
		local := track.LocalTime(tm, idx)
		for _, child := range nested.Children {
			inner, ok := child.(*timeline.Track)
			if !ok {
				continue
			}
			if deeper := findChildAtTime(inner, local); deeper != nil {
				return deeper
			}
		}
	}
	return item
}

// localMarkerTime converts tm from track content space into the target
// item's local space. The second result is false when the target is not a
// direct or indirect child with a resolvable position.
func localMarkerTime(track *timeline.Track, tm opentime.RationalTime, target timeline.Item) (opentime.RationalTime, bool) {
	if target == timeline.Item(track) {
		return tm, true
	}
	for idx, child := range track.Children {
		if child == target {
			return track.LocalTime(tm, idx), true
		}
		switch nested := child.(type) {
		case *timeline.Track:
			if local, ok := localMarkerTime(nested, track.LocalTime(tm, idx), target); ok {
				return local, true
			}
		case *timeline.Stack:
			local := track.LocalTime(tm, idx)
			for _, inner := range nested.Children {
				innerTrack, ok := inner.(*timeline.Track)
				if !ok {
					continue
				}
				if localTime, ok := localMarkerTime(innerTrack, local, target); ok {
					return localTime, true
				}
			}
		}
	}
	return opentime.RationalTime{}, false
}
