package timeline

import "bobbin/internal/opentime"

// TrimmedRange is the item's source range, or its natural range when
// untrimmed. The second result is false for a clip whose media range is
// unknown, the one case where no range can be computed.
func TrimmedRange(item Item) (opentime.TimeRange, bool) {
	if sr := item.Base().SourceRange; sr != nil {
		return *sr, true
	}
	switch node := item.(type) {
	case *Track:
		return node.AvailableRange(), true
	case *Clip:
		if ar := node.AvailableRange(); ar != nil {
			return *ar, true
		}
		return opentime.TimeRange{}, false
	default:
		d := item.Duration()
		return opentime.NewRange(opentime.New(0, d.Rate), d), true
	}
}

// TrackTrimmedToRange returns a copy of the track with children outside trim
// removed and the boundary children shortened, so the remaining content
// covers exactly the overlap with trim. The track is never expanded.
// Transitions survive when their cut falls inside trim.
func TrackTrimmedToRange(track *Track, trim opentime.TimeRange) *Track {
	out := track.Clone().(*Track)
	for i := len(out.Children) - 1; i >= 0; i-- {
		child := out.Children[i]
		childRange := out.RangeOfChild(i)

		if _, ok := child.(*Transition); ok {
			if !trim.Contains(childRange.Start) {
				out.Children = append(out.Children[:i], out.Children[i+1:]...)
			}
			continue
		}

		switch {
		case !trim.Intersects(childRange):
			out.Children = append(out.Children[:i], out.Children[i+1:]...)

		case trim.ContainsRange(childRange):
			// wholly inside, keep as is

		default:
			sr, ok := TrimmedRange(child)
			if !ok {
				sr = childRange
			}
			if trim.Start.Cmp(childRange.Start) > 0 {
				past := trim.Start.Sub(childRange.Start)
				sr = opentime.NewRange(sr.Start.Add(past), sr.Duration.Sub(past))
			}
			if trim.EndExclusive().Cmp(childRange.EndExclusive()) < 0 {
				over := childRange.EndExclusive().Sub(trim.EndExclusive())
				sr = opentime.NewRange(sr.Start, sr.Duration.Sub(over))
			}
			trimmed := sr
			child.Base().SourceRange = &trimmed
		}
	}
	return out
}

// KindFromMediaKind maps a container media kind onto a track kind.
// Unrecognized kinds are carried through tagged so nothing is lost.
func KindFromMediaKind(mediaKind string) TrackKind {
	switch mediaKind {
	case "Picture":
		return KindVideo
	case "Sound", "SoundMasterTrack":
		return KindAudio
	case "":
		return ""
	default:
		// Timecode, Edgecode, Data, ...
		return TrackKind("AAF_" + mediaKind)
	}
}
