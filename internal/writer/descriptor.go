package writer

import (
	"bobbin/internal/aafmodel"
	"bobbin/internal/timeline"
)

// defaultDescriptor builds the file mob's essence descriptor. Values the
// media reference recorded win; anything missing falls back to broadcast
// defaults so a freshly authored timeline still writes cleanly.
func (t *trackTranscriber) defaultDescriptor(clip *timeline.Clip) *aafmodel.Descriptor {
	ref := clip.ActiveRef()
	recorded, _ := ref.Meta.AAF()["EssenceDescription"].(map[string]any)

	var desc *aafmodel.Descriptor
	if t.track.Kind == timeline.KindAudio {
		desc = audioDescriptor(recorded)
	} else {
		desc = videoDescriptor(recorded)
	}

	if ref.AvailableRange != nil {
		if desc.Kind != aafmodel.DescriptorPCM {
			desc.SampleRate = ref.AvailableRange.Duration.Rate
		}
		desc.Length = int64(ref.AvailableRange.Duration.RescaledTo(desc.SampleRate).Value)
	}
	if !ref.Missing() && ref.TargetURL != "" {
		desc.Locators = append(desc.Locators, aafmodel.Locator{URL: ref.TargetURL})
	}

	// Remaining recorded keys pass through untouched, minus the class tag
	// already consumed and anything a default claimed first.
	for key, val := range recorded {
		if key == "ClassName" {
			continue
		}
		if _, taken := desc.Props[key]; taken {
			continue
		}
		if desc.Props == nil {
			desc.Props = aafmodel.Props{}
		}
		desc.Props[key] = val
	}
	return desc
}

func videoDescriptor(recorded map[string]any) *aafmodel.Descriptor {
	kind := aafmodel.DescriptorCDCI
	if class, ok := recorded["ClassName"].(string); ok {
		if k, known := aafmodel.DescriptorKindFromClass(class); known {
			kind = k
		}
	}

	props := aafmodel.Props{
		"ImageAspectRatio": "16/9",
		"StoredWidth":      1920,
		"StoredHeight":     1080,
		"FrameLayout":      "FullFrame",
		"VideoLineMap":     []any{42, 0},
	}
	switch kind {
	case aafmodel.DescriptorRGBA:
		props["PixelLayout"] = []any{
			map[string]any{"Code": "CompRed", "Size": 8},
			map[string]any{"Code": "CompGreen", "Size": 8},
			map[string]any{"Code": "CompBlue", "Size": 8},
		}
	default:
		props["ComponentWidth"] = 8
		props["HorizontalSubsampling"] = 2
	}

	return &aafmodel.Descriptor{
		Kind:       kind,
		SampleRate: 24,
		Length:     1,
		Props:      props,
	}
}

func audioDescriptor(recorded map[string]any) *aafmodel.Descriptor {
	sampleRate := 48000.0
	if rate, ok := metaFloat(recorded["SampleRate"]); ok {
		sampleRate = rate
	}
	return &aafmodel.Descriptor{
		Kind:       aafmodel.DescriptorPCM,
		SampleRate: sampleRate,
		Props: aafmodel.Props{
			"AverageBPS":        96000,
			"BlockAlign":        2,
			"QuantizationBits":  16,
			"AudioSamplingRate": sampleRate,
			"Channels":          1,
		},
	}
}

func metaFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
