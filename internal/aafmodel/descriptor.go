package aafmodel

// DescriptorKind is the closed set of essence descriptor shapes.
type DescriptorKind int

const (
	// DescriptorCDCI describes component video essence.
	DescriptorCDCI DescriptorKind = iota
	// DescriptorRGBA describes RGBA video essence.
	DescriptorRGBA
	// DescriptorPCM describes PCM audio essence.
	DescriptorPCM
	// DescriptorImport marks media imported from outside the container.
	DescriptorImport
	// DescriptorTape marks a physical tape source.
	DescriptorTape
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorCDCI:
		return "CDCIDescriptor"
	case DescriptorRGBA:
		return "RGBADescriptor"
	case DescriptorPCM:
		return "PCMDescriptor"
	case DescriptorImport:
		return "ImportDescriptor"
	case DescriptorTape:
		return "TapeDescriptor"
	default:
		return "<unknown descriptor>"
	}
}

// DescriptorKindFromClass maps a recorded class name back to a kind. The
// second result is false for unrecognized names.
func DescriptorKindFromClass(name string) (DescriptorKind, bool) {
	switch name {
	case "CDCIDescriptor":
		return DescriptorCDCI, true
	case "RGBADescriptor":
		return DescriptorRGBA, true
	case "PCMDescriptor":
		return DescriptorPCM, true
	case "ImportDescriptor":
		return DescriptorImport, true
	case "TapeDescriptor":
		return DescriptorTape, true
	default:
		return 0, false
	}
}

// Locator records a candidate media location on a source mob descriptor.
type Locator struct {
	URL string `json:"url"`
}

// Descriptor describes the essence a source mob stands for.
type Descriptor struct {
	Kind       DescriptorKind `json:"kind"`
	SampleRate float64        `json:"sample_rate,omitempty"`
	Length     int64          `json:"length,omitempty"`
	Locators   []Locator      `json:"locators,omitempty"`
	Props      Props          `json:"props,omitempty"`
}
