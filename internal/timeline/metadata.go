package timeline

// Namespace is the metadata bag key the adapter stores container properties
// under, both for round-tripping and debugging.
const Namespace = "AAF"

// Metadata is a nested bag of values keyed by namespace tags.
type Metadata map[string]any

// AAF returns the adapter's namespaced sub-bag, or nil when absent.
func (m Metadata) AAF() map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[Namespace].(map[string]any)
	return sub
}

// EnsureAAF returns the namespaced sub-bag, creating it when needed.
func (m Metadata) EnsureAAF() map[string]any {
	sub, ok := m[Namespace].(map[string]any)
	if !ok {
		sub = map[string]any{}
		m[Namespace] = sub
	}
	return sub
}

// Clone deep-copies the bag, including nested maps and slices.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}
