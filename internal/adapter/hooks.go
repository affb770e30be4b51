package adapter

import (
	"fmt"
	"sync"

	"bobbin/internal/timeline"
)

// Hook names fired around the two conversion directions.
const (
	PreReadTranscribe   = "pre_read_transcribe"
	PostReadTranscribe  = "post_read_transcribe"
	PreWriteTranscribe  = "pre_write_transcribe"
	PostWriteTranscribe = "post_write_transcribe"
)

// HookFunc observes or rewrites the composition at a conversion boundary.
// Returning nil keeps the incoming tree; returning an error aborts the
// conversion.
type HookFunc func(tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error)

var hookRegistry = struct {
	mu    sync.RWMutex
	hooks map[string][]HookFunc
}{hooks: map[string][]HookFunc{}}

// RegisterHook appends fn to the named hook point. Hooks run in registration
// order.
func RegisterHook(name string, fn HookFunc) error {
	switch name {
	case PreReadTranscribe, PostReadTranscribe, PreWriteTranscribe, PostWriteTranscribe:
	default:
		return fmt.Errorf("unknown hook %q", name)
	}
	if fn == nil {
		return fmt.Errorf("hook %q: nil function", name)
	}
	hookRegistry.mu.Lock()
	defer hookRegistry.mu.Unlock()
	hookRegistry.hooks[name] = append(hookRegistry.hooks[name], fn)
	return nil
}

// ClearHooks drops all registered hooks. Intended for tests.
func ClearHooks() {
	hookRegistry.mu.Lock()
	defer hookRegistry.mu.Unlock()
	hookRegistry.hooks = map[string][]HookFunc{}
}

// RunHooks fires the named hook point in registration order and returns the
// timeline with any hook rewrites applied.
func RunHooks(name string, tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error) {
	hookRegistry.mu.RLock()
	fns := append([]HookFunc{}, hookRegistry.hooks[name]...)
	hookRegistry.mu.RUnlock()

	for _, fn := range fns {
		next, err := fn(tl, args)
		if err != nil {
			return nil, fmt.Errorf("hook %s: %w", name, err)
		}
		if next != nil {
			tl = next
		}
	}
	return tl, nil
}
