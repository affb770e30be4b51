package adapter

import (
	"errors"
	"strings"
	"testing"

	"bobbin/internal/timeline"
)

func TestRegisterHookRejectsUnknownName(t *testing.T) {
	err := RegisterHook("post_render", func(tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error) {
		return tl, nil
	})
	if err == nil {
		t.Fatal("expected an error for an unknown hook name")
	}
	if err := RegisterHook(PreReadTranscribe, nil); err == nil {
		t.Fatal("expected an error for a nil hook function")
	}
}

func TestRunHooksAppliesInOrder(t *testing.T) {
	t.Cleanup(ClearHooks)

	var order []string
	for _, tag := range []string{"first", "second"} {
		tag := tag
		err := RegisterHook(PostReadTranscribe, func(tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error) {
			order = append(order, tag)
			renamed := tl.Clone()
			renamed.Name = tag
			return renamed, nil
		})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	out, err := RunHooks(PostReadTranscribe, timeline.New("start"), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) != 2 || order[0] != "first" {
		t.Fatalf("hook order = %v", order)
	}
	if out.Name != "second" {
		t.Fatalf("timeline name = %q, want the last rewrite to win", out.Name)
	}
}

func TestRunHooksStopsOnError(t *testing.T) {
	t.Cleanup(ClearHooks)

	boom := errors.New("boom")
	if err := RegisterHook(PreWriteTranscribe, func(tl *timeline.Timeline, args map[string]any) (*timeline.Timeline, error) {
		return nil, boom
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := RunHooks(PreWriteTranscribe, timeline.New("cut"), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the hook's error surfaced", err)
	}
}

func TestWrapTagsSentinel(t *testing.T) {
	cause := errors.New("no such mob")
	err := Wrap(ErrReference, "read", "source clip", "target missing", cause)
	if !errors.Is(err, ErrReference) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want both the sentinel and the cause", err)
	}
	for _, fragment := range []string{"read", "source clip", "target missing"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error misses %q: %v", fragment, err)
		}
	}

	if err := Wrap(nil, "", "", "", nil); !errors.Is(err, ErrAdapter) {
		t.Fatalf("err = %v, want the adapter fallback sentinel", err)
	}
}
