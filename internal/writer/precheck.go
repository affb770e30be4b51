package writer

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bobbin/internal/adapter"
	"bobbin/internal/opentime"
	"bobbin/internal/timeline"
)

// Precheck walks the tree and collects everything that would make the
// transcription fail midway, so the caller gets one aggregated report
// instead of a half-written container and the first error.
func Precheck(tl *timeline.Timeline) error {
	problems := validation.Errors{}

	editRate := tl.Duration().Rate
	if editRate == 0 {
		problems["timeline"] = errors.New("cannot determine an edit rate from the timeline duration")
	}

	idx := 0
	timeline.Walk(tl.Tracks, func(item timeline.Item) bool {
		idx++
		switch node := item.(type) {
		case *timeline.Gap:
			checkRate(problems, itemKey(idx, "gap", node.Name), node.Duration(), editRate)
		case *timeline.Clip:
			precheckClip(problems, itemKey(idx, "clip", node.Name), node, editRate)
		case *timeline.Transition:
			precheckTransition(problems, itemKey(idx, "transition", node.Name), node, editRate)
		}
		return true
	})

	if len(problems) > 0 {
		return adapter.Wrap(adapter.ErrValidation, "write", "precheck", problems.Error(), nil)
	}
	return nil
}

func precheckClip(problems validation.Errors, key string, clip *timeline.Clip, editRate float64) {
	checkRate(problems, key, clip.Duration(), editRate)

	ref := clip.ActiveRef()
	// Generator references have no media to check; the transcriber either
	// turns them into filler or rejects their kind.
	if ref != nil && ref.IsGenerator() {
		return
	}
	if ref == nil || ref.AvailableRange == nil {
		problems[key+" media"] = errors.New("media reference carries no available range")
		return
	}
	checkRate(problems, key+" media start", ref.AvailableRange.Start, editRate)
	checkRate(problems, key+" media duration", ref.AvailableRange.Duration, editRate)
}

// precheckTransition demands the round-trip metadata a dissolve cannot be
// rebuilt without: the level keyframes, the operation record, and the cut
// point.
func precheckTransition(problems validation.Errors, key string, node *timeline.Transition, editRate float64) {
	checkRate(problems, key, node.Duration(), editRate)

	meta := node.Meta.AAF()
	if err := validation.Validate(meta["PointList"], validation.Required); err != nil {
		problems[key+" PointList"] = err
	}
	if err := validation.Validate(meta["CutPoint"], validation.NotNil); err != nil {
		problems[key+" CutPoint"] = err
	}

	group, _ := meta["OperationGroup"].(map[string]any)
	op, _ := group["Operation"].(map[string]any)
	for _, field := range []string{"Name", "Description", "DataDef"} {
		if err := validation.Validate(op[field], validation.Required); err != nil {
			problems[key+" Operation."+field] = err
		}
	}
}

func checkRate(problems validation.Errors, key string, d opentime.RationalTime, editRate float64) {
	if d.Rate != editRate {
		problems[key] = fmt.Errorf("rate %g differs from timeline edit rate %g", d.Rate, editRate)
	}
}

func itemKey(idx int, kind, name string) string {
	if name == "" {
		return fmt.Sprintf("#%d %s", idx, kind)
	}
	return fmt.Sprintf("#%d %s %q", idx, kind, name)
}
