package reader

import (
	"bobbin/internal/aafmodel"
)

// mobMetadata flattens a mob into the round-trip metadata bag.
func mobMetadata(mob *aafmodel.Mob) map[string]any {
	meta := map[string]any{
		"Name":      mob.Name,
		"ClassName": mob.Kind.String(),
		"MobID":     string(mob.ID),
	}
	if len(mob.Comments) > 0 {
		meta["UserComments"] = cloneAnyMap(mob.Comments)
	}
	if len(mob.Attributes) > 0 {
		meta["MobAttributeList"] = cloneAnyMap(mob.Attributes)
	}
	for k, v := range mob.Props.Clone() {
		meta[k] = v
	}
	return meta
}

// slotMetadata flattens a slot into the round-trip metadata bag. SlotID and
// PhysicalTrackNumber are what the marker reattachment pass keys on.
func slotMetadata(slot *aafmodel.Slot) map[string]any {
	meta := map[string]any{
		"SlotID":              slot.ID,
		"PhysicalTrackNumber": slot.PhysicalTrack,
		"EditRate":            slot.EditRate,
	}
	if slot.Name != "" {
		meta["SlotName"] = slot.Name
	}
	for k, v := range slot.Props.Clone() {
		meta[k] = v
	}
	return meta
}

// componentMetadata flattens a component into the round-trip metadata bag,
// including effect parameters. Keyframed parameters become maps carrying the
// point list, interpolation tag, and optionally per-frame baked values.
func componentMetadata(comp *aafmodel.Component, bake bool) map[string]any {
	meta := map[string]any{}
	if comp.Name != "" {
		meta["Name"] = comp.Name
	}
	if comp.MediaKind != "" {
		meta["MediaKind"] = comp.MediaKind
	}
	if comp.Length != 0 {
		meta["Length"] = comp.Length
	}
	for k, v := range comp.Props.Clone() {
		meta[k] = v
	}

	if comp.Operation != nil {
		meta["Operation"] = map[string]any{
			"Identification":    comp.Operation.Identification,
			"Name":              comp.Operation.Name,
			"Description":       comp.Operation.Description,
			"IsTimeWarp":        comp.Operation.IsTimeWarp,
			"Bypass":            comp.Operation.Bypass,
			"NumberInputs":      comp.Operation.NumberInputs,
			"OperationCategory": comp.Operation.Category,
			"DataDef":           comp.Operation.DataDef,
		}
	}
	if len(comp.Parameters) > 0 {
		params := map[string]any{}
		for _, p := range comp.Parameters {
			params[p.Name] = transcribeParameter(p, comp.Length, bake)
		}
		meta["Parameters"] = params
	}
	if comp.Kind == aafmodel.KindDescriptiveMarker {
		meta["Position"] = comp.Position
		meta["Comment"] = comp.Comment
		if len(comp.DescribedSlots) > 0 {
			slots := make([]any, 0, len(comp.DescribedSlots))
			for _, id := range comp.DescribedSlots {
				slots = append(slots, id)
			}
			meta["DescribedSlots"] = slots
		}
	}
	if comp.Kind == aafmodel.KindTransition {
		meta["CutPoint"] = comp.CutPoint
	}
	return meta
}

// transcribeParameter turns one effect parameter into metadata. Constant
// values pass through; varying values keep their keyframes.
func transcribeParameter(p *aafmodel.Parameter, length int64, bake bool) any {
	if len(p.Points) == 0 {
		return p.Value
	}

	points := make([]any, 0, len(p.Points))
	for _, cp := range p.Points {
		points = append(points, map[string]any{
			"Time":  cp.Time,
			"Value": cp.Value,
		})
	}
	out := map[string]any{
		"keyframe_values":        points,
		"keyframe_interpolation": p.Interpolation,
	}
	if bake && length > 0 {
		out["keyframe_baked_values"] = bakePoints(p.Points, length)
	}
	return out
}

// bakePoints samples a keyframed parameter once per frame with linear
// interpolation between surrounding control points.
func bakePoints(points []aafmodel.ControlPoint, length int64) []any {
	type kf struct{ t, v float64 }
	keys := make([]kf, 0, len(points))
	for _, cp := range points {
		t, err1 := cp.TimeFloat()
		v, err2 := cp.ValueFloat()
		if err1 != nil || err2 != nil {
			continue
		}
		keys = append(keys, kf{t: t, v: v})
	}
	if len(keys) == 0 {
		return nil
	}

	baked := make([]any, 0, length)
	for frame := int64(0); frame < length; frame++ {
		// Normalized position along the component.
		pos := float64(frame) / float64(length)

		value := keys[0].v
		for i := 0; i < len(keys); i++ {
			if pos < keys[i].t {
				break
			}
			value = keys[i].v
			if i+1 < len(keys) && keys[i+1].t > keys[i].t {
				span := keys[i+1].t - keys[i].t
				frac := (pos - keys[i].t) / span
				if frac > 1 {
					frac = 1
				}
				if frac > 0 {
					value = keys[i].v + (keys[i+1].v-keys[i].v)*frac
				}
			}
		}
		baked = append(baked, value)
	}
	return baked
}

func cloneAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
