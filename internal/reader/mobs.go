package reader

import "bobbin/internal/aafmodel"

// MobStrategy is one step of the mob selection heuristic.
type MobStrategy struct {
	Name   string
	Select func(*aafmodel.ContentStorage) []*aafmodel.Mob
}

// MobStrategies is the ordered selection heuristic: top-level mobs win, then
// composition mobs, then master mobs. The precedence is empirical, derived
// from how authoring tools actually export, not from any written standard.
var MobStrategies = []MobStrategy{
	{Name: "top-level", Select: (*aafmodel.ContentStorage).TopLevelMobs},
	{Name: "composition", Select: (*aafmodel.ContentStorage).CompositionMobs},
	{Name: "master", Select: (*aafmodel.ContentStorage).MasterMobs},
}

// MobsForTranscription applies the strategies in order and returns the first
// non-empty candidate set. An empty result means an empty timeline, not an
// error.
func MobsForTranscription(content *aafmodel.ContentStorage) []*aafmodel.Mob {
	for _, strategy := range MobStrategies {
		if mobs := strategy.Select(content); len(mobs) > 0 {
			return mobs
		}
	}
	return nil
}
