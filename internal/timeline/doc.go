// Package timeline defines the composition tree the adapter reads into and
// writes from: an ordered stack of tracks holding clips, gaps, transitions
// and nested compositions, plus the markers, effects and metadata bags that
// ride along with them.
//
// The node set is closed. Every item embeds ItemBase (name, enabled flag, source
// range, markers, effects, metadata) and is reachable through the Item
// interface; conversion code dispatches with exhaustive type switches.
//
// Trees are built fresh per conversion and are not shared between calls.
package timeline
