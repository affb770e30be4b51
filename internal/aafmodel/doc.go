// Package aafmodel is the container object model: mobs, slots, components,
// descriptors and definition dictionaries, plus the SQLite-backed container
// file that persists them.
//
// The model is a plain object graph. Mob identity is carried by MobID;
// structure inside a slot is a Component tree over a closed kind set.
// Graph objects are owned by the File for the duration of one open/close
// scope; conversions must not retain them past Close.
package aafmodel
