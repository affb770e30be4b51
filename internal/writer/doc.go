// Package writer transcribes a composition tree into the container's graph
// model. Each top-level track becomes a composition slot holding a sequence;
// every clip hangs off a three-tier reference chain of tape, file, and master
// mobs so editing tools can relink media. The pre-write check validates the
// tree up front and reports every problem at once instead of failing on the
// first.
package writer
