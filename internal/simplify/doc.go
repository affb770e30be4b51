// Package simplify collapses the container scaffolding a graph transcription
// leaves behind: wrapper stacks, single-child tracks, and empty parallel
// branches. The passes preserve every clip, marker, effect, and trim while
// folding the tree down to the shape an editor would expect, and they stop at
// containers that carry identity metadata worth keeping.
package simplify
