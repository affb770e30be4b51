// Package reader transcribes a container's mob/slot/component graph into the
// composition tree model. Transcription is depth-first and lenient: unknown
// or malformed nodes degrade to gaps or are dropped with a log line, while
// internal consistency violations (a produced duration disagreeing with the
// declared component length) fail hard.
package reader
