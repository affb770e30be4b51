// Package logging constructs the slog loggers used across the conversion
// pipeline and provides typed attribute helpers so call sites stay terse.
package logging
