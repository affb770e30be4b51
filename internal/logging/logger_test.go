package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Fatalf("parseLevel(nonsense) = %v", got)
	}
	if got := parseLevel(" DEBUG "); got != slog.LevelDebug {
		t.Fatalf("parseLevel(DEBUG) = %v", got)
	}
}

func TestConsoleHandlerPullsComponentForward(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "reader").Info("transcribed mob", Args(String(FieldMobName, "Scene 1"))...)

	line := buf.String()
	if !strings.Contains(line, "INFO reader: transcribed mob") {
		t.Fatalf("component not promoted to prefix: %q", line)
	}
	if !strings.Contains(line, `mob_name="Scene 1"`) {
		t.Fatalf("attribute missing or unquoted: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}
