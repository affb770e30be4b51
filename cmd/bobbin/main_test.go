package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, sub := range []string{"convert", "inspect", "config"} {
		if !strings.Contains(out, sub) {
			t.Fatalf("help output misses %q:\n%s", sub, out)
		}
	}
}

func TestConvertRequiresTwoArgs(t *testing.T) {
	if _, err := executeCommand(t, "convert", "only-one.aaf"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestConvertFailsOnMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.aaf")
	out := filepath.Join(t.TempDir(), "out.aaf")
	if _, err := executeCommand(t, "convert", missing, out); err == nil {
		t.Fatal("expected an error for a missing input container")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not name the target: %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
}
