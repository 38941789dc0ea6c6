// Package testutil provides utilities for testing.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DataDir is a temporary flat-file data directory.
type DataDir struct {
	Path string
}

// NewDataDir creates an empty data directory removed when the test ends.
func NewDataDir(t *testing.T) *DataDir {
	t.Helper()

	return &DataDir{Path: t.TempDir()}
}

// File returns the path of a file inside the directory.
func (d *DataDir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// WriteLines writes one line per record to name (useful for test setup).
func (d *DataDir) WriteLines(t *testing.T, name string, lines ...string) {
	t.Helper()

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(d.File(name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// ReadFile returns the raw contents of name.
func (d *DataDir) ReadFile(t *testing.T, name string) string {
	t.Helper()

	b, err := os.ReadFile(d.File(name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(b)
}

// Lines returns the non-empty lines of name.
func (d *DataDir) Lines(t *testing.T, name string) []string {
	t.Helper()

	var out []string
	for _, line := range strings.Split(d.ReadFile(t, name), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// AssertLineCount asserts the number of records in name.
func (d *DataDir) AssertLineCount(t *testing.T, name string, expected int) {
	t.Helper()

	if got := len(d.Lines(t, name)); got != expected {
		t.Errorf("expected %d lines in %s, got %d", expected, name, got)
	}
}

// Snapshot returns the contents of every file in the directory keyed by name.
func (d *DataDir) Snapshot(t *testing.T) map[string]string {
	t.Helper()

	entries, err := os.ReadDir(d.Path)
	if err != nil {
		t.Fatalf("failed to read data directory: %v", err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out[e.Name()] = d.ReadFile(t, e.Name())
	}
	return out
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
