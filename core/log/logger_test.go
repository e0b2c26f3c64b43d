// File: logger_test.go
// Title: Core Logger Tests
// Description: Covers level filtering, clone-on-With semantics, persistent
//              fields, and the text and JSON formatters.

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newCaptured(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: level, Output: &buf})
	return logger, &buf
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newCaptured(LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("enabled levels missing: %q", out)
	}
}

func TestWithMethodsClone(t *testing.T) {
	base, buf := newCaptured(LevelInfo)

	tagged := base.WithField("component", "engine").WithName("run")
	tagged.Info("tagged message")
	base.Info("plain message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "component=engine") || !strings.Contains(lines[0], "[run]") {
		t.Errorf("tagged line = %q", lines[0])
	}
	if strings.Contains(lines[1], "component=engine") {
		t.Errorf("WithField mutated the parent: %q", lines[1])
	}
}

func TestCallSiteFieldsOverrideContext(t *testing.T) {
	logger, buf := newCaptured(LevelInfo)
	logger.WithField("key", "context").Info("m", Fields{"key": "call"})

	if !strings.Contains(buf.String(), "key=call") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestErrorWithErr(t *testing.T) {
	logger, buf := newCaptured(LevelInfo)
	logger.ErrorWithErr("operation failed", errDummy("file gone"))

	out := buf.String()
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "error=") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "file gone") {
		t.Errorf("cause missing: %q", out)
	}
}

func TestTextFormatterQuotesSpacedValues(t *testing.T) {
	logger, buf := newCaptured(LevelInfo)
	logger.Info("m", Fields{"path": "a b"})

	if !strings.Contains(buf.String(), "path=a b") && !strings.Contains(buf.String(), `path="a b"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Output: &buf, Format: FormatJSON})
	logger.Info("structured", Fields{"n": 1})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%q", err, buf.String())
	}
	if entry["message"] != "structured" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"nonsense", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsLevelEnabled(t *testing.T) {
	logger, _ := newCaptured(LevelWarn)
	if logger.IsLevelEnabled(LevelDebug) {
		t.Error("debug should be disabled")
	}
	if !logger.IsLevelEnabled(LevelError) {
		t.Error("error should be enabled")
	}
	if logger.GetLevel() != LevelWarn {
		t.Errorf("GetLevel = %s", logger.GetLevel())
	}
}

// errDummy is a trivial error for formatter tests
type errDummy string

func (e errDummy) Error() string { return string(e) }
