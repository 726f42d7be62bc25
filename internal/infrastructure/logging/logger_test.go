package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"DEBUG", slog.LevelDebug, true},
		{"", slog.LevelInfo, false},
		{"loud", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3", &buf)

	log.Component("editor").Info("element placed", "type", "Resistor")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]string{
		"service":   "schematic",
		"version":   "1.2.3",
		"component": "editor",
		"msg":       "element placed",
		"type":      "Resistor",
		"level":     "INFO",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}

func TestNewWithWriter_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "WARN", Format: "Text"}, "test", &buf)

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "service=schematic") {
		t.Errorf("text output = %q", out)
	}
}

func TestWith_DoesNotTouchParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(config.LoggingConfig{Format: "text"}, "test", &buf)
	child := parent.With("project", "amp")

	parent.Info("from parent")
	if strings.Contains(buf.String(), "project=amp") {
		t.Error("parent picked up child attribute")
	}
	buf.Reset()
	child.Info("from child")
	if !strings.Contains(buf.String(), "project=amp") {
		t.Errorf("child output = %q", buf.String())
	}
}

func TestNewAndDefault(t *testing.T) {
	for _, out := range []string{"stdout", "stderr", ""} {
		if New(config.LoggingConfig{Output: out}, "test") == nil {
			t.Errorf("New(output %q) = nil", out)
		}
	}
	if !Default().Enabled(t.Context(), slog.LevelInfo) {
		t.Error("Default() drops info")
	}
	if Default().Enabled(t.Context(), slog.LevelDebug) {
		t.Error("Default() keeps debug")
	}
}
