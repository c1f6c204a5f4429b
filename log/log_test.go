package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}
	if logger.Format() != FormatText {
		t.Errorf("expected default format text, got %v", logger.Format())
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()
	logger2 := Make(&buf, WithLevel(LevelError))
	logger2.Info("info message")
	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger2.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Make_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON))

	logger.Info("hello", slog.String("key", "value"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if record["msg"] != "hello" {
		t.Errorf("expected msg %q, got %v", "hello", record["msg"])
	}
	if record["key"] != "value" {
		t.Errorf("expected key %q, got %v", "value", record["key"])
	}
}

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var logger Logger

	// Must not panic, and must report defaults.
	logger.Info("discarded")
	logger.Error("discarded")

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", logger.Level())
	}
	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format, got %v", logger.Format())
	}
}

func TestLogger_With_IncludesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf).With(slog.String("component", "lexer"))

	logger.Info("scanning")

	if !strings.Contains(buf.String(), "component=lexer") {
		t.Errorf("expected attribute in output, got: %s", buf.String())
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf).Wrap(WithLevel(LevelDebug), WithWriter(&buf))

	logger.Debug("visible now")

	if !strings.Contains(buf.String(), "visible now") {
		t.Error("wrapped logger did not honor the new level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"bogus", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevels_NamesRoundTrip(t *testing.T) {
	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("level %q round-trips to %q", name, got)
		}
	}
}

func TestFormats_Names(t *testing.T) {
	got := slices.Collect(Formats())
	want := []string{"text", "json"}

	if !slices.Equal(got, want) {
		t.Errorf("formats: got %v, want %v", got, want)
	}
}

func TestDefault_Config(t *testing.T) {
	t.Cleanup(func() {
		Config(WithWriter(os.Stderr), WithLevel(DefaultLevel))
	})

	var buf bytes.Buffer
	Config(WithWriter(&buf), WithLevel(LevelDebug))

	Debug("through the default logger")

	if !strings.Contains(buf.String(), "through the default logger") {
		t.Error("default logger did not honor reconfiguration")
	}
}
