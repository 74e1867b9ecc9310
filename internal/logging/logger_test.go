package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewConsoleHandlerFormatsLine(t *testing.T) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	var buf bytes.Buffer
	handler := newPrettyHandler(&buf, levelVar, false)
	logger := slog.New(handler)

	logger.Info("translation batch complete", String(FieldStage, "translating"), Int("batch", 2))

	out := buf.String()
	if !strings.Contains(out, "translation batch complete") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "stage=translating") {
		t.Fatalf("expected stage field in output, got %q", out)
	}
	if !strings.Contains(out, "batch=2") {
		t.Fatalf("expected batch field in output, got %q", out)
	}
}

func TestNewJSONHandlerEmitsValidJSON(t *testing.T) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	var buf bytes.Buffer
	handler, err := newJSONHandler(&buf, levelVar, false)
	if err != nil {
		t.Fatalf("newJSONHandler: %v", err)
	}
	logger := slog.New(handler)
	logger.Info("cache hit", String(FieldEventType, "cache_hit"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode JSON log line: %v", err)
	}
	if decoded["msg"] != "cache hit" {
		t.Fatalf("expected msg field, got %v", decoded)
	}
	if decoded["event_type"] != "cache_hit" {
		t.Fatalf("expected event_type field, got %v", decoded)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewComponentLoggerAppliesComponentField(t *testing.T) {
	logger := NewComponentLogger(NewNop(), "translator")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}
