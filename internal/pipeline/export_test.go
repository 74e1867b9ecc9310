package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subgen/internal/subtitle"
)

func TestExportWritesSRTAtomically(t *testing.T) {
	project := &subtitle.Project{
		Segments: []subtitle.Segment{
			{StartSec: 0, EndSec: 1.5, Text: "Hello.", Translated: "你好。"},
		},
	}
	engine := newTestEngine(nil, nil)
	outPath := filepath.Join(t.TempDir(), "out.srt")

	got, err := engine.Export(project, outPath, ExportOptions{Format: "srt"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got != outPath {
		t.Fatalf("Export returned %q, want %q", got, outPath)
	}

	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should not survive a successful export, stat err = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Hello.") {
		t.Fatalf("output missing source text: %q", data)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	engine := newTestEngine(nil, nil)
	outPath := filepath.Join(t.TempDir(), "out.xyz")
	if _, err := engine.Export(&subtitle.Project{}, outPath, ExportOptions{Format: "xyz"}); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestExportOptionsCloneIsolatesCallerMutation(t *testing.T) {
	original := ExportOptions{Format: "srt"}
	engine := newTestEngine(nil, nil)
	project := &subtitle.Project{Segments: []subtitle.Segment{{StartSec: 0, EndSec: 1, Text: "Hi"}}}
	outPath := filepath.Join(t.TempDir(), "out.srt")

	if _, err := engine.Export(project, outPath, original); err != nil {
		t.Fatalf("Export: %v", err)
	}
	// Mutating original after the call must not matter since Export clones.
	original.Format = "xyz"

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Hi") {
		t.Fatalf("output missing expected content: %q", data)
	}
}
