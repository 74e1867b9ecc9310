package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/subgenerr"
)

func TestValidateSegmentRejectsOutOfOrderWords(t *testing.T) {
	seg := Segment{
		StartSec: 0, EndSec: 2,
		Words: []Word{
			{Text: "b", StartSec: 1, EndSec: 1.5},
			{Text: "a", StartSec: 0, EndSec: 0.5},
		},
	}
	if err := ValidateSegment(seg); !errors.Is(err, subgenerr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestValidateSegmentAllowsToleranceOverhang(t *testing.T) {
	seg := Segment{
		StartSec: 1.0, EndSec: 2.0,
		Words: []Word{{Text: "hi", StartSec: 0.97, EndSec: 2.02}},
	}
	if err := ValidateSegment(seg); err != nil {
		t.Fatalf("expected no error within tolerance, got %v", err)
	}
}

func TestValidateProjectRequiresOrderedSegments(t *testing.T) {
	p := &Project{Segments: []Segment{
		{StartSec: 2, EndSec: 3},
		{StartSec: 0, EndSec: 1},
	}}
	if err := ValidateProject(p); err == nil {
		t.Fatal("expected ordering error")
	}
}

func TestValidateProjectTranslatedRequiresTranslations(t *testing.T) {
	p := &Project{
		Segments: []Segment{{StartSec: 0, EndSec: 1, Text: "hi"}},
		State:    State{IsTranslated: true},
	}
	if err := ValidateProject(p); err == nil {
		t.Fatal("expected missing-translation error")
	}
}

func TestSaveLoadProjectRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.project")
	p := &Project{
		Segments: []Segment{{StartSec: 0, EndSec: 1.2, Text: "Hello.", Translated: "你好。"}},
		Metadata: Metadata{VideoPath: "clip.mp4", SourceLang: "en", TargetLang: "zh", CreatedAt: time.Now().UTC()},
		State:    State{IsTranscribed: true, IsTranslated: true},
	}

	if err := SaveProject(p, path); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be cleaned up, stat err=%v", err)
	}

	loaded, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if len(loaded.Segments) != 1 || loaded.Segments[0].Translated != "你好。" {
		t.Fatalf("unexpected roundtrip result: %+v", loaded.Segments)
	}
}

func TestSaveProjectStampsSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.project")
	p := &Project{Segments: []Segment{{StartSec: 0, EndSec: 1, Text: "hi"}}}

	if err := SaveProject(p, path); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	loaded, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded.Version != ProjectSchemaVersion {
		t.Fatalf("Version = %q, want %q", loaded.Version, ProjectSchemaVersion)
	}
}

func TestTotalWords(t *testing.T) {
	p := &Project{Segments: []Segment{
		{Words: []Word{{Text: "a"}, {Text: "b"}}},
		{Words: []Word{{Text: "c"}}},
	}}
	if got := p.TotalWords(); got != 3 {
		t.Fatalf("TotalWords() = %d, want 3", got)
	}
}
