package decode

import (
	"bytes"
	"strings"
	"testing"

	"subgen/internal/subtitle"
	"subgen/internal/subtitle/encode"
)

const sample = `1
00:00:00,000 --> 00:00:01,500
Hello world.

2
00:00:01,500 --> 00:00:03,250
Second line
with wrap.

`

func TestParseSRTBasic(t *testing.T) {
	segs, err := ParseSRT(strings.NewReader(sample), false)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].StartSec != 0 || segs[0].EndSec != 1.5 {
		t.Errorf("segment 0 timing = %v..%v", segs[0].StartSec, segs[0].EndSec)
	}
	if segs[0].Text != "Hello world." {
		t.Errorf("segment 0 text = %q", segs[0].Text)
	}
	if segs[1].Text != "Second line\nwith wrap." {
		t.Errorf("segment 1 text = %q", segs[1].Text)
	}
}

func TestParseSRTRejectsMalformedTiming(t *testing.T) {
	bad := "1\nnot a timing line\ntext\n"
	if _, err := ParseSRT(strings.NewReader(bad), false); err == nil {
		t.Fatal("expected error for malformed timing line")
	}
}

func TestParseSRTBilingualRoundTrip(t *testing.T) {
	project := &subtitle.Project{
		Segments: []subtitle.Segment{
			{StartSec: 0, EndSec: 1.5, Text: "Hello world.", Translated: "Bonjour le monde."},
			{StartSec: 1.5, EndSec: 3.25, Text: "Second line.", Translated: "Deuxieme ligne."},
		},
	}

	var buf bytes.Buffer
	if err := encode.Encode(&buf, project, encode.Options{Format: encode.KindSRT, Bilingual: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	segs, err := ParseSRT(&buf, true)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(segs) != len(project.Segments) {
		t.Fatalf("got %d segments, want %d", len(segs), len(project.Segments))
	}
	for i, want := range project.Segments {
		if segs[i].Text != want.Text {
			t.Errorf("segment %d Text = %q, want %q", i, segs[i].Text, want.Text)
		}
		if segs[i].Translated != want.Translated {
			t.Errorf("segment %d Translated = %q, want %q", i, segs[i].Translated, want.Translated)
		}
	}
}

func TestParseSRTBilingualFallsBackWithoutSecondLine(t *testing.T) {
	segs, err := ParseSRT(strings.NewReader(sample), true)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if segs[0].Translated != "" {
		t.Errorf("expected no Translated for a single-line cue, got %q", segs[0].Translated)
	}
	if segs[0].Text != "Hello world." {
		t.Errorf("segment 0 text = %q", segs[0].Text)
	}
}
