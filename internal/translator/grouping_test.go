package translator

import (
	"testing"

	"subgen/internal/subtitle"
)

func seg(start, end float64, text string) subtitle.Segment {
	return subtitle.Segment{StartSec: start, EndSec: end, Text: text}
}

func TestGroupSegmentsClosesOnTerminalPunctuation(t *testing.T) {
	segments := []subtitle.Segment{
		seg(0.00, 1.20, "Hello."),
		seg(1.30, 2.40, "How are"),
		seg(2.40, 2.90, "you?"),
	}
	groups := GroupSegments(segments, DefaultGroupOptions())
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if len(groups[0].Segments) != 1 || groups[0].Text() != "Hello." {
		t.Fatalf("groups[0] = %+v", groups[0])
	}
	if len(groups[1].Segments) != 2 {
		t.Fatalf("groups[1] = %+v, want 2 segments", groups[1])
	}
}

func TestGroupSegmentsClosesOnGap(t *testing.T) {
	segments := []subtitle.Segment{
		seg(0.0, 1.0, "one"),
		seg(3.0, 4.0, "two"),
	}
	opts := DefaultGroupOptions()
	groups := GroupSegments(segments, opts)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2 (gap %v exceeds MaxGapSec %v)", len(groups), 3.0-1.0, opts.MaxGapSec)
	}
}

func TestGroupSegmentsClosesOnGroupSize(t *testing.T) {
	var segments []subtitle.Segment
	for i := 0; i < 12; i++ {
		start := float64(i)
		segments = append(segments, seg(start, start+0.5, "word"))
	}
	opts := DefaultGroupOptions()
	opts.MaxGroupSize = 5
	groups := GroupSegments(segments, opts)
	for _, g := range groups {
		if len(g.Segments) > opts.MaxGroupSize {
			t.Fatalf("group of size %d exceeds MaxGroupSize %d", len(g.Segments), opts.MaxGroupSize)
		}
	}
	total := 0
	for _, g := range groups {
		total += len(g.Segments)
	}
	if total != len(segments) {
		t.Fatalf("total segments across groups = %d, want %d", total, len(segments))
	}
}

func TestGroupSegmentsClosesOnCharBudget(t *testing.T) {
	segments := []subtitle.Segment{
		seg(0.0, 1.0, "this is a fairly long fragment of text without punctuation"),
		seg(1.0, 2.0, "and here is another long fragment that pushes the total over budget"),
	}
	opts := DefaultGroupOptions()
	opts.MaxChars = 50
	groups := GroupSegments(segments, opts)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2 (char budget %d exceeded)", len(groups), opts.MaxChars)
	}
}

func TestGroupSegmentsPartitionInvariant(t *testing.T) {
	segments := []subtitle.Segment{
		seg(0.0, 1.0, "a"),
		seg(1.0, 2.0, "b."),
		seg(2.0, 3.0, "c"),
		seg(5.0, 6.0, "d"),
	}
	groups := GroupSegments(segments, DefaultGroupOptions())
	var flattened []subtitle.Segment
	for _, g := range groups {
		flattened = append(flattened, g.Segments...)
	}
	if len(flattened) != len(segments) {
		t.Fatalf("flattened length = %d, want %d", len(flattened), len(segments))
	}
	for i := range segments {
		if flattened[i].Text != segments[i].Text {
			t.Fatalf("flattened[%d] = %q, want %q", i, flattened[i].Text, segments[i].Text)
		}
	}
}

func TestGroupSegmentsEmpty(t *testing.T) {
	if groups := GroupSegments(nil, DefaultGroupOptions()); groups != nil {
		t.Fatalf("GroupSegments(nil) = %+v, want nil", groups)
	}
}
