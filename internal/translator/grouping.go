// Package translator implements sentence-aware translation: grouping
// fragmented transcription segments into complete sentences, translating
// them with rolling context, and redistributing the result back onto
// per-word timestamps.
package translator

import (
	"unicode/utf8"

	"subgen/internal/subtitle"
)

// terminalPunctuation are the source-language sentence terminators that
// close a group even when nothing else would.
var terminalPunctuation = map[rune]bool{
	'.': true, '?': true, '!': true,
	'。': true, '？': true, '！': true, '…': true,
}

// GroupOptions bounds how aggressively sentence grouping merges segments.
type GroupOptions struct {
	MaxGapSec    float64
	MaxGroupSize int
	MaxChars     int
}

// DefaultGroupOptions matches spec.md §4.2.1's defaults.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{MaxGapSec: 1.5, MaxGroupSize: 10, MaxChars: 400}
}

// Group is a contiguous run of Segments that forms one sentence for
// translation purposes.
type Group struct {
	Segments []subtitle.Segment
}

// Text concatenates every segment's source text in the group.
func (g Group) Text() string {
	out := ""
	for i, seg := range g.Segments {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out
}

// Words returns the combined word slice across every segment in the group,
// in order.
func (g Group) Words() []subtitle.Word {
	var words []subtitle.Word
	for _, seg := range g.Segments {
		words = append(words, seg.Words...)
	}
	return words
}

// GroupSegments partitions segments into sentence groups per spec.md
// §4.2.1's greedy left-to-right rules. Every segment belongs to exactly
// one group; group boundaries partition the sequence.
func GroupSegments(segments []subtitle.Segment, opts GroupOptions) []Group {
	if len(segments) == 0 {
		return nil
	}
	var groups []Group
	current := Group{Segments: []subtitle.Segment{segments[0]}}
	chars := utf8.RuneCountInString(segments[0].Text)

	for i := 0; i+1 < len(segments); i++ {
		next := segments[i+1]
		last := segments[i]
		nextChars := utf8.RuneCountInString(next.Text)

		closeGroup := endsWithTerminal(last.Text) ||
			next.StartSec-last.EndSec > opts.MaxGapSec ||
			len(current.Segments)+1 > opts.MaxGroupSize ||
			chars+nextChars > opts.MaxChars

		if closeGroup {
			groups = append(groups, current)
			current = Group{Segments: []subtitle.Segment{next}}
			chars = nextChars
			continue
		}
		current.Segments = append(current.Segments, next)
		chars += nextChars
	}
	groups = append(groups, current)
	return groups
}

func endsWithTerminal(text string) bool {
	if text == "" {
		return false
	}
	runes := []rune(text)
	return terminalPunctuation[runes[len(runes)-1]]
}
