package subtitle

import (
	"fmt"
	"sort"

	"subgen/internal/subgenerr"
)

// wordTimingToleranceSec is the allowed drift between a segment's span and
// the span implied by its first/last word, per spec.md §3's "±50 ms"
// invariant.
const wordTimingToleranceSec = 0.05

// ValidateSegment checks the invariants spec.md §3 assigns to a single
// Segment: non-negative, ordered timestamps, and word containment within
// tolerance.
func ValidateSegment(seg Segment) error {
	if seg.EndSec < seg.StartSec {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment",
			fmt.Sprintf("end %.3f before start %.3f", seg.EndSec, seg.StartSec), nil)
	}
	if seg.StartSec < 0 {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment", "negative start", nil)
	}
	lastEnd := -1.0
	for i, w := range seg.Words {
		if w.EndSec < w.StartSec {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment word",
				fmt.Sprintf("word %d end before start", i), nil)
		}
		if w.StartSec < lastEnd {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment word",
				fmt.Sprintf("word %d out of order", i), nil)
		}
		lastEnd = w.StartSec
	}
	if len(seg.Words) > 0 {
		first, last := seg.Words[0], seg.Words[len(seg.Words)-1]
		if first.StartSec < seg.StartSec-wordTimingToleranceSec {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment word",
				"first word starts before segment span", nil)
		}
		if last.EndSec > seg.EndSec+wordTimingToleranceSec {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate segment word",
				"last word ends after segment span", nil)
		}
	}
	return nil
}

// ValidateProject checks ordering and stage-flag invariants across an
// entire Project (spec.md §3's "Invariants" paragraph): segments sorted by
// start time, is_translated implies every segment has a translation, and
// is_proofread implies is_translated.
func ValidateProject(p *Project) error {
	if p == nil {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate project", "nil project", nil)
	}
	if !sort.SliceIsSorted(p.Segments, func(i, j int) bool {
		return p.Segments[i].StartSec < p.Segments[j].StartSec
	}) {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate project", "segments not ordered by start time", nil)
	}
	for i, seg := range p.Segments {
		if err := ValidateSegment(seg); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	if p.State.IsTranslated {
		for i, seg := range p.Segments {
			if seg.Translated == "" {
				return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate project",
					fmt.Sprintf("segment %d missing translation but is_translated=true", i), nil)
			}
		}
	}
	if p.State.IsProofread && !p.State.IsTranslated {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "validate project", "is_proofread without is_translated", nil)
	}
	return nil
}
