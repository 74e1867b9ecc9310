// Package proofreader runs a second LLM pass over a fully translated
// Project, correcting terminology and tone drift across windows of
// segments with a rolling character budget of prior context.
package proofreader

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"subgen/internal/llm"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
)

// enumeratorPrefix mirrors internal/translator's parser: spec.md §4.3
// says proofread output parsing mirrors §4.2.2's batched-translation
// parsing exactly.
var enumeratorPrefix = regexp.MustCompile(`^\s*\d+\s*[.)、:]\s*`)

// Options configures a Proofreader. Zero-valued fields fall back to
// spec.md §4.3's defaults, which are themselves meant to be adjusted per
// provider/model.
type Options struct {
	// WindowSize is PB, the number of segments proofread per LLM call.
	WindowSize int
	// ContextChars is PC, the character budget for rolling prior context
	// shown ahead of each window.
	ContextChars int
	SourceLangName string
	TargetLangName string
}

// DefaultOptions returns spec.md §4.3's stated defaults.
func DefaultOptions() Options {
	return Options{WindowSize: 50, ContextChars: 15000}
}

// ProgressFunc receives cumulative progress, mirroring the translator's
// cumulative-only contract.
type ProgressFunc func(completed, total int)

// Proofreader corrects a Project's Segment.Translated values in place,
// window by window, using already-finalized segments as rolling context.
type Proofreader struct {
	client llm.Client
	opts   Options
	log    *slog.Logger
}

// New constructs a Proofreader. log may be nil, in which case slog.Default
// is used.
func New(client llm.Client, opts Options, log *slog.Logger) *Proofreader {
	if log == nil {
		log = slog.Default()
	}
	return &Proofreader{client: client, opts: opts, log: log}
}

// Proofread corrects p.Segments' Translated fields window by window and
// sets p.State.IsProofread only once every window has succeeded (an LLM
// call failure on any window aborts without marking the project
// proofread, per spec.md §4.3).
func (pr *Proofreader) Proofread(ctx context.Context, p *subtitle.Project, progress ProgressFunc) error {
	windowSize := pr.opts.WindowSize
	if windowSize <= 0 {
		windowSize = 50
	}

	total := len(p.Segments)
	completed := 0
	for start := 0; start < total; start += windowSize {
		end := min(start+windowSize, total)
		if err := pr.proofreadWindow(ctx, p.Segments, start, end); err != nil {
			return subgenerr.Wrap(subgenerr.ErrProofreadFailed, "", "proofread window",
				fmt.Sprintf("segments %d-%d", start, end), err)
		}
		completed = end
		if progress != nil {
			progress(completed, total)
		}
	}

	p.State.IsProofread = true
	return nil
}

// proofreadWindow corrects p.Segments[start:end] in place.
func (pr *Proofreader) proofreadWindow(ctx context.Context, segments []subtitle.Segment, start, end int) error {
	window := segments[start:end]
	prompt := pr.buildPrompt(segments, start, window)

	raw, err := pr.client.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, llm.Params{Temperature: 0.1})
	if err != nil {
		return err
	}

	corrections := parseCorrections(raw, len(window))
	for i, correction := range corrections {
		if strings.TrimSpace(correction) == "" {
			pr.log.Warn("proofread correction missing, keeping original translation",
				"segment_index", start+i)
			continue
		}
		window[i].Translated = correction
	}
	return nil
}

// buildPrompt renders the rolling prior-context header plus the numbered
// window body. Context is built backward from start, stopping once adding
// another pair would exceed ContextChars.
func (pr *Proofreader) buildPrompt(segments []subtitle.Segment, start int, window []subtitle.Segment) string {
	contextBudget := pr.opts.ContextChars
	if contextBudget <= 0 {
		contextBudget = 15000
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are proofreading %s subtitles translated from %s.\n",
		nonEmpty(pr.opts.TargetLangName, "the target language"), nonEmpty(pr.opts.SourceLangName, "the source language"))
	b.WriteString("Keep character names, recurring terms, and tone consistent with the prior context below.\n")
	b.WriteString("Reply with exactly one corrected line per input, in the form \"N: corrected text\", ")
	b.WriteString("in the same order, with no extra commentary. If a translation needs no change, repeat it as-is.\n")

	if pairs := priorContext(segments, start, contextBudget); len(pairs) > 0 {
		b.WriteString("\nPrior context (source|translated):\n")
		for _, pair := range pairs {
			fmt.Fprintf(&b, "%s|%s\n", pair.source, pair.translated)
		}
	}

	b.WriteString("\nCorrect each numbered line below:\n\n")
	for i, seg := range window {
		fmt.Fprintf(&b, "%d: %s\n", i+1, seg.Translated)
	}
	return b.String()
}

type contextPair struct {
	source     string
	translated string
}

// priorContext walks backward from start, collecting (source, translated)
// pairs until the combined character budget would be exceeded, then
// returns them in forward (chronological) order.
func priorContext(segments []subtitle.Segment, start, budget int) []contextPair {
	var pairs []contextPair
	used := 0
	for i := start - 1; i >= 0; i-- {
		seg := segments[i]
		cost := len(seg.Text) + len(seg.Translated)
		if used+cost > budget {
			break
		}
		used += cost
		pairs = append(pairs, contextPair{source: seg.Text, translated: seg.Translated})
	}
	// reverse into chronological order
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
	return pairs
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// parseCorrections mirrors the translator's ParseTranslations parser:
// spec.md §4.3 says parsing mirrors §4.2.2.
func parseCorrections(raw string, want int) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, want)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = enumeratorPrefix.ReplaceAllString(trimmed, "")
		out = append(out, trimmed)
	}
	for len(out) < want {
		out = append(out, "")
	}
	if len(out) > want {
		out = out[:want]
	}
	return out
}

