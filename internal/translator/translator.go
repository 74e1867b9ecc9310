package translator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"subgen/internal/llm"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
)

// Options configures a Translator. Zero-valued fields fall back to the
// defaults spec.md §4.2 names.
type Options struct {
	SourceLangCode string
	SourceLangName string
	TargetLangCode string
	TargetLangName string

	RulesDir string

	GroupOptions GroupOptions

	// BatchSize is B, the number of groups translated per LLM call.
	BatchSize int
	// ContextSize is C, the number of preceding translated groups rendered
	// as rolling context ahead of each batch.
	ContextSize int
	// MaxRetries is R, the number of sub-batch retries for a batch's
	// missing tail before giving up and passing source text through.
	MaxRetries int
	// MaxCharsPerLine bounds how long a rendered subtitle line should be;
	// it is advisory text baked into the prompt, not enforced mechanically.
	MaxCharsPerLine int
	// Concurrency bounds how many redistribution calls run at once.
	Concurrency int
	// Redistribute enables the word-aligned redistribution pass of §4.2.3.
	// When false, every group becomes a single subtitle spanning its whole
	// span with the batch translation attached directly.
	Redistribute bool
}

// DefaultOptions returns spec.md §4.2's stated defaults.
func DefaultOptions() Options {
	return Options{
		GroupOptions:    DefaultGroupOptions(),
		BatchSize:       20,
		ContextSize:     5,
		MaxRetries:      2,
		MaxCharsPerLine: 40,
		Concurrency:     min(4, runtime.NumCPU()),
		Redistribute:    true,
	}
}

// ProgressFunc receives cumulative progress: spec.md §4.2.4 forbids
// per-batch deltas, so callers always see (completed, total) counts that
// only grow.
type ProgressFunc func(completed, total int)

// Translator groups fragmented transcription segments into sentences,
// translates them batch-by-batch with rolling context, and redistributes
// each group's translation back onto per-word timestamps.
type Translator struct {
	client llm.Client
	opts   Options
	log    *slog.Logger
}

// New constructs a Translator. log may be nil, in which case slog.Default
// is used.
func New(client llm.Client, opts Options, log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	return &Translator{client: client, opts: opts, log: log}
}

// translatedGroup pairs a Group with its resolved translation text, used
// both as the final per-group result and as rolling context for later
// batches.
type translatedGroup struct {
	group      Group
	translated string
	failed     bool
}

// Translate groups segments, translates every group, and redistributes
// each group's translation back onto word-aligned subtitle segments.
// progress, if non-nil, is invoked after every batch with cumulative
// counts.
func (t *Translator) Translate(ctx context.Context, segments []subtitle.Segment, progress ProgressFunc) ([]subtitle.Segment, error) {
	groups := GroupSegments(segments, t.opts.GroupOptions)
	if len(groups) == 0 {
		return nil, nil
	}

	// With no rules directory configured, no rules are loaded.
	var rules string
	if t.opts.RulesDir != "" {
		var err error
		rules, err = LoadRules(t.opts.RulesDir, t.opts.TargetLangCode)
		if err != nil {
			return nil, err
		}
	}

	results := make([]translatedGroup, len(groups))
	for i, g := range groups {
		results[i] = translatedGroup{group: g}
	}

	batchSize := t.opts.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	completed := 0
	for start := 0; start < len(groups); start += batchSize {
		end := min(start+batchSize, len(groups))
		contextPairs := t.rollingContext(results, start)
		if err := t.translateBatch(ctx, results, start, end, rules, contextPairs); err != nil {
			return nil, err
		}
		completed = end
		if progress != nil {
			progress(completed, len(groups))
		}
	}

	return t.redistributeAll(ctx, results)
}

// translateBatch translates results[start:end] in place, retrying a
// missing tail up to MaxRetries times before passing source text through
// for whatever groups still have no translation.
func (t *Translator) translateBatch(ctx context.Context, results []translatedGroup, start, end int, rules string, contextPairs []ContextPair) error {
	pending := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		pending = append(pending, i)
	}

	for attempt := 0; attempt <= t.opts.MaxRetries && len(pending) > 0; attempt++ {
		texts := make([]string, len(pending))
		for i, idx := range pending {
			texts[i] = results[idx].group.Text()
		}

		raw, err := t.callLLM(ctx, texts, rules, contextPairs)
		if err != nil {
			if attempt == t.opts.MaxRetries {
				return subgenerr.Wrap(subgenerr.ErrTranslationFailed, "", "translate batch", "llm call failed", err)
			}
			continue
		}

		parsed := ParseTranslations(raw, len(pending))
		var stillPending []int
		for i, idx := range pending {
			if strings.TrimSpace(parsed[i]) == "" {
				stillPending = append(stillPending, idx)
				continue
			}
			results[idx].translated = parsed[i]
		}
		pending = stillPending
	}

	for _, idx := range pending {
		results[idx].translated = results[idx].group.Text()
		results[idx].failed = true
		t.log.Warn("translation missing after retries, passing source text through",
			"group_index", idx)
	}
	return nil
}

// callLLM builds the system prompt for one (sub-)batch and sends it.
func (t *Translator) callLLM(ctx context.Context, groupTexts []string, rules string, contextPairs []ContextPair) (string, error) {
	prompt := BuildSystemPrompt(PromptInput{
		SourceLangName:  t.opts.SourceLangName,
		TargetLangName:  t.opts.TargetLangName,
		TargetLangCode:  t.opts.TargetLangCode,
		MaxCharsPerLine: t.opts.MaxCharsPerLine,
		Rules:           rules,
		Context:         contextPairs,
		Groups:          groupTexts,
	})
	return t.client.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, llm.Params{Temperature: 0.1})
}

// rollingContext collects up to ContextSize preceding translated groups,
// rendered as source/target pairs, for the batch starting at index start.
func (t *Translator) rollingContext(results []translatedGroup, start int) []ContextPair {
	size := t.opts.ContextSize
	if size <= 0 {
		return nil
	}
	from := max(0, start-size)
	var pairs []ContextPair
	for i := from; i < start; i++ {
		pairs = append(pairs, ContextPair{Source: results[i].group.Text(), Target: results[i].translated})
	}
	return pairs
}

// redistributeAll runs word-aligned redistribution for every translated
// group concurrently, bounded by Concurrency, and concatenates the
// resulting segments in original group order.
func (t *Translator) redistributeAll(ctx context.Context, results []translatedGroup) ([]subtitle.Segment, error) {
	out := make([][]subtitle.Segment, len(results))

	g, gctx := errgroup.WithContext(ctx)
	limit := t.opts.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			segs, err := t.redistributeGroup(gctx, r)
			if err != nil {
				return err
			}
			out[i] = segs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var segments []subtitle.Segment
	for _, segs := range out {
		segments = append(segments, segs...)
	}
	return segments, nil
}

// redistributeGroup implements spec.md §4.2.3 for a single group: either
// splitting its translation across multiple word-aligned segments, or
// falling back to one segment spanning the whole group.
func (t *Translator) redistributeGroup(ctx context.Context, r translatedGroup) ([]subtitle.Segment, error) {
	words := r.group.Words()
	if !t.opts.Redistribute || len(words) == 0 || r.failed {
		return []subtitle.Segment{wholeGroupSegment(r.group, r.translated)}, nil
	}

	fragments, err := t.requestFragments(ctx, r.translated, words)
	if err != nil || !validFragments(fragments, len(words)) {
		return []subtitle.Segment{wholeGroupSegment(r.group, r.translated)}, nil
	}

	return fragmentsToSegments(r.translated, fragments, words), nil
}

func wholeGroupSegment(g Group, translated string) subtitle.Segment {
	return subtitle.Segment{
		StartSec:   g.Segments[0].StartSec,
		EndSec:     g.Segments[len(g.Segments)-1].EndSec,
		Text:       g.Text(),
		Translated: translated,
		Words:      g.Words(),
	}
}

// fragment is one piece of a group's translation, tagged with the
// 1-based index of the last source word it covers.
type fragment struct {
	Text          string `json:"text"`
	LastWordIndex int    `json:"last_word_index"`
}

// requestFragments asks the LLM to split translated into fragments
// aligned to sourceWords, via a secondary structured-output call.
func (t *Translator) requestFragments(ctx context.Context, translated string, sourceWords []subtitle.Word) ([]fragment, error) {
	var b strings.Builder
	b.WriteString("Split the translated text into natural fragments aligned to the numbered source words below.\n")
	b.WriteString("Return a JSON array of objects, each with \"text\" (the fragment) and \"last_word_index\" ")
	b.WriteString("(the 1-based index of the last source word the fragment covers). Indices must strictly ")
	b.WriteString("increase and the last fragment must cover the final word.\n\n")
	fmt.Fprintf(&b, "Source (%d words):\n", len(sourceWords))
	for i, w := range sourceWords {
		fmt.Fprintf(&b, "%d: %s\n", i+1, w.Text)
	}
	fmt.Fprintf(&b, "\nTranslated text: %s\n", translated)

	raw, err := t.client.Chat(ctx, []llm.Message{{Role: "user", Content: b.String()}}, llm.Params{Temperature: 0.0})
	if err != nil {
		return nil, err
	}
	var fragments []fragment
	if err := llm.DecodeLLMJSON(raw, &fragments); err != nil {
		return nil, err
	}
	return fragments, nil
}

// validFragments checks spec.md §4.2.3's alignment invariant: strictly
// increasing last-word indices, each within (0, n]. The sequence need not
// reach n itself — an under-splitting LLM response (§8 E6) leaves words
// after the last fragment's index uncovered, and fragmentsToSegments
// appends those as a final segment carrying the translation's remainder
// rather than forcing a whole-group fallback.
func validFragments(fragments []fragment, n int) bool {
	if len(fragments) == 0 || n == 0 {
		return false
	}
	prev := 0
	for _, f := range fragments {
		if f.LastWordIndex <= prev || f.LastWordIndex > n {
			return false
		}
		prev = f.LastWordIndex
	}
	return true
}

// fragmentsToSegments builds the output segments for a successfully
// aligned redistribution. When the fragments don't reach the last word
// (§8 E6), the uncovered tail of words becomes one final segment carrying
// whatever of translated wasn't consumed by an earlier fragment.
func fragmentsToSegments(translated string, fragments []fragment, words []subtitle.Word) []subtitle.Segment {
	segments := make([]subtitle.Segment, 0, len(fragments)+1)
	prevIndex := 0
	consumed := ""
	for _, f := range fragments {
		span := words[prevIndex:f.LastWordIndex]
		var textParts []string
		for _, w := range span {
			textParts = append(textParts, w.Text)
		}
		segments = append(segments, subtitle.Segment{
			StartSec:   span[0].StartSec,
			EndSec:     span[len(span)-1].EndSec,
			Text:       strings.Join(textParts, " "),
			Translated: f.Text,
			Words:      span,
		})
		consumed += f.Text
		prevIndex = f.LastWordIndex
	}

	remainder := strings.TrimPrefix(translated, consumed)
	if remainder == translated {
		remainder = ""
	}

	if prevIndex < len(words) {
		span := words[prevIndex:]
		var textParts []string
		for _, w := range span {
			textParts = append(textParts, w.Text)
		}
		segments = append(segments, subtitle.Segment{
			StartSec:   span[0].StartSec,
			EndSec:     span[len(span)-1].EndSec,
			Text:       strings.Join(textParts, " "),
			Translated: remainder,
			Words:      span,
		})
		return segments
	}

	if remainder != "" {
		last := &segments[len(segments)-1]
		last.Translated += remainder
	}
	return segments
}
