package translator

import (
	"context"
	"strings"
	"sync"
	"testing"

	"subgen/internal/llm"
	"subgen/internal/subtitle"
)

type fakeClient struct {
	mu    sync.Mutex
	calls int
	chat  func(calls int, messages []llm.Message) (string, error)
}

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message, _ llm.Params) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	return f.chat(n, messages)
}

func (f *fakeClient) Name() string       { return "fake" }
func (f *fakeClient) Model() string      { return "fake-model" }
func (f *fakeClient) RequiresAuth() bool { return false }

func TestTranslateGroupsAndTranslatesWithoutRedistribution(t *testing.T) {
	segments := []subtitle.Segment{
		{StartSec: 0.00, EndSec: 1.20, Text: "Hello."},
		{StartSec: 1.30, EndSec: 2.40, Text: "How are"},
		{StartSec: 2.40, EndSec: 2.90, Text: "you?"},
	}

	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "1: 你好。\n2: 你好吗？", nil
	}}

	opts := DefaultOptions()
	opts.Redistribute = false
	opts.TargetLangCode = "zh"
	opts.TargetLangName = "Chinese"
	opts.SourceLangName = "English"

	tr := New(client, opts, nil)
	out, err := tr.Translate(context.Background(), segments, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 groups worth of segments", len(out))
	}
	if out[0].Translated != "你好。" {
		t.Fatalf("out[0].Translated = %q", out[0].Translated)
	}
	if out[1].Translated != "你好吗？" {
		t.Fatalf("out[1].Translated = %q", out[1].Translated)
	}
	if out[1].Text != "How are you?" {
		t.Fatalf("out[1].Text = %q", out[1].Text)
	}
}

func TestTranslateRetriesMissingTail(t *testing.T) {
	segments := []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "One."},
		{StartSec: 1.0, EndSec: 2.0, Text: "Two."},
	}

	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		if n == 1 {
			return "1: 一。", nil
		}
		return "1: 二。", nil
	}}

	opts := DefaultOptions()
	opts.Redistribute = false
	opts.MaxRetries = 2

	tr := New(client, opts, nil)
	out, err := tr.Translate(context.Background(), segments, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out[0].Translated != "一。" || out[1].Translated != "二。" {
		t.Fatalf("out = %+v", out)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want 2 (initial + one retry for missing tail)", client.calls)
	}
}

func TestTranslatePassesSourceThroughAfterExhaustingRetries(t *testing.T) {
	segments := []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "Stuck."},
	}
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "", nil
	}}

	opts := DefaultOptions()
	opts.Redistribute = false
	opts.MaxRetries = 1

	tr := New(client, opts, nil)
	out, err := tr.Translate(context.Background(), segments, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out[0].Translated != "Stuck." {
		t.Fatalf("out[0].Translated = %q, want pass-through source text", out[0].Translated)
	}
}

func TestTranslateProgressIsCumulative(t *testing.T) {
	segments := []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "A."},
		{StartSec: 2.0, EndSec: 3.0, Text: "B."},
		{StartSec: 4.0, EndSec: 5.0, Text: "C."},
	}
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "1: x", nil
	}}

	opts := DefaultOptions()
	opts.Redistribute = false
	opts.BatchSize = 1

	var seen [][2]int
	tr := New(client, opts, nil)
	_, err := tr.Translate(context.Background(), segments, func(completed, total int) {
		seen = append(seen, [2]int{completed, total})
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(seen) != len(want) {
		t.Fatalf("progress calls = %+v, want %+v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress[%d] = %+v, want %+v (must be cumulative, not per-batch deltas)", i, seen[i], want[i])
		}
	}
}

func TestTranslateRollingContextIncludesPrecedingGroups(t *testing.T) {
	segments := []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "A."},
		{StartSec: 2.0, EndSec: 3.0, Text: "B."},
	}
	var secondPrompt string
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		if n == 2 {
			secondPrompt = messages[0].Content
		}
		return "1: x", nil
	}}

	opts := DefaultOptions()
	opts.Redistribute = false
	opts.BatchSize = 1
	opts.ContextSize = 5

	tr := New(client, opts, nil)
	if _, err := tr.Translate(context.Background(), segments, nil); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(secondPrompt, "A.|x") {
		t.Fatalf("second batch prompt missing rolling context: %q", secondPrompt)
	}
}

func TestRedistributeGroupFallsBackOnInvalidFragments(t *testing.T) {
	group := Group{Segments: []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "hello world", Words: []subtitle.Word{
			{Text: "hello", StartSec: 0.0, EndSec: 0.5},
			{Text: "world", StartSec: 0.5, EndSec: 1.0},
		}},
	}}

	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return `[{"text": "bonjour", "last_word_index": 5}]`, nil
	}}

	opts := DefaultOptions()
	tr := New(client, opts, nil)
	segs, err := tr.redistributeGroup(context.Background(), translatedGroup{group: group, translated: "bonjour le monde"})
	if err != nil {
		t.Fatalf("redistributeGroup: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("segs = %+v, want single fallback segment", segs)
	}
	if segs[0].Translated != "bonjour le monde" {
		t.Fatalf("segs[0].Translated = %q", segs[0].Translated)
	}
}

func TestRedistributeGroupSplitsOnValidFragments(t *testing.T) {
	group := Group{Segments: []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "hello world", Words: []subtitle.Word{
			{Text: "hello", StartSec: 0.0, EndSec: 0.5},
			{Text: "world", StartSec: 0.5, EndSec: 1.0},
		}},
	}}

	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return `[{"text": "bonjour", "last_word_index": 1}, {"text": " monde", "last_word_index": 2}]`, nil
	}}

	opts := DefaultOptions()
	tr := New(client, opts, nil)
	segs, err := tr.redistributeGroup(context.Background(), translatedGroup{group: group, translated: "bonjour monde"})
	if err != nil {
		t.Fatalf("redistributeGroup: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segs = %+v, want 2 word-aligned segments", segs)
	}
	if segs[0].Translated != "bonjour" || segs[1].Translated != " monde" {
		t.Fatalf("segs = %+v", segs)
	}
	if segs[0].EndSec != 0.5 || segs[1].StartSec != 0.5 {
		t.Fatalf("segs timing = %+v", segs)
	}
}

// TestRedistributeGroupAppendsUncoveredTailOnUnderSplit covers the
// explicitly-worked under-split scenario: five source words, but the LLM's
// fragment response only reaches last_word_index 3. The fragments are
// still strictly increasing and never overshoot n, so this must split into
// the aligned first fragment plus one final segment carrying the
// remaining two words and whatever of the translation wasn't already
// consumed — not fall back to a single whole-group segment.
func TestRedistributeGroupAppendsUncoveredTailOnUnderSplit(t *testing.T) {
	words := []subtitle.Word{
		{Text: "one", StartSec: 0.0, EndSec: 0.2},
		{Text: "two", StartSec: 0.2, EndSec: 0.4},
		{Text: "three", StartSec: 0.4, EndSec: 0.6},
		{Text: "four", StartSec: 0.6, EndSec: 0.8},
		{Text: "five", StartSec: 0.8, EndSec: 1.0},
	}
	group := Group{Segments: []subtitle.Segment{
		{StartSec: 0.0, EndSec: 1.0, Text: "one two three four five", Words: words},
	}}

	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return `[{"text": "un deux trois", "last_word_index": 3}]`, nil
	}}

	opts := DefaultOptions()
	tr := New(client, opts, nil)
	segs, err := tr.redistributeGroup(context.Background(), translatedGroup{group: group, translated: "un deux trois quatre cinq"})
	if err != nil {
		t.Fatalf("redistributeGroup: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segs = %+v, want 2 segments (aligned fragment + uncovered tail)", segs)
	}
	if segs[0].Translated != "un deux trois" {
		t.Fatalf("segs[0].Translated = %q", segs[0].Translated)
	}
	if segs[0].EndSec != 0.6 {
		t.Fatalf("segs[0].EndSec = %v, want 0.6 (covers words 1-3)", segs[0].EndSec)
	}
	if segs[1].Text != "four five" {
		t.Fatalf("segs[1].Text = %q, want uncovered words 4-5", segs[1].Text)
	}
	if segs[1].Translated != " quatre cinq" {
		t.Fatalf("segs[1].Translated = %q, want translation's remainder", segs[1].Translated)
	}
	if segs[1].StartSec != 0.6 || segs[1].EndSec != 1.0 {
		t.Fatalf("segs[1] timing = %+v", segs[1])
	}
}
