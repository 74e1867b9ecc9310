package proofreader

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

func sampleProject() *subtitle.Project {
	return &subtitle.Project{
		Segments: []subtitle.Segment{
			{Text: "Hello.", Translated: "哈喽。"},
			{Text: "Goodbye.", Translated: "再见。"},
		},
	}
}

func TestProofreadCorrectsInPlaceAndSetsFlag(t *testing.T) {
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "1: 你好。\n2: 再见。", nil
	}}
	p := sampleProject()

	pr := New(client, DefaultOptions(), nil)
	if err := pr.Proofread(context.Background(), p, nil); err != nil {
		t.Fatalf("Proofread: %v", err)
	}
	if p.Segments[0].Translated != "你好。" {
		t.Fatalf("Segments[0].Translated = %q", p.Segments[0].Translated)
	}
	if p.Segments[1].Translated != "再见。" {
		t.Fatalf("Segments[1].Translated = %q", p.Segments[1].Translated)
	}
	if !p.State.IsProofread {
		t.Fatal("State.IsProofread not set after successful window")
	}
}

func TestProofreadKeepsOriginalOnMissingCorrection(t *testing.T) {
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "1: 你好。", nil
	}}
	p := sampleProject()

	pr := New(client, DefaultOptions(), nil)
	if err := pr.Proofread(context.Background(), p, nil); err != nil {
		t.Fatalf("Proofread: %v", err)
	}
	if p.Segments[0].Translated != "你好。" {
		t.Fatalf("Segments[0].Translated = %q", p.Segments[0].Translated)
	}
	if p.Segments[1].Translated != "再见。" {
		t.Fatalf("Segments[1].Translated = %q, want original kept", p.Segments[1].Translated)
	}
}

func TestProofreadDoesNotSetFlagOnFailure(t *testing.T) {
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "", context.DeadlineExceeded
	}}
	p := sampleProject()

	pr := New(client, DefaultOptions(), nil)
	if err := pr.Proofread(context.Background(), p, nil); err == nil {
		t.Fatal("expected error from failed window")
	}
	if p.State.IsProofread {
		t.Fatal("State.IsProofread set despite a failed window")
	}
}

func TestProofreadWindowsAndCumulativeProgress(t *testing.T) {
	p := &subtitle.Project{}
	for i := 0; i < 5; i++ {
		p.Segments = append(p.Segments, subtitle.Segment{Text: "x", Translated: "y"})
	}
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		return "1: y\n2: y", nil
	}}

	opts := DefaultOptions()
	opts.WindowSize = 2

	var seen [][2]int
	pr := New(client, opts, nil)
	if err := pr.Proofread(context.Background(), p, func(completed, total int) {
		seen = append(seen, [2]int{completed, total})
	}); err != nil {
		t.Fatalf("Proofread: %v", err)
	}
	want := [][2]int{{2, 5}, {4, 5}, {5, 5}}
	if len(seen) != len(want) {
		t.Fatalf("progress = %+v, want %+v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress[%d] = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestProofreadPriorContextIncludesFinalizedPairs(t *testing.T) {
	p := &subtitle.Project{Segments: []subtitle.Segment{
		{Text: "A", Translated: "alpha"},
		{Text: "B", Translated: "beta"},
		{Text: "C", Translated: "gamma"},
	}}
	var secondPrompt string
	client := &fakeClient{chat: func(n int, messages []llm.Message) (string, error) {
		if n == 2 {
			secondPrompt = messages[0].Content
			return "1: z", nil
		}
		return "1: alpha", nil
	}}

	opts := DefaultOptions()
	opts.WindowSize = 1
	pr := New(client, opts, nil)
	if err := pr.Proofread(context.Background(), p, nil); err != nil {
		t.Fatalf("Proofread: %v", err)
	}
	if !strings.Contains(secondPrompt, "A|alpha") {
		t.Fatalf("second window prompt missing prior context: %q", secondPrompt)
	}
}
