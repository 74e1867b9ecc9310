package subgenerr_test

import (
	"errors"
	"strings"
	"testing"

	"subgen/internal/subgenerr"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "transcribing", "invoke", "recognizer exited 1", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, subgenerr.ErrTranscriptionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcribing", "invoke", "recognizer exited 1"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{subgenerr.ErrBadInput, 2},
		{subgenerr.ErrBadConfig, 3},
		{subgenerr.ErrMissingComponent, 4},
		{subgenerr.ErrCredential, 5},
		{subgenerr.ErrCancelled, 6},
		{errors.New("boom"), 1},
	}
	for _, c := range cases {
		if got := subgenerr.ExitCode(c.err); got != c.want {
			t.Errorf("ExitCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHintForMissingComponent(t *testing.T) {
	err := subgenerr.Wrap(subgenerr.ErrMissingComponent, "install", "locate", "whisper engine", nil)
	hint := subgenerr.Hint(err)
	if !strings.Contains(hint, "subgen install") {
		t.Fatalf("expected install hint, got %q", hint)
	}
}
