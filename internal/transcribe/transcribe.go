// Package transcribe invokes a speech recognizer — a cloud API or a local
// binary — and normalizes its output into the subtitle package's Segment
// model.
package transcribe

import (
	"context"

	"subgen/internal/subtitle"
)

// Options controls a single transcription run.
type Options struct {
	SourceLang string // ISO-639-1 code, or "" for auto-detect
	Model      string
}

// Result is a recognizer's normalized output.
type Result struct {
	Segments         []subtitle.Segment
	DetectedLanguage string
}

// Recognizer transcribes an audio file into timestamped Segments.
// Implementations: cloudapi.Adapter (HTTP) and binary.Adapter (external
// process).
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error)
	Name() string
}
