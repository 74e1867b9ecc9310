package pipeline

import (
	"time"

	"subgen/internal/proofreader"
	"subgen/internal/styles"
	"subgen/internal/translator"
)

// TranscribeOptions controls Transcribe (and the transcription phase of
// Run).
type TranscribeOptions struct {
	// SourceLang forces the recognizer's source language; "" auto-detects.
	SourceLang string
	// RecognizerProvider/RecognizerModel identify the recognizer for cache
	// fingerprinting and Project metadata — they do not select which
	// Recognizer implementation runs; that's fixed at Engine construction.
	RecognizerProvider string
	RecognizerModel    string
	// ForceTranscribe skips the cache lookup even if a matching entry
	// exists.
	ForceTranscribe bool

	FFmpegBinary        string
	FFprobeBinary       string
	ExtractAudioTimeout time.Duration
	RecognizerTimeout   time.Duration
}

func (o TranscribeOptions) clone() TranscribeOptions {
	return o
}

// TranslateOptions controls Translate (and the translation phase of Run).
// It embeds the translator's own Options verbatim since Run has nothing to
// add beyond what a direct Translate call needs.
type TranslateOptions struct {
	translator.Options
}

func (o TranslateOptions) clone() TranslateOptions {
	return o
}

// ProofreadOptions controls Proofread (and the proofreading phase of Run).
type ProofreadOptions struct {
	proofreader.Options
}

func (o ProofreadOptions) clone() ProofreadOptions {
	return o
}

// RunOptions controls a full Run invocation. Translate and Proofread are
// pointers so "not requested" (nil) is distinguishable from "requested with
// zero-value options". Progress is a single callback observing every
// stage Run visits, in order; Run is the only operation with stages
// plural, so it is the only options struct that carries one.
type RunOptions struct {
	Transcribe TranscribeOptions
	Translate  *TranslateOptions
	Proofread  *ProofreadOptions
	Progress   ProgressFunc
}

// clone returns a deep copy of o: Run must never let a caller observe or
// mutate the Engine's notion of "the options for this run" through a
// shared pointer once Run has started, and exporting later must not see
// options mutated mid-flight by another goroutine holding the original.
func (o RunOptions) clone() RunOptions {
	clone := RunOptions{
		Transcribe: o.Transcribe.clone(),
		Progress:   o.Progress,
	}
	if o.Translate != nil {
		t := o.Translate.clone()
		clone.Translate = &t
	}
	if o.Proofread != nil {
		p := o.Proofread.clone()
		clone.Proofread = &p
	}
	return clone
}

// ExportOptions controls Export.
type ExportOptions struct {
	Format        string // "srt", "vtt", "ass"
	Bilingual     bool
	StyleOverride *styles.Override
}

// clone deep-copies a StyleOverride so a caller mutating its own override
// struct after calling Export can never retroactively change what was
// already written to disk.
func (o ExportOptions) clone() ExportOptions {
	clone := o
	clone.StyleOverride = cloneStyleOverride(o.StyleOverride)
	return clone
}

func cloneStyleOverride(o *styles.Override) *styles.Override {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Primary = cloneFontStyleOverride(o.Primary)
	clone.Secondary = cloneFontStyleOverride(o.Secondary)
	if o.Alignment != nil {
		v := *o.Alignment
		clone.Alignment = &v
	}
	if o.MarginBottom != nil {
		v := *o.MarginBottom
		clone.MarginBottom = &v
	}
	if o.PlayResX != nil {
		v := *o.PlayResX
		clone.PlayResX = &v
	}
	if o.PlayResY != nil {
		v := *o.PlayResY
		clone.PlayResY = &v
	}
	return &clone
}

func cloneFontStyleOverride(o *styles.FontStyleOverride) *styles.FontStyleOverride {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// ExportVideoOptions controls ExportVideo.
type ExportVideoOptions struct {
	Mode                MuxMode
	FFmpegBinary        string
	ExtractAudioTimeout time.Duration
	SubtitleOptions     ExportOptions
}
