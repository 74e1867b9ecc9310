package pipeline

import (
	"context"
	"fmt"
	"time"

	"subgen/internal/cachestore"
	"subgen/internal/language"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
	"subgen/internal/transcribe"
	"subgen/internal/translator"
)

const (
	defaultExtractAudioTimeout = 300 * time.Second
	defaultRecognizerTimeout   = 900 * time.Second
)

// Transcribe extracts audio from input if needed, consults the cache
// store, and runs the configured Recognizer on a cache miss, returning a
// Project with a single unstyled, untranslated pass of Segments.
func (e *Engine) Transcribe(ctx context.Context, input string, opts TranscribeOptions) (*subtitle.Project, error) {
	opts = opts.clone()
	cleanup := &cleanupList{}
	defer cleanup.run()

	audioPath, err := e.resolveAudioPath(ctx, input, opts, cleanup, noopProgress)
	if err != nil {
		return nil, err
	}

	return e.transcribeFromAudio(ctx, input, audioPath, opts, noopProgress)
}

// resolveAudioPath returns a path to audio suitable for the recognizer,
// extracting it from input first if input carries a video stream.
func (e *Engine) resolveAudioPath(ctx context.Context, input string, opts TranscribeOptions, cleanup *cleanupList, progress ProgressFunc) (string, error) {
	needsExtraction, err := needsAudioExtraction(ctx, opts.FFprobeBinary, input)
	if err != nil {
		return "", err
	}
	if !needsExtraction {
		return input, nil
	}

	progress(StageExtracting, 0, 1)
	timeout := opts.ExtractAudioTimeout
	if timeout <= 0 {
		timeout = defaultExtractAudioTimeout
	}
	audioPath, err := extractAudio(ctx, opts.FFmpegBinary, input, timeout)
	if err != nil {
		return "", err
	}
	cleanup.add(removeFile(e.log, audioPath))
	progress(StageExtracting, 1, 1)
	return audioPath, nil
}

// transcribeFromAudio implements the caching contract of spec.md §4.1: a
// cache hit re-reads the recognizer's detected source language from the
// stored entry rather than trusting whatever opts.SourceLang said, since
// stale language state after a cache hit is the most common class of bug
// here.
func (e *Engine) transcribeFromAudio(ctx context.Context, videoPath, audioPath string, opts TranscribeOptions, progress ProgressFunc) (*subtitle.Project, error) {
	progress(StageTranscribing, 0, 1)

	audioHash, err := cachestore.HashFile(audioPath)
	if err != nil {
		return nil, err
	}
	fingerprint := cachestore.Fingerprint(audioHash, opts.RecognizerProvider, opts.RecognizerModel, opts.SourceLang)

	if !opts.ForceTranscribe {
		entry, err := e.cache.Load(videoPath, fingerprint)
		if err != nil {
			return nil, err
		}
		if entry == nil && opts.SourceLang != "" {
			// A forced language still hits an entry recorded by auto-detection;
			// the entry's recorded language then wins over opts.SourceLang.
			entry, err = e.cache.Load(videoPath, cachestore.Fingerprint(audioHash, opts.RecognizerProvider, opts.RecognizerModel, ""))
			if err != nil {
				return nil, err
			}
		}
		if entry != nil {
			progress(StageTranscribing, 1, 1)
			return projectFromCacheEntry(videoPath, entry), nil
		}
	}

	if e.recognizer == nil {
		return nil, subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "transcribe", "no recognizer configured", nil)
	}

	timeout := opts.RecognizerTimeout
	if timeout <= 0 {
		timeout = defaultRecognizerTimeout
	}
	recCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := e.recognizer.Transcribe(recCtx, audioPath, transcribe.Options{
		SourceLang: opts.SourceLang,
		Model:      opts.RecognizerModel,
	})
	if err != nil {
		if recCtx.Err() != nil {
			return nil, subgenerr.Wrap(subgenerr.ErrTimeout, "", "transcribe", "recognizer timed out", recCtx.Err())
		}
		return nil, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe", "recognizer call failed", err)
	}

	now := time.Now().UTC()
	entry := &cachestore.Entry{
		SourceFile:         videoPath,
		CreatedAt:          now,
		RecognizerProvider: opts.RecognizerProvider,
		RecognizerModel:    opts.RecognizerModel,
		SourceLang:         result.DetectedLanguage,
		Segments:           result.Segments,
	}
	if err := e.cache.Save(videoPath, fingerprint, entry); err != nil {
		e.log.Warn("failed to persist transcription cache entry", "error", err)
	}

	progress(StageTranscribing, 1, 1)
	return projectFromTranscription(videoPath, opts, result, now), nil
}

func projectFromCacheEntry(videoPath string, entry *cachestore.Entry) *subtitle.Project {
	now := time.Now().UTC()
	return &subtitle.Project{
		Version:  subtitle.ProjectSchemaVersion,
		Segments: entry.Segments,
		Metadata: subtitle.Metadata{
			VideoPath:           videoPath,
			SourceLang:          entry.SourceLang,
			WhisperProvider:     entry.RecognizerProvider,
			TranscriptionSource: subtitle.SourceCache,
			CreatedAt:           entry.CreatedAt,
			ModifiedAt:          now,
		},
		State: subtitle.State{IsTranscribed: true},
	}
}

func projectFromTranscription(videoPath string, opts TranscribeOptions, result transcribe.Result, at time.Time) *subtitle.Project {
	sourceLang := result.DetectedLanguage
	if sourceLang == "" {
		sourceLang = opts.SourceLang
	}
	return &subtitle.Project{
		Version:  subtitle.ProjectSchemaVersion,
		Segments: result.Segments,
		Metadata: subtitle.Metadata{
			VideoPath:           videoPath,
			SourceLang:          sourceLang,
			WhisperProvider:     opts.RecognizerProvider,
			TranscriptionSource: subtitle.SourceTranscribed,
			CreatedAt:           at,
			ModifiedAt:          at,
		},
		State: subtitle.State{IsTranscribed: true},
	}
}

// Run executes the full pipeline for input: extract, transcribe,
// optionally translate, optionally proofread. It never writes a subtitle
// file; callers invoke Export or ExportVideo separately on the returned
// Project. A stage failure returns the error alongside whatever partial
// Project state was produced by earlier stages, so a caller can retry only
// the failing stage instead of redoing the whole run.
func (e *Engine) Run(ctx context.Context, input string, opts RunOptions) (*subtitle.Project, error) {
	opts = opts.clone()
	progress := opts.Progress
	if progress == nil {
		progress = noopProgress
	}

	if err := validateRunLangCodes(opts); err != nil {
		return nil, err
	}

	cleanup := &cleanupList{}
	defer cleanup.run()

	audioPath, err := e.resolveAudioPath(ctx, input, opts.Transcribe, cleanup, progress)
	if err != nil {
		return nil, err
	}

	project, err := e.transcribeFromAudio(ctx, input, audioPath, opts.Transcribe, progress)
	if err != nil {
		return project, err
	}

	if opts.Translate != nil {
		if err := e.translateProject(ctx, project, *opts.Translate, progress); err != nil {
			return project, err
		}
	}

	if opts.Proofread != nil {
		if err := e.proofreadProject(ctx, project, *opts.Proofread, progress); err != nil {
			return project, err
		}
	}

	return project, nil
}

// languageName resolves a code to a display name for LLM prompts.
func languageName(code string) string {
	return language.DisplayName(code)
}

// validateRunLangCodes checks every language code Run was given against
// spec.md §4.2.5's format before Run touches the filesystem: a malformed
// --to (or a forced --from) must fail immediately, not after extraction
// and cache-write have already run.
func validateRunLangCodes(opts RunOptions) error {
	if code := opts.Transcribe.SourceLang; code != "" && !translator.ValidateLanguageCode(code) {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "run pipeline",
			fmt.Sprintf("invalid source language code %q", code), nil)
	}
	if opts.Translate != nil {
		if code := opts.Translate.TargetLangCode; !translator.ValidateLanguageCode(code) {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "run pipeline",
				fmt.Sprintf("invalid target language code %q", code), nil)
		}
		if code := opts.Translate.SourceLangCode; code != "" && !translator.ValidateLanguageCode(code) {
			return subgenerr.Wrap(subgenerr.ErrBadInput, "", "run pipeline",
				fmt.Sprintf("invalid source language code %q", code), nil)
		}
	}
	return nil
}
