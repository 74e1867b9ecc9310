package pipeline

import (
	"bytes"
	"context"
	"os"

	"subgen/internal/styles"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
	"subgen/internal/subtitle/encode"
)

// Export renders project to outPath in opts.Format, applying opts.
// StyleOverride (if any) over the resolved preset. Format-irrelevant style
// fields are simply ignored by encode.Encode for SRT/VTT output.
func (e *Engine) Export(project *subtitle.Project, outPath string, opts ExportOptions) (string, error) {
	opts = opts.clone()

	format, err := encodeFormat(opts.Format)
	if err != nil {
		return "", err
	}

	var override styles.Override
	if opts.StyleOverride != nil {
		override = *opts.StyleOverride
	}

	encodeOpts := encode.Options{
		Format:    format,
		Bilingual: opts.Bilingual,
		Style:     styles.LoadStyle(override),
	}

	var buf bytes.Buffer
	if err := encode.Encode(&buf, project, encodeOpts); err != nil {
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "export", "render subtitle", err)
	}

	// Atomic write: temp file then rename, grounded on subtitle.SaveProject's
	// idiom, so a reader never observes a partially written subtitle file.
	tmp := outPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "export", "write temp file", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "export", "rename temp file", err)
	}

	return outPath, nil
}

func encodeFormat(format string) (encode.Format, error) {
	switch format {
	case "", "srt":
		return encode.KindSRT, nil
	case "vtt":
		return encode.KindVTT, nil
	case "ass":
		return encode.KindASS, nil
	default:
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "export", "unsupported format "+format, nil)
	}
}

// ExportVideo renders project's subtitles to a temporary file in opts.
// SubtitleOptions.Format and muxes them into videoPath, producing outPath.
// The rendered subtitle file is removed once muxing finishes regardless of
// outcome.
func (e *Engine) ExportVideo(ctx context.Context, project *subtitle.Project, videoPath, outPath string, opts ExportVideoOptions) (string, error) {
	subtitleOpts := opts.SubtitleOptions.clone()

	format, err := encodeFormat(subtitleOpts.Format)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "subgen-mux-*."+string(format))
	if err != nil {
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "export video", "create temp subtitle file", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "export video", "close temp subtitle file", err)
	}
	cleanup := &cleanupList{}
	cleanup.add(removeFile(e.log, tmpPath))
	defer cleanup.run()

	if _, err := e.Export(project, tmpPath, subtitleOpts); err != nil {
		return "", err
	}

	timeout := opts.ExtractAudioTimeout
	if timeout <= 0 {
		timeout = defaultExtractAudioTimeout
	}
	mode := opts.Mode
	if mode == "" {
		mode = MuxSoft
	}
	if err := muxVideo(ctx, opts.FFmpegBinary, videoPath, tmpPath, outPath, mode, timeout); err != nil {
		return "", err
	}

	return outPath, nil
}
