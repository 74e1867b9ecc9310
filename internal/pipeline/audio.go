package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/media/ffprobe"
	"subgen/internal/subgenerr"
	"subgen/internal/subtitle/filterescape"
)

// needsAudioExtraction reports whether input carries a video stream and
// therefore must have its audio extracted before a recognizer can consume
// it. It probes the container with internal/media/ffprobe rather than
// trusting the file extension.
func needsAudioExtraction(ctx context.Context, ffprobeBinary, input string) (bool, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, input)
	if err != nil {
		return false, subgenerr.Wrap(subgenerr.ErrBadInput, "", "inspect input", "ffprobe failed", err)
	}
	return result.VideoStreamCount() > 0, nil
}

// extractAudio extracts a mono 16kHz PCM WAV suitable for a speech
// recognizer from source, writing it to a unique temp file. The command
// runs under a bounded timeout; on expiry or context cancellation,
// exec.CommandContext kills the ffmpeg process so no orphan survives.
// Grounded on five82-spindle's internal/services/whisperx.ExtractFullAudio.
func extractAudio(ctx context.Context, ffmpegBinary, source string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := os.CreateTemp("", "subgen-audio-*.wav")
	if err != nil {
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "extract audio", "create temp file", err)
	}
	dest := out.Name()
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "extract audio", "close temp file", err)
	}

	binary := ffmpegBinary
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(dest)
		if ctx.Err() != nil {
			return "", subgenerr.Wrap(subgenerr.ErrTimeout, "", "extract audio", "ffmpeg timed out", ctx.Err())
		}
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "extract audio",
			fmt.Sprintf("ffmpeg failed: %s", strings.TrimSpace(string(output))), err)
	}
	return dest, nil
}

// MuxMode selects how ExportVideo attaches subtitles to a video.
type MuxMode string

const (
	MuxSoft MuxMode = "soft" // remux as a subtitle stream, no re-encode
	MuxHard MuxMode = "hard" // burn subtitles into the video frames
)

// muxVideo attaches the subtitle file at subtitlePath to videoPath,
// writing outPath. Soft mode remuxes without touching video/audio codecs;
// hard mode burns the subtitles in via ffmpeg's "subtitles=" filter, whose
// path argument is escaped against filter-grammar injection.
func muxVideo(ctx context.Context, ffmpegBinary, videoPath, subtitlePath, outPath string, mode MuxMode, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	binary := ffmpegBinary
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}

	var args []string
	switch mode {
	case MuxSoft:
		args = []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", videoPath,
			"-i", subtitlePath,
			"-map", "0", "-map", "1",
			"-c", "copy",
			"-c:s", subtitleCodecFor(outPath),
			outPath,
		}
	case MuxHard:
		filterArg := fmt.Sprintf("subtitles=%s", filterescape.EscapePath(subtitlePath))
		args = []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", videoPath,
			"-vf", filterArg,
			"-c:a", "copy",
			outPath,
		}
	default:
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "mux video", fmt.Sprintf("unknown mux mode %q", mode), nil)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return subgenerr.Wrap(subgenerr.ErrTimeout, "", "mux video", "ffmpeg timed out", ctx.Err())
		}
		return subgenerr.Wrap(subgenerr.ErrIO, "", "mux video",
			fmt.Sprintf("ffmpeg failed: %s", strings.TrimSpace(string(output))), err)
	}
	return nil
}

// subtitleCodecFor picks an ffmpeg subtitle codec compatible with outPath's
// container, since "copy" isn't available when muxing a freshly rendered
// text track.
func subtitleCodecFor(outPath string) string {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".mp4", ".m4v", ".mov":
		return "mov_text"
	default:
		return "srt"
	}
}
