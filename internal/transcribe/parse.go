package transcribe

import (
	"encoding/json"
	"fmt"

	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
)

// rawWord and rawSegment mirror the JSON shape both adapters consume: a
// flat list of segments, each optionally carrying word-level timestamps.
// Timestamps arrive as json.Number rather than float64 so a malformed
// value (a string, null, or missing field) is caught explicitly instead
// of silently decoding to zero.
type rawWord struct {
	Text  string      `json:"text"`
	Start json.Number `json:"start"`
	End   json.Number `json:"end"`
}

type rawSegment struct {
	Text         string      `json:"text"`
	Start        json.Number `json:"start"`
	End          json.Number `json:"end"`
	NoSpeechProb *float64    `json:"no_speech_prob,omitempty"`
	Words        []rawWord   `json:"words,omitempty"`
}

type rawOutput struct {
	Segments []rawSegment `json:"segments"`
	Language string       `json:"language,omitempty"`
}

// DecodeOutput decodes a recognizer's JSON payload into a Result,
// rejecting any segment or word whose timestamp cannot be parsed as a
// finite number rather than letting it through as zero. Both the
// cloudapi and binary adapters share this parser since they agree on
// the same wire shape.
func DecodeOutput(data []byte) (Result, error) {
	var raw rawOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "parse recognizer output",
			"malformed JSON", err)
	}

	segments := make([]subtitle.Segment, 0, len(raw.Segments))
	for i, rs := range raw.Segments {
		start, err := rs.Start.Float64()
		if err != nil {
			return Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "parse recognizer output",
				fmt.Sprintf("segment %d has a malformed start timestamp %q", i, rs.Start.String()), err)
		}
		end, err := rs.End.Float64()
		if err != nil {
			return Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "parse recognizer output",
				fmt.Sprintf("segment %d has a malformed end timestamp %q", i, rs.End.String()), err)
		}

		words := make([]subtitle.Word, 0, len(rs.Words))
		for j, rw := range rs.Words {
			wStart, err := rw.Start.Float64()
			if err != nil {
				return Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "parse recognizer output",
					fmt.Sprintf("segment %d word %d has a malformed start timestamp %q", i, j, rw.Start.String()), err)
			}
			wEnd, err := rw.End.Float64()
			if err != nil {
				return Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "parse recognizer output",
					fmt.Sprintf("segment %d word %d has a malformed end timestamp %q", i, j, rw.End.String()), err)
			}
			words = append(words, subtitle.Word{Text: rw.Text, StartSec: wStart, EndSec: wEnd})
		}

		segments = append(segments, subtitle.Segment{
			StartSec:     start,
			EndSec:       end,
			Text:         rs.Text,
			Words:        words,
			NoSpeechProb: rs.NoSpeechProb,
		})
	}

	return Result{Segments: segments, DetectedLanguage: raw.Language}, nil
}
