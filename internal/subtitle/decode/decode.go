// Package decode parses SRT subtitle text back into the subtitle data
// model, used for the proofread-only workflow and round-trip testing.
package decode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"subgen/internal/subgenerr"
	"subgen/internal/subtitle"
)

// ParseSRT reads an SRT document and returns its cues as Segments. Index
// numbers are not preserved; cue order is taken from document order.
// bilingual must match the Bilingual flag Encode was given when it wrote
// the document: a bilingual cue's two text lines are source then
// translated (encode.encodeSRT's format), and parsing it without bilingual
// set would merge both into Text with no way back to the translated line.
func ParseSRT(r io.Reader, bilingual bool) ([]subtitle.Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var segments []subtitle.Segment
	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		seg, err := parseBlock(block, bilingual)
		if err != nil {
			return err
		}
		segments = append(segments, seg)
		block = nil
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, subgenerr.Wrap(subgenerr.ErrIO, "", "parse srt", "read subtitle stream", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}

// parseBlock converts one blank-line-delimited SRT block (index line,
// timing line, one or more text lines) into a Segment. In bilingual mode a
// two-line body splits into Text (source) and Translated; any other line
// count falls back to joining every line into Text, same as monolingual.
func parseBlock(lines []string, bilingual bool) (subtitle.Segment, error) {
	idx := 0
	// The index line is optional in the wild; skip it if present and the
	// next line is a timing line.
	if idx < len(lines) {
		if _, err := strconv.Atoi(strings.TrimSpace(lines[idx])); err == nil && idx+1 < len(lines) && strings.Contains(lines[idx+1], "-->") {
			idx++
		}
	}
	if idx >= len(lines) {
		return subtitle.Segment{}, subgenerr.Wrap(subgenerr.ErrBadInput, "", "parse srt", "missing timing line", nil)
	}
	start, end, err := parseTimingLine(lines[idx])
	if err != nil {
		return subtitle.Segment{}, err
	}
	textLines := lines[idx+1:]
	if bilingual && len(textLines) == 2 {
		return subtitle.Segment{StartSec: start, EndSec: end, Text: textLines[0], Translated: textLines[1]}, nil
	}
	text := strings.Join(textLines, "\n")
	return subtitle.Segment{StartSec: start, EndSec: end, Text: text}, nil
}

func parseTimingLine(line string) (start, end float64, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, subgenerr.Wrap(subgenerr.ErrBadInput, "", "parse srt", fmt.Sprintf("malformed timing line %q", line), nil)
	}
	start, err = parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseSRTTimestamp(strings.TrimSpace(stripCueSettings(strings.TrimSpace(parts[1]))))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// stripCueSettings drops any trailing cue-settings text (VTT-style
// positioning) an SRT-like timing line might carry after the end timestamp.
func stripCueSettings(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

func parseSRTTimestamp(ts string) (float64, error) {
	ts = strings.ReplaceAll(ts, ".", ",")
	var h, m, s, ms int
	if _, err := fmt.Sscanf(ts, "%d:%d:%d,%d", &h, &m, &s, &ms); err != nil {
		return 0, subgenerr.Wrap(subgenerr.ErrBadInput, "", "parse srt", fmt.Sprintf("malformed timestamp %q", ts), err)
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}
