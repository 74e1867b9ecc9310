package translator

import (
	"regexp"
	"strconv"
	"strings"
)

// enumeratorPrefix strips a leading "1.", "1)", "1、" or "1:" style
// enumerator (with optional surrounding whitespace) from a single line.
var enumeratorPrefix = regexp.MustCompile(`^\s*\d+\s*[.)、:]\s*`)

// ParseTranslations splits raw LLM output into exactly want lines, one per
// input group. It does not strip the raw string as a whole: a leading blank
// line is preserved as an empty first entry. Each line has its numbered
// enumerator prefix removed after a per-line whitespace trim. Short output
// is padded with empty strings; long output is truncated.
func ParseTranslations(raw string, want int) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, want)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = enumeratorPrefix.ReplaceAllString(trimmed, "")
		out = append(out, trimmed)
	}
	for len(out) < want {
		out = append(out, "")
	}
	if len(out) > want {
		out = out[:want]
	}
	return out
}

// parseLineIndex extracts the leading "N:" or "N." index from a line, used
// when the caller needs to know which input position a returned line
// claims to answer rather than assuming strict order.
func parseLineIndex(line string) (int, bool) {
	m := enumeratorPrefix.FindString(strings.TrimSpace(line))
	if m == "" {
		return 0, false
	}
	digits := strings.TrimFunc(m, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
