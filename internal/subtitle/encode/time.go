// Package encode renders a subtitle.Project as SRT, WebVTT, or ASS text.
package encode

import "fmt"

// FormatSRT renders seconds as "HH:MM:SS,mmm". Negative input clamps to zero.
func FormatSRT(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatVTT renders seconds as "HH:MM:SS.mmm". Negative input clamps to zero.
func FormatVTT(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatASS renders seconds as "H:MM:SS.cc" (centiseconds, 1-digit hour field).
func FormatASS(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	cs := ms / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// splitClock converts seconds into hour/minute/second/millisecond components,
// carrying millisecond rounding up through seconds/minutes/hours as needed.
func splitClock(seconds float64) (h, m, s, ms int) {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)
	ms64 := totalMs % 1000
	totalSec := totalMs / 1000
	s64 := totalSec % 60
	totalMin := totalSec / 60
	m64 := totalMin % 60
	h64 := totalMin / 60
	return int(h64), int(m64), int(s64), int(ms64)
}
