package logging

import "strings"

// FormatSubject builds the run/stage subject string used in console output.
func FormatSubject(runID, stage string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if runID != "" {
		parts = append(parts, "Run "+runID)
	}
	if stage != "" {
		var formatted string
		if len(stage) > 1 {
			formatted = strings.ToUpper(stage[:1]) + strings.ToLower(stage[1:])
		} else {
			formatted = strings.ToUpper(stage)
		}
		parts = append(parts, formatted)
	}
	return strings.Join(parts, " · ")
}
