// Package filterescape escapes filesystem paths for safe inclusion in an
// ffmpeg "subtitles=" filtergraph argument.
package filterescape

import "strings"

// specialChars are the ffmpeg filtergraph metacharacters that must be
// backslash-escaped once a path has had its separators normalized to
// forward slashes. Order matters: colon is escaped so a Windows drive
// letter ("C:") doesn't collide with the filter's own option separator.
var specialChars = []byte{':', ';', ',', '=', '@', '\'', '[', ']'}

// EscapePath prepares a filesystem path for use inside an ffmpeg
// "subtitles=<path>" filter argument: backslashes become forward slashes
// (Windows paths), then every filtergraph metacharacter is escaped with a
// backslash so the path cannot terminate the filter option or start a new
// one (filter injection).
func EscapePath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	var b strings.Builder
	b.Grow(len(path) + 8)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isSpecial(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isSpecial(c byte) bool {
	for _, s := range specialChars {
		if c == s {
			return true
		}
	}
	return false
}
