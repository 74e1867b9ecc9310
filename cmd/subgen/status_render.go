package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// colorizeStatus wraps a doctorCheck's status text in color when writer is
// an interactive terminal; piped or redirected output stays plain.
func colorizeStatus(status string, writer io.Writer) string {
	if !shouldColorize(writer) {
		return status
	}
	switch status {
	case "ok":
		return ansiGreen + status + ansiReset
	case "warn":
		return ansiYellow + status + ansiReset
	case "fail":
		return ansiRed + status + ansiReset
	default:
		return status
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
