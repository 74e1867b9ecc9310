// Command subgen transcribes, translates, and subtitles video and audio
// files from the command line.
package main

import (
	"fmt"
	"os"

	"subgen/internal/subgenerr"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if hint := subgenerr.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
	}
	os.Exit(subgenerr.ExitCode(err))
}
