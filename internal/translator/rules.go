package translator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"subgen/internal/subgenerr"
)

// languageCodePattern is the BCP-47-ish shape spec.md §4.2.5 requires a
// target language code to match before it is used to build any file path.
var languageCodePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,4})?$`)

// ValidateLanguageCode reports whether code has the shape spec.md §4.2.5
// requires of a language code before it is trusted to build a file path or
// drive a pipeline stage.
func ValidateLanguageCode(code string) bool {
	return languageCodePattern.MatchString(code)
}

// LoadRules resolves the translation rules text for targetLang with the
// priority order spec.md §4.2.5 names: exact match, language family,
// default.md. The returned string has its level-1 markdown headings
// stripped. Returns "" with no error if no rules file at all is found.
func LoadRules(rulesDir, targetLang string) (string, error) {
	if !languageCodePattern.MatchString(targetLang) {
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "load translation rules",
			fmt.Sprintf("invalid language code %q", targetLang), nil)
	}

	candidates := []string{targetLang + ".md"}
	if base, _, ok := strings.Cut(targetLang, "-"); ok && base != targetLang {
		candidates = append(candidates, base+".md")
	}
	candidates = append(candidates, "default.md")

	for _, name := range candidates {
		content, err := readRuleFile(rulesDir, name)
		if err != nil {
			return "", err
		}
		if content != "" {
			return stripLevel1Headings(content), nil
		}
	}
	return "", nil
}

// readRuleFile reads name from rulesDir, rejecting any path that would
// resolve outside rulesDir. A missing file returns ("", nil): the caller
// falls through to the next candidate.
func readRuleFile(rulesDir, name string) (string, error) {
	path := filepath.Join(rulesDir, name)
	rel, err := filepath.Rel(rulesDir, path)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "load translation rules",
			fmt.Sprintf("rule name %q escapes rules directory", name), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "load translation rules", "read rules file", err)
	}
	return string(data), nil
}

// stripLevel1Headings removes every line that is a markdown level-1
// heading ("# Title") since the rules content is inlined into a prompt
// that already has its own headings.
func stripLevel1Headings(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
