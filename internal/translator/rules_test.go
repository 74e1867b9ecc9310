package translator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subgen/internal/subgenerr"
)

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadRulesExactMatch(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "zh.md", "# Chinese Rules\n- Use half-width punctuation\n")
	writeRuleFile(t, dir, "default.md", "# Default\n- fallback\n")

	rules, err := LoadRules(dir, "zh")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if !strings.Contains(rules, "half-width punctuation") {
		t.Fatalf("rules = %q", rules)
	}
}

func TestLoadRulesLanguageFamilyFallback(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "zh.md", "- shared rules\n")

	rules, err := LoadRules(dir, "zh-TW")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if !strings.Contains(rules, "shared rules") {
		t.Fatalf("rules = %q, want fallback to zh.md", rules)
	}
}

func TestLoadRulesFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "default.md", "- General rules\n- Character limits\n")

	rules, err := LoadRules(dir, "xx")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if !strings.Contains(rules, "General rules") {
		t.Fatalf("rules = %q", rules)
	}
}

func TestLoadRulesStripsLevel1Headings(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "zh.md", "# Chinese Rules\n- keep this\n# Another Heading\n- keep this too\n")

	rules, err := LoadRules(dir, "zh")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	for _, line := range strings.Split(rules, "\n") {
		if strings.HasPrefix(line, "# ") {
			t.Fatalf("found heading line %q in stripped rules", line)
		}
	}
	if !strings.Contains(rules, "keep this") {
		t.Fatalf("rules = %q", rules)
	}
}

func TestLoadRulesNoFileFoundReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	rules, err := LoadRules(dir, "fr")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules != "" {
		t.Fatalf("rules = %q, want empty", rules)
	}
}

func TestLoadRulesRejectsInvalidLanguageCode(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadRules(dir, "../../etc/passwd")
	if !errors.Is(err, subgenerr.ErrBadInput) {
		t.Fatalf("err = %v, want ErrBadInput", err)
	}
}

func TestLoadRulesRejectsOverlongLanguageCode(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadRules(dir, "this-is-not-a-code")
	if !errors.Is(err, subgenerr.ErrBadInput) {
		t.Fatalf("err = %v, want ErrBadInput", err)
	}
}
