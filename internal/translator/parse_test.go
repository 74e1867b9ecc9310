package translator

import "testing"

func TestParseTranslationsExactMatch(t *testing.T) {
	got := ParseTranslations("Hello\nWorld\nTest", 3)
	want := []string{"Hello", "World", "Test"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsFewerLinesPadded(t *testing.T) {
	got := ParseTranslations("Hello\nWorld", 4)
	want := []string{"Hello", "World", "", ""}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsMoreLinesTruncated(t *testing.T) {
	got := ParseTranslations("One\nTwo\nThree\nFour\nFive", 3)
	want := []string{"One", "Two", "Three"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsEmptyLinesPreserved(t *testing.T) {
	got := ParseTranslations("First line\n\nThird line", 3)
	want := []string{"First line", "", "Third line"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsNumberedPrefixDot(t *testing.T) {
	got := ParseTranslations("1. Hello\n2. World", 2)
	want := []string{"Hello", "World"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsNumberedPrefixParenthesis(t *testing.T) {
	got := ParseTranslations("1) Hello\n2) World", 2)
	want := []string{"Hello", "World"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsNumberedPrefixChinese(t *testing.T) {
	got := ParseTranslations("1、你好\n2、世界", 2)
	want := []string{"你好", "世界"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsNumberedPrefixColon(t *testing.T) {
	got := ParseTranslations("1: 你好。\n2: 再见。", 2)
	want := []string{"你好。", "再见。"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsWhitespaceStripped(t *testing.T) {
	got := ParseTranslations("  Hello  \n  World  ", 2)
	want := []string{"Hello", "World"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsEmptyInput(t *testing.T) {
	got := ParseTranslations("", 3)
	want := []string{"", "", ""}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsSingleLine(t *testing.T) {
	got := ParseTranslations("Only one line", 1)
	want := []string{"Only one line"}
	assertStringSlice(t, got, want)
}

func TestParseTranslationsNoOverallStrip(t *testing.T) {
	got := ParseTranslations("\nHello\nWorld", 3)
	want := []string{"", "Hello", "World"}
	assertStringSlice(t, got, want)
}

func assertStringSlice(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (got %q)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("[%d] = %q, want %q (full: %q)", i, got[i], want[i], got)
		}
	}
}
