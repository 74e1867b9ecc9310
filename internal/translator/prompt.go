package translator

import (
	"fmt"
	"strconv"
	"strings"
)

// ContextPair is one preceding group already translated, rendered into the
// prompt as batch-local rolling context.
type ContextPair struct {
	Source string
	Target string
}

// PromptInput gathers everything BuildSystemPrompt needs to render a single
// batch's system prompt.
type PromptInput struct {
	SourceLangName   string
	TargetLangName   string
	TargetLangCode   string
	MaxCharsPerLine  int
	Rules            string
	Context          []ContextPair
	Groups           []string
}

// BuildSystemPrompt renders the instruction prompt sent ahead of a batch's
// groups. The Translation Rules section is included only when rules is
// non-empty; a prompt with no rules loaded for the target language must not
// mention it at all.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are translating subtitles from %s to %s (%s).\n",
		in.SourceLangName, in.TargetLangName, in.TargetLangCode)
	fmt.Fprintf(&b, "Keep each line to at most %d characters when natural.\n", in.MaxCharsPerLine)
	b.WriteString("Preserve meaning, tone, and register. Do not add commentary.\n")

	if rules := strings.TrimSpace(in.Rules); rules != "" {
		b.WriteString("\nTranslation Rules\n")
		b.WriteString(rules)
		b.WriteString("\n")
	}

	if len(in.Context) > 0 {
		b.WriteString("\nPreceding context (source|target):\n")
		for _, pair := range in.Context {
			fmt.Fprintf(&b, "%s|%s\n", pair.Source, pair.Target)
		}
	}

	b.WriteString("\nTranslate each numbered line below. Reply with exactly one line per ")
	b.WriteString("input, in the form \"N: translated text\", in the same order, with no ")
	b.WriteString("extra commentary.\n\n")
	for i, group := range in.Groups {
		fmt.Fprintf(&b, "%s: %s\n", strconv.Itoa(i+1), group)
	}

	return b.String()
}
