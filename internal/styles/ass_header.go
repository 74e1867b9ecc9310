package styles

import (
	"fmt"
	"strings"
)

// ToASSHeader renders a StyleProfile as the "[Script Info]" / "[V4+ Styles]"
// / "[Events]" header every ASS file needs before its Dialogue lines.
func ToASSHeader(sp StyleProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Script Info]\n")
	fmt.Fprintf(&b, "ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", sp.PlayResX)
	fmt.Fprintf(&b, "PlayResY: %d\n", sp.PlayResY)
	fmt.Fprintf(&b, "\n[V4+ Styles]\n")
	fmt.Fprintf(&b, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	b.WriteString(formatStyleLine("Default", sp.Primary, sp.Alignment, sp.MarginBottom))
	b.WriteString(formatStyleLine("Secondary", sp.Secondary, sp.Alignment, sp.MarginBottom))
	fmt.Fprintf(&b, "\n[Events]\n")
	fmt.Fprintf(&b, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	return b.String()
}

// formatStyleLine renders one "Style:" line. Invalid colors fall back to
// opaque white/black rather than failing header generation outright; a
// malformed override should not abort subtitle export.
func formatStyleLine(name string, fs FontStyle, alignment, marginBottom int) string {
	primary, err := HexToASSColor(fs.Color)
	if err != nil {
		primary = "&H00FFFFFF"
	}
	outline, err := HexToASSColor(fs.OutlineColor)
	if err != nil {
		outline = "&H00000000"
	}
	bold, italic := 0, 0
	if fs.Bold {
		bold = -1
	}
	if fs.Italic {
		italic = -1
	}
	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,&H000000FF,%s,&H00000000,%d,%d,0,0,100,100,0,0,1,%d,%d,%d,10,10,%d,1\n",
		name, fs.Font, fs.Size, primary, outline, bold, italic,
		fs.OutlineWidth, fs.ShadowWidth, alignment, marginBottom,
	)
}

// DialogueLine renders a single ASS "Dialogue:" line for the given start/end
// times (already formatted with encode.FormatASS) and pre-escaped text.
func DialogueLine(start, end, style, text string) string {
	return fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", start, end, style, text)
}

// BilingualOverrideTag builds the inline ASS override block
// ("\fnFont\fsSize\cColor") applied to the secondary line in a bilingual
// Dialogue so it renders in the secondary style without a second style
// line. Falls back to no color override when the hex color is invalid.
func BilingualOverrideTag(fs FontStyle) string {
	var b strings.Builder
	b.WriteString(`\fn`)
	b.WriteString(fs.Font)
	fmt.Fprintf(&b, `\fs%d`, fs.Size)
	if color, err := HexToASSColor(fs.Color); err == nil {
		b.WriteString(`\c`)
		b.WriteString(color)
	}
	return b.String()
}
