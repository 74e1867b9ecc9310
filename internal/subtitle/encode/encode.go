package encode

import (
	"fmt"
	"io"

	"subgen/internal/styles"
	"subgen/internal/subtitle"
)

// Format identifies an output subtitle container.
type Format string

const (
	KindSRT Format = "srt"
	KindVTT Format = "vtt"
	KindASS Format = "ass"
)

// Options controls how a Project is rendered to subtitle text.
type Options struct {
	Format    Format
	Bilingual bool
	Style     styles.StyleProfile
}

// Encode writes p to w in the requested format. Bilingual mode renders both
// Segment.Text and Segment.Translated; segments missing a translation fall
// back to the source text alone.
func Encode(w io.Writer, p *subtitle.Project, opts Options) error {
	switch opts.Format {
	case KindSRT, "":
		return encodeSRT(w, p, opts.Bilingual)
	case KindVTT:
		return encodeVTT(w, p, opts.Bilingual)
	case KindASS:
		return encodeASS(w, p, opts)
	default:
		return fmt.Errorf("encode: unsupported format %q", opts.Format)
	}
}

func encodeSRT(w io.Writer, p *subtitle.Project, bilingual bool) error {
	for i, seg := range p.Segments {
		text := seg.Text
		if bilingual && seg.Translated != "" {
			text = seg.Text + "\n" + seg.Translated
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatSRT(seg.StartSec), FormatSRT(seg.EndSec), text); err != nil {
			return err
		}
	}
	return nil
}

func encodeVTT(w io.Writer, p *subtitle.Project, bilingual bool) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, seg := range p.Segments {
		text := seg.Text
		if bilingual && seg.Translated != "" {
			text = seg.Text + "\n" + seg.Translated
		}
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			FormatVTT(seg.StartSec), FormatVTT(seg.EndSec), text); err != nil {
			return err
		}
	}
	return nil
}

func encodeASS(w io.Writer, p *subtitle.Project, opts Options) error {
	sp := opts.Style
	if sp.Name == "" {
		sp = styles.DefaultProfile()
	}
	if _, err := fmt.Fprint(w, styles.ToASSHeader(sp)); err != nil {
		return err
	}
	for _, seg := range p.Segments {
		start, end := FormatASS(seg.StartSec), FormatASS(seg.EndSec)
		if opts.Bilingual && seg.Translated != "" {
			override := styles.BilingualOverrideTag(sp.Secondary)
			text := "{" + override + "}" + EscapeASSText(seg.Translated) + `\N` + EscapeASSText(seg.Text)
			if _, err := fmt.Fprint(w, styles.DialogueLine(start, end, "Default", text)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprint(w, styles.DialogueLine(start, end, "Default", EscapeASSText(seg.Text))); err != nil {
			return err
		}
	}
	return nil
}
