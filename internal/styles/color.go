package styles

import (
	"fmt"

	"subgen/internal/subgenerr"
)

// HexToASSColor converts a "#RRGGBB" or "#AARRGGBB" hex color into the BGR
// (and optionally alpha) hex format ASS style lines expect: "&H00BBGGRR" or
// "&HAABBGGRR". ASS stores color channels in reverse order from HTML/hex and
// defaults to fully opaque (alpha "00") when no alpha channel is given.
func HexToASSColor(hex string) (string, error) {
	digits, err := hexDigits(hex)
	if err != nil {
		return "", err
	}
	switch len(digits) {
	case 6:
		rr, gg, bb := digits[0:2], digits[2:4], digits[4:6]
		return "&H00" + bb + gg + rr, nil
	case 8:
		aa, rr, gg, bb := digits[0:2], digits[2:4], digits[4:6], digits[6:8]
		return "&H" + aa + bb + gg + rr, nil
	default:
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "hex to ass color",
			fmt.Sprintf("color %q must have 6 or 8 hex digits", hex), nil)
	}
}

// ASSColorToHex inverts HexToASSColor: "&H00BBGGRR" becomes "#RRGGBB" and
// "&HAABBGGRR" becomes "#AARRGGBB". Used for round-tripping style overrides
// loaded back out of a saved ASS header or config file.
func ASSColorToHex(ass string) (string, error) {
	digits, err := hexDigits(ass)
	if err != nil {
		return "", err
	}
	switch len(digits) {
	case 6:
		aa, bb, gg, rr := "00", digits[0:2], digits[2:4], digits[4:6]
		if aa == "00" {
			return "#" + rr + gg + bb, nil
		}
		return "#" + aa + rr + gg + bb, nil
	case 8:
		aa, bb, gg, rr := digits[0:2], digits[2:4], digits[4:6], digits[6:8]
		if aa == "00" {
			return "#" + rr + gg + bb, nil
		}
		return "#" + aa + rr + gg + bb, nil
	default:
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "ass color to hex",
			fmt.Sprintf("ass color %q must have 6 or 8 hex digits", ass), nil)
	}
}

// hexDigits strips a leading "#" or "&H" marker and validates the remainder
// is all hex digits, returning it uppercased for consistent slicing.
func hexDigits(s string) (string, error) {
	switch {
	case len(s) > 0 && s[0] == '#':
		s = s[1:]
	case len(s) > 2 && (s[0:2] == "&H" || s[0:2] == "&h"):
		s = s[2:]
	}
	if len(s) != 6 && len(s) != 8 {
		return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "parse hex color",
			fmt.Sprintf("color %q must have 6 or 8 hex digits", s), nil)
	}
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			out[i] = c
		case c >= 'a' && c <= 'f':
			out[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'F':
			out[i] = c
		default:
			return "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "parse hex color",
				fmt.Sprintf("invalid hex character %q in color %q", string(c), s), nil)
		}
	}
	return string(out), nil
}
