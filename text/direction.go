package text

import (
	"unicode"
)

// Direction is the writing direction of a row of text
type Direction int

const (
	// LTR for Latin, Cyrillic, CJK and most other scripts
	LTR Direction = iota
	// RTL for Arabic, Hebrew, Syriac, Thaana and N'Ko
	RTL
	// Neutral for digits, punctuation, whitespace and symbols
	Neutral
)

// String returns "LTR", "RTL" or "Neutral"
func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

var rtlScripts = []*unicode.RangeTable{
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Syriac,
	unicode.Thaana,
	unicode.Nko,
}

// CharDirection returns the inherent direction of r
func CharDirection(r rune) Direction {
	if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
		return Neutral
	}
	if unicode.In(r, rtlScripts...) {
		return RTL
	}
	return LTR
}

// DetectDirection returns the dominant direction of s by counting strong
// characters. Ties go to LTR; strings without strong characters are
// Neutral.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	default:
		return LTR
	}
}
