package font

import "strings"

// standardWidths holds glyph widths, in thousandths of text space, of the
// standard 14 fonts keyed by the text they show.
var standardWidths = map[string]map[rune]float64{
	"Helvetica":             helveticaWidths,
	"Helvetica-Bold":        helveticaBoldWidths,
	"Helvetica-Oblique":     helveticaWidths,
	"Helvetica-BoldOblique": helveticaBoldWidths,
	"Times-Roman":           timesWidths,
	"Times-Bold":            timesBoldWidths,
	"Times-Italic":          timesWidths,
	"Times-BoldItalic":      timesBoldWidths,
	"Courier":               courierWidths,
	"Courier-Bold":          courierWidths,
	"Courier-Oblique":       courierWidths,
	"Courier-BoldOblique":   courierWidths,
	"Symbol":                symbolWidths,
	"ZapfDingbats":          zapfDingbatsWidths,
}

var helveticaWidths = map[rune]float64{
	' ':  278,
	'!':  278,
	'"':  355,
	'#':  556,
	'$':  556,
	'%':  889,
	'&':  667,
	'\'': 191,
	'(':  333,
	')':  333,
	'*':  389,
	'+':  584,
	',':  278,
	'-':  333,
	'.':  278,
	'/':  278,
	'0':  556,
	'1':  556,
	'2':  556,
	'3':  556,
	'4':  556,
	'5':  556,
	'6':  556,
	'7':  556,
	'8':  556,
	'9':  556,
	':':  278,
	';':  278,
	'<':  584,
	'=':  584,
	'>':  584,
	'?':  556,
	'@':  1015,
	'A':  667,
	'B':  667,
	'C':  722,
	'D':  722,
	'E':  667,
	'F':  611,
	'G':  778,
	'H':  722,
	'I':  278,
	'J':  500,
	'K':  667,
	'L':  556,
	'M':  833,
	'N':  722,
	'O':  778,
	'P':  667,
	'Q':  778,
	'R':  722,
	'S':  667,
	'T':  611,
	'U':  722,
	'V':  667,
	'W':  944,
	'X':  667,
	'Y':  667,
	'Z':  611,
	'[':  278,
	'\\': 278,
	']':  278,
	'^':  469,
	'_':  556,
	'`':  333,
	'a':  556,
	'b':  556,
	'c':  500,
	'd':  556,
	'e':  556,
	'f':  278,
	'g':  556,
	'h':  556,
	'i':  222,
	'j':  222,
	'k':  500,
	'l':  222,
	'm':  833,
	'n':  556,
	'o':  556,
	'p':  556,
	'q':  556,
	'r':  333,
	's':  500,
	't':  278,
	'u':  556,
	'v':  500,
	'w':  722,
	'x':  500,
	'y':  500,
	'z':  500,
	'{':  334,
	'|':  260,
	'}':  334,
	'~':  584,
}

var helveticaBoldWidths = map[rune]float64{
	' ': 278,
	'A': 722,
	'B': 722,
	'C': 722,
	'D': 722,
	'E': 667,
	'F': 611,
	'G': 778,
	'H': 722,
	'I': 278,
	'J': 556,
	'K': 722,
	'L': 611,
	'M': 833,
	'N': 722,
	'O': 778,
	'P': 667,
	'Q': 778,
	'R': 722,
	'S': 667,
	'T': 611,
	'U': 722,
	'V': 667,
	'W': 944,
	'X': 667,
	'Y': 667,
	'Z': 611,
	'a': 556,
	'b': 611,
	'c': 556,
	'd': 611,
	'e': 556,
	'f': 333,
	'g': 611,
	'h': 611,
	'i': 278,
	'j': 278,
	'k': 556,
	'l': 278,
	'm': 889,
	'n': 611,
	'o': 611,
	'p': 611,
	'q': 611,
	'r': 389,
	's': 556,
	't': 333,
	'u': 611,
	'v': 556,
	'w': 778,
	'x': 556,
	'y': 556,
	'z': 500,
}

var timesWidths = map[rune]float64{
	' ': 250,
	'A': 722,
	'B': 667,
	'C': 667,
	'D': 722,
	'E': 611,
	'F': 556,
	'G': 722,
	'H': 722,
	'I': 333,
	'J': 389,
	'K': 722,
	'L': 611,
	'M': 889,
	'N': 722,
	'O': 722,
	'P': 556,
	'Q': 722,
	'R': 667,
	'S': 556,
	'T': 611,
	'U': 722,
	'V': 722,
	'W': 944,
	'X': 722,
	'Y': 722,
	'Z': 611,
	'a': 444,
	'b': 500,
	'c': 444,
	'd': 500,
	'e': 444,
	'f': 333,
	'g': 500,
	'h': 500,
	'i': 278,
	'j': 278,
	'k': 500,
	'l': 278,
	'm': 778,
	'n': 500,
	'o': 500,
	'p': 500,
	'q': 500,
	'r': 333,
	's': 389,
	't': 278,
	'u': 500,
	'v': 500,
	'w': 722,
	'x': 500,
	'y': 500,
	'z': 444,
}

var timesBoldWidths = map[rune]float64{
	' ': 250,
	'A': 722,
	'B': 667,
	'C': 722,
	'D': 722,
	'E': 667,
	'F': 611,
	'G': 778,
	'H': 778,
	'I': 389,
	'J': 500,
	'K': 778,
	'L': 667,
	'M': 944,
	'N': 722,
	'O': 778,
	'P': 611,
	'Q': 778,
	'R': 722,
	'S': 556,
	'T': 667,
	'U': 722,
	'V': 722,
	'W': 1000,
	'X': 722,
	'Y': 722,
	'Z': 667,
	'a': 500,
	'b': 556,
	'c': 444,
	'd': 556,
	'e': 444,
	'f': 333,
	'g': 500,
	'h': 556,
	'i': 278,
	'j': 333,
	'k': 556,
	'l': 278,
	'm': 833,
	'n': 556,
	'o': 500,
	'p': 556,
	'q': 556,
	'r': 444,
	's': 389,
	't': 333,
	'u': 556,
	'v': 500,
	'w': 722,
	'x': 500,
	'y': 500,
	'z': 444,
}

var courierWidths = map[rune]float64{}

var symbolWidths = map[rune]float64{}

var zapfDingbatsWidths = map[rune]float64{}

func init() {
	for r := rune(32); r <= 126; r++ {
		courierWidths[r] = 600
		symbolWidths[r] = 500
		zapfDingbatsWidths[r] = 500
	}
}

// standardWidth returns the width of text in one of the standard 14
// fonts. Subset prefixes ("ABCDEF+Helvetica") are ignored; Courier is
// 600 for every glyph.
func standardWidth(baseFont string, text string) (float64, bool) {
	if len(baseFont) > 7 && baseFont[6] == '+' {
		baseFont = baseFont[7:]
	}
	widths, ok := standardWidths[baseFont]
	if !ok {
		return 0, false
	}
	if strings.HasPrefix(baseFont, "Courier") {
		return 600, true
	}
	var total float64
	for _, r := range text {
		w, ok := widths[r]
		if !ok {
			w = 500
		}
		total += w
	}
	return total, true
}
