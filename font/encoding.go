package font

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/yob/pdf-reader-sub001/core"
)

// Encoding maps the single-byte codes of a simple font to text.
type Encoding struct {
	Name  string
	table [256]string
}

// standardHigh holds StandardEncoding where it departs from ASCII.
var standardHigh = map[byte]rune{
	0x27: '’', 0x60: '‘',
	0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄', 0xA5: '¥', 0xA6: 'ƒ', 0xA7: '§',
	0xA8: '¤', 0xA9: '\'', 0xAA: '“', 0xAB: '«', 0xAC: '‹', 0xAD: '›', 0xAE: 'ﬁ',
	0xAF: 'ﬂ', 0xB1: '–', 0xB2: '†', 0xB3: '‡', 0xB4: '·', 0xB6: '¶', 0xB7: '•',
	0xB8: '‚', 0xB9: '„', 0xBA: '”', 0xBB: '»', 0xBC: '…', 0xBD: '‰', 0xBF: '¿',
	0xC1: '`', 0xC2: '´', 0xC3: 'ˆ', 0xC4: '˜', 0xC5: '¯', 0xC6: '˘', 0xC7: '˙',
	0xC8: '¨', 0xCA: '˚', 0xCB: '¸', 0xCD: '˝', 0xCE: '˛', 0xCF: 'ˇ', 0xD0: '—',
	0xE1: 'Æ', 0xE3: 'ª', 0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ', 0xEB: 'º', 0xF1: 'æ',
	0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø', 0xFA: 'œ', 0xFB: 'ß',
}

// NewEncoding returns a base encoding by name. WinAnsiEncoding and
// MacRomanEncoding come from the Windows-1252 and Macintosh charmaps;
// unknown names fall back to StandardEncoding.
func NewEncoding(name string) *Encoding {
	e := &Encoding{Name: name}
	switch name {
	case "WinAnsiEncoding":
		e.fillCharmap(charmap.Windows1252)
		// 1252 leaves these undefined; PDF maps them to bullets
		for _, b := range []byte{0x7F, 0x81, 0x8D, 0x8F, 0x90, 0x9D} {
			e.table[b] = "•"
		}
	case "MacRomanEncoding", "MacExpertEncoding":
		e.fillCharmap(charmap.Macintosh)
	case "PDFDocEncoding":
		for b := 0; b < 256; b++ {
			e.table[b] = string(core.PDFDocRune(byte(b)))
		}
	case "Identity":
		for b := 0; b < 256; b++ {
			e.table[b] = string(rune(b))
		}
	default:
		e.Name = "StandardEncoding"
		for b := 0x20; b < 0x7F; b++ {
			e.table[b] = string(rune(b))
		}
		for b, r := range standardHigh {
			e.table[b] = string(r)
		}
	}
	return e
}

func (e *Encoding) fillCharmap(cm *charmap.Charmap) {
	for b := 0; b < 256; b++ {
		r := cm.DecodeByte(byte(b))
		if b < 0x20 && r == rune(b) {
			continue
		}
		e.table[b] = string(r)
	}
}

// ApplyDifferences overlays a Differences array: an integer sets the next
// code, each following name is assigned to successive codes.
func (e *Encoding) ApplyDifferences(diffs core.Array) {
	code := 0
	for _, item := range diffs {
		switch v := item.(type) {
		case core.Int:
			code = int(v)
		case core.Real:
			code = int(v)
		case core.Name:
			if code >= 0 && code < 256 {
				if r := GlyphRunes(string(v)); r != nil {
					e.table[code] = string(r)
				} else {
					e.table[code] = ""
				}
			}
			code++
		}
	}
}

// Text returns the text for a code, or "" when the code is unmapped.
func (e *Encoding) Text(code byte) string {
	return e.table[code]
}

// DecodeString maps every byte through the encoding, dropping unmapped
// codes.
func (e *Encoding) DecodeString(data []byte) string {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		out = append(out, e.table[b]...)
	}
	return string(out)
}
