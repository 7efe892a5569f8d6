// Package font maps the strings shown by content streams to text and
// glyph advances.
//
// # Fonts
//
// [New] builds a [Font] from a font resource dictionary. Simple fonts
// (Type1, TrueType, Type3) use single-byte codes; composite Type0 fonts
// split strings with their encoding [CMap] and read widths from the
// descendant CIDFont's W array.
//
//	f, err := font.New(fontDict, objects)
//	for _, g := range f.Glyphs(raw) {
//	    fmt.Println(g.Text, g.Advance)
//	}
//
// # Encodings
//
// Base encodings come from golang.org/x/text charmaps (WinAnsiEncoding is
// Windows-1252, MacRomanEncoding is Macintosh) with StandardEncoding and
// PDFDocEncoding tables alongside. Differences arrays overlay glyph names,
// resolved with [GlyphRunes], which also understands uniXXXX and uXXXX
// names.
//
// # CMaps
//
// ToUnicode CMaps take precedence over the encoding. [ParseCMap] reads
// codespace ranges, bfchar and bfrange (both base+offset and array forms)
// and the cidchar/cidrange sections of encoding CMaps.
//
// # Widths
//
// Widths come from the Widths array, then the descriptor's MissingWidth,
// then the built-in metrics of the standard 14 fonts.
package font
