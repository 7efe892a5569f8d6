package font

import (
	"strconv"
	"strings"
)

// glyphNames maps Adobe glyph names to Unicode for the glyphs used by the
// standard Latin encodings, common ligatures and the Greek letters of the
// Symbol font.
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "parenleft": '(',
	"parenright": ')', "asterisk": '*', "plus": '+', "comma": ',', "hyphen": '-',
	"period": '.', "slash": '/', "zero": '0', "one": '1', "two": '2', "three": '3',
	"four": '4', "five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@', "bracketleft": '[', "backslash": '\\',
	"bracketright": ']', "asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',

	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„', "guillemotleft": '«',
	"guillemotright": '»', "guilsinglleft": '‹', "guilsinglright": '›',
	"endash": '–', "emdash": '—', "bullet": '•', "ellipsis": '…', "dagger": '†',
	"daggerdbl": '‡', "perthousand": '‰', "trademark": '™', "Euro": '€',
	"fraction": '⁄', "florin": 'ƒ', "minus": '−', "periodcentered": '·',
	"exclamdown": '¡', "cent": '¢', "sterling": '£', "currency": '¤', "yen": '¥',
	"brokenbar": '¦', "section": '§', "dieresis": '¨', "copyright": '©',
	"ordfeminine": 'ª', "logicalnot": '¬', "sfthyphen": '­', "registered": '®',
	"macron": '¯', "degree": '°', "plusminus": '±', "twosuperior": '²',
	"threesuperior": '³', "acute": '´', "mu": 'µ', "paragraph": '¶',
	"cedilla": '¸', "onesuperior": '¹', "ordmasculine": 'º', "onequarter": '¼',
	"onehalf": '½', "threequarters": '¾', "questiondown": '¿', "multiply": '×',
	"divide": '÷', "nbspace": ' ', "circumflex": 'ˆ', "tilde": '˜',
	"breve": '˘', "dotaccent": '˙', "ring": '˚', "hungarumlaut": '˝',
	"ogonek": '˛', "caron": 'ˇ', "dotlessi": 'ı',

	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â', "Atilde": 'Ã',
	"Adieresis": 'Ä', "Aring": 'Å', "AE": 'Æ', "Ccedilla": 'Ç', "Egrave": 'È',
	"Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë', "Igrave": 'Ì',
	"Iacute": 'Í', "Icircumflex": 'Î', "Idieresis": 'Ï', "Eth": 'Ð',
	"Ntilde": 'Ñ', "Ograve": 'Ò', "Oacute": 'Ó', "Ocircumflex": 'Ô',
	"Otilde": 'Õ', "Odieresis": 'Ö', "Oslash": 'Ø', "Ugrave": 'Ù',
	"Uacute": 'Ú', "Ucircumflex": 'Û', "Udieresis": 'Ü', "Yacute": 'Ý',
	"Thorn": 'Þ', "germandbls": 'ß', "agrave": 'à', "aacute": 'á',
	"acircumflex": 'â', "atilde": 'ã', "adieresis": 'ä', "aring": 'å', "ae": 'æ',
	"ccedilla": 'ç', "egrave": 'è', "eacute": 'é', "ecircumflex": 'ê',
	"edieresis": 'ë', "igrave": 'ì', "iacute": 'í', "icircumflex": 'î',
	"idieresis": 'ï', "eth": 'ð', "ntilde": 'ñ', "ograve": 'ò', "oacute": 'ó',
	"ocircumflex": 'ô', "otilde": 'õ', "odieresis": 'ö', "oslash": 'ø',
	"ugrave": 'ù', "uacute": 'ú', "ucircumflex": 'û', "udieresis": 'ü',
	"yacute": 'ý', "thorn": 'þ', "ydieresis": 'ÿ', "Ydieresis": 'Ÿ',
	"OE": 'Œ', "oe": 'œ', "Scaron": 'Š', "scaron": 'š', "Zcaron": 'Ž',
	"zcaron": 'ž', "Lslash": 'Ł', "lslash": 'ł',

	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ',

	"Alpha": 'Α', "Beta": 'Β', "Gamma": 'Γ', "Delta": 'Δ', "Epsilon": 'Ε',
	"Zeta": 'Ζ', "Eta": 'Η', "Theta": 'Θ', "Iota": 'Ι', "Kappa": 'Κ',
	"Lambda": 'Λ', "Mu": 'Μ', "Nu": 'Ν', "Xi": 'Ξ', "Omicron": 'Ο', "Pi": 'Π',
	"Rho": 'Ρ', "Sigma": 'Σ', "Tau": 'Τ', "Upsilon": 'Υ', "Phi": 'Φ',
	"Chi": 'Χ', "Psi": 'Ψ', "Omega": 'Ω', "alpha": 'α', "beta": 'β',
	"gamma": 'γ', "delta": 'δ', "epsilon": 'ε', "zeta": 'ζ', "eta": 'η',
	"theta": 'θ', "iota": 'ι', "kappa": 'κ', "lambda": 'λ', "nu": 'ν',
	"xi": 'ξ', "omicron": 'ο', "pi": 'π', "rho": 'ρ', "sigma": 'σ',
	"sigma1": 'ς', "tau": 'τ', "upsilon": 'υ', "phi": 'φ', "chi": 'χ',
	"psi": 'ψ', "omega": 'ω',
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		glyphNames[string(c)] = c
		glyphNames[string(c+'a'-'A')] = c + 'a' - 'A'
	}
}

// GlyphRunes returns the text for a glyph name. Besides the names in the
// table it understands uniXXXX (one or more groups of four hex digits),
// uXXXX to uXXXXXX, ligatures joined with underscores and suffixes after
// a period. Unknown names return nil.
func GlyphRunes(name string) []rune {
	if r, ok := glyphNames[name]; ok {
		return []rune{r}
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		return GlyphRunes(name[:i])
	}
	if strings.Contains(name, "_") {
		var out []rune
		for _, part := range strings.Split(name, "_") {
			r := GlyphRunes(part)
			if r == nil {
				return nil
			}
			out = append(out, r...)
		}
		return out
	}

	if strings.HasPrefix(name, "uni") && len(name) > 3 && (len(name)-3)%4 == 0 {
		var out []rune
		for i := 3; i < len(name); i += 4 {
			v, err := strconv.ParseUint(name[i:i+4], 16, 32)
			if err != nil {
				return nil
			}
			out = append(out, rune(v))
		}
		return out
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil && v <= 0x10FFFF {
			return []rune{rune(v)}
		}
	}
	return nil
}
