package filters

import (
	"bytes"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
// Whitespace is ignored, > marks end of data and an odd final digit is
// padded with 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false

	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			return nil, pdferr.Malformedf("ASCIIHexDecode: invalid hex digit %q", c)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// ASCII85Decode decodes ASCII base-85 data. Each group of 5 characters
// (! to u) encodes 4 bytes, z encodes four zero bytes and ~> ends the data.
// A final partial group must have at least 2 characters.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(bytes.TrimLeft(data, " \t\r\n\f\x00"), []byte("<~"))

	var out bytes.Buffer
	var group [5]byte
	n := 0

	flush := func(count int) error {
		for i := count; i < 5; i++ {
			group[i] = 'u' - '!'
		}
		var value uint64
		for _, d := range group {
			value = value*85 + uint64(d)
		}
		if value > 0xFFFFFFFF {
			return pdferr.Malformedf("ASCII85Decode: group out of range")
		}
		word := []byte{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
		out.Write(word[:count-1])
		return nil
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isWhitespace(c):
			continue
		case c == '~':
			if i+1 < len(data) && data[i+1] != '>' {
				return nil, pdferr.Malformedf("ASCII85Decode: invalid end marker")
			}
			i = len(data)
			continue
		case c == 'z':
			if n != 0 {
				return nil, pdferr.Malformedf("ASCII85Decode: z inside a group")
			}
			out.Write([]byte{0, 0, 0, 0})
			continue
		case c < '!' || c > 'u':
			return nil, pdferr.Malformedf("ASCII85Decode: invalid character %q", c)
		}

		group[n] = c - '!'
		n++
		if n == 5 {
			if err := flush(5); err != nil {
				return nil, err
			}
			n = 0
		}
	}

	switch n {
	case 0:
	case 1:
		return nil, pdferr.Malformedf("ASCII85Decode: truncated group")
	default:
		if err := flush(n); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
