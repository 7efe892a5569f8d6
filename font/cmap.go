package font

import (
	"errors"
	"io"
	"sort"

	"golang.org/x/text/encoding/unicode"

	"github.com/yob/pdf-reader-sub001/core"
)

// CMap maps character codes to Unicode text (ToUnicode CMaps) or to CIDs
// (encoding CMaps of composite fonts). Codes are 1 to 4 bytes long; the
// codespace ranges decide how a byte string splits into codes.
type CMap struct {
	Name string

	codespaces []codespace

	// ToUnicode mappings
	chars  map[uint32][]rune
	ranges []bfRange

	// CID mappings
	cidChars  map[uint32]uint32
	cidRanges []cidRange

	// code length used when no codespace range is declared
	defaultLen int
}

// Code is one character code read from a string.
type Code struct {
	Value uint32
	Len   int // bytes consumed
}

type codespace struct {
	low, high []byte
}

type bfRange struct {
	low, high uint32
	base      []rune   // base+offset form
	list      [][]rune // array form
}

type cidRange struct {
	low, high uint32
	cid       uint32
}

// NewCMap creates an empty CMap
func NewCMap() *CMap {
	return &CMap{
		chars:    make(map[uint32][]rune),
		cidChars: make(map[uint32]uint32),
	}
}

// IdentityCMap returns the predefined Identity-H or Identity-V CMap: two
// byte codes mapping to the CID of the same value.
func IdentityCMap(name string) *CMap {
	c := NewCMap()
	c.Name = name
	c.codespaces = []codespace{{low: []byte{0, 0}, high: []byte{0xff, 0xff}}}
	c.cidRanges = []cidRange{{low: 0, high: 0xffff, cid: 0}}
	return c
}

// ParseCMap reads a CMap program. bfchar/bfrange sections build the
// Unicode mapping, cidchar/cidrange sections the CID mapping. Malformed
// entries are skipped.
func ParseCMap(data []byte) (*CMap, error) {
	c := NewCMap()
	buf := core.NewContentBuffer(data)
	p := core.NewParser(buf)

	var operands []core.Object
	for {
		tok, err := buf.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if tok.Type != core.TokenKeyword {
			obj, err := p.ParseToken(tok)
			if err != nil {
				// unterminated strings and the like end the program
				break
			}
			operands = append(operands, obj)
			continue
		}

		switch string(tok.Value) {
		case "endcodespacerange":
			for i := 0; i+1 < len(operands); i += 2 {
				lo, ok1 := operands[i].(core.String)
				hi, ok2 := operands[i+1].(core.String)
				if ok1 && ok2 && len(lo) == len(hi) && len(lo) > 0 && len(lo) <= 4 {
					c.codespaces = append(c.codespaces, codespace{low: []byte(lo), high: []byte(hi)})
				}
			}
		case "endbfchar":
			for i := 0; i+1 < len(operands); i += 2 {
				src, ok := operands[i].(core.String)
				if !ok {
					continue
				}
				c.noteLen(len(src))
				switch dst := operands[i+1].(type) {
				case core.String:
					c.chars[codeValue([]byte(src))] = utf16Runes(dst)
				case core.Name:
					c.chars[codeValue([]byte(src))] = GlyphRunes(string(dst))
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(operands); i += 3 {
				lo, ok1 := operands[i].(core.String)
				hi, ok2 := operands[i+1].(core.String)
				if !ok1 || !ok2 {
					continue
				}
				c.noteLen(len(lo))
				r := bfRange{low: codeValue([]byte(lo)), high: codeValue([]byte(hi))}
				switch dst := operands[i+2].(type) {
				case core.String:
					r.base = utf16Runes(dst)
				case core.Array:
					for _, item := range dst {
						if s, ok := item.(core.String); ok {
							r.list = append(r.list, utf16Runes(s))
						} else {
							r.list = append(r.list, nil)
						}
					}
				default:
					continue
				}
				if r.high >= r.low {
					c.ranges = append(c.ranges, r)
				}
			}
		case "endcidchar":
			for i := 0; i+1 < len(operands); i += 2 {
				src, ok1 := operands[i].(core.String)
				cid, ok2 := operands[i+1].(core.Int)
				if ok1 && ok2 {
					c.noteLen(len(src))
					c.cidChars[codeValue([]byte(src))] = uint32(cid)
				}
			}
		case "endcidrange":
			for i := 0; i+2 < len(operands); i += 3 {
				lo, ok1 := operands[i].(core.String)
				hi, ok2 := operands[i+1].(core.String)
				cid, ok3 := operands[i+2].(core.Int)
				if ok1 && ok2 && ok3 {
					c.noteLen(len(lo))
					c.cidRanges = append(c.cidRanges, cidRange{low: codeValue([]byte(lo)), high: codeValue([]byte(hi)), cid: uint32(cid)})
				}
			}
		case "def":
			if len(operands) == 2 {
				if key, ok := operands[0].(core.Name); ok && key == "CMapName" {
					if name, ok := operands[1].(core.Name); ok {
						c.Name = string(name)
					}
				}
			}
		}
		operands = operands[:0]
	}

	sort.SliceStable(c.ranges, func(i, j int) bool { return c.ranges[i].low < c.ranges[j].low })
	return c, nil
}

func (c *CMap) noteLen(n int) {
	if n > c.defaultLen && n <= 4 {
		c.defaultLen = n
	}
}

// Decode splits data into character codes. Bytes that match no codespace
// range are consumed with the shortest declared code length.
func (c *CMap) Decode(data []byte) []Code {
	var codes []Code
	for i := 0; i < len(data); {
		n := c.codeLen(data[i:])
		if i+n > len(data) {
			n = len(data) - i
		}
		codes = append(codes, Code{Value: codeValue(data[i : i+n]), Len: n})
		i += n
	}
	return codes
}

func (c *CMap) codeLen(data []byte) int {
	if len(c.codespaces) == 0 {
		if c.defaultLen > 0 {
			return c.defaultLen
		}
		return 1
	}

	for n := 1; n <= 4 && n <= len(data); n++ {
		for _, cs := range c.codespaces {
			if len(cs.low) == n && inCodespace(data[:n], cs) {
				return n
			}
		}
	}
	shortest := 4
	for _, cs := range c.codespaces {
		if len(cs.low) < shortest {
			shortest = len(cs.low)
		}
	}
	return shortest
}

func inCodespace(b []byte, cs codespace) bool {
	for i := range b {
		if b[i] < cs.low[i] || b[i] > cs.high[i] {
			return false
		}
	}
	return true
}

// Lookup returns the text mapped to code
func (c *CMap) Lookup(code uint32) ([]rune, bool) {
	if r, ok := c.chars[code]; ok {
		return r, true
	}
	for _, rg := range c.ranges {
		if code < rg.low || code > rg.high {
			continue
		}
		off := code - rg.low
		if rg.list != nil {
			if int(off) < len(rg.list) && rg.list[off] != nil {
				return rg.list[off], true
			}
			return nil, false
		}
		if len(rg.base) == 0 {
			return nil, false
		}
		out := append([]rune(nil), rg.base...)
		out[len(out)-1] += rune(off)
		return out, true
	}
	return nil, false
}

// CID returns the CID mapped to code
func (c *CMap) CID(code uint32) (uint32, bool) {
	if cid, ok := c.cidChars[code]; ok {
		return cid, true
	}
	for _, rg := range c.cidRanges {
		if code >= rg.low && code <= rg.high {
			return rg.cid + (code - rg.low), true
		}
	}
	return 0, false
}

// HasUnicode reports whether the CMap holds any text mappings
func (c *CMap) HasUnicode() bool {
	return len(c.chars) > 0 || len(c.ranges) > 0
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// utf16Runes decodes a bfchar/bfrange destination. One byte is taken as a
// code point, longer strings as UTF-16BE.
func utf16Runes(s core.String) []rune {
	if len(s) == 1 {
		return []rune{rune(s[0])}
	}
	b := []byte(s)
	if len(b)%2 == 1 {
		b = append([]byte{0}, b...)
	}
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return nil
	}
	return []rune(string(out))
}
