package core

import (
	"bytes"
	"io"
	"strconv"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF         TokenType = iota
	TokenKeyword               // obj, endobj, stream, R, content stream operators
	TokenInteger               // 123
	TokenReal                  // 3.14
	TokenString                // (hello)
	TokenHexString             // <48656C6C6F>
	TokenName                  // /Type
	TokenArrayStart            // [
	TokenArrayEnd              // ]
	TokenDictStart             // <<
	TokenDictEnd               // >>
	TokenProcStart             // {
	TokenProcEnd               // }
	TokenInlineImage           // raw bytes between ID and EI
)

// String returns the name of the token type
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenKeyword:
		return "Keyword"
	case TokenInteger:
		return "Integer"
	case TokenReal:
		return "Real"
	case TokenString:
		return "String"
	case TokenHexString:
		return "HexString"
	case TokenName:
		return "Name"
	case TokenArrayStart:
		return "ArrayStart"
	case TokenArrayEnd:
		return "ArrayEnd"
	case TokenDictStart:
		return "DictStart"
	case TokenDictEnd:
		return "DictEnd"
	case TokenProcStart:
		return "ProcStart"
	case TokenProcEnd:
		return "ProcEnd"
	case TokenInlineImage:
		return "InlineImage"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token. Value holds the decoded payload for
// strings and names and the literal text otherwise. Raw is the exact source
// text of the token.
type Token struct {
	Type       TokenType
	Value      []byte
	Raw        []byte
	Pos        int64
	Terminated bool // strings and inline image data reached their end marker
}

// Is reports whether the token is the given keyword
func (t Token) Is(keyword string) bool {
	return t.Type == TokenKeyword && string(t.Value) == keyword
}

const bufferWindow = 4096

// Buffer tokenizes PDF syntax from an io.ReaderAt. It keeps its own
// offset, so several buffers can share one reader.
type Buffer struct {
	r    io.ReaderAt
	size int64
	pos  int64

	window    []byte
	windowOff int64

	pending     []Token
	content     bool
	inlineImage bool
}

// NewBuffer creates a buffer over r starting at offset
func NewBuffer(r io.ReaderAt, size, offset int64) *Buffer {
	return &Buffer{r: r, size: size, pos: offset}
}

// NewBytesBuffer creates a buffer over an in-memory byte slice
func NewBytesBuffer(data []byte) *Buffer {
	return NewBuffer(bytes.NewReader(data), int64(len(data)), 0)
}

// NewContentBuffer creates a buffer in content stream mode. Content mode
// recognizes inline image data after the ID operator.
func NewContentBuffer(data []byte) *Buffer {
	b := NewBytesBuffer(data)
	b.content = true
	return b
}

// Size returns the length of the underlying data
func (b *Buffer) Size() int64 { return b.size }

// Pos returns the offset of the next unread byte. Tokens pushed back with
// Unread are not accounted for.
func (b *Buffer) Pos() int64 {
	if n := len(b.pending); n > 0 {
		return b.pending[n-1].Pos
	}
	return b.pos
}

// SeekTo moves to an absolute offset and drops any pushed back tokens
func (b *Buffer) SeekTo(offset int64) {
	b.pos = offset
	b.pending = b.pending[:0]
	b.inlineImage = false
}

// ContentMode reports whether the buffer tokenizes a content stream
func (b *Buffer) ContentMode() bool { return b.content }

// Unread pushes a token back; the next call to Token returns it
func (b *Buffer) Unread(tok Token) {
	b.pending = append(b.pending, tok)
}

// Peek returns the next token without consuming it
func (b *Buffer) Peek() (Token, error) {
	tok, err := b.Token()
	if err != nil {
		return tok, err
	}
	b.Unread(tok)
	return tok, nil
}

// Read returns the next n raw bytes. With skipEOL it first skips the single
// end-of-line marker that follows the stream keyword.
func (b *Buffer) Read(n int, skipEOL bool) ([]byte, error) {
	if p := len(b.pending); p > 0 {
		b.pos = b.pending[p-1].Pos
		b.pending = b.pending[:0]
	}
	if skipEOL {
		b.skipEOL()
	}
	if n < 0 || b.pos+int64(n) > b.size {
		return nil, pdferr.Malformedf("read of %d bytes at offset %d past end of data", n, b.pos)
	}
	out := b.slice(b.pos, b.pos+int64(n))
	b.pos += int64(n)
	return out, nil
}

// Index returns the offset of the next occurrence of pattern at or after
// the current position, or -1.
func (b *Buffer) Index(pattern []byte) int64 {
	const chunk = 64 * 1024
	off := b.pos
	for off < b.size {
		end := off + chunk + int64(len(pattern))
		if end > b.size {
			end = b.size
		}
		data := b.slice(off, end)
		if i := bytes.Index(data, pattern); i >= 0 {
			return off + int64(i)
		}
		if end == b.size {
			break
		}
		off += chunk
	}
	return -1
}

// Token returns the next token. At the end of the data it returns a
// TokenEOF token and io.EOF.
func (b *Buffer) Token() (Token, error) {
	if n := len(b.pending); n > 0 {
		tok := b.pending[n-1]
		b.pending = b.pending[:n-1]
		return tok, nil
	}
	if b.inlineImage {
		b.inlineImage = false
		return b.readInlineImage(), nil
	}

	b.skipWhitespaceAndComments()
	start := b.pos
	c, ok := b.peekByte()
	if !ok {
		return Token{Type: TokenEOF, Pos: start}, io.EOF
	}

	var tok Token
	switch c {
	case '[':
		tok = b.single(TokenArrayStart)
	case ']':
		tok = b.single(TokenArrayEnd)
	case '{':
		tok = b.single(TokenProcStart)
	case '}':
		tok = b.single(TokenProcEnd)
	case '(':
		tok = b.readLiteralString()
	case '/':
		tok = b.readName()
	case '<':
		if next, ok := b.byteAt(start + 1); ok && next == '<' {
			b.pos += 2
			tok = Token{Type: TokenDictStart, Value: []byte("<<"), Raw: []byte("<<"), Pos: start}
		} else {
			tok = b.readHexString()
		}
	case '>':
		if next, ok := b.byteAt(start + 1); ok && next == '>' {
			b.pos += 2
			tok = Token{Type: TokenDictEnd, Value: []byte(">>"), Raw: []byte(">>"), Pos: start}
		} else {
			tok = b.single(TokenKeyword)
		}
	case ')':
		tok = b.single(TokenKeyword)
	default:
		tok = b.readRegular()
	}

	if b.content && tok.Is("ID") {
		b.inlineImage = true
	}
	return tok, nil
}

func (b *Buffer) single(typ TokenType) Token {
	start := b.pos
	b.pos++
	v := b.slice(start, b.pos)
	return Token{Type: typ, Value: v, Raw: v, Pos: start}
}

func (b *Buffer) readRegular() Token {
	start := b.pos
	for {
		c, ok := b.peekByte()
		if !ok || isWhitespace(c) || isDelimiter(c) {
			break
		}
		b.pos++
	}
	v := b.slice(start, b.pos)
	return Token{Type: classifyRegular(v), Value: v, Raw: v, Pos: start}
}

// classifyRegular separates numbers from keywords. A number has an optional
// sign, digits with at most one decimal point and an optional exponent.
func classifyRegular(v []byte) TokenType {
	i := 0
	if i < len(v) && (v[i] == '+' || v[i] == '-') {
		i++
	}
	digits, dots := 0, 0
	for ; i < len(v); i++ {
		if isDigit(v[i]) {
			digits++
		} else if v[i] == '.' {
			dots++
		} else {
			break
		}
	}
	if digits == 0 || dots > 1 {
		return TokenKeyword
	}
	if i == len(v) {
		if dots == 1 {
			return TokenReal
		}
		return TokenInteger
	}
	if v[i] != 'e' && v[i] != 'E' {
		return TokenKeyword
	}
	i++
	if i < len(v) && (v[i] == '+' || v[i] == '-') {
		i++
	}
	if i == len(v) {
		return TokenKeyword
	}
	for ; i < len(v); i++ {
		if !isDigit(v[i]) {
			return TokenKeyword
		}
	}
	return TokenReal
}

func (b *Buffer) readLiteralString() Token {
	start := b.pos
	b.pos++ // (
	var out []byte
	depth := 1
	terminated := false

loop:
	for {
		c, ok := b.nextByte()
		if !ok {
			break
		}
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				terminated = true
				break loop
			}
			out = append(out, c)
		case '\r':
			// an unescaped end of line is stored as LF
			if next, ok := b.peekByte(); ok && next == '\n' {
				b.pos++
			}
			out = append(out, '\n')
		case '\\':
			e, ok := b.nextByte()
			if !ok {
				break loop
			}
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if next, ok := b.peekByte(); ok && next == '\n' {
					b.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := int(e - '0')
				for i := 0; i < 2; i++ {
					d, ok := b.peekByte()
					if !ok || d < '0' || d > '7' {
						break
					}
					b.pos++
					val = val*8 + int(d-'0')
				}
				out = append(out, byte(val))
			default:
				out = append(out, e)
			}
		default:
			out = append(out, c)
		}
	}

	return Token{
		Type:       TokenString,
		Value:      out,
		Raw:        b.slice(start, b.pos),
		Pos:        start,
		Terminated: terminated,
	}
}

func (b *Buffer) readHexString() Token {
	start := b.pos
	b.pos++ // <
	var digits []byte
	terminated := false
	for {
		c, ok := b.nextByte()
		if !ok {
			break
		}
		if c == '>' {
			terminated = true
			break
		}
		if _, ok := hexDigit(c); ok {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		hi, _ := hexDigit(digits[2*i])
		lo, _ := hexDigit(digits[2*i+1])
		out[i] = hi<<4 | lo
	}
	return Token{
		Type:       TokenHexString,
		Value:      out,
		Raw:        b.slice(start, b.pos),
		Pos:        start,
		Terminated: terminated,
	}
}

func (b *Buffer) readName() Token {
	start := b.pos
	b.pos++ // /
	var out []byte
	for {
		c, ok := b.peekByte()
		if !ok || isWhitespace(c) || isDelimiter(c) {
			break
		}
		b.pos++
		if c == '#' {
			h1, ok1 := b.byteAt(b.pos)
			h2, ok2 := b.byteAt(b.pos + 1)
			v1, hex1 := hexDigit(h1)
			v2, hex2 := hexDigit(h2)
			if ok1 && ok2 && hex1 && hex2 {
				b.pos += 2
				out = append(out, v1<<4|v2)
				continue
			}
		}
		out = append(out, c)
	}
	return Token{Type: TokenName, Value: out, Raw: b.slice(start, b.pos), Pos: start}
}

// readInlineImage collects the bytes between ID and EI. The data starts
// after the single whitespace byte following ID and ends before the
// whitespace that precedes an EI keyword.
func (b *Buffer) readInlineImage() Token {
	if c, ok := b.peekByte(); ok && isWhitespace(c) {
		b.pos++
	}
	start := b.pos
	off := start
	for {
		b.pos = off
		i := b.Index([]byte("EI"))
		if i < 0 {
			b.pos = b.size
			v := b.slice(start, b.size)
			return Token{Type: TokenInlineImage, Value: v, Raw: v, Pos: start}
		}
		before, okBefore := b.byteAt(i - 1)
		after, okAfter := b.byteAt(i + 2)
		if okBefore && isWhitespace(before) && (!okAfter || isWhitespace(after) || isDelimiter(after)) {
			b.pos = i
			v := b.slice(start, i-1)
			return Token{Type: TokenInlineImage, Value: v, Raw: v, Pos: start, Terminated: true}
		}
		off = i + 1
	}
}

// skipEOL skips one CR, LF or CRLF
func (b *Buffer) skipEOL() {
	c, ok := b.peekByte()
	if !ok {
		return
	}
	if c == '\r' {
		b.pos++
		c, ok = b.peekByte()
	}
	if ok && c == '\n' {
		b.pos++
	}
}

func (b *Buffer) skipWhitespaceAndComments() {
	for {
		c, ok := b.peekByte()
		if !ok {
			return
		}
		switch {
		case isWhitespace(c):
			b.pos++
		case c == '%':
			for {
				c, ok := b.peekByte()
				if !ok || c == '\r' || c == '\n' {
					break
				}
				b.pos++
			}
		default:
			return
		}
	}
}

// FindFirstXRefOffset returns the offset recorded after the last startxref
// keyword, read from the line preceding the final %%EOF marker.
func (b *Buffer) FindFirstXRefOffset() (int64, error) {
	for window := int64(1024); ; window *= 8 {
		start := b.size - window
		if start < 0 {
			start = 0
		}
		tail := b.slice(start, b.size)
		lines := splitLines(tail)

		eof := -1
		for i := len(lines) - 1; i >= 0; i-- {
			if bytes.HasPrefix(bytes.TrimLeft(lines[i], " \t\f\x00"), []byte("%%EOF")) {
				eof = i
				break
			}
		}
		if eof < 0 {
			if start == 0 || window >= 64*1024 {
				return 0, pdferr.Malformedf("PDF does not contain EOF marker")
			}
			continue
		}

		var prev []byte
		for i := eof - 1; i >= 0; i-- {
			if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
				prev = line
				break
			}
		}
		if fields := bytes.Fields(prev); len(fields) > 0 {
			prev = fields[len(fields)-1]
		}
		offset, err := strconv.ParseInt(string(prev), 10, 64)
		if err != nil || offset < 0 {
			return 0, pdferr.Malformedf("PDF EOF marker does not follow offset")
		}
		return offset, nil
	}
}

func splitLines(data []byte) [][]byte {
	return bytes.FieldsFunc(data, func(r rune) bool { return r == '\r' || r == '\n' })
}

func (b *Buffer) fill(off int64) bool {
	if off >= b.windowOff && off < b.windowOff+int64(len(b.window)) {
		return true
	}
	if off < 0 || off >= b.size {
		return false
	}
	n := int64(bufferWindow)
	if off+n > b.size {
		n = b.size - off
	}
	window := make([]byte, n)
	m, _ := b.r.ReadAt(window, off)
	if m == 0 {
		return false
	}
	b.window = window[:m]
	b.windowOff = off
	return true
}

func (b *Buffer) byteAt(off int64) (byte, bool) {
	if !b.fill(off) {
		return 0, false
	}
	return b.window[off-b.windowOff], true
}

func (b *Buffer) peekByte() (byte, bool) {
	return b.byteAt(b.pos)
}

func (b *Buffer) nextByte() (byte, bool) {
	c, ok := b.byteAt(b.pos)
	if ok {
		b.pos++
	}
	return c, ok
}

// slice copies the bytes in [start, end)
func (b *Buffer) slice(start, end int64) []byte {
	if start < 0 {
		start = 0
	}
	if end > b.size {
		end = b.size
	}
	if end <= start {
		return []byte{}
	}
	out := make([]byte, end-start)
	if start >= b.windowOff && end <= b.windowOff+int64(len(b.window)) {
		copy(out, b.window[start-b.windowOff:end-b.windowOff])
		return out
	}
	m, _ := b.r.ReadAt(out, start)
	return out[:m]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexDigit(c byte) (byte, bool) {
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
