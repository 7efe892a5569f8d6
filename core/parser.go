package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

// ReferenceResolver is an interface for resolving indirect references.
// This allows the parser to resolve indirect stream lengths when needed.
type ReferenceResolver interface {
	ResolveReference(ref Reference) (Object, error)
}

// IndirectObject is an object read from a "num gen obj ... endobj" block
type IndirectObject struct {
	Ref    Reference
	Object Object
}

// Parser builds PDF objects from the tokens of a Buffer.
type Parser struct {
	buf      *Buffer
	resolver ReferenceResolver
}

// NewParser creates a parser reading from buf
func NewParser(buf *Buffer) *Parser {
	return &Parser{buf: buf}
}

// SetReferenceResolver sets the reference resolver for the parser.
// This is needed to resolve indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// Buffer returns the underlying token buffer
func (p *Parser) Buffer() *Buffer {
	return p.buf
}

// ParseObject parses the next object. It returns io.EOF when the buffer is
// exhausted before an object starts.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.buf.Token()
	if err != nil {
		return nil, err
	}
	return p.ParseToken(tok)
}

// ParseToken parses an object whose first token has already been read.
func (p *Parser) ParseToken(tok Token) (Object, error) {
	switch tok.Type {
	case TokenInteger:
		return p.parseInteger(tok)

	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, pdferr.Malformedf("invalid real number %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil

	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, pdferr.Malformedf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)

	case TokenString:
		if !tok.Terminated {
			return nil, pdferr.Malformedf("unterminated string")
		}
		return String(tok.Value), nil

	case TokenHexString:
		if !tok.Terminated {
			return nil, pdferr.Malformedf("unterminated hex string")
		}
		return String(tok.Value), nil

	case TokenName:
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray(TokenArrayEnd, "unterminated array")

	case TokenProcStart:
		return p.parseArray(TokenProcEnd, "unterminated procedure")

	case TokenDictStart:
		return p.parseDict()

	case TokenInlineImage:
		return String(tok.Value), nil

	case TokenEOF:
		return nil, io.EOF

	default:
		return nil, pdferr.Malformedf("unexpected %s token at offset %d", tok.Type, tok.Pos)
	}
}

// parseInteger parses an integer or, outside content streams, an indirect
// reference "num gen R" detected by two tokens of lookahead.
func (p *Parser) parseInteger(tok Token) (Object, error) {
	n, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(tok.Value), 64)
		if ferr != nil {
			return nil, pdferr.Malformedf("invalid integer %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	}
	if p.buf.ContentMode() {
		return Int(n), nil
	}

	second, err := p.buf.Token()
	if err != nil {
		return Int(n), nil
	}
	if second.Type != TokenInteger {
		p.buf.Unread(second)
		return Int(n), nil
	}
	third, err := p.buf.Token()
	if err == nil && third.Is("R") {
		gen, _ := strconv.Atoi(string(second.Value))
		return Reference{Number: int(n), Generation: gen}, nil
	}
	if err == nil {
		p.buf.Unread(third)
	}
	p.buf.Unread(second)
	return Int(n), nil
}

func (p *Parser) parseArray(end TokenType, unterminated string) (Object, error) {
	arr := Array{}
	for {
		tok, err := p.buf.Token()
		if err == io.EOF {
			return nil, pdferr.Malformedf("%s", unterminated)
		}
		if err != nil {
			return nil, err
		}
		if tok.Type == end {
			return arr, nil
		}
		obj, err := p.ParseToken(tok)
		if err == io.EOF {
			return nil, pdferr.Malformedf("%s", unterminated)
		}
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	dict := Dict{}
	for {
		tok, err := p.buf.Token()
		if err == io.EOF {
			return nil, pdferr.Malformedf("unterminated dict")
		}
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenDictEnd {
			return dict, nil
		}
		if tok.Type != TokenName {
			return nil, pdferr.Malformedf("dictionary key at offset %d is not a name", tok.Pos)
		}
		key := string(tok.Value)

		next, err := p.buf.Token()
		if err == io.EOF {
			return nil, pdferr.Malformedf("unterminated dict")
		}
		if err != nil {
			return nil, err
		}
		if next.Type == TokenDictEnd {
			// odd number of entries: the dangling key maps to null
			dict[key] = Null{}
			return dict, nil
		}
		value, err := p.ParseToken(next)
		if err == io.EOF {
			return nil, pdferr.Malformedf("unterminated dict")
		}
		if err != nil {
			return nil, fmt.Errorf("dictionary value for /%s: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses an indirect object definition.
// Format: "num gen obj <object> endobj" or "num gen obj <dict> stream ... endstream endobj"
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	start := p.buf.Pos()
	num, err := p.buf.Token()
	if err != nil || num.Type != TokenInteger {
		return nil, pdferr.Malformedf("expected object number at offset %d", start)
	}
	gen, err := p.buf.Token()
	if err != nil || gen.Type != TokenInteger {
		return nil, pdferr.Malformedf("expected generation number at offset %d", start)
	}
	kw, err := p.buf.Token()
	if err != nil || !kw.Is("obj") {
		return nil, pdferr.Malformedf("expected obj keyword at offset %d", start)
	}
	number, _ := strconv.Atoi(string(num.Value))
	generation, _ := strconv.Atoi(string(gen.Value))
	ref := Reference{Number: number, Generation: generation}

	tok, err := p.buf.Token()
	if err == io.EOF {
		return nil, pdferr.Malformedf("object %s is empty", ref)
	}
	if err != nil {
		return nil, err
	}
	var obj Object
	if tok.Is("endobj") {
		// "n g obj endobj" is a null object
		return &IndirectObject{Ref: ref, Object: Null{}}, nil
	}
	obj, err = p.ParseToken(tok)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", ref, err)
	}

	next, err := p.buf.Token()
	if err == nil && next.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, pdferr.Malformedf("object %s: stream must follow a dictionary", ref)
		}
		stream, serr := p.parseStream(dict)
		if serr != nil {
			return nil, fmt.Errorf("object %s: %w", ref, serr)
		}
		obj = stream
		next, err = p.buf.Token()
	}
	// a missing endobj is tolerated
	if err == nil && !next.Is("endobj") {
		p.buf.Unread(next)
	}

	return &IndirectObject{Ref: ref, Object: obj}, nil
}

// parseStream reads stream data after the "stream" keyword. A /Length that
// cannot be resolved or does not end at "endstream" falls back to scanning
// for the endstream keyword.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	length := p.streamLength(dict)

	if _, err := p.buf.Read(0, true); err != nil {
		return nil, err
	}
	start := p.buf.Pos()

	if length >= 0 && start+int64(length) <= p.buf.Size() {
		data, err := p.buf.Read(length, false)
		if err == nil {
			if tok, err := p.buf.Token(); err == nil && tok.Is("endstream") {
				return &Stream{Dict: dict, Data: data}, nil
			}
		}
		p.buf.SeekTo(start)
	}

	end := p.buf.Index([]byte("endstream"))
	if end < 0 {
		return nil, pdferr.Malformedf("stream at offset %d has no endstream", start)
	}
	data, err := p.buf.Read(int(end-start), false)
	if err != nil {
		return nil, err
	}
	data = trimTrailingEOL(data)
	p.buf.SeekTo(end + int64(len("endstream")))
	return &Stream{Dict: dict, Data: data}, nil
}

// streamLength returns the declared /Length, or -1 when it is missing or
// cannot be resolved.
func (p *Parser) streamLength(dict Dict) int {
	switch v := dict["Length"].(type) {
	case Int:
		return int(v)
	case Reference:
		if p.resolver == nil {
			return -1
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return -1
		}
		if n, ok := resolved.(Int); ok {
			return int(n)
		}
	}
	return -1
}

func trimTrailingEOL(data []byte) []byte {
	if bytes.HasSuffix(data, []byte("\r\n")) {
		return data[:len(data)-2]
	}
	if bytes.HasSuffix(data, []byte("\n")) || bytes.HasSuffix(data, []byte("\r")) {
		return data[:len(data)-1]
	}
	return data
}
