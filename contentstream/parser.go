package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/yob/pdf-reader-sub001/core"
)

// Operation represents a single content stream operation consisting of an
// operator and its operands. Operands are PDF objects that precede the operator.
type Operation struct {
	Operator string        // The operator (e.g., "Tj", "Tm", "q")
	Operands []core.Object // The operands
}

// Parser reads a content stream one operation at a time.
//
// Inline images produce three operations: BI with no operands, ID with
// the image dictionary as alternating key and value operands, and EI
// with the raw image data as a single String operand.
type Parser struct {
	buf    *core.Buffer
	parser *core.Parser

	operands []core.Object
	inImage  bool // between BI and ID
}

// NewParser creates a content stream parser for the given data.
func NewParser(data []byte) *Parser {
	buf := core.NewContentBuffer(data)
	return &Parser{
		buf:    buf,
		parser: core.NewParser(buf),
	}
}

// NewChunkedParser parses several content streams as one, joined with a
// newline so operands split across a boundary stay together.
func NewChunkedParser(chunks [][]byte) *Parser {
	return NewParser(bytes.Join(chunks, []byte("\n")))
}

// Next returns the next operation, or io.EOF when the stream is done.
// Operands left without an operator at the end are discarded.
func (p *Parser) Next() (Operation, error) {
	for {
		tok, err := p.buf.Token()
		if err == io.EOF {
			return Operation{}, io.EOF
		}
		if err != nil {
			return Operation{}, err
		}

		switch {
		case tok.Type == core.TokenInlineImage:
			// the EI keyword follows the data
			if next, err := p.buf.Token(); err == nil && !next.Is("EI") {
				p.buf.Unread(next)
			}
			p.operands = p.operands[:0]
			return Operation{Operator: "EI", Operands: []core.Object{core.String(tok.Value)}}, nil

		case tok.Type == core.TokenKeyword && !isLiteralKeyword(tok):
			if p.inImage && !tok.Is("ID") {
				// bare words inside an inline image dictionary
				p.operands = append(p.operands, core.Name(tok.Value))
				continue
			}
			return p.emit(string(tok.Value)), nil

		default:
			obj, err := p.parser.ParseToken(tok)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return Operation{}, io.EOF
				}
				return Operation{}, fmt.Errorf("at offset %d: %w", tok.Pos, err)
			}
			p.operands = append(p.operands, obj)
		}
	}
}

// emit builds an operation from the pending operands
func (p *Parser) emit(operator string) Operation {
	switch operator {
	case "BI":
		p.inImage = true
	case "ID":
		p.inImage = false
	}
	op := Operation{
		Operator: operator,
		Operands: make([]core.Object, len(p.operands)),
	}
	copy(op.Operands, p.operands)
	p.operands = p.operands[:0]
	return op
}

// Parse parses the content stream and returns all operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	ops := make([]Operation, 0)
	for {
		op, err := p.Next()
		if err == io.EOF {
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
}

// isLiteralKeyword reports whether a keyword token is an operand value
func isLiteralKeyword(tok core.Token) bool {
	return tok.Is("true") || tok.Is("false") || tok.Is("null")
}
