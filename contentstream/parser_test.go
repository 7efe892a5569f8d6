package contentstream

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

func parseAll(t *testing.T, data string) []Operation {
	t.Helper()
	ops, err := NewParser([]byte(data)).Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return ops
}

// TestParseOperations tests operators and their operands
func TestParseOperations(t *testing.T) {
	ops := parseAll(t, "BT 36.000 794.330 Td /F1 10.0 Tf 0 Tr (047174719X) Tj ET")

	want := []Operation{
		{"BT", []core.Object{}},
		{"Td", []core.Object{core.Real(36), core.Real(794.33)}},
		{"Tf", []core.Object{core.Name("F1"), core.Real(10)}},
		{"Tr", []core.Object{core.Int(0)}},
		{"Tj", []core.Object{core.String("047174719X")}},
		{"ET", []core.Object{}},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("Parse() = %v, want %v", ops, want)
	}
}

// TestParseOperands tests the operand types found in content
func TestParseOperands(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		operator string
		operands []core.Object
	}{
		{"TJ array", "[(A) -120 (B) 3.5] TJ", "TJ", []core.Object{core.Array{core.String("A"), core.Int(-120), core.String("B"), core.Real(3.5)}}},
		{"hex string", "<48 65 6C6C6F> Tj", "Tj", []core.Object{core.String("Hello")}},
		{"escapes", `(a\(b\)c\\\101) Tj`, "Tj", []core.Object{core.String(`a(b)c\A`)}},
		{"dict operand", "/OC <</MCID 3>> BDC", "BDC", []core.Object{core.Name("OC"), core.Dict{"MCID": core.Int(3)}}},
		{"booleans and null", "true false null d0", "d0", []core.Object{core.Bool(true), core.Bool(false), core.Null{}}},
		{"quote operators", "1 2 (x) \"", "\"", []core.Object{core.Int(1), core.Int(2), core.String("x")}},
		{"star operator", "T*", "T*", []core.Object{}},
		{"integers stay integers", "1 0 R", "R", []core.Object{core.Int(1), core.Int(0)}},
		{"comment", "% comment\nq", "q", []core.Object{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := parseAll(t, tt.input)
			if len(ops) != 1 {
				t.Fatalf("got %d operations: %v", len(ops), ops)
			}
			if ops[0].Operator != tt.operator || !reflect.DeepEqual(ops[0].Operands, tt.operands) {
				t.Errorf("got %v, want %s %v", ops[0], tt.operator, tt.operands)
			}
		})
	}
}

// TestInlineImage tests BI/ID/EI handling, including EI bytes inside data
func TestInlineImage(t *testing.T) {
	ops := parseAll(t, "q BI /W 2 /H 1 /CS /G /BPC 8 ID \x00EIx\xff EI Q")

	operators := make([]string, len(ops))
	for i, op := range ops {
		operators[i] = op.Operator
	}
	if !reflect.DeepEqual(operators, []string{"q", "BI", "ID", "EI", "Q"}) {
		t.Fatalf("operators = %v", operators)
	}
	if len(ops[2].Operands) != 8 {
		t.Errorf("ID operands = %v", ops[2].Operands)
	}
	data, _ := ops[3].Operands[0].(core.String)
	if string(data) != "\x00EIx\xff" {
		t.Errorf("image data = %q", data)
	}
}

// TestChunkedParser tests that operands split across streams are kept
func TestChunkedParser(t *testing.T) {
	p := NewChunkedParser([][]byte{[]byte("BT 10 20"), []byte("Td ET")})
	ops, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(ops) != 3 || ops[1].Operator != "Td" || len(ops[1].Operands) != 2 {
		t.Errorf("ops = %v", ops)
	}
}

// TestParserNext tests streaming and EOF
func TestParserNext(t *testing.T) {
	p := NewParser([]byte("q Q 5"))
	for _, want := range []string{"q", "Q"} {
		op, err := p.Next()
		if err != nil || op.Operator != want {
			t.Fatalf("Next() = %v, %v, want %s", op, err, want)
		}
	}
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestUnterminatedString tests that a broken string fails instead of
// hanging
func TestUnterminatedString(t *testing.T) {
	tests := []string{
		"BT (never closed Tj ET",
		"BT <414243 Tj ET",
		"[(a) (b) TJ",
	}
	for _, input := range tests {
		_, err := NewParser([]byte(input)).Parse()
		if !errors.Is(err, pdferr.ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want malformed", input, err)
		}
	}
}
