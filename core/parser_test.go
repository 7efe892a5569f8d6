package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yob/pdf-reader-sub001/pdferr"
)

func parse(input string) (Object, error) {
	return NewParser(NewBytesBuffer([]byte(input))).ParseObject()
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Object
	}{
		{"null", "null", Null{}},
		{"true", "true", Bool(true)},
		{"integer", "-17", Int(-17)},
		{"real", "3.5", Real(3.5)},
		{"string", "(abc)", String("abc")},
		{"hex string", "<616263>", String("abc")},
		{"name", "/Font", Name("Font")},
		{"reference", "12 0 R", Reference{Number: 12, Generation: 0}},
		{"integers", "[1 2 3]", Array{Int(1), Int(2), Int(3)}},
		{"mixed array", "[1 0 R 5 (x)]", Array{Reference{Number: 1}, Int(5), String("x")}},
		{"two ints then ref", "[1 2 3 0 R]", Array{Int(1), Int(2), Reference{Number: 3}}},
		{"empty array", "[]", Array{}},
		{"dict", "<< /Type /Page /Count 2 >>", Dict{"Type": Name("Page"), "Count": Int(2)}},
		{"nested", "<< /Kids [4 0 R] /Res << /F1 7 0 R >> >>", Dict{
			"Kids": Array{Reference{Number: 4}},
			"Res":  Dict{"F1": Reference{Number: 7}},
		}},
		{"dangling key", "<< /A 1 /B >>", Dict{"A": Int(1), "B": Null{}}},
		{"procedure", "{ 1 2 }", Array{Int(1), Int(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.input)
			if err != nil {
				t.Fatalf("ParseObject() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseObject() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseObjectErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[1 2", "unterminated array"},
		{"<< /A 1", "unterminated dict"},
		{"<< /A", "unterminated dict"},
		{"(abc", "unterminated string"},
		{"<4142", "unterminated hex string"},
		{"[(abc", "unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, pdferr.ErrMalformed) {
				t.Errorf("error kind = %v, want Malformed", pdferr.KindOf(err))
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	if _, err := parse("<< 1 2 >>"); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("non-name key error = %v", err)
	}
	if _, err := parse("endobj"); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("bare keyword error = %v", err)
	}
}

func TestParseContentModeHasNoReferences(t *testing.T) {
	p := NewParser(NewContentBuffer([]byte("1 0 R")))
	obj, err := p.ParseObject()
	if err != nil || obj != Int(1) {
		t.Fatalf("first object = %v, %v", obj, err)
	}
	obj, _ = p.ParseObject()
	if obj != Int(0) {
		t.Errorf("second object = %v", obj)
	}
	if tok, _ := p.Buffer().Token(); !tok.Is("R") {
		t.Errorf("R should remain as an operator token, got %q", tok.Value)
	}
}

func TestParseIndirectObject(t *testing.T) {
	input := "7 0 obj\n<< /Type /Font /Name /F1 >>\nendobj\n8 0 obj (next) endobj"
	p := NewParser(NewBytesBuffer([]byte(input)))

	obj, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject() error: %v", err)
	}
	if obj.Ref != (Reference{Number: 7}) {
		t.Errorf("Ref = %v", obj.Ref)
	}
	if d, ok := obj.Object.(Dict); !ok || d["Name"] != Name("F1") {
		t.Errorf("Object = %v", obj.Object)
	}

	next, err := p.ParseIndirectObject()
	if err != nil || next.Object != String("next") {
		t.Errorf("second object = %v, %v", next, err)
	}
}

func TestParseIndirectObjectEmpty(t *testing.T) {
	obj, err := NewParser(NewBytesBuffer([]byte("3 0 obj endobj"))).ParseIndirectObject()
	if err != nil || obj.Object != (Null{}) {
		t.Errorf("empty object = %v, %v", obj, err)
	}
	if _, err := NewParser(NewBytesBuffer([]byte("3 0 foo"))).ParseIndirectObject(); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("bad header error = %v", err)
	}
}

type lengthResolver map[Reference]Object

func (r lengthResolver) ResolveReference(ref Reference) (Object, error) {
	obj, ok := r[ref]
	if !ok {
		return nil, pdferr.New(pdferr.NotFound, "no object %s", ref)
	}
	return obj, nil
}

func TestParseStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		resolver ReferenceResolver
		want     string
	}{
		{"direct length", "1 0 obj << /Length 5 >> stream\nHELLO\nendstream endobj", nil, "HELLO"},
		{"crlf", "1 0 obj << /Length 5 >> stream\r\nHELLO\r\nendstream endobj", nil, "HELLO"},
		{"indirect length", "1 0 obj << /Length 9 0 R >> stream\nHELLO\nendstream endobj",
			lengthResolver{{Number: 9}: Int(5)}, "HELLO"},
		{"unresolvable length", "1 0 obj << /Length 9 0 R >> stream\nHELLO\nendstream endobj", nil, "HELLO"},
		{"wrong length", "1 0 obj << /Length 2 >> stream\nHELLO\nendstream endobj", nil, "HELLO"},
		{"length past end", "1 0 obj << /Length 500 >> stream\nHELLO\nendstream endobj", nil, "HELLO"},
		{"missing length", "1 0 obj << >> stream\nHELLO WORLD\nendstream\nendobj", nil, "HELLO WORLD"},
		{"missing endobj", "1 0 obj << /Length 5 >> stream\nHELLO\nendstream", nil, "HELLO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(NewBytesBuffer([]byte(tt.input)))
			if tt.resolver != nil {
				p.SetReferenceResolver(tt.resolver)
			}
			obj, err := p.ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject() error: %v", err)
			}
			stream, ok := obj.Object.(*Stream)
			if !ok {
				t.Fatalf("got %T, want *Stream", obj.Object)
			}
			if string(stream.Data) != tt.want {
				t.Errorf("Data = %q, want %q", stream.Data, tt.want)
			}
		})
	}
}

func TestParseStreamWithoutEndstream(t *testing.T) {
	_, err := NewParser(NewBytesBuffer([]byte("1 0 obj << /Length 50 >> stream\nHELLO"))).ParseIndirectObject()
	if !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("error = %v, want Malformed", err)
	}
}
