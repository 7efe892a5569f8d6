package pdferr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"malformed", Malformedf("unterminated array"), ErrMalformed, true},
		{"wrapped malformed", fmt.Errorf("page 3: %w", Malformedf("bad")), ErrMalformed, true},
		{"kind mismatch", Malformedf("bad"), ErrUnsupported, false},
		{"unsupported", Unsupportedf("filter Foo"), ErrUnsupported, true},
		{"cipher", New(Cipher, "bad padding"), ErrCipher, true},
		{"plain error", io.EOF, ErrMalformed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Malformedf("Ciphertext not a multiple of 16")
	if err.Error() != "Ciphertext not a multiple of 16" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := Wrap(Malformed, io.ErrUnexpectedEOF, "object 4 0")
	if wrapped.Error() != "object 4 0: unexpected EOF" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("wrapped error should unwrap to io.ErrUnexpectedEOF")
	}
	if Wrap(Malformed, nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(fmt.Errorf("a: %w", New(InvalidPage, "page 9"))); k != InvalidPage {
		t.Errorf("KindOf = %v, want InvalidPage", k)
	}
	if k := KindOf(io.EOF); k != 0 {
		t.Errorf("KindOf(io.EOF) = %v, want 0", k)
	}
	if InvalidPage.String() != "InvalidPage" || Kind(42).String() != "Unknown" {
		t.Error("unexpected Kind.String output")
	}
}
