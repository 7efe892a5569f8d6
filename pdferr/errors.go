// Package pdferr defines the error kinds reported by the reader.
//
// Every error produced while reading a document carries a [Kind]. Callers
// test for a kind with [errors.Is] against the exported sentinels:
//
//	if errors.Is(err, pdferr.ErrMalformed) {
//	    // skip the document
//	}
//
// Wrapping an error with fmt.Errorf and %w keeps its kind.
package pdferr

import "fmt"

// Kind classifies an error.
type Kind int

const (
	// Malformed means the input violates the structure the reader expects.
	Malformed Kind = iota + 1
	// Unsupported means the feature is valid PDF the reader does not cover.
	Unsupported
	// Encrypted means the document needs a (different) password.
	Encrypted
	// InvalidPage means a page number outside the document was requested.
	InvalidPage
	// Cipher means decryption failed verification (key or padding).
	Cipher
	// InvalidArgument means a constructor or method got unusable arguments.
	InvalidArgument
	// NotFound means a key was absent and no default was supplied.
	NotFound
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case Malformed:
		return "MalformedPDF"
	case Unsupported:
		return "UnsupportedFeature"
	case Encrypted:
		return "EncryptedPDF"
	case InvalidPage:
		return "InvalidPage"
	case Cipher:
		return "CipherError"
	case InvalidArgument:
		return "ArgumentError"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error returns the message, followed by the wrapped error if any.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg == "" {
			return e.Err.Error()
		}
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrMalformed       = &Error{Kind: Malformed, Msg: "malformed PDF"}
	ErrUnsupported     = &Error{Kind: Unsupported, Msg: "unsupported feature"}
	ErrEncrypted       = &Error{Kind: Encrypted, Msg: "encrypted PDF"}
	ErrInvalidPage     = &Error{Kind: InvalidPage, Msg: "invalid page"}
	ErrCipher          = &Error{Kind: Cipher, Msg: "cipher error"}
	ErrInvalidArgument = &Error{Kind: InvalidArgument, Msg: "invalid argument"}
	ErrNotFound        = &Error{Kind: NotFound, Msg: "not found"}
)

// New returns an error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a message prefix.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Malformedf returns a Malformed error.
func Malformedf(format string, args ...interface{}) error {
	return New(Malformed, format, args...)
}

// Unsupportedf returns an Unsupported error.
func Unsupportedf(format string, args ...interface{}) error {
	return New(Unsupported, format, args...)
}

// KindOf returns the kind of the first classified error in err's chain,
// or 0 when there is none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
