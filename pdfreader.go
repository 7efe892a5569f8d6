// Package pdfreader provides a fluent API over the reader package for the
// common jobs: page text, page counts and document information.
//
// Basic usage:
//
//	text, warnings, err := pdfreader.Open("document.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfreader.FormatWarnings(warnings))
//	}
//
// With options:
//
//	text, _, err := pdfreader.Open("report.pdf", reader.WithPassword("secret")).
//	    Pages(1, 2, 3).
//	    Text()
//
// For object level access use the reader package directly.
package pdfreader

import (
	"github.com/yob/pdf-reader-sub001/reader"
)

// Open returns an Extractor for the PDF file at filename. The file is
// opened by the first terminal operation and closed when it returns.
//
// Example:
//
//	text, warnings, err := pdfreader.Open("document.pdf").Text()
func Open(filename string, opts ...reader.Option) *Extractor {
	return &Extractor{
		filename:   filename,
		readerOpts: opts,
		options:    defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	text, warnings, err := pdfreader.FromReader(r).Text()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must panics if err is non-nil and returns val otherwise. It is intended
// for scripts and tests.
//
// Example:
//
//	count := pdfreader.Must(pdfreader.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is Must for Text and PageTexts. Warnings are discarded.
//
// Example:
//
//	text := pdfreader.MustText(pdfreader.Open("document.pdf").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
