package pdfreader

import (
	"github.com/yob/pdf-reader-sub001/ocr"
	"github.com/yob/pdf-reader-sub001/text"
)

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// Page selection, 1-indexed; nil means every page
	pages []int

	layout    text.Layout
	separator string
	strict    bool

	// ocr reads pages that have no text operators
	ocr ocr.Recognizer
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		separator: "\n\n",
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}
