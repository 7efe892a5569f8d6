package pdfreader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yob/pdf-reader-sub001/ocr"
	"github.com/yob/pdf-reader-sub001/pdferr"
	"github.com/yob/pdf-reader-sub001/preflight"
	"github.com/yob/pdf-reader-sub001/reader"
	"github.com/yob/pdf-reader-sub001/text"
)

// Extractor provides a fluent interface for reading a PDF. Each
// configuration method returns a new Extractor, so a configured value can
// be shared and extended safely.
type Extractor struct {
	// Source
	filename   string
	readerOpts []reader.Option

	// Lifecycle
	reader       *reader.Reader
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool

	options ExtractOptions

	// Accumulated configuration error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		readerOpts:   append([]reader.Option(nil), e.readerOpts...),
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return pdferr.New(pdferr.InvalidArgument, "no filename specified")
	}
	r, err := reader.Open(e.filename, e.readerOpts...)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases a reader opened by the Extractor. It is safe to call
// Close multiple times.
func (e *Extractor) Close() error {
	if !e.ownsReader || e.reader == nil {
		return nil
	}
	err := e.reader.Close()
	e.reader = nil
	e.ownsReader = false
	e.readerOpened = false
	return err
}

// run opens the reader for one terminal operation and closes it again if
// the Extractor opened it
func (e *Extractor) run(fn func(r *reader.Reader) error) error {
	if e.err != nil {
		return e.err
	}
	opened := !e.readerOpened
	if err := e.ensureReader(); err != nil {
		return err
	}
	if opened {
		defer e.Close()
	}
	return fn(e.reader)
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to read (1-indexed). Multiple calls are
// cumulative.
//
// Example:
//
//	text, _, err := pdfreader.Open("doc.pdf").Pages(1, 3, 5).Text()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to read (1-indexed, inclusive).
//
// Example:
//
//	text, _, err := pdfreader.Open("doc.pdf").PageRange(5, 10).Text()
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	if start > end {
		newExt.err = pdferr.New(pdferr.InvalidArgument, "invalid page range %d-%d", start, end)
		return newExt
	}
	for p := start; p <= end; p++ {
		newExt.options.pages = append(newExt.options.pages, p)
	}
	return newExt
}

// Layout sets the layout used to turn text runs into page text
func (e *Extractor) Layout(l text.Layout) *Extractor {
	newExt := e.clone()
	newExt.options.layout = l
	return newExt
}

// Separator sets the string placed between pages by Text. The default is
// a blank line.
func (e *Extractor) Separator(sep string) *Extractor {
	newExt := e.clone()
	newExt.options.separator = sep
	return newExt
}

// OCR sets a recognizer for pages without text, such as scanned pages.
// Their image XObjects are recognised instead.
//
// Example:
//
//	client, err := ocr.New("eng")
//	...
//	text, _, err := pdfreader.Open("scan.pdf").OCR(client).Text()
func (e *Extractor) OCR(rec ocr.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.options.ocr = rec
	return newExt
}

// Strict makes page errors fail the operation instead of becoming warnings
func (e *Extractor) Strict() *Extractor {
	newExt := e.clone()
	newExt.options.strict = true
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document
func (e *Extractor) PageCount() (int, error) {
	var count int
	err := e.run(func(r *reader.Reader) error {
		var err error
		count, err = r.PageCount()
		return err
	})
	return count, err
}

// Text returns the text of the selected pages joined by the separator.
// Pages that cannot be read are skipped with a warning.
func (e *Extractor) Text() (string, []Warning, error) {
	texts, warnings, err := e.PageTexts()
	if err != nil {
		return "", warnings, err
	}
	return strings.Join(texts, e.options.separator), warnings, nil
}

// PageTexts returns the text of each selected page that could be read
func (e *Extractor) PageTexts() ([]string, []Warning, error) {
	var texts []string
	var warnings []Warning
	err := e.run(func(r *reader.Reader) error {
		numbers, err := e.resolvePages(r)
		if err != nil {
			return err
		}
		for _, n := range numbers {
			content, err := e.pageText(r, n)
			if err != nil {
				w, ok := e.warning(n, err)
				if !ok {
					return fmt.Errorf("page %d: %w", n, err)
				}
				warnings = append(warnings, w)
				continue
			}
			texts = append(texts, content)
		}
		return nil
	})
	return texts, warnings, err
}

func (e *Extractor) pageText(r *reader.Reader, n int) (string, error) {
	page, err := r.Page(n)
	if err != nil {
		return "", err
	}
	runs, err := page.Runs()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 && e.options.ocr != nil {
		return ocr.PageText(e.options.ocr, page)
	}
	cropBox, err := page.CropBox()
	if err != nil {
		return "", err
	}
	return text.Assemble(runs, e.layout(r), cropBox), nil
}

func (e *Extractor) layout(r *reader.Reader) text.Layout {
	if e.options.layout != nil {
		return e.options.layout
	}
	return r.Layout()
}

// warning turns a recoverable page error into a Warning
func (e *Extractor) warning(page int, err error) (Warning, bool) {
	if e.options.strict {
		return Warning{}, false
	}
	if !errors.Is(err, pdferr.ErrMalformed) && !errors.Is(err, pdferr.ErrUnsupported) {
		return Warning{}, false
	}
	return Warning{Page: page, Message: err.Error(), Err: err}, true
}

// Info returns the document information dictionary
func (e *Extractor) Info() (map[string]string, error) {
	var info map[string]string
	err := e.run(func(r *reader.Reader) error {
		var err error
		info, err = r.Info()
		return err
	})
	return info, err
}

// Metadata returns the XMP metadata, or "" when there is none
func (e *Extractor) Metadata() (string, error) {
	var xmp string
	err := e.run(func(r *reader.Reader) error {
		var err error
		xmp, err = r.Metadata()
		return err
	})
	return xmp, err
}

// Images returns the image XObjects of the selected pages keyed by page
// number
func (e *Extractor) Images() (map[int][]*reader.Image, []Warning, error) {
	images := make(map[int][]*reader.Image)
	var warnings []Warning
	err := e.run(func(r *reader.Reader) error {
		numbers, err := e.resolvePages(r)
		if err != nil {
			return err
		}
		for _, n := range numbers {
			page, err := r.Page(n)
			if err != nil {
				return err
			}
			found, err := page.Images()
			if err != nil {
				w, ok := e.warning(n, err)
				if !ok {
					return fmt.Errorf("page %d: %w", n, err)
				}
				warnings = append(warnings, w)
				continue
			}
			if len(found) > 0 {
				images[n] = found
			}
		}
		return nil
	})
	return images, warnings, err
}

// Preflight checks the document against profile
func (e *Extractor) Preflight(profile *preflight.Profile) ([]preflight.Issue, error) {
	var issues []preflight.Issue
	err := e.run(func(r *reader.Reader) error {
		var err error
		issues, err = profile.Check(r.Objects())
		return err
	})
	return issues, err
}

// resolvePages validates the selected page numbers and returns them
// sorted without duplicates. No selection means every page.
func (e *Extractor) resolvePages(r *reader.Reader) ([]int, error) {
	pageCount, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	if len(e.options.pages) == 0 {
		numbers := make([]int, pageCount)
		for i := range numbers {
			numbers[i] = i + 1
		}
		return numbers, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, pdferr.New(pdferr.InvalidPage, "page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			numbers = append(numbers, p)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}
