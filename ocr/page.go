// Package ocr recognises text in the images of scanned pages.
//
// The Tesseract engine is wrapped through gosseract and is only compiled
// in with the "ocr" build tag, since it needs cgo and an installed
// Tesseract:
//
//	go build -tags ocr
//
// Without the tag New returns ErrNotEnabled. PageText works with any
// Recognizer, so callers can plug in another engine.
package ocr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yob/pdf-reader-sub001/pdferr"
	"github.com/yob/pdf-reader-sub001/reader"
)

// PageSegMode is a Tesseract page segmentation mode
type PageSegMode int

// Page segmentation modes, numbered as Tesseract numbers them
const (
	PSMAuto         PageSegMode = 3
	PSMSingleColumn PageSegMode = 4
	PSMSingleBlock  PageSegMode = 6
	PSMSingleLine   PageSegMode = 7
	PSMSparseText   PageSegMode = 11
)

// Recognizer turns encoded image data into text
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// PageText recognises each image XObject on page in resource name order
// and joins the non-empty results with blank lines. Images in formats the
// reader cannot decode are skipped.
func PageText(rec Recognizer, page *reader.Page) (string, error) {
	images, err := page.Images()
	if err != nil {
		return "", err
	}
	var parts []string
	for _, img := range images {
		data, err := img.PNG()
		if errors.Is(err, pdferr.ErrUnsupported) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("image /%s: %w", img.Name, err)
		}
		text, err := rec.RecognizeImage(data)
		if err != nil {
			return "", fmt.Errorf("image /%s: %w", img.Name, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
