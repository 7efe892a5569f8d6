package ocr

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yob/pdf-reader-sub001/internal/pdftest"
	"github.com/yob/pdf-reader-sub001/reader"
)

// sizeRecognizer "reads" the pixel width of each image
type sizeRecognizer struct {
	calls int
	err   error
}

func (r *sizeRecognizer) RecognizeImage(data []byte) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if img.Bounds().Dx() == 1 {
		return "  ", nil
	}
	return "width " + string(rune('0'+img.Bounds().Dx())), nil
}

func scannedPage(t *testing.T) *reader.Page {
	t.Helper()
	b := pdftest.Document("")
	b.Update().
		Add(4, "<< /Type /Page /Parent 2 0 R /Resources << /XObject << "+
			"/Im1 20 0 R /Im2 21 0 R /Im3 22 0 R /Im4 23 0 R >> >> /Contents 5 0 R >>").
		AddStream(20, "/Subtype /Image /Width 2 /Height 1 /BitsPerComponent 8", []byte{0, 255}).
		AddStream(21, "/Subtype /Image /Width 1 /Height 1 /BitsPerComponent 8", []byte{0}).
		AddStream(22, "/Subtype /Image /Width 1 /Height 1 /Filter /JBIG2Decode", []byte{0}).
		AddStream(23, "/Subtype /Image /Width 3 /Height 1 /BitsPerComponent 8", []byte{0, 1, 2}).
		Trailer("/Root 1 0 R")
	r, err := reader.NewReaderBytes(b.Bytes())
	require.NoError(t, err)
	page, err := r.Page(1)
	require.NoError(t, err)
	return page
}

func TestPageText(t *testing.T) {
	rec := &sizeRecognizer{}
	out, err := PageText(rec, scannedPage(t))
	require.NoError(t, err)
	assert.Equal(t, "width 2\n\nwidth 3", out)
	// the JBIG2 image is skipped before recognition
	assert.Equal(t, 3, rec.calls)
}

func TestPageTextError(t *testing.T) {
	boom := errors.New("engine failed")
	_, err := PageText(&sizeRecognizer{err: boom}, scannedPage(t))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "image /Im1")
}
