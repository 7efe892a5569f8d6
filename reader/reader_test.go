package reader

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/internal/pdftest"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

const (
	isbnPage   = "BT /F1 10 Tf 36 794.33 Td (047174719X) Tj ET"
	secondPage = "BT /F1 12 Tf 72 700 Td (Second page) Tj ET"
)

func openBytes(t *testing.T, data []byte, opts ...Option) *Reader {
	t.Helper()
	r, err := NewReaderBytes(data, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReaderPages(t *testing.T) {
	r := openBytes(t, pdftest.Document(isbnPage, secondPage).Bytes())

	count, err := r.PageCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := r.Pages()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Number())
	assert.Equal(t, core.Reference{Number: 6}, all[1].Ref())

	text, err := all[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "047174719X", text)

	page, err := r.Page(2)
	require.NoError(t, err)
	text, err = page.Text()
	require.NoError(t, err)
	assert.Equal(t, "Second page", text)
}

func TestReaderPageOutOfRange(t *testing.T) {
	r := openBytes(t, pdftest.Document(isbnPage).Bytes())
	for _, n := range []int{0, 2, -1} {
		_, err := r.Page(n)
		assert.ErrorIs(t, err, pdferr.ErrInvalidPage, "page %d", n)
	}
}

func TestReaderVersion(t *testing.T) {
	b := pdftest.Document(isbnPage).Version("1.3")
	r := openBytes(t, b.Bytes())
	assert.Equal(t, 1.3, r.PDFVersion())

	b.Update().
		Add(1, "<< /Type /Catalog /Pages 2 0 R /Version /1.6 >>").
		Trailer("/Root 1 0 R")
	r = openBytes(t, b.Bytes())
	assert.Equal(t, 1.6, r.PDFVersion())
}

func TestReaderInfo(t *testing.T) {
	b := pdftest.Document(isbnPage).
		Add(20, "<< /Title (Hello) /Author <FEFF00410042> /Trapped /False /Rev 3 /Missing null >>").
		Trailer("/Info 20 0 R")
	r := openBytes(t, b.Bytes())

	info, err := r.Info()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Title":   "Hello",
		"Author":  "AB",
		"Trapped": "False",
		"Rev":     "3",
	}, info)
}

func TestReaderInfoMissing(t *testing.T) {
	r := openBytes(t, pdftest.Document(isbnPage).Bytes())
	info, err := r.Info()
	require.NoError(t, err)
	assert.Empty(t, info)

	xmp, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "", xmp)
}

func TestReaderMetadata(t *testing.T) {
	b := pdftest.Document(isbnPage)
	b.Update().
		Add(1, "<< /Type /Catalog /Pages 2 0 R /Metadata 30 0 R >>").
		AddStream(30, "/Type /Metadata /Subtype /XML", []byte("\xEF\xBB\xBF<x:xmpmeta/>")).
		Trailer("/Root 1 0 R")
	r := openBytes(t, b.Bytes())

	xmp, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "<x:xmpmeta/>", xmp)
}

func TestReaderJunkPrefix(t *testing.T) {
	r := openBytes(t, pdftest.Document(isbnPage).Junk("garbage before the header\n").Bytes())
	page, err := r.Page(1)
	require.NoError(t, err)
	text, err := page.Text()
	require.NoError(t, err)
	assert.Equal(t, "047174719X", text)
}

func TestNewReaderErrors(t *testing.T) {
	_, err := NewReader(nil, 0)
	assert.ErrorIs(t, err, pdferr.ErrInvalidArgument)

	_, err = NewReaderBytes([]byte("not a pdf"))
	assert.Error(t, err)

	_, err = Open("testdata/does-not-exist.pdf")
	assert.Error(t, err)
}

func TestReaderUnsupportedSecurityHandler(t *testing.T) {
	b := pdftest.Document(isbnPage).
		Add(20, "<< /Filter /Custom /V 1 /R 2 >>").
		Trailer("/Encrypt 20 0 R")
	_, err := NewReaderBytes(b.Bytes())
	assert.ErrorIs(t, err, pdferr.ErrUnsupported)
}

// callRecorder records every callback it is sent
type callRecorder struct {
	calls []string
}

func (r *callRecorder) Invoke(cb contentstream.Callback, operands []core.Object) error {
	switch cb {
	case contentstream.BeginPage:
		r.calls = append(r.calls, fmt.Sprintf("%s %s", cb, operands[0]))
	case contentstream.PageCount, contentstream.PDFVersion:
		r.calls = append(r.calls, fmt.Sprintf("%s %s", cb, operands[0]))
	default:
		r.calls = append(r.calls, string(cb))
	}
	return nil
}

func TestReaderWalk(t *testing.T) {
	b := pdftest.Document(isbnPage, "q Q").
		Add(20, "<< /Title (Hello) >>").
		Trailer("/Info 20 0 R")
	r := openBytes(t, b.Bytes())

	rec := &callRecorder{}
	require.NoError(t, r.Walk(rec))
	assert.Equal(t, []string{
		"BeginDocument",
		"PDFVersion 1.4",
		"Metadata",
		"PageCount 2",
		"BeginPage 1",
		"BeginTextObject",
		"SetTextFontAndSize",
		"MoveTextPosition",
		"ShowText",
		"EndTextObject",
		"EndPage",
		"BeginPage 2",
		"SaveGraphicsState",
		"RestoreGraphicsState",
		"EndPage",
		"EndDocument",
	}, rec.calls)
}

type failingReceiver struct{}

func (failingReceiver) ShowText([]byte) error { return errors.New("stop") }

func TestReaderWalkError(t *testing.T) {
	r := openBytes(t, pdftest.Document(isbnPage).Bytes())
	err := r.Walk(failingReceiver{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
}
