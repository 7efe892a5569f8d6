package reader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pages"
	"github.com/yob/pdf-reader-sub001/pdferr"
	"github.com/yob/pdf-reader-sub001/text"
)

// Reader is the entry point for reading a PDF document
type Reader struct {
	objects *ObjectHash
	layout  text.Layout
	logger  *slog.Logger

	tree *pages.PageTree
}

// Open opens the PDF file at path
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	r, err := NewReader(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.objects.closer = f
	return r, nil
}

// NewReader reads a PDF of size bytes from r
func NewReader(r io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, pdferr.New(pdferr.InvalidArgument, "no PDF source given")
	}
	cfg := newConfig(opts)
	objects, err := newObjectHash(r, size, cfg)
	if err != nil {
		return nil, err
	}
	return &Reader{objects: objects, layout: cfg.layout, logger: cfg.logger}, nil
}

// NewReaderBytes reads a PDF held in memory
func NewReaderBytes(data []byte, opts ...Option) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)), opts...)
}

// Close releases the file opened by Open
func (r *Reader) Close() error {
	return r.objects.Close()
}

// Objects returns the document's object hash
func (r *Reader) Objects() *ObjectHash { return r.objects }

// Layout returns the layout used by Page.Text
func (r *Reader) Layout() text.Layout { return r.layout }

// PDFVersion returns the document version
func (r *Reader) PDFVersion() float64 { return r.objects.PDFVersion() }

// Info returns the document information dictionary with text values
// decoded to UTF-8
func (r *Reader) Info() (map[string]string, error) {
	dict, err := r.infoDict()
	if err != nil || dict == nil {
		return map[string]string{}, err
	}
	info := make(map[string]string, len(dict))
	for key, value := range dict {
		switch v := value.(type) {
		case core.String:
			info[key] = core.DecodeTextString(v)
		case core.Name:
			info[key] = string(v)
		case core.Null:
		default:
			info[key] = v.String()
		}
	}
	return info, nil
}

func (r *Reader) infoDict() (core.Dict, error) {
	obj := r.objects.Trailer().Get("Info")
	if obj == nil {
		return nil, nil
	}
	resolved, err := r.objects.Deref(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to load /Info: %w", err)
	}
	dict, _ := resolved.(core.Dict)
	return dict, nil
}

// Metadata returns the XMP metadata as UTF-8, or "" when there is none
func (r *Reader) Metadata() (string, error) {
	root, err := r.objects.Catalog()
	if err != nil {
		return "", err
	}
	stream, err := pages.NewCatalog(root, r.objects).Metadata()
	if err != nil || stream == nil {
		return "", err
	}
	data, err := stream.Decode()
	if err != nil {
		return "", fmt.Errorf("failed to decode metadata: %w", err)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", pdferr.Wrap(pdferr.Malformed, err, "invalid metadata encoding")
	}
	return string(out), nil
}

func (r *Reader) pageTree() (*pages.PageTree, error) {
	if r.tree != nil {
		return r.tree, nil
	}
	root, err := r.objects.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.NewCatalog(root, r.objects).Pages()
	if err != nil {
		return nil, err
	}
	r.tree = tree
	return tree, nil
}

// PageCount returns the number of pages
func (r *Reader) PageCount() (int, error) {
	tree, err := r.pageTree()
	if err != nil {
		return 0, err
	}
	return tree.Count()
}

// Pages returns every page in document order
func (r *Reader) Pages() ([]*Page, error) {
	tree, err := r.pageTree()
	if err != nil {
		return nil, err
	}
	all, err := tree.Pages()
	if err != nil {
		return nil, err
	}
	out := make([]*Page, len(all))
	for i, p := range all {
		out[i] = r.newPage(p, i+1)
	}
	return out, nil
}

// Page returns page n, counting from 1
func (r *Reader) Page(n int) (*Page, error) {
	tree, err := r.pageTree()
	if err != nil {
		return nil, err
	}
	count, err := tree.Count()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > count {
		return nil, pdferr.New(pdferr.InvalidPage, "page %d out of range [1, %d]", n, count)
	}
	p, err := tree.GetPage(n - 1)
	if err != nil {
		return nil, err
	}
	return r.newPage(p, n), nil
}

// Walk sends the document level callbacks and the content of every page
// to receivers
func (r *Reader) Walk(receivers ...any) error {
	w := contentstream.NewWalker(receivers...)
	w.SetLogger(r.logger)

	if err := w.Send(contentstream.BeginDocument, r.objects.Trailer()); err != nil {
		return err
	}
	if err := w.Send(contentstream.PDFVersion, core.Real(r.PDFVersion())); err != nil {
		return err
	}
	info, err := r.infoDict()
	if err != nil {
		return err
	}
	if info != nil {
		if err := w.Send(contentstream.Metadata, info); err != nil {
			return err
		}
	}
	xmp, err := r.Metadata()
	if err != nil {
		return err
	}
	if xmp != "" {
		if err := w.Send(contentstream.XMLMetadata, core.String(xmp)); err != nil {
			return err
		}
	}

	all, err := r.Pages()
	if err != nil {
		return err
	}
	if err := w.Send(contentstream.PageCount, core.Int(len(all))); err != nil {
		return err
	}
	for _, p := range all {
		if err := p.walk(w); err != nil {
			return fmt.Errorf("page %d: %w", p.Number(), err)
		}
	}
	return w.Send(contentstream.EndDocument)
}
