package reader

import (
	"fmt"
	"sort"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/graphicsstate"
	"github.com/yob/pdf-reader-sub001/model"
	"github.com/yob/pdf-reader-sub001/pages"
	"github.com/yob/pdf-reader-sub001/text"
)

// Page is a single page of a document
type Page struct {
	reader *Reader
	page   *pages.Page
	number int
}

func (r *Reader) newPage(p *pages.Page, number int) *Page {
	return &Page{reader: r, page: p, number: number}
}

// Number returns the 1-based page number
func (p *Page) Number() int { return p.number }

// Ref returns the page's reference, zero for a direct page dictionary
func (p *Page) Ref() core.Reference { return p.page.Ref }

// Attributes returns the page dictionary with inherited entries filled in
func (p *Page) Attributes() core.Dict { return p.page.Attributes() }

// MediaBox returns the page's media box
func (p *Page) MediaBox() (model.BBox, error) { return p.page.MediaBox() }

// CropBox returns the crop box, defaulting to the media box
func (p *Page) CropBox() (model.BBox, error) { return p.page.CropBox() }

// BleedBox returns the bleed box, defaulting to the crop box
func (p *Page) BleedBox() (model.BBox, error) { return p.page.BleedBox() }

// TrimBox returns the trim box, defaulting to the crop box
func (p *Page) TrimBox() (model.BBox, error) { return p.page.TrimBox() }

// ArtBox returns the art box, defaulting to the crop box
func (p *Page) ArtBox() (model.BBox, error) { return p.page.ArtBox() }

// Rotate returns the page rotation in degrees, normalized to 0, 90, 180
// or 270
func (p *Page) Rotate() int { return p.page.Rotate() }

// Width returns the rotated page width
func (p *Page) Width() (float64, error) { return p.page.Width() }

// Height returns the rotated page height
func (p *Page) Height() (float64, error) { return p.page.Height() }

// Orientation returns "portrait" or "landscape"
func (p *Page) Orientation() (string, error) { return p.page.Orientation() }

// Raw returns the decoded content streams joined by newlines
func (p *Page) Raw() ([]byte, error) {
	chunks, err := p.contents()
	if err != nil {
		return nil, err
	}
	var out []byte
	for i, c := range chunks {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, c...)
	}
	return out, nil
}

func (p *Page) contents() ([][]byte, error) {
	streams, err := p.page.Contents()
	if err != nil {
		return nil, err
	}
	chunks := make([][]byte, 0, len(streams))
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		chunks = append(chunks, data)
	}
	return chunks, nil
}

// Walk sends BeginPage, every content stream operator and EndPage to
// receivers
func (p *Page) Walk(receivers ...any) error {
	w := contentstream.NewWalker(receivers...)
	w.SetLogger(p.reader.logger)
	return p.walk(w)
}

func (p *Page) walk(w *contentstream.Walker) error {
	if err := w.Send(contentstream.BeginPage, core.Int(p.number), p.Attributes()); err != nil {
		return err
	}
	if err := p.walkContent(w); err != nil {
		return err
	}
	return w.Send(contentstream.EndPage)
}

func (p *Page) walkContent(w *contentstream.Walker) error {
	chunks, err := p.contents()
	if err != nil {
		return err
	}
	return w.Walk(contentstream.NewChunkedParser(chunks))
}

// State returns a fresh graphics state for the page's resources
func (p *Page) State() (*graphicsstate.PageState, error) {
	resources, err := p.page.Resources()
	if err != nil {
		return nil, err
	}
	return graphicsstate.NewPageState(resources, p.reader.objects,
		graphicsstate.WithLogger(p.reader.logger)), nil
}

// Runs returns the positioned text runs drawn on the page, in drawing
// order
func (p *Page) Runs() ([]text.TextRun, error) {
	rec, err := p.textReceiver()
	if err != nil {
		return nil, err
	}
	return rec.Runs(), nil
}

// Text returns the page text laid out by the reader's layout. Glyphs drawn
// outside the crop box are left out.
func (p *Page) Text() (string, error) {
	rec, err := p.textReceiver()
	if err != nil {
		return "", err
	}
	cropBox, err := p.CropBox()
	if err != nil {
		return "", err
	}
	return rec.Content(p.reader.layout, cropBox), nil
}

func (p *Page) textReceiver() (*text.PageTextReceiver, error) {
	state, err := p.State()
	if err != nil {
		return nil, err
	}
	rec := text.NewPageTextReceiver(state)
	w := contentstream.NewWalker(rec)
	w.SetLogger(p.reader.logger)
	if err := p.walkContent(w); err != nil {
		return nil, err
	}
	return rec, nil
}

// Paths returns the painted lines and rectangles on the page
func (p *Page) Paths() ([]graphicsstate.Line, []graphicsstate.Rectangle, error) {
	state, err := p.State()
	if err != nil {
		return nil, nil, err
	}
	rec := graphicsstate.NewPathReceiver(state)
	w := contentstream.NewWalker(rec)
	w.SetLogger(p.reader.logger)
	if err := p.walkContent(w); err != nil {
		return nil, nil, err
	}
	return rec.Lines, rec.Rectangles, nil
}

// Fonts returns the page's /Font resources with each entry resolved
func (p *Page) Fonts() (core.Dict, error) { return p.resource("Font") }

// XObjects returns the page's /XObject resources with each entry resolved
func (p *Page) XObjects() (core.Dict, error) { return p.resource("XObject") }

// ColorSpaces returns the page's /ColorSpace resources
func (p *Page) ColorSpaces() (core.Dict, error) { return p.resource("ColorSpace") }

// Patterns returns the page's /Pattern resources
func (p *Page) Patterns() (core.Dict, error) { return p.resource("Pattern") }

// Properties returns the page's /Properties resources
func (p *Page) Properties() (core.Dict, error) { return p.resource("Properties") }

// Shadings returns the page's /Shading resources
func (p *Page) Shadings() (core.Dict, error) { return p.resource("Shading") }

// ExtGStates returns the page's /ExtGState resources
func (p *Page) ExtGStates() (core.Dict, error) { return p.resource("ExtGState") }

// ProcSets returns the names in the page's /ProcSet array, sorted
func (p *Page) ProcSets() ([]string, error) {
	resources, err := p.page.Resources()
	if err != nil {
		return nil, err
	}
	arr, err := p.reader.objects.DerefArray(resources.Get("ProcSet"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, item := range arr {
		name, err := p.reader.objects.DerefName(item)
		if err != nil {
			return nil, err
		}
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names, nil
}

// resource returns one resource category with its values resolved. A
// missing category is an empty dictionary.
func (p *Page) resource(category string) (core.Dict, error) {
	resources, err := p.page.Resources()
	if err != nil {
		return nil, err
	}
	dict, err := p.reader.objects.DerefDict(resources.Get(category))
	if err != nil {
		return nil, fmt.Errorf("resource /%s: %w", category, err)
	}
	out := make(core.Dict, len(dict))
	for name, value := range dict {
		resolved, err := p.reader.objects.Object(value)
		if err != nil {
			return nil, fmt.Errorf("resource /%s/%s: %w", category, name, err)
		}
		out[name] = resolved
	}
	return out, nil
}
