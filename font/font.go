package font

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Resolver dereferences indirect objects found in font dictionaries
type Resolver interface {
	Object(obj core.Object) (core.Object, error)
}

// Descriptor holds the FontDescriptor entries the reader uses.
type Descriptor struct {
	FontName     string
	Flags        int
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	MissingWidth float64
	Embedded     bool // FontFile, FontFile2 or FontFile3 present
}

// Font is a PDF font resource: how its strings split into codes, what text
// each code shows and how far each glyph advances.
type Font struct {
	Subtype  string
	BaseFont string

	// Encoding maps codes of simple fonts to text.
	Encoding *Encoding
	// ToUnicode takes precedence over Encoding when present.
	ToUnicode *CMap
	// CMap maps codes of composite (Type0) fonts to CIDs.
	CMap *CMap

	Descriptor *Descriptor

	firstChar    int
	widths       []float64
	hasWidths    bool
	cidWidths    []widthRange
	defaultWidth float64
	fontMatrix   [6]float64
}

// Glyph is one character code shown by a string.
type Glyph struct {
	Code uint32
	Len  int // bytes in the code
	Text string
	// Advance is the horizontal displacement in text space for a font
	// size of 1.
	Advance float64
}

// widthRange is one entry of a CIDFont W array
type widthRange struct {
	first, last uint32
	widths      []float64 // c [w1 w2 ...] form
	width       float64   // cfirst clast w form
}

// New builds a font from its dictionary
func New(dict core.Dict, r Resolver) (*Font, error) {
	subtype, _ := dict.GetName("Subtype")
	baseFont, _ := dict.GetName("BaseFont")
	f := &Font{
		Subtype:      string(subtype),
		BaseFont:     string(baseFont),
		defaultWidth: 1000,
		fontMatrix:   [6]float64{0.001, 0, 0, 0.001, 0, 0},
	}

	if tu, err := resolve(r, dict.Get("ToUnicode")); err == nil {
		if stream, ok := tu.(*core.Stream); ok {
			if data, err := stream.Decode(); err == nil {
				f.ToUnicode, _ = ParseCMap(data)
			}
		}
	}

	if f.Subtype == "Type0" {
		if err := f.loadComposite(dict, r); err != nil {
			return nil, err
		}
		return f, nil
	}

	if err := f.loadEncoding(dict, r); err != nil {
		return nil, err
	}
	if err := f.loadWidths(dict, r); err != nil {
		return nil, err
	}
	if f.Subtype == "Type3" {
		if fm, err := resolve(r, dict.Get("FontMatrix")); err == nil {
			if arr, ok := fm.(core.Array); ok && len(arr) == 6 {
				if nums, ok := arr.Numbers(); ok {
					copy(f.fontMatrix[:], nums)
				}
			}
		}
	}
	fd, err := resolveDict(r, dict.Get("FontDescriptor"))
	if err != nil {
		return nil, err
	}
	if fd != nil {
		f.Descriptor = parseDescriptor(fd)
	}
	return f, nil
}

// loadEncoding reads /Encoding as a name or a dictionary with BaseEncoding
// and Differences
func (f *Font) loadEncoding(dict core.Dict, r Resolver) error {
	obj, err := resolve(r, dict.Get("Encoding"))
	if err != nil {
		return err
	}

	switch v := obj.(type) {
	case nil, core.Null:
		f.Encoding = NewEncoding("StandardEncoding")
	case core.Name:
		f.Encoding = NewEncoding(string(v))
	case core.Dict:
		base, _ := v.GetName("BaseEncoding")
		f.Encoding = NewEncoding(string(base))
		diffs, err := resolve(r, v.Get("Differences"))
		if err != nil {
			return err
		}
		if arr, ok := diffs.(core.Array); ok {
			f.Encoding.ApplyDifferences(arr)
		}
	default:
		return pdferr.Malformedf("invalid font encoding type %s", obj.Type())
	}
	return nil
}

func (f *Font) loadWidths(dict core.Dict, r Resolver) error {
	if fc, ok := dict.GetInt("FirstChar"); ok {
		f.firstChar = int(fc)
	}
	obj, err := resolve(r, dict.Get("Widths"))
	if err != nil {
		return err
	}
	arr, ok := obj.(core.Array)
	if !ok {
		return nil
	}
	f.widths = make([]float64, len(arr))
	for i, w := range arr {
		w, err := resolve(r, w)
		if err != nil {
			return err
		}
		f.widths[i], _ = core.Number(w)
	}
	f.hasWidths = true
	return nil
}

// loadComposite reads a Type0 font: its encoding CMap and the widths of
// its descendant CIDFont
func (f *Font) loadComposite(dict core.Dict, r Resolver) error {
	enc, err := resolve(r, dict.Get("Encoding"))
	if err != nil {
		return err
	}
	switch v := enc.(type) {
	case core.Name:
		// predefined CJK CMaps are read as two-byte identity mappings
		f.CMap = IdentityCMap(string(v))
	case *core.Stream:
		data, err := v.Decode()
		if err != nil {
			return fmt.Errorf("font encoding cmap: %w", err)
		}
		if f.CMap, err = ParseCMap(data); err != nil {
			return err
		}
	default:
		f.CMap = IdentityCMap("Identity-H")
	}

	descendants, err := resolve(r, dict.Get("DescendantFonts"))
	if err != nil {
		return err
	}
	arr, ok := descendants.(core.Array)
	if !ok || len(arr) == 0 {
		return nil
	}
	cidFont, err := resolveDict(r, arr[0])
	if err != nil || cidFont == nil {
		return err
	}

	if dw, ok := cidFont.GetNumber("DW"); ok {
		f.defaultWidth = dw
	}
	w, err := resolve(r, cidFont.Get("W"))
	if err != nil {
		return err
	}
	if warr, ok := w.(core.Array); ok {
		f.cidWidths = parseW(warr, r)
	}
	fd, err := resolveDict(r, cidFont.Get("FontDescriptor"))
	if err != nil {
		return err
	}
	if fd != nil {
		f.Descriptor = parseDescriptor(fd)
	}
	return nil
}

// parseW reads a W array: entries are "c [w1 w2 ...]" or "cfirst clast w"
func parseW(arr core.Array, r Resolver) []widthRange {
	var out []widthRange
	for i := 0; i < len(arr); {
		first, ok := core.Number(arr[i])
		if !ok || i+1 >= len(arr) {
			break
		}
		next, _ := resolve(r, arr[i+1])
		if list, ok := next.(core.Array); ok {
			nums := make([]float64, len(list))
			for j, w := range list {
				nums[j], _ = core.Number(w)
			}
			out = append(out, widthRange{first: uint32(first), last: uint32(first) + uint32(len(nums)) - 1, widths: nums})
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		last, _ := core.Number(next)
		w, _ := core.Number(arr[i+2])
		out = append(out, widthRange{first: uint32(first), last: uint32(last), width: w})
		i += 3
	}
	return out
}

func parseDescriptor(fd core.Dict) *Descriptor {
	d := &Descriptor{}
	if name, ok := fd.GetName("FontName"); ok {
		d.FontName = string(name)
	}
	if flags, ok := fd.GetInt("Flags"); ok {
		d.Flags = int(flags)
	}
	d.ItalicAngle, _ = fd.GetNumber("ItalicAngle")
	d.Ascent, _ = fd.GetNumber("Ascent")
	d.Descent, _ = fd.GetNumber("Descent")
	d.CapHeight, _ = fd.GetNumber("CapHeight")
	d.MissingWidth, _ = fd.GetNumber("MissingWidth")
	d.Embedded = fd.Has("FontFile") || fd.Has("FontFile2") || fd.Has("FontFile3")
	return d
}

// Composite reports whether the font is a Type0 font
func (f *Font) Composite() bool { return f.CMap != nil }

// Vertical reports whether the font uses a vertical writing mode CMap
func (f *Font) Vertical() bool {
	return f.CMap != nil && len(f.CMap.Name) > 2 && f.CMap.Name[len(f.CMap.Name)-2:] == "-V"
}

// Embedded reports whether the font program is embedded. Type3 fonts
// define their glyphs in the document and count as embedded.
func (f *Font) Embedded() bool {
	if f.Subtype == "Type3" {
		return true
	}
	return f.Descriptor != nil && f.Descriptor.Embedded
}

// Glyphs splits data into codes and resolves each one's text and advance
func (f *Font) Glyphs(data []byte) []Glyph {
	if f.CMap != nil {
		codes := f.CMap.Decode(data)
		out := make([]Glyph, len(codes))
		for i, c := range codes {
			cid, ok := f.CMap.CID(c.Value)
			if !ok {
				cid = c.Value
			}
			out[i] = Glyph{
				Code:    c.Value,
				Len:     c.Len,
				Text:    f.unicode(c.Value, ""),
				Advance: f.cidWidth(cid) / 1000,
			}
		}
		return out
	}

	out := make([]Glyph, len(data))
	for i, b := range data {
		text := f.unicode(uint32(b), f.Encoding.Text(b))
		out[i] = Glyph{
			Code:    uint32(b),
			Len:     1,
			Text:    text,
			Advance: f.simpleWidth(b, text) * f.fontMatrix[0],
		}
	}
	return out
}

// Text decodes data to text
func (f *Font) Text(data []byte) string {
	var out []byte
	for _, g := range f.Glyphs(data) {
		out = append(out, g.Text...)
	}
	return string(out)
}

// GlyphWidth returns the width of a code in glyph space
func (f *Font) GlyphWidth(code uint32) float64 {
	if f.CMap != nil {
		cid, ok := f.CMap.CID(code)
		if !ok {
			cid = code
		}
		return f.cidWidth(cid)
	}
	b := byte(code)
	return f.simpleWidth(b, f.unicode(code, f.Encoding.Text(b)))
}

func (f *Font) unicode(code uint32, fallback string) string {
	if f.ToUnicode != nil {
		if r, ok := f.ToUnicode.Lookup(code); ok {
			return string(r)
		}
	}
	return fallback
}

func (f *Font) simpleWidth(code byte, text string) float64 {
	if f.hasWidths {
		i := int(code) - f.firstChar
		if i >= 0 && i < len(f.widths) {
			return f.widths[i]
		}
	}
	if f.Descriptor != nil && f.Descriptor.MissingWidth > 0 {
		return f.Descriptor.MissingWidth
	}
	if w, ok := standardWidth(f.BaseFont, text); ok {
		return w
	}
	if f.hasWidths || f.Subtype == "Type3" {
		return 0
	}
	return 500
}

func (f *Font) cidWidth(cid uint32) float64 {
	for _, wr := range f.cidWidths {
		if cid < wr.first || cid > wr.last {
			continue
		}
		if wr.widths != nil {
			return wr.widths[cid-wr.first]
		}
		return wr.width
	}
	return f.defaultWidth
}

func resolve(r Resolver, obj core.Object) (core.Object, error) {
	if obj == nil || r == nil {
		return obj, nil
	}
	return r.Object(obj)
}

func resolveDict(r Resolver, obj core.Object) (core.Dict, error) {
	v, err := resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch d := v.(type) {
	case nil, core.Null:
		return nil, nil
	case core.Dict:
		return d, nil
	default:
		return nil, pdferr.Malformedf("expected dictionary, got %s", v.Type())
	}
}
