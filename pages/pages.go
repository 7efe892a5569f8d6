package pages

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/model"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// ObjectResolver dereferences objects found in the page tree. Non-reference
// values are returned unchanged.
type ObjectResolver interface {
	Object(obj core.Object) (core.Object, error)
}

// InheritableKeys are the page attributes a page takes from its nearest
// ancestor when it does not set them itself.
var InheritableKeys = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// Orientation values returned by Page.Orientation
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// letter is the MediaBox assumed when none is present
var letter = model.NewBBoxFromCorners(0, 0, 612, 792)

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{
		dict:     dict,
		resolver: resolver,
	}
}

// Dict returns the catalog dictionary
func (c *Catalog) Dict() core.Dict { return c.dict }

// Pages returns the page tree rooted at /Pages
func (c *Catalog) Pages() (*PageTree, error) {
	root := c.dict.Get("Pages")
	if root == nil {
		return nil, pdferr.Malformedf("catalog missing /Pages entry")
	}
	return NewPageTree(root, c.resolver), nil
}

// Metadata returns the XMP metadata stream, or nil when absent
func (c *Catalog) Metadata() (*core.Stream, error) {
	obj, err := c.resolver.Object(c.dict.Get("Metadata"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Metadata: %w", err)
	}
	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return v, nil
	default:
		return nil, pdferr.Malformedf("invalid /Metadata type %s", obj.Type())
	}
}

// Version returns the /Version entry if present
func (c *Catalog) Version() string {
	obj, err := c.resolver.Object(c.dict.Get("Version"))
	if err != nil {
		return ""
	}
	if name, ok := obj.(core.Name); ok {
		return string(name)
	}
	return ""
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Object
	resolver ObjectResolver
	pages    []*Page // flattened page list, loaded on first use
}

// NewPageTree creates a page tree from the root /Pages value, a reference
// or a dictionary
func NewPageTree(root core.Object, resolver ObjectResolver) *PageTree {
	return &PageTree{
		root:     root,
		resolver: resolver,
	}
}

// Count returns the number of pages found by walking the tree. /Count is
// not trusted.
func (t *PageTree) Count() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, pdferr.New(pdferr.InvalidPage, "page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all pages in document order
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}
	return t.pages, nil
}

// References returns the references of all pages in document order.
// Pages given as direct dictionaries have no reference and are skipped.
func (t *PageTree) References() ([]core.Reference, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	refs := make([]core.Reference, 0, len(pages))
	for _, p := range pages {
		if p.Indirect() {
			refs = append(refs, p.Ref)
		}
	}
	return refs, nil
}

// loadPages traverses the page tree and builds the flattened page list
func (t *PageTree) loadPages() error {
	pages := make([]*Page, 0)
	visited := make(map[core.Reference]bool)
	if err := t.traversePageNode(t.root, core.Dict{}, visited, &pages); err != nil {
		return fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = pages
	return nil
}

// traversePageNode visits one node. inherited holds the inheritable
// attributes set by its ancestors. Kids may be a direct array or a
// reference to one. A node reached twice is skipped.
func (t *PageTree) traversePageNode(obj core.Object, inherited core.Dict, visited map[core.Reference]bool, out *[]*Page) error {
	ref, isRef := obj.(core.Reference)
	if isRef {
		if visited[ref] {
			return nil
		}
		visited[ref] = true
	}

	resolved, err := t.resolver.Object(obj)
	if err != nil {
		return fmt.Errorf("failed to resolve page tree node: %w", err)
	}
	node, ok := resolved.(core.Dict)
	if !ok {
		return pdferr.Malformedf("page tree node is not a dictionary")
	}

	attrs := inherited.Clone()
	for _, key := range InheritableKeys {
		if v, ok := node[key]; ok {
			attrs[key] = v
		}
	}

	typ, _ := node.GetName("Type")
	kidsObj := node.Get("Kids")
	if typ == "Page" || (typ != "Pages" && kidsObj == nil) {
		page := NewPage(node, attrs, t.resolver)
		if isRef {
			page.Ref = ref
		}
		*out = append(*out, page)
		return nil
	}

	kidsResolved, err := t.resolver.Object(kidsObj)
	if err != nil {
		return fmt.Errorf("failed to resolve /Kids: %w", err)
	}
	kids, ok := kidsResolved.(core.Array)
	if !ok {
		if kidsResolved == nil {
			return nil
		}
		return pdferr.Malformedf("invalid /Kids type %s", kidsResolved.Type())
	}
	for _, kid := range kids {
		if err := t.traversePageNode(kid, attrs, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// Page represents a single PDF page
type Page struct {
	// Ref is the page's reference, zero for a direct dictionary.
	Ref      core.Reference
	dict     core.Dict
	inherit  core.Dict // inheritable attributes from ancestors and the page
	resolver ObjectResolver
}

// NewPage creates a page from its dictionary and the inheritable
// attributes in effect for it
func NewPage(dict core.Dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{
		dict:     dict,
		inherit:  inherited,
		resolver: resolver,
	}
}

// Indirect reports whether the page has a reference
func (p *Page) Indirect() bool { return p.Ref != (core.Reference{}) }

// Dict returns the page dictionary as stored
func (p *Page) Dict() core.Dict { return p.dict }

// Attributes returns the page dictionary with inherited attributes filled
// in. The result is a copy.
func (p *Page) Attributes() core.Dict {
	attrs := p.dict.Clone()
	for key, v := range p.inherit {
		if _, ok := attrs[key]; !ok {
			attrs[key] = v
		}
	}
	return attrs
}

// attribute returns an inheritable attribute, resolved
func (p *Page) attribute(key string) (core.Object, error) {
	obj := p.dict.Get(key)
	if obj == nil {
		obj = p.inherit.Get(key)
	}
	if obj == nil {
		return nil, nil
	}
	return p.resolver.Object(obj)
}

// MediaBox returns the page media box, US Letter when absent
func (p *Page) MediaBox() (model.BBox, error) {
	box, ok, err := p.getBox("MediaBox")
	if err != nil {
		return model.BBox{}, err
	}
	if !ok {
		return letter, nil
	}
	return box, nil
}

// CropBox returns the crop box, defaulting to the media box
func (p *Page) CropBox() (model.BBox, error) {
	box, ok, err := p.getBox("CropBox")
	if err != nil || ok {
		return box, err
	}
	return p.MediaBox()
}

// BleedBox returns the bleed box, defaulting to the crop box
func (p *Page) BleedBox() (model.BBox, error) { return p.boxOrCrop("BleedBox") }

// TrimBox returns the trim box, defaulting to the crop box
func (p *Page) TrimBox() (model.BBox, error) { return p.boxOrCrop("TrimBox") }

// ArtBox returns the art box, defaulting to the crop box
func (p *Page) ArtBox() (model.BBox, error) { return p.boxOrCrop("ArtBox") }

func (p *Page) boxOrCrop(name string) (model.BBox, error) {
	box, ok, err := p.getBox(name)
	if err != nil || ok {
		return box, err
	}
	return p.CropBox()
}

// getBox reads a rectangle attribute. Corners may come in any order.
func (p *Page) getBox(name string) (model.BBox, bool, error) {
	obj, err := p.attribute(name)
	if err != nil {
		return model.BBox{}, false, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if obj == nil {
		return model.BBox{}, false, nil
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return model.BBox{}, false, pdferr.Malformedf("invalid %s", name)
	}
	var nums [4]float64
	for i, elem := range arr {
		v, err := p.resolver.Object(elem)
		if err != nil {
			return model.BBox{}, false, err
		}
		n, ok := core.Number(v)
		if !ok {
			return model.BBox{}, false, pdferr.Malformedf("invalid %s element type %s", name, elem.Type())
		}
		nums[i] = n
	}
	return model.NewBBoxFromCorners(nums[0], nums[1], nums[2], nums[3]), true, nil
}

// Rotate returns the page rotation normalised to 0, 90, 180 or 270
func (p *Page) Rotate() int {
	obj, err := p.attribute("Rotate")
	if err != nil {
		return 0
	}
	n, ok := core.Number(obj)
	if !ok {
		return 0
	}
	r := int(n) % 360
	if r < 0 {
		r += 360
	}
	return r / 90 * 90
}

// Width returns the width of the media box as displayed, after rotation
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	if p.Rotate()%180 == 90 {
		return box.Height, nil
	}
	return box.Width, nil
}

// Height returns the height of the media box as displayed, after rotation
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	if p.Rotate()%180 == 90 {
		return box.Width, nil
	}
	return box.Height, nil
}

// Orientation returns Portrait or Landscape for the displayed page
func (p *Page) Orientation() (string, error) {
	w, err := p.Width()
	if err != nil {
		return "", err
	}
	h, err := p.Height()
	if err != nil {
		return "", err
	}
	if w > h {
		return Landscape, nil
	}
	return Portrait, nil
}

// Resources returns the page resources dictionary, empty when absent
func (p *Page) Resources() (core.Dict, error) {
	obj, err := p.attribute("Resources")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	switch v := obj.(type) {
	case nil, core.Null:
		return core.Dict{}, nil
	case core.Dict:
		return v, nil
	default:
		return nil, pdferr.Malformedf("invalid Resources type %s", obj.Type())
	}
}

// Contents returns the page content streams in order
func (p *Page) Contents() ([]*core.Stream, error) {
	obj, err := p.resolver.Object(p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			resolved, err := p.resolver.Object(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			if s, ok := resolved.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	default:
		return nil, pdferr.Malformedf("invalid Contents type %s", obj.Type())
	}
}
