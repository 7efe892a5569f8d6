package pages

import (
	"errors"
	"fmt"
	"testing"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/model"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// mockResolver is a mock ObjectResolver for testing
type mockResolver struct {
	objects map[int]core.Object
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		objects: make(map[int]core.Object),
	}
}

func (m *mockResolver) AddObject(num int, obj core.Object) {
	m.objects[num] = obj
}

func (m *mockResolver) Object(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.Reference)
	if !ok {
		return obj, nil
	}
	resolved, ok := m.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return resolved, nil
}

func ref(n int) core.Reference { return core.Reference{Number: n} }

// TestCatalogPages tests catalog access to the page tree
func TestCatalogPages(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(2, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(3)}})
	resolver.AddObject(3, core.Dict{"Type": core.Name("Page")})

	catalog := NewCatalog(core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2), "Version": core.Name("1.7")}, resolver)
	tree, err := catalog.Pages()
	if err != nil {
		t.Fatalf("Pages() error: %v", err)
	}
	count, err := tree.Count()
	if err != nil || count != 1 {
		t.Errorf("Count() = %d, %v", count, err)
	}
	if v := catalog.Version(); v != "1.7" {
		t.Errorf("Version() = %q", v)
	}

	md, err := catalog.Metadata()
	if err != nil || md != nil {
		t.Errorf("Metadata() = %v, %v", md, err)
	}

	_, err = NewCatalog(core.Dict{}, resolver).Pages()
	if !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed error for missing /Pages, got %v", err)
	}
}

// TestPageTreeOrder tests depth-first ordering through nested nodes and
// indirect Kids arrays
func TestPageTreeOrder(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(1, core.Dict{"Type": core.Name("Pages"), "Kids": ref(9)})
	resolver.AddObject(9, core.Array{ref(2), ref(5)})
	resolver.AddObject(2, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(3), ref(4)}})
	resolver.AddObject(3, core.Dict{"Type": core.Name("Page")})
	resolver.AddObject(4, core.Dict{"Type": core.Name("Page")})
	resolver.AddObject(5, core.Dict{"Type": core.Name("Page")})

	tree := NewPageTree(ref(1), resolver)
	refs, err := tree.References()
	if err != nil {
		t.Fatalf("References() error: %v", err)
	}
	want := []int{3, 4, 5}
	if len(refs) != len(want) {
		t.Fatalf("got %d pages, want %d", len(refs), len(want))
	}
	for i, n := range want {
		if refs[i].Number != n {
			t.Errorf("page %d = %v, want object %d", i, refs[i], n)
		}
	}

	page, err := tree.GetPage(1)
	if err != nil || page.Ref.Number != 4 {
		t.Errorf("GetPage(1) = %v, %v", page, err)
	}
	if _, err := tree.GetPage(3); !errors.Is(err, pdferr.ErrInvalidPage) {
		t.Errorf("GetPage(3) error = %v", err)
	}
}

// TestPageTreeCycle tests that a node listed twice is visited once
func TestPageTreeCycle(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(1, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(2), ref(1), ref(2)}})
	resolver.AddObject(2, core.Dict{"Type": core.Name("Page")})

	count, err := NewPageTree(ref(1), resolver).Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

// TestPageTreeBadNode tests that a non-dictionary node is rejected
func TestPageTreeBadNode(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(1, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(2)}})
	resolver.AddObject(2, core.Int(7))

	_, err := NewPageTree(ref(1), resolver).Pages()
	if !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed error, got %v", err)
	}
}

// TestInheritance tests that inheritable attributes come from the nearest
// ancestor
func TestInheritance(t *testing.T) {
	resources := core.Dict{"Font": core.Dict{"F1": ref(10)}}
	resolver := newMockResolver()
	resolver.AddObject(1, core.Dict{
		"Type":      core.Name("Pages"),
		"Kids":      core.Array{ref(2)},
		"MediaBox":  core.Array{core.Int(0), core.Int(0), core.Int(200), core.Int(100)},
		"Resources": resources,
		"Rotate":    core.Int(90),
	})
	resolver.AddObject(2, core.Dict{
		"Type":   core.Name("Pages"),
		"Kids":   core.Array{ref(3), ref(4)},
		"Rotate": core.Int(0),
	})
	resolver.AddObject(3, core.Dict{"Type": core.Name("Page")})
	resolver.AddObject(4, core.Dict{
		"Type":     core.Name("Page"),
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(300), core.Int(400)},
		"Rotate":   core.Int(-90),
	})

	pages, err := NewPageTree(ref(1), resolver).Pages()
	if err != nil {
		t.Fatalf("Pages() error: %v", err)
	}

	first := pages[0]
	box, err := first.MediaBox()
	if err != nil || box.Width != 200 || box.Height != 100 {
		t.Errorf("page 1 MediaBox = %v, %v", box, err)
	}
	if r := first.Rotate(); r != 0 {
		t.Errorf("page 1 Rotate = %d, want 0", r)
	}
	res, err := first.Resources()
	if _, ok := res.GetDict("Font"); err != nil || !ok {
		t.Errorf("page 1 Resources = %v, %v", res, err)
	}
	if o, _ := first.Orientation(); o != Landscape {
		t.Errorf("page 1 Orientation = %s", o)
	}
	if _, ok := first.Attributes()["Resources"]; !ok {
		t.Error("Attributes() missing inherited Resources")
	}
	if _, ok := first.Dict()["Resources"]; ok {
		t.Error("Dict() should not contain inherited Resources")
	}

	second := pages[1]
	if r := second.Rotate(); r != 270 {
		t.Errorf("page 2 Rotate = %d, want 270", r)
	}
	w, _ := second.Width()
	h, _ := second.Height()
	if w != 400 || h != 300 {
		t.Errorf("page 2 size = %vx%v, want 400x300", w, h)
	}
	if o, _ := second.Orientation(); o != Landscape {
		t.Errorf("page 2 Orientation = %s", o)
	}
}

// TestBoxes tests box defaults and swapped corners
func TestBoxes(t *testing.T) {
	resolver := newMockResolver()
	page := NewPage(core.Dict{"Type": core.Name("Page")}, core.Dict{}, resolver)

	media, err := page.MediaBox()
	if err != nil || media != model.NewBBoxFromCorners(0, 0, 612, 792) {
		t.Errorf("default MediaBox = %v, %v", media, err)
	}
	art, _ := page.ArtBox()
	if art != media {
		t.Errorf("ArtBox = %v, want media box", art)
	}

	page = NewPage(core.Dict{
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(500), core.Int(500)},
		"CropBox":  core.Array{core.Real(400), core.Real(450), core.Int(10), core.Int(20)},
		"TrimBox":  core.Array{core.Int(1), core.Int(2), core.Int(3), core.Int(4)},
	}, core.Dict{}, resolver)

	crop, _ := page.CropBox()
	if crop.X != 10 || crop.Y != 20 || crop.Width != 390 || crop.Height != 430 {
		t.Errorf("CropBox = %v", crop)
	}
	bleed, _ := page.BleedBox()
	if bleed != crop {
		t.Errorf("BleedBox = %v, want crop box", bleed)
	}
	trim, _ := page.TrimBox()
	if trim.Right() != 3 || trim.Top() != 4 {
		t.Errorf("TrimBox = %v", trim)
	}

	bad := NewPage(core.Dict{"MediaBox": core.Array{core.Int(0), core.Int(0)}}, core.Dict{}, resolver)
	if _, err := bad.MediaBox(); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed MediaBox error, got %v", err)
	}
}

// TestContents tests single, array and missing content streams
func TestContents(t *testing.T) {
	resolver := newMockResolver()
	s1 := &core.Stream{Dict: core.Dict{}, Data: []byte("BT ET")}
	s2 := &core.Stream{Dict: core.Dict{}, Data: []byte("q Q")}
	resolver.AddObject(5, s1)
	resolver.AddObject(6, s2)

	tests := []struct {
		name     string
		contents core.Object
		want     int
	}{
		{"single", ref(5), 1},
		{"array", core.Array{ref(5), ref(6)}, 2},
		{"missing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict := core.Dict{}
			if tt.contents != nil {
				dict["Contents"] = tt.contents
			}
			streams, err := NewPage(dict, core.Dict{}, resolver).Contents()
			if err != nil {
				t.Fatalf("Contents() error: %v", err)
			}
			if len(streams) != tt.want {
				t.Errorf("got %d streams, want %d", len(streams), tt.want)
			}
		})
	}

	_, err := NewPage(core.Dict{"Contents": core.Int(1)}, core.Dict{}, resolver).Contents()
	if !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed error, got %v", err)
	}
}
