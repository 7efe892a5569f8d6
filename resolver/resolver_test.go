package resolver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// mockReader resolves references from a map
type mockReader struct {
	objects map[int]core.Object
	calls   int
}

func newMockReader() *mockReader {
	return &mockReader{
		objects: make(map[int]core.Object),
	}
}

func (m *mockReader) AddObject(num int, obj core.Object) {
	m.objects[num] = obj
}

func (m *mockReader) ResolveReference(ref core.Reference) (core.Object, error) {
	m.calls++
	obj, ok := m.objects[ref.Number]
	if !ok {
		return nil, pdferr.New(pdferr.NotFound, "object %d not found", ref.Number)
	}
	return obj, nil
}

func ref(n int) core.Reference { return core.Reference{Number: n} }

func TestResolveReference(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(5, core.Int(42))

	resolved, err := NewResolver(reader).Resolve(ref(5))
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if resolved != core.Int(42) {
		t.Errorf("expected 42, got %v", resolved)
	}
}

func TestResolvePrimitive(t *testing.T) {
	resolver := NewResolver(newMockReader())

	tests := []struct {
		name string
		obj  core.Object
	}{
		{"Bool", core.Bool(true)},
		{"Int", core.Int(123)},
		{"Real", core.Real(3.14)},
		{"String", core.String("hello")},
		{"Name", core.Name("Test")},
		{"Null", core.Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.ResolveDeep(tt.obj)
			if err != nil {
				t.Fatalf("failed to resolve: %v", err)
			}
			if resolved != tt.obj {
				t.Errorf("primitive changed: %v -> %v", tt.obj, resolved)
			}
		})
	}
}

func TestResolveDict(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(10, core.String("Value"))

	dict := core.Dict{
		"Direct": core.Int(123),
		"Ref":    ref(10),
	}
	resolver := NewResolver(reader)

	shallow, err := resolver.Resolve(dict)
	if err != nil {
		t.Fatalf("shallow resolve failed: %v", err)
	}
	if _, ok := shallow.(core.Dict)["Ref"].(core.Reference); !ok {
		t.Error("shallow resolve should not resolve references in dict")
	}

	deep, err := resolver.ResolveDict(dict)
	if err != nil {
		t.Fatalf("deep resolve failed: %v", err)
	}
	if deep["Ref"] != core.String("Value") {
		t.Errorf("deep resolve Ref = %v", deep["Ref"])
	}
	if _, ok := dict["Ref"].(core.Reference); !ok {
		t.Error("input dictionary was mutated")
	}
}

func TestResolveArrayAndStream(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(1, core.Int(1))
	reader.AddObject(2, core.Name("FlateDecode"))

	arr, err := NewResolver(reader).ResolveArray(core.Array{ref(1), core.Array{ref(1)}})
	if err != nil {
		t.Fatalf("ResolveArray() error: %v", err)
	}
	want := core.Array{core.Int(1), core.Array{core.Int(1)}}
	if !reflect.DeepEqual(arr, want) {
		t.Errorf("ResolveArray() = %v, want %v", arr, want)
	}

	stream := &core.Stream{Dict: core.Dict{"Filter": ref(2)}, Data: []byte("raw")}
	stream.SetDecoded([]byte("plain"))
	out, err := NewResolver(reader).ResolveDeep(stream)
	if err != nil {
		t.Fatalf("ResolveDeep(stream) error: %v", err)
	}
	s := out.(*core.Stream)
	if s == stream {
		t.Error("stream not copied")
	}
	if s.Dict["Filter"] != core.Name("FlateDecode") {
		t.Errorf("stream Filter = %v", s.Dict["Filter"])
	}
	if string(s.Decoded()) != "plain" {
		t.Errorf("decoded data lost: %q", s.Decoded())
	}
}

func TestResolveCycle(t *testing.T) {
	// 1 -> [1 2 0 R], 2 -> [2 3 0 R], 3 -> [3 1 0 R]
	reader := newMockReader()
	reader.AddObject(1, core.Array{core.Int(1), ref(2)})
	reader.AddObject(2, core.Array{core.Int(2), ref(3)})
	reader.AddObject(3, core.Array{core.Int(3), ref(1)})

	got, err := NewResolver(reader).ResolveDeep(ref(3))
	if err != nil {
		t.Fatalf("ResolveDeep() error: %v", err)
	}
	want := core.Array{core.Int(3), core.Array{core.Int(1), core.Array{core.Int(2), ref(3)}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveDeep() = %v, want %v", got, want)
	}
}

func TestResolveSelfReference(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(4, core.Dict{"Parent": ref(4), "Kids": core.Array{}})

	got, err := NewResolver(reader).ResolveDict(ref(4))
	if err != nil {
		t.Fatalf("ResolveDict() error: %v", err)
	}
	if got["Parent"] != ref(4) {
		t.Errorf("Parent = %v, want the unresolved reference", got["Parent"])
	}
}

func TestResolveSharedReferenceInSiblings(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(9, core.Name("Shared"))

	got, err := NewResolver(reader).ResolveArray(core.Array{ref(9), ref(9)})
	if err != nil {
		t.Fatalf("ResolveArray() error: %v", err)
	}
	want := core.Array{core.Name("Shared"), core.Name("Shared")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("siblings = %v, want %v", got, want)
	}
}

func TestResolveErrors(t *testing.T) {
	reader := newMockReader()
	reader.AddObject(1, core.Int(3))

	if _, err := NewResolver(reader).ResolveDeep(ref(99)); !errors.Is(err, pdferr.ErrNotFound) {
		t.Errorf("missing reference error = %v", err)
	}
	if _, err := NewResolver(reader).ResolveDict(ref(1)); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("type mismatch error = %v", err)
	}

}

// TestResolveDepthCountsReferences tests that only reference hops count
// against the depth limit
func TestResolveDepthCountsReferences(t *testing.T) {
	nested := core.Object(core.Int(0))
	for i := 0; i < 10; i++ {
		nested = core.Array{core.Dict{"Kids": nested}}
	}
	if _, err := NewResolver(newMockReader(), WithMaxDepth(1)).ResolveDeep(nested); err != nil {
		t.Errorf("direct nesting should not count: %v", err)
	}

	// an acyclic /Next chain 1 -> 2 -> ... -> 150
	reader := newMockReader()
	for i := 1; i < 150; i++ {
		reader.AddObject(i, core.Dict{"Title": core.String("item"), "Next": ref(i + 1)})
	}
	reader.AddObject(150, core.Dict{"Title": core.String("last")})

	got, err := NewResolver(reader).ResolveDeep(ref(1))
	if err != nil {
		t.Fatalf("default limit: %v", err)
	}
	last := got
	for i := 1; i < 150; i++ {
		last = last.(core.Dict)["Next"]
	}
	if title := last.(core.Dict)["Title"]; title != core.String("last") {
		t.Errorf("end of chain = %v", last)
	}

	tests := []struct {
		limit   int
		wantErr bool
	}{
		{149, true},
		{150, false},
	}
	for _, tt := range tests {
		_, err := NewResolver(reader, WithMaxDepth(tt.limit)).ResolveDeep(ref(1))
		if gotErr := errors.Is(err, pdferr.ErrMalformed); gotErr != tt.wantErr {
			t.Errorf("WithMaxDepth(%d) error = %v, want error %v", tt.limit, err, tt.wantErr)
		}
	}
}
