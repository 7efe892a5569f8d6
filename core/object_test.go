package core

import (
	"testing"
)

// TestObjectType tests the ObjectType String() method
func TestObjectType(t *testing.T) {
	tests := []struct {
		typ  ObjectType
		want string
	}{
		{ObjNull, "Null"},
		{ObjBool, "Bool"},
		{ObjInt, "Int"},
		{ObjReal, "Real"},
		{ObjString, "String"},
		{ObjName, "Name"},
		{ObjArray, "Array"},
		{ObjDict, "Dict"},
		{ObjStream, "Stream"},
		{ObjReference, "Reference"},
		{ObjectType(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("ObjectType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectString(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"int", Int(-42), "-42"},
		{"real", Real(3.25), "3.25"},
		{"name", Name("Type"), "/Type"},
		{"reference", Reference{Number: 12, Generation: 0}, "12 0 R"},
		{"array", Array{Int(1), String("a"), nil}, "[1 (a) null]"},
		{"dict", Dict{"B": Int(2), "A": Name("X")}, "<</A /X /B 2>>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDictAccessors(t *testing.T) {
	d := Dict{
		"Type":   Name("Page"),
		"Count":  Int(3),
		"Width":  Real(8.5),
		"Kids":   Array{Reference{Number: 4}},
		"Res":    Dict{"Font": Dict{}},
		"Title":  String("hello"),
		"Open":   Bool(true),
		"Parent": Reference{Number: 2},
	}

	if n, ok := d.GetName("Type"); !ok || n != "Page" {
		t.Errorf("GetName = %v, %v", n, ok)
	}
	if n, ok := d.GetInt("Count"); !ok || n != 3 {
		t.Errorf("GetInt = %v, %v", n, ok)
	}
	if f, ok := d.GetNumber("Width"); !ok || f != 8.5 {
		t.Errorf("GetNumber(Width) = %v, %v", f, ok)
	}
	if f, ok := d.GetNumber("Count"); !ok || f != 3 {
		t.Errorf("GetNumber(Count) = %v, %v", f, ok)
	}
	if a, ok := d.GetArray("Kids"); !ok || len(a) != 1 {
		t.Errorf("GetArray = %v, %v", a, ok)
	}
	if _, ok := d.GetDict("Res"); !ok {
		t.Error("GetDict failed")
	}
	if s, ok := d.GetString("Title"); !ok || s != "hello" {
		t.Errorf("GetString = %v, %v", s, ok)
	}
	if b, ok := d.GetBool("Open"); !ok || !bool(b) {
		t.Errorf("GetBool = %v, %v", b, ok)
	}
	if r, ok := d.GetReference("Parent"); !ok || r.Number != 2 {
		t.Errorf("GetReference = %v, %v", r, ok)
	}
	if _, ok := d.GetInt("Type"); ok {
		t.Error("GetInt on a name should fail")
	}
	if d.Has("Missing") {
		t.Error("Has(Missing) = true")
	}

	keys := d.Keys()
	if keys[0] != "Count" || keys[len(keys)-1] != "Width" {
		t.Errorf("Keys not sorted: %v", keys)
	}

	clone := d.Clone()
	clone["Type"] = Name("Pages")
	if n, _ := d.GetName("Type"); n != "Page" {
		t.Error("Clone shares storage with the original")
	}
}

func TestArrayNumbers(t *testing.T) {
	got, ok := Array{Int(0), Real(1.5), Int(-2)}.Numbers()
	if !ok || len(got) != 3 || got[1] != 1.5 || got[2] != -2 {
		t.Errorf("Numbers() = %v, %v", got, ok)
	}
	if _, ok := (Array{Int(0), Name("x")}).Numbers(); ok {
		t.Error("Numbers() accepted a name")
	}
	if (Array{}).Get(3) != nil {
		t.Error("Get out of range should return nil")
	}
}

func TestReferenceKey(t *testing.T) {
	if got := (Reference{Number: 7, Generation: 1}).Key(); got != "7:1" {
		t.Errorf("Key() = %q", got)
	}
}
