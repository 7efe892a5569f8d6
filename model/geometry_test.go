package model

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMatrixPreMultiply(t *testing.T) {
	tests := []struct {
		name  string
		start Matrix
		apply []Matrix
		point Point
		want  Point
	}{
		{"identity", Identity(), nil, Point{3, 4}, Point{3, 4}},
		{"translate", Identity(), []Matrix{Translate(36, 794.33)}, Point{0, 0}, Point{36, 794.33}},
		{
			// a later cm applies in the coordinate space set up by the earlier one
			"scale then translate",
			Identity(),
			[]Matrix{Scale(2, 2), Translate(10, 0)},
			Point{1, 1},
			Point{22, 2},
		},
		{
			"translate then scale",
			Identity(),
			[]Matrix{Translate(10, 0), Scale(2, 2)},
			Point{1, 1},
			Point{12, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.start
			for _, n := range tt.apply {
				m.PreMultiply(n)
			}
			got := m.Transform(tt.point)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) {
				t.Errorf("Transform(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestMatrixRotate(t *testing.T) {
	p := Rotate(90).Transform(Point{1, 0})
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 1) {
		t.Errorf("Rotate(90) of (1,0) = %v, want (0,1)", p)
	}
	if !Identity().IsIdentity() || Translate(1, 0).IsIdentity() {
		t.Error("IsIdentity mismatch")
	}
}

func TestBBox(t *testing.T) {
	b := NewBBoxFromCorners(612, 792, 0, 0)
	if b.X != 0 || b.Y != 0 || b.Width != 612 || b.Height != 792 {
		t.Fatalf("NewBBoxFromCorners = %+v", b)
	}
	if b.String() != "[0 0 612 792]" {
		t.Errorf("String() = %q", b.String())
	}

	a := BBox{X: 30, Y: 700, Width: 50, Height: 12}
	c := BBox{X: 55, Y: 700, Width: 50, Height: 12}
	in := a.Intersection(c)
	if in.Width != 25 || in.Height != 12 {
		t.Errorf("Intersection = %+v", in)
	}
	if got := a.Intersection(BBox{X: 200, Y: 0, Width: 1, Height: 1}); got.Area() != 0 {
		t.Errorf("disjoint Intersection area = %v", got.Area())
	}
}
