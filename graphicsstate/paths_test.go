package graphicsstate

import (
	"testing"

	"github.com/yob/pdf-reader-sub001/contentstream"
)

func walkPaths(t *testing.T, content string) *PathReceiver {
	t.Helper()
	r := NewPathReceiver(NewPageState(nil, nil))
	if err := contentstream.NewWalker(r).WalkBytes([]byte(content)); err != nil {
		t.Fatalf("walk error: %v", err)
	}
	return r
}

// TestStrokedLines tests line collection with the CTM applied
func TestStrokedLines(t *testing.T) {
	r := walkPaths(t, "2 w 1 0 0 RG 1 0 0 1 10 10 cm 0 0 m 100 0 l 100 50 l S")

	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	first := r.Lines[0]
	if first.Start.X != 10 || first.Start.Y != 10 || first.End.X != 110 || first.End.Y != 10 {
		t.Errorf("first line = %+v", first)
	}
	if first.Width != 2 || first.Color != [3]float64{1, 0, 0} {
		t.Errorf("line attributes = %v %v", first.Width, first.Color)
	}
	if len(r.HorizontalLines(0.5)) != 1 || len(r.VerticalLines(0.5)) != 1 {
		t.Errorf("horizontal %d, vertical %d", len(r.HorizontalLines(0.5)), len(r.VerticalLines(0.5)))
	}
	if r.Lines[1].Length() != 50 {
		t.Errorf("Length() = %v", r.Lines[1].Length())
	}
}

// TestRectangles tests re with fill and stroke
func TestRectangles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		filled  bool
		stroked bool
	}{
		{"fill", "0.5 g 10 20 30 40 re f", true, false},
		{"stroke", "10 20 30 40 re S", false, true},
		{"fill and stroke", "10 20 30 40 re B", true, true},
		{"negative size", "40 60 -30 -40 re f", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := walkPaths(t, tt.content)
			if len(r.Rectangles) != 1 {
				t.Fatalf("got %d rectangles", len(r.Rectangles))
			}
			rect := r.Rectangles[0]
			if rect.BBox.X != 10 || rect.BBox.Y != 20 || rect.BBox.Width != 30 || rect.BBox.Height != 40 {
				t.Errorf("BBox = %v", rect.BBox)
			}
			if rect.Filled != tt.filled || rect.Stroked != tt.stroked {
				t.Errorf("filled %v stroked %v", rect.Filled, rect.Stroked)
			}
			if len(r.Lines) != 0 {
				t.Errorf("rectangle also produced %d lines", len(r.Lines))
			}
		})
	}

	r := walkPaths(t, "0.5 g 10 20 30 40 re f")
	if r.Rectangles[0].FillColor != [3]float64{0.5, 0.5, 0.5} {
		t.Errorf("FillColor = %v", r.Rectangles[0].FillColor)
	}
}

// TestEndPathDiscards tests that n and clipping leave nothing behind
func TestEndPathDiscards(t *testing.T) {
	r := walkPaths(t, "0 0 m 10 10 l W n 0 0 m 5 0 l S")
	if len(r.Lines) != 1 || r.Lines[0].End.X != 5 {
		t.Errorf("lines = %+v", r.Lines)
	}
}

// TestCurvesAndClose tests chord approximation of curves and closing
func TestCurvesAndClose(t *testing.T) {
	r := walkPaths(t, "0 0 m 0 10 10 10 10 0 c 20 5 20 0 v h S")
	if len(r.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(r.Lines))
	}
	if r.Lines[0].End.X != 10 || r.Lines[1].End.X != 20 {
		t.Errorf("curve chords = %+v", r.Lines[:2])
	}
	if r.Lines[2].End.X != 0 || r.Lines[2].End.Y != 0 {
		t.Errorf("closing line = %+v", r.Lines[2])
	}
}
