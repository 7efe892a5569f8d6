package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/model"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func matrixAlmostEqual(a, b model.Matrix) bool {
	for i := range a {
		if !almostEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func courierResources() core.Dict {
	return core.Dict{
		"Font": core.Dict{
			"F1": core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("Type1"), "BaseFont": core.Name("Courier")},
		},
	}
}

// TestNewPageState tests initial state
func TestNewPageState(t *testing.T) {
	s := NewPageState(nil, nil)

	if !s.CTM().IsIdentity() {
		t.Error("expected CTM to be identity matrix")
	}
	if s.StackDepth() != 1 {
		t.Errorf("StackDepth() = %d, want 1", s.StackDepth())
	}
	if st := s.State(); st.Text.HorizontalScaling != 100 || st.LineWidth != 1 {
		t.Errorf("unexpected defaults: %+v", st)
	}
}

// TestConcatenateMatrix tests that cm pre-multiplies the CTM
func TestConcatenateMatrix(t *testing.T) {
	s := NewPageState(nil, nil)
	_ = s.ConcatenateMatrix(2, 0, 0, 2, 0, 0)
	_ = s.ConcatenateMatrix(1, 0, 0, 1, 10, 20)

	// the translation is applied first, then scaled
	want := model.Matrix{2, 0, 0, 2, 20, 40}
	if got := s.CTM(); !matrixAlmostEqual(got, want) {
		t.Errorf("CTM = %v, want %v", got, want)
	}
	p := s.CTMTransform(1, 1)
	if !almostEqual(p.X, 22) || !almostEqual(p.Y, 42) {
		t.Errorf("CTMTransform(1, 1) = %v", p)
	}
}

// TestSaveRestore tests q/Q and restore underflow
func TestSaveRestore(t *testing.T) {
	s := NewPageState(nil, nil)
	_ = s.SetLineWidth(2.5)
	_ = s.SetTextFontAndSize("F1", 14)

	_ = s.SaveGraphicsState()
	_ = s.SetLineWidth(5.0)
	_ = s.SetTextFontAndSize("F2", 18)
	_ = s.ConcatenateMatrix(1, 0, 0, 1, 5, 5)
	if s.StackDepth() != 2 {
		t.Errorf("StackDepth() = %d, want 2", s.StackDepth())
	}

	if err := s.RestoreGraphicsState(); err != nil {
		t.Fatalf("RestoreGraphicsState() error: %v", err)
	}
	st := s.State()
	if st.LineWidth != 2.5 || st.Text.FontName != "F1" || st.Text.FontSize != 14 {
		t.Errorf("restored state = %+v", st)
	}
	if !s.CTM().IsIdentity() {
		t.Errorf("CTM not restored: %v", s.CTM())
	}

	// a Q at depth 1 is ignored
	for i := 0; i < 3; i++ {
		if err := s.RestoreGraphicsState(); err != nil {
			t.Fatalf("underflow returned error: %v", err)
		}
	}
	if s.StackDepth() != 1 || s.Underflows() != 3 {
		t.Errorf("StackDepth() = %d, Underflows() = %d", s.StackDepth(), s.Underflows())
	}
	if s.State().LineWidth != 2.5 {
		t.Error("underflow changed the state")
	}
}

// TestTextPositioning tests Td, TD, T*, TL and Tm
func TestTextPositioning(t *testing.T) {
	s := NewPageState(nil, nil)
	_ = s.BeginTextObject()
	if !s.InTextObject() {
		t.Error("InTextObject() = false after BT")
	}

	_ = s.MoveTextPosition(36, 794.33)
	if tm := s.TextMatrix(); tm[4] != 36 || tm[5] != 794.33 {
		t.Errorf("after Td: %v", tm)
	}

	_ = s.MoveTextPositionAndSetLeading(0, -12)
	if s.State().Text.Leading != 12 {
		t.Errorf("leading = %v, want 12", s.State().Text.Leading)
	}
	_ = s.MoveToStartOfNextLine()
	if tm := s.TextMatrix(); !almostEqual(tm[5], 794.33-24) {
		t.Errorf("after T*: %v", tm)
	}

	_ = s.SetTextLeading(20)
	_ = s.MoveToStartOfNextLine()
	if tlm := s.TextLineMatrix(); !almostEqual(tlm[5], 794.33-44) {
		t.Errorf("after TL T*: %v", tlm)
	}

	// Tm replaces, it does not multiply
	_ = s.SetTextMatrixAndTextLineMatrix(2, 0, 0, 2, 100, 200)
	_ = s.SetTextMatrixAndTextLineMatrix(1, 0, 0, 1, 5, 6)
	if tm := s.TextMatrix(); tm != (model.Matrix{1, 0, 0, 1, 5, 6}) {
		t.Errorf("after Tm: %v", tm)
	}
	if s.TextLineMatrix() != s.TextMatrix() {
		t.Error("Tm did not set the line matrix")
	}

	// Td is relative to the start of the line, scaled by Tlm
	_ = s.SetTextMatrixAndTextLineMatrix(2, 0, 0, 2, 0, 0)
	_ = s.MoveTextPosition(10, 10)
	if tm := s.TextMatrix(); tm[4] != 20 || tm[5] != 20 {
		t.Errorf("scaled Td: %v", tm)
	}

	_ = s.EndTextObject()
	_ = s.BeginTextObject()
	if !s.TextMatrix().IsIdentity() {
		t.Error("BT did not reset the text matrix")
	}
}

// TestTfLeavesSpacing tests that Tf only changes font and size
func TestTfLeavesSpacing(t *testing.T) {
	s := NewPageState(nil, nil)
	_ = s.SetCharacterSpacing(1)
	_ = s.SetWordSpacing(2)
	_ = s.SetHorizontalTextScaling(50)
	_ = s.SetTextRise(3)
	_ = s.SetTextRenderingMode(7)
	_ = s.SetTextFontAndSize("F1", 10)

	ts := s.State().Text
	if ts.CharSpacing != 1 || ts.WordSpacing != 2 || ts.HorizontalScaling != 50 || ts.Rise != 3 || ts.RenderingMode != 7 {
		t.Errorf("text state = %+v", ts)
	}
}

// TestGlyphDisplacement tests the advance after a glyph and TJ numbers
func TestGlyphDisplacement(t *testing.T) {
	tests := []struct {
		name         string
		tc, tw, tz   float64
		w0, tj       float64
		wordBoundary bool
		want         float64
	}{
		{"plain", 0, 0, 100, 0.6, 0, false, 6},
		{"char spacing", 1, 0, 100, 0.6, 0, false, 7},
		{"word spacing on space", 1, 2, 100, 0.6, 0, true, 9},
		{"word spacing ignored", 1, 2, 100, 0.6, 0, false, 7},
		{"horizontal scaling", 1, 2, 50, 0.6, 0, true, 4.5},
		{"TJ adjustment", 1, 0, 100, 0, 250, false, -2.5},
		{"TJ scaled", 0, 0, 200, 0, -100, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPageState(nil, nil)
			_ = s.BeginTextObject()
			_ = s.SetTextFontAndSize("F1", 10)
			_ = s.SetCharacterSpacing(tt.tc)
			_ = s.SetWordSpacing(tt.tw)
			_ = s.SetHorizontalTextScaling(tt.tz)
			s.ProcessGlyphDisplacement(tt.w0, tt.tj, tt.wordBoundary)
			if got := s.TextMatrix()[4]; !almostEqual(got, tt.want) {
				t.Errorf("tx = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTextRenderingMatrix tests Trm including rise and CTM
func TestTextRenderingMatrix(t *testing.T) {
	s := NewPageState(nil, nil)
	_ = s.ConcatenateMatrix(1, 0, 0, 1, 100, 0)
	_ = s.BeginTextObject()
	_ = s.SetTextFontAndSize("F1", 12)
	_ = s.SetTextRise(3)
	_ = s.MoveTextPosition(10, 20)

	want := model.Matrix{12, 0, 0, 12, 110, 23}
	if got := s.TextRenderingMatrix(); !matrixAlmostEqual(got, want) {
		t.Errorf("Trm = %v, want %v", got, want)
	}
}

// TestFontLookup tests lazy font loading and the unknown font error
func TestFontLookup(t *testing.T) {
	s := NewPageState(courierResources(), nil)

	// selecting an unknown font is not an error
	if err := s.SetTextFontAndSize("F9", 10); err != nil {
		t.Fatalf("Tf error: %v", err)
	}
	_, err := s.CurrentFont()
	if !errors.Is(err, pdferr.ErrMalformed) || err.Error() != "Unknown font F9" {
		t.Errorf("CurrentFont() error = %v", err)
	}

	_ = s.SetTextFontAndSize("F1", 10)
	f, err := s.CurrentFont()
	if err != nil {
		t.Fatalf("CurrentFont() error: %v", err)
	}
	if f.BaseFont != "Courier" {
		t.Errorf("BaseFont = %q", f.BaseFont)
	}
	again, _ := s.FindFont("F1")
	if again != f {
		t.Error("font was loaded twice")
	}

	empty := NewPageState(nil, nil)
	if _, err := empty.CurrentFont(); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed error without Tf, got %v", err)
	}
}

// TestWithXObject tests form matrix, resources and state restoration
func TestWithXObject(t *testing.T) {
	form := &core.Stream{
		Dict: core.Dict{
			"Subtype":   core.Name("Form"),
			"Matrix":    core.Array{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Int(50), core.Int(60)},
			"Resources": core.Dict{"Font": core.Dict{"F2": core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name("Helvetica")}}},
		},
	}
	image := &core.Stream{Dict: core.Dict{"Subtype": core.Name("Image")}}
	resources := courierResources()
	resources["XObject"] = core.Dict{"Fm1": form, "Im1": image}

	s := NewPageState(resources, nil)
	called := false
	err := s.WithXObject("Fm1", func(f *core.Stream) error {
		called = true
		if ctm := s.CTM(); ctm[4] != 50 || ctm[5] != 60 {
			t.Errorf("form CTM = %v", ctm)
		}
		if _, err := s.FindFont("F2"); err != nil {
			t.Errorf("form font: %v", err)
		}
		if _, err := s.FindFont("F1"); err == nil {
			t.Error("page font visible inside form")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithXObject() = %v, called %v", err, called)
	}
	if !s.CTM().IsIdentity() || s.StackDepth() != 1 {
		t.Errorf("state not restored: %v depth %d", s.CTM(), s.StackDepth())
	}
	if _, err := s.FindFont("F1"); err != nil {
		t.Errorf("page font after form: %v", err)
	}

	if err := s.WithXObject("Im1", func(*core.Stream) error {
		t.Error("image XObject walked as a form")
		return nil
	}); err != nil {
		t.Errorf("image XObject error: %v", err)
	}
	if err := s.WithXObject("Nope", nil); !errors.Is(err, pdferr.ErrMalformed) {
		t.Errorf("expected malformed error for missing XObject, got %v", err)
	}
}

// TestWithXObjectUnbalancedStack tests forms with unmatched q or Q
func TestWithXObjectUnbalancedStack(t *testing.T) {
	resources := core.Dict{"XObject": core.Dict{
		"Fm1": &core.Stream{Dict: core.Dict{"Subtype": core.Name("Form")}},
	}}
	tests := []struct {
		name       string
		page       string
		form       string
		depth      int
		ctm        model.Matrix
		underflows int
	}{
		{"lone save in form", "", "q 2 0 0 2 0 0 cm", 1, model.Identity(), 0},
		{"extra restore in form", "q 3 0 0 3 0 0 cm", "Q Q 1 0 0 1 5 5 cm", 2, model.Matrix{3, 0, 0, 3, 0, 0}, 2},
		{"balanced form", "q", "q 2 0 0 2 0 0 cm Q", 2, model.Identity(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPageState(resources, nil)
			w := contentstream.NewWalker(s)
			if err := w.WalkBytes([]byte(tt.page)); err != nil {
				t.Fatalf("page walk: %v", err)
			}
			err := s.WithXObject("Fm1", func(*core.Stream) error {
				return w.WalkBytes([]byte(tt.form))
			})
			if err != nil {
				t.Fatalf("WithXObject() = %v", err)
			}
			if s.StackDepth() != tt.depth {
				t.Errorf("StackDepth() = %d, want %d", s.StackDepth(), tt.depth)
			}
			if !matrixAlmostEqual(s.CTM(), tt.ctm) {
				t.Errorf("CTM = %v, want %v", s.CTM(), tt.ctm)
			}
			if s.Underflows() != tt.underflows {
				t.Errorf("Underflows() = %d, want %d", s.Underflows(), tt.underflows)
			}
		})
	}
}

// TestPageStateAsReceiver tests PageState driven by the walker
func TestPageStateAsReceiver(t *testing.T) {
	s := NewPageState(courierResources(), nil)
	w := contentstream.NewWalker(s)
	err := w.WalkBytes([]byte("q 2 0 0 2 0 0 cm BT /F1 10 Tf 14 TL 5 5 Td T* ET Q Q"))
	if err != nil {
		t.Fatalf("walk error: %v", err)
	}
	if !s.CTM().IsIdentity() || s.Underflows() != 1 {
		t.Errorf("CTM = %v, underflows = %d", s.CTM(), s.Underflows())
	}
	if tm := s.TextMatrix(); tm[4] != 5 || tm[5] != -9 {
		t.Errorf("text matrix = %v", tm)
	}
}
