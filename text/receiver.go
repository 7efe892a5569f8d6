package text

import (
	"fmt"
	"math"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/graphicsstate"
	"github.com/yob/pdf-reader-sub001/model"
)

// PageTextReceiver records one TextRun per glyph shown on a page. It
// embeds the page state so a single receiver both tracks state and
// shows text.
type PageTextReceiver struct {
	*graphicsstate.PageState

	runs []TextRun
}

var (
	_ contentstream.TextShower           = (*PageTextReceiver)(nil)
	_ contentstream.PositionedTextShower = (*PageTextReceiver)(nil)
	_ contentstream.NextLineTextShower   = (*PageTextReceiver)(nil)
	_ contentstream.SpacingTextShower    = (*PageTextReceiver)(nil)
	_ contentstream.XObjectInvoker       = (*PageTextReceiver)(nil)
)

// NewPageTextReceiver creates a receiver over state
func NewPageTextReceiver(state *graphicsstate.PageState) *PageTextReceiver {
	return &PageTextReceiver{PageState: state}
}

// Runs returns the glyph runs recorded so far, unmerged
func (r *PageTextReceiver) Runs() []TextRun { return r.runs }

// Content clips runs to box, filters duplicates, merges neighbours and
// lays them out
func (r *PageTextReceiver) Content(layout Layout, box model.BBox) string {
	return Assemble(r.runs, layout, box)
}

// Assemble turns raw glyph runs into text with layout, or DefaultLayout
// when layout is nil. Glyphs are clipped to box before merging so that a
// run straddling the edge keeps only its visible part.
func Assemble(runs []TextRun, layout Layout, box model.BBox) string {
	if layout == nil {
		layout = DefaultLayout
	}
	runs = OverlappingRunsFilter{}.ExcludeRedundantRuns(Clip(runs, box))
	return layout.Text(MergeRuns(runs), box)
}

// ShowText handles Tj
func (r *PageTextReceiver) ShowText(data []byte) error {
	f, err := r.CurrentFont()
	if err != nil {
		return err
	}
	for _, g := range f.Glyphs(data) {
		trm := r.TextRenderingMatrix()
		origin := trm.Transform(model.Point{})
		if g.Text != "" {
			r.runs = append(r.runs, TextRun{
				X:        origin.X,
				Y:        origin.Y,
				Width:    g.Advance * math.Hypot(trm[0], trm[1]),
				FontSize: effectiveFontSize(trm),
				Text:     g.Text,
			})
		}
		r.ProcessGlyphDisplacement(g.Advance, 0, g.Len == 1 && g.Code == ' ')
	}
	return nil
}

// ShowTextWithPositioning handles TJ
func (r *PageTextReceiver) ShowTextWithPositioning(arr core.Array) error {
	for _, item := range arr {
		switch v := item.(type) {
		case core.String:
			if err := r.ShowText([]byte(v)); err != nil {
				return err
			}
		case core.Int, core.Real:
			n, _ := core.Number(v)
			r.ProcessGlyphDisplacement(0, n, false)
		}
	}
	return nil
}

// MoveToNextLineAndShowText handles '
func (r *PageTextReceiver) MoveToNextLineAndShowText(data []byte) error {
	if err := r.PageState.MoveToNextLineAndShowText(data); err != nil {
		return err
	}
	return r.ShowText(data)
}

// SetSpacingNextLineShowText handles "
func (r *PageTextReceiver) SetSpacingNextLineShowText(aw, ac float64, data []byte) error {
	if err := r.PageState.SetSpacingNextLineShowText(aw, ac, data); err != nil {
		return err
	}
	return r.ShowText(data)
}

// InvokeXObject handles Do by walking form XObjects with this receiver
func (r *PageTextReceiver) InvokeXObject(name string) error {
	return r.WithXObject(name, func(form *core.Stream) error {
		data, err := form.Decode()
		if err != nil {
			return fmt.Errorf("failed to decode form XObject %s: %w", name, err)
		}
		return contentstream.NewWalker(r).WalkBytes(data)
	})
}

// effectiveFontSize is the height of a unit em square after the text
// rendering matrix
func effectiveFontSize(trm model.Matrix) float64 {
	zero := trm.Transform(model.Point{})
	one := trm.Transform(model.Point{X: 1, Y: 1})
	if size := math.Abs(one.Y - zero.Y); size > 0 {
		return size
	}
	return math.Hypot(trm[2], trm[3])
}
