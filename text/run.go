package text

import (
	"fmt"
	"sort"

	"github.com/yob/pdf-reader-sub001/model"
)

// TextRun is a piece of text positioned on the page. X and Y are the
// device space origin of the first glyph.
type TextRun struct {
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	Text     string
}

// EndX returns the right edge of the run
func (r TextRun) EndX() float64 { return r.X + r.Width }

// EndY returns the top of the run, one font size above its baseline
func (r TextRun) EndY() float64 { return r.Y + r.FontSize }

// BBox returns the area covered by the run
func (r TextRun) BBox() model.BBox {
	return model.BBox{X: r.X, Y: r.Y, Width: r.Width, Height: r.FontSize}
}

// Mergeable reports whether next continues r on the same line: equal
// font size, equal baseline and a gap of less than one font size.
func (r TextRun) Mergeable(next TextRun) bool {
	return r.FontSize == next.FontSize &&
		r.Y == next.Y &&
		next.X-r.EndX() < r.FontSize
}

// Merge joins next onto the end of r
func (r TextRun) Merge(next TextRun) TextRun {
	return TextRun{
		X:        r.X,
		Y:        r.Y,
		Width:    next.EndX() - r.X,
		FontSize: r.FontSize,
		Text:     r.Text + next.Text,
	}
}

// IntersectionAreaPercent returns the share of r's area covered by other
func (r TextRun) IntersectionAreaPercent(other TextRun) float64 {
	area := r.BBox().Area()
	if area <= 0 {
		return 0
	}
	return r.BBox().Intersection(other.BBox()).Area() / area
}

func (r TextRun) String() string {
	return fmt.Sprintf("%s w:%g @%g,%g", r.Text, r.Width, r.X, r.Y)
}

// Less orders runs top to bottom, then left to right
func Less(a, b TextRun) bool {
	if a.Y != b.Y {
		return a.Y > b.Y
	}
	return a.X < b.X
}

// MergeRuns sorts runs into reading order and joins mergeable
// neighbours. The input is left untouched.
func MergeRuns(runs []TextRun) []TextRun {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	merged := []TextRun{sorted[0]}
	for _, run := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.Mergeable(run) {
			*last = last.Merge(run)
			continue
		}
		merged = append(merged, run)
	}
	return merged
}
