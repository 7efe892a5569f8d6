package text

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/yob/pdf-reader-sub001/model"
)

// Layout turns positioned runs into a plain string. box is the visible
// area of the page, normally its crop box.
type Layout interface {
	Text(runs []TextRun, box model.BBox) string
}

// RowLayout places runs on a character grid. Runs whose vertical extents
// overlap share a row; columns come from the mean glyph width so that
// gaps between runs become spaces. Rows are emitted top to bottom and
// runs within a right-to-left row right to left.
type RowLayout struct {
	// MaxBlankLines caps the empty lines kept between distant rows.
	MaxBlankLines int
}

// DefaultLayout is the layout used when none is configured
var DefaultLayout Layout = RowLayout{MaxBlankLines: 1}

type row struct {
	runs []TextRun
	y    float64 // highest baseline
}

// Text implements Layout. Runs whose origin lies outside a non-empty box
// are dropped; the box edges count as inside. The result is NFC
// normalised.
func (l RowLayout) Text(runs []TextRun, box model.BBox) string {
	runs = visible(runs, box)
	if len(runs) == 0 {
		return ""
	}
	glyphWidth, fontSize := means(runs)
	left := runs[0].X
	for _, run := range runs[1:] {
		left = math.Min(left, run.X)
	}

	rows := groupRows(runs)
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte('\n')
			blank := int((rows[i-1].y - r.y) / (fontSize * 2))
			if blank > l.MaxBlankLines {
				blank = l.MaxBlankLines
			}
			sb.WriteString(strings.Repeat("\n", blank))
		}
		sb.WriteString(rowText(r, left, glyphWidth))
	}
	return norm.NFC.String(sb.String())
}

func rowText(r row, left, glyphWidth float64) string {
	var text strings.Builder
	if rowDirection(r.runs) == RTL {
		sort.SliceStable(r.runs, func(i, j int) bool { return r.runs[i].X > r.runs[j].X })
		for i, run := range r.runs {
			if i > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(strings.TrimSpace(run.Text))
		}
		return text.String()
	}

	sort.SliceStable(r.runs, func(i, j int) bool { return r.runs[i].X < r.runs[j].X })
	col := 0
	for i, run := range r.runs {
		want := int(math.Round((run.X - left) / glyphWidth))
		switch {
		case want > col:
			text.WriteString(strings.Repeat(" ", want-col))
			col = want
		case i > 0 && run.X-r.runs[i-1].EndX() > glyphWidth/2 &&
			!strings.HasSuffix(r.runs[i-1].Text, " ") && !strings.HasPrefix(run.Text, " "):
			text.WriteByte(' ')
			col++
		}
		text.WriteString(run.Text)
		col += utf8.RuneCountInString(run.Text)
	}
	return strings.TrimRight(text.String(), " ")
}

// groupRows unions runs whose vertical extents overlap and orders the
// resulting rows top to bottom
func groupRows(runs []TextRun) []row {
	set := NewDisjointSet[int]()
	order := make([]int, len(runs))
	for i := range runs {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return runs[order[i]].Y > runs[order[j]].Y })
	for _, i := range order {
		set.Add(i)
	}
	for n := 1; n < len(order); n++ {
		prev, cur := runs[order[n-1]], runs[order[n]]
		if sameRow(prev, cur) {
			set.Union(order[n-1], order[n])
		}
	}

	var rows []row
	for _, members := range set.Sets() {
		r := row{y: math.Inf(-1)}
		for _, i := range members {
			r.runs = append(r.runs, runs[i])
			r.y = math.Max(r.y, runs[i].Y)
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	return rows
}

// sameRow reports whether the baselines of a and b are within half the
// smaller font size
func sameRow(a, b TextRun) bool {
	size := math.Min(a.FontSize, b.FontSize)
	if size <= 0 {
		return a.Y == b.Y
	}
	return math.Abs(a.Y-b.Y) < size/2
}

func rowDirection(runs []TextRun) Direction {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.Text)
	}
	return DetectDirection(sb.String())
}

// means returns the mean glyph width and font size over all runs
func means(runs []TextRun) (glyphWidth, fontSize float64) {
	var width, size float64
	glyphs := 0
	for _, run := range runs {
		width += run.Width
		size += run.FontSize
		glyphs += utf8.RuneCountInString(run.Text)
	}
	fontSize = size / float64(len(runs))
	if glyphs > 0 && width > 0 {
		glyphWidth = width / float64(glyphs)
	}
	if glyphWidth <= 0 {
		glyphWidth = math.Max(fontSize/2, 1)
	}
	if fontSize <= 0 {
		fontSize = 1
	}
	return glyphWidth, fontSize
}

// visible drops blank runs and runs whose origin is outside box
func visible(runs []TextRun, box model.BBox) []TextRun {
	out := make([]TextRun, 0, len(runs))
	for _, run := range Clip(runs, box) {
		if strings.TrimSpace(run.Text) != "" {
			out = append(out, run)
		}
	}
	return out
}

// Clip returns the runs whose origin lies inside box, edges included. An
// empty box keeps every run.
func Clip(runs []TextRun, box model.BBox) []TextRun {
	if box.Width <= 0 || box.Height <= 0 {
		return runs
	}
	out := make([]TextRun, 0, len(runs))
	for _, run := range runs {
		if run.X < box.Left() || run.X > box.Right() ||
			run.Y < box.Bottom() || run.Y > box.Top() {
			continue
		}
		out = append(out, run)
	}
	return out
}
