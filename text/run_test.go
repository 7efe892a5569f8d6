package text

import (
	"reflect"
	"testing"
)

// TestMergeable tests the conditions for joining runs
func TestMergeable(t *testing.T) {
	base := TextRun{X: 30, Y: 700, Width: 50, FontSize: 12, Text: "Hello"}
	tests := []struct {
		name string
		next TextRun
		want bool
	}{
		{"adjacent", TextRun{X: 80, Y: 700, Width: 6, FontSize: 12, Text: "!"}, true},
		{"small gap", TextRun{X: 91.9, Y: 700, Width: 6, FontSize: 12, Text: "!"}, true},
		{"gap of one font size", TextRun{X: 92, Y: 700, Width: 6, FontSize: 12, Text: "!"}, false},
		{"different font size", TextRun{X: 80, Y: 700, Width: 6, FontSize: 10, Text: "!"}, false},
		{"different line", TextRun{X: 80, Y: 688, Width: 6, FontSize: 12, Text: "!"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Mergeable(tt.next); got != tt.want {
				t.Errorf("Mergeable() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMerge tests that widths include the gap
func TestMerge(t *testing.T) {
	a := TextRun{X: 10, Y: 20, Width: 30, FontSize: 10, Text: "ab"}
	b := TextRun{X: 42, Y: 20, Width: 8, FontSize: 10, Text: "c"}
	got := a.Merge(b)
	want := TextRun{X: 10, Y: 20, Width: 40, FontSize: 10, Text: "abc"}
	if got != want {
		t.Errorf("Merge() = %+v, want %+v", got, want)
	}
	if got.EndX() != 50 || got.EndY() != 30 {
		t.Errorf("EndX() = %v, EndY() = %v", got.EndX(), got.EndY())
	}
}

// TestMergeRuns tests sorting into reading order before merging
func TestMergeRuns(t *testing.T) {
	runs := []TextRun{
		{X: 16, Y: 100, Width: 6, FontSize: 10, Text: "c"},
		{X: 10, Y: 80, Width: 6, FontSize: 10, Text: "x"},
		{X: 4, Y: 100, Width: 6, FontSize: 10, Text: "a"},
		{X: 10, Y: 100, Width: 6, FontSize: 10, Text: "b"},
	}
	input := append([]TextRun(nil), runs...)

	got := MergeRuns(runs)
	want := []TextRun{
		{X: 4, Y: 100, Width: 18, FontSize: 10, Text: "abc"},
		{X: 10, Y: 80, Width: 6, FontSize: 10, Text: "x"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeRuns() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(runs, input) {
		t.Error("MergeRuns() modified its input")
	}
	if MergeRuns(nil) != nil {
		t.Error("MergeRuns(nil) should be nil")
	}
}

// TestIntersectionAreaPercent tests overlap relative to the receiver
func TestIntersectionAreaPercent(t *testing.T) {
	a := TextRun{X: 0, Y: 0, Width: 10, FontSize: 10}
	tests := []struct {
		other TextRun
		want  float64
	}{
		{TextRun{X: 5, Y: 0, Width: 10, FontSize: 10}, 0.5},
		{TextRun{X: 0, Y: 5, Width: 10, FontSize: 10}, 0.5},
		{TextRun{X: 20, Y: 0, Width: 10, FontSize: 10}, 0},
		{a, 1},
	}
	for _, tt := range tests {
		if got := a.IntersectionAreaPercent(tt.other); got != tt.want {
			t.Errorf("IntersectionAreaPercent(%v) = %v, want %v", tt.other, got, tt.want)
		}
	}
	if got := (TextRun{}).IntersectionAreaPercent(a); got != 0 {
		t.Errorf("empty run overlap = %v", got)
	}
}
