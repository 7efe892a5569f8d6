package text

import (
	"sort"
)

// overlapThreshold is the share of a run's area that a copy must cover
// for the run to be dropped
const overlapThreshold = 0.5

// OverlappingRunsFilter removes runs drawn twice at a small offset, a
// common way of faking bold text.
type OverlappingRunsFilter struct{}

type eventPoint struct {
	x     float64
	start bool
	index int
}

// ExcludeRedundantRuns sweeps the runs from left to right. A run is
// dropped when it starts inside an open run with the same text and their
// boxes overlap by at least half of the run's area. Of several identical
// runs exactly one is kept. The result preserves input order.
func (OverlappingRunsFilter) ExcludeRedundantRuns(runs []TextRun) []TextRun {
	events := make([]eventPoint, 0, len(runs)*2)
	for i, run := range runs {
		events = append(events, eventPoint{x: run.X, start: true, index: i})
		events = append(events, eventPoint{x: run.EndX(), index: i})
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.x != b.x {
			return a.x < b.x
		}
		if a.start != b.start {
			return a.start
		}
		ra, rb := runs[a.index], runs[b.index]
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		if ra.Text != rb.Text {
			return ra.Text < rb.Text
		}
		return ra.Width < rb.Width
	})

	excluded := make([]bool, len(runs))
	var open []int
	for _, ev := range events {
		if !ev.start {
			open = removeIndex(open, ev.index)
			continue
		}
		if redundant(runs, open, ev.index) {
			excluded[ev.index] = true
		}
		open = append(open, ev.index)
	}

	out := make([]TextRun, 0, len(runs))
	for i, run := range runs {
		if !excluded[i] {
			out = append(out, run)
		}
	}
	return out
}

func redundant(runs []TextRun, open []int, index int) bool {
	run := runs[index]
	for _, o := range open {
		other := runs[o]
		if other == run {
			return true
		}
		if other.Text == run.Text &&
			run.X >= other.X && run.X <= other.EndX() &&
			other.IntersectionAreaPercent(run) >= overlapThreshold {
			return true
		}
	}
	return false
}

func removeIndex(open []int, index int) []int {
	for i, o := range open {
		if o == index {
			return append(open[:i], open[i+1:]...)
		}
	}
	return open
}
