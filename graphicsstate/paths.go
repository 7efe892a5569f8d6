package graphicsstate

import (
	"math"

	"github.com/yob/pdf-reader-sub001/contentstream"
	"github.com/yob/pdf-reader-sub001/model"
)

// PathSegmentType defines the type of path segment
type PathSegmentType int

const (
	// PathMoveTo starts a new subpath
	PathMoveTo PathSegmentType = iota
	// PathLineTo draws a line to a point
	PathLineTo
	// PathCurveTo draws a cubic Bézier curve
	PathCurveTo
	// PathClosePath closes the current subpath
	PathClosePath
)

// PathSegment is one segment of a path in device space. CurveTo holds
// two control points then the end point.
type PathSegment struct {
	Type   PathSegmentType
	Points []model.Point
}

// Line is a stroked straight segment in device space
type Line struct {
	Start, End model.Point
	Width      float64
	Color      [3]float64
}

// Horizontal reports whether the line is horizontal within tol
func (l Line) Horizontal(tol float64) bool { return math.Abs(l.End.Y-l.Start.Y) < tol }

// Vertical reports whether the line is vertical within tol
func (l Line) Vertical(tol float64) bool { return math.Abs(l.End.X-l.Start.X) < tol }

// Length returns the length of the line
func (l Line) Length() float64 {
	return math.Hypot(l.End.X-l.Start.X, l.End.Y-l.Start.Y)
}

// Rectangle is a painted axis-aligned rectangle in device space
type Rectangle struct {
	BBox        model.BBox
	StrokeWidth float64
	StrokeColor [3]float64
	FillColor   [3]float64
	Filled      bool
	Stroked     bool
}

// PathReceiver collects painted lines and rectangles from a content
// stream. Points are transformed by the CTM when they are added, so a
// cm inside a path affects only later points.
type PathReceiver struct {
	*PageState

	Lines      []Line
	Rectangles []Rectangle

	segments     []PathSegment
	current      model.Point // user space
	subpathStart model.Point // user space
	hasCurrent   bool
}

var (
	_ contentstream.PathBuilder = (*PathReceiver)(nil)
	_ contentstream.PathPainter = (*PathReceiver)(nil)
)

// NewPathReceiver creates a receiver tracking state
func NewPathReceiver(state *PageState) *PathReceiver {
	return &PathReceiver{PageState: state}
}

func (r *PathReceiver) device(x, y float64) model.Point {
	return r.CTMTransform(x, y)
}

// BeginNewSubpath handles m
func (r *PathReceiver) BeginNewSubpath(x, y float64) error {
	r.segments = append(r.segments, PathSegment{Type: PathMoveTo, Points: []model.Point{r.device(x, y)}})
	r.current = model.Point{X: x, Y: y}
	r.subpathStart = r.current
	r.hasCurrent = true
	return nil
}

// AppendLine handles l. Without a current point it starts a subpath.
func (r *PathReceiver) AppendLine(x, y float64) error {
	if !r.hasCurrent {
		return r.BeginNewSubpath(x, y)
	}
	r.segments = append(r.segments, PathSegment{Type: PathLineTo, Points: []model.Point{r.device(x, y)}})
	r.current = model.Point{X: x, Y: y}
	return nil
}

// AppendCurvedSegment handles c
func (r *PathReceiver) AppendCurvedSegment(x1, y1, x2, y2, x3, y3 float64) error {
	if !r.hasCurrent {
		if err := r.BeginNewSubpath(x1, y1); err != nil {
			return err
		}
	}
	r.segments = append(r.segments, PathSegment{
		Type:   PathCurveTo,
		Points: []model.Point{r.device(x1, y1), r.device(x2, y2), r.device(x3, y3)},
	})
	r.current = model.Point{X: x3, Y: y3}
	return nil
}

// AppendCurvedSegmentInitialPointReplicated handles v
func (r *PathReceiver) AppendCurvedSegmentInitialPointReplicated(x2, y2, x3, y3 float64) error {
	if !r.hasCurrent {
		return nil
	}
	return r.AppendCurvedSegment(r.current.X, r.current.Y, x2, y2, x3, y3)
}

// AppendCurvedSegmentFinalPointReplicated handles y
func (r *PathReceiver) AppendCurvedSegmentFinalPointReplicated(x1, y1, x3, y3 float64) error {
	if !r.hasCurrent {
		return nil
	}
	return r.AppendCurvedSegment(x1, y1, x3, y3, x3, y3)
}

// CloseSubpath handles h
func (r *PathReceiver) CloseSubpath() error {
	if !r.hasCurrent {
		return nil
	}
	r.segments = append(r.segments, PathSegment{Type: PathClosePath})
	r.current = r.subpathStart
	return nil
}

// AppendRectangle handles re
func (r *PathReceiver) AppendRectangle(x, y, w, h float64) error {
	_ = r.BeginNewSubpath(x, y)
	_ = r.AppendLine(x+w, y)
	_ = r.AppendLine(x+w, y+h)
	_ = r.AppendLine(x, y+h)
	return r.CloseSubpath()
}

// PaintPath handles the painting operators and n. The path is consumed
// either way.
func (r *PathReceiver) PaintPath(_ contentstream.Callback, stroke, fill, closePath bool) error {
	if closePath {
		_ = r.CloseSubpath()
	}
	if stroke || fill {
		r.collect(stroke, fill)
	}
	r.segments = r.segments[:0]
	r.hasCurrent = false
	return nil
}

// collect records the current path as a rectangle or as line segments
func (r *PathReceiver) collect(stroked, filled bool) {
	if len(r.segments) == 0 {
		return
	}
	state := r.State()

	if bbox, ok := rectangleBounds(r.segments); ok {
		rect := Rectangle{BBox: bbox, Filled: filled, Stroked: stroked}
		if stroked {
			rect.StrokeWidth = state.LineWidth
			rect.StrokeColor = state.StrokeColor
		}
		if filled {
			rect.FillColor = state.FillColor
		}
		r.Rectangles = append(r.Rectangles, rect)
		return
	}
	if !stroked {
		return
	}

	var current, start model.Point
	add := func(from, to model.Point) {
		r.Lines = append(r.Lines, Line{Start: from, End: to, Width: state.LineWidth, Color: state.StrokeColor})
	}
	for _, seg := range r.segments {
		switch seg.Type {
		case PathMoveTo:
			current = seg.Points[0]
			start = current
		case PathLineTo:
			add(current, seg.Points[0])
			current = seg.Points[0]
		case PathCurveTo:
			// chord approximation
			add(current, seg.Points[2])
			current = seg.Points[2]
		case PathClosePath:
			if !pointsEqual(current, start, 0.1) {
				add(current, start)
			}
			current = start
		}
	}
}

// HorizontalLines returns lines that are horizontal within tol
func (r *PathReceiver) HorizontalLines(tol float64) []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.Horizontal(tol) {
			out = append(out, l)
		}
	}
	return out
}

// VerticalLines returns lines that are vertical within tol
func (r *PathReceiver) VerticalLines(tol float64) []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.Vertical(tol) {
			out = append(out, l)
		}
	}
	return out
}

// rectangleBounds reports whether segments form a single closed
// rectangle and returns its bounds
func rectangleBounds(segments []PathSegment) (model.BBox, bool) {
	if len(segments) < 4 || segments[0].Type != PathMoveTo {
		return model.BBox{}, false
	}
	corners := []model.Point{segments[0].Points[0]}
	for _, seg := range segments[1:] {
		switch seg.Type {
		case PathLineTo:
			corners = append(corners, seg.Points[0])
		case PathClosePath:
		default:
			return model.BBox{}, false
		}
	}
	if len(corners) == 5 && pointsEqual(corners[0], corners[4], 0.1) {
		corners = corners[:4]
	}
	if len(corners) != 4 || !rightAngles(corners) {
		return model.BBox{}, false
	}
	return boundingBox(corners), true
}

// pointsEqual checks if two points are approximately equal
func pointsEqual(a, b model.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}

// rightAngles checks that consecutive edges are perpendicular
func rightAngles(corners []model.Point) bool {
	for i := 0; i < 4; i++ {
		p0, p1, p2 := corners[i], corners[(i+1)%4], corners[(i+2)%4]
		v1x, v1y := p1.X-p0.X, p1.Y-p0.Y
		v2x, v2y := p2.X-p1.X, p2.Y-p1.Y
		len1, len2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
		if len1 < 0.5 || len2 < 0.5 {
			continue
		}
		if math.Abs((v1x*v2x+v1y*v2y)/(len1*len2)) > 0.1 {
			return false
		}
	}
	return true
}

func boundingBox(points []model.Point) model.BBox {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return model.NewBBoxFromCorners(minX, minY, maxX, maxY)
}
