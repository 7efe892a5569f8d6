package model

import (
	"fmt"
	"math"
)

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents an axis-aligned rectangle in PDF coordinates
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// NewBBoxFromCorners builds a BBox from two opposite corners in any order.
// PDF rectangles are stored as [llx lly urx ury] but producers sometimes
// swap the corners.
func NewBBoxFromCorners(x1, y1, x2, y2 float64) BBox {
	return BBox{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 { return b.X }

// Right returns the right edge X coordinate
func (b BBox) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 { return b.Y }

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 { return b.Y + b.Height }

// Area returns the area of the box
func (b BBox) Area() float64 { return b.Width * b.Height }

// Intersection returns the overlapping region, or a zero BBox when the
// boxes do not overlap.
func (b BBox) Intersection(other BBox) BBox {
	left := math.Max(b.Left(), other.Left())
	bottom := math.Max(b.Bottom(), other.Bottom())
	right := math.Min(b.Right(), other.Right())
	top := math.Min(b.Top(), other.Top())
	if right < left || top < bottom {
		return BBox{}
	}
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

// String formats the box as a PDF rectangle array
func (b BBox) String() string {
	return fmt.Sprintf("[%g %g %g %g]", b.Left(), b.Bottom(), b.Right(), b.Top())
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in degrees, counter-clockwise)
func Rotate(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Transform applies the matrix to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// PreMultiply replaces m with n × m.
func (m *Matrix) PreMultiply(n Matrix) {
	*m = n.Multiply(*m)
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// String formats the matrix as six space separated numbers
func (m Matrix) String() string {
	return fmt.Sprintf("%g %g %g %g %g %g", m[0], m[1], m[2], m[3], m[4], m[5])
}
