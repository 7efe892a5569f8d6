// Package model provides the geometric primitives shared by the page and
// content-stream packages.
//
// # Geometry
//
//   - [Point] - a position in some coordinate space
//   - [BBox] - an axis-aligned rectangle, used for page boxes and text runs
//   - [Matrix] - a 2D affine transformation matrix [a b c d e f]
//
// # Matrix Semantics
//
// Matrices use the PDF row-vector convention: a point (x, y) maps to
// (a·x + c·y + e, b·x + d·y + f), and m.Multiply(n) is the product m × n.
// The cm operator replaces the current transformation matrix with
// M × CTM, which is what [Matrix.PreMultiply] does in place:
//
//	ctm := model.Identity()
//	ctm.PreMultiply(model.Matrix{1, 0, 0, 1, 36, 794.33})
//	p := ctm.Transform(model.Point{})
package model
