package model

import "math"

// Point is a position in page space.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// IsClose reports whether the two points are within tol of each other.
func (p Point) IsClose(other Point, tol float64) bool {
	return p.Distance(other) <= tol
}

// BBox is an axis-aligned box. X/Y is the bottom-left corner; Y grows
// upward as in PDF page space.
type BBox struct {
	X, Y          float64
	Width, Height float64
}

// NewBBox creates a box from its bottom-left corner and size.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromPoints creates the box spanned by two opposite corners.
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return NewBBoxFromCorners(p1.X, p1.Y, p2.X, p2.Y)
}

// NewBBoxFromCorners creates a box from x0, y0, x1, y1 in any order.
func NewBBoxFromCorners(x0, y0, x1, y1 float64) BBox {
	left, right := math.Min(x0, x1), math.Max(x0, x1)
	bottom, top := math.Min(y0, y1), math.Max(y0, y1)
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Bottom() float64 { return b.Y }
func (b BBox) Top() float64    { return b.Y + b.Height }

// Corners returns the box as x0, y0, x1, y1.
func (b BBox) Corners() (x0, y0, x1, y1 float64) {
	return b.Left(), b.Bottom(), b.Right(), b.Top()
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains reports whether p lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	return b.Left() <= p.X && p.X <= b.Right() && b.Bottom() <= p.Y && p.Y <= b.Top()
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return NewBBoxFromCorners(
		math.Min(b.Left(), other.Left()), math.Min(b.Bottom(), other.Bottom()),
		math.Max(b.Right(), other.Right()), math.Max(b.Top(), other.Top()),
	)
}

// Area returns the area of the box.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// Expand grows the box by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return NewBBox(b.X-margin, b.Y-margin, b.Width+2*margin, b.Height+2*margin)
}

// Near reports whether every edge of b is within tol of the matching edge of other.
func (b BBox) Near(other BBox, tol float64) bool {
	return math.Abs(b.Left()-other.Left()) <= tol &&
		math.Abs(b.Right()-other.Right()) <= tol &&
		math.Abs(b.Bottom()-other.Bottom()) <= tol &&
		math.Abs(b.Top()-other.Top()) <= tol
}

// Bounds returns the box as the min/max corner arrays used by spatial indexes.
func (b BBox) Bounds() (lo, hi [2]float64) {
	return [2]float64{b.Left(), b.Bottom()}, [2]float64{b.Right(), b.Top()}
}

// SortKeyLess orders boxes top-to-bottom by their bottom edge, then
// left-to-right. This is the reading order used for every composed level.
func SortKeyLess(a, b BBox) bool {
	if a.Bottom() != b.Bottom() {
		return a.Bottom() > b.Bottom()
	}
	return a.Left() < b.Left()
}
