package tables

import (
	"math"
	"sort"

	"github.com/tsawler/gridmatch/model"
)

// Orientation of a segment.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns a string representation of the orientation
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Segment is a straight edge derived from a rect side or a line primitive.
type Segment struct {
	P0, P1 model.Point
	Style  model.Style
}

// NewSegment creates a segment between two points.
func NewSegment(p0, p1 model.Point, style model.Style) Segment {
	return Segment{P0: p0, P1: p1, Style: style}
}

// BBox returns the segment's bounding box.
func (s Segment) BBox() model.BBox {
	return model.NewBBoxFromPoints(s.P0, s.P1)
}

// Orientation is horizontal when the segment is at least as wide as it is tall.
func (s Segment) Orientation() Orientation {
	b := s.BBox()
	if b.Width >= b.Height {
		return Horizontal
	}
	return Vertical
}

// Length returns the extent of the segment along its orientation axis.
func (s Segment) Length() float64 {
	b := s.BBox()
	if s.Orientation() == Horizontal {
		return b.Width
	}
	return b.Height
}

// MinDistance returns the distance from pt to the closest point on s.
func (s Segment) MinDistance(pt model.Point) float64 {
	dx, dy := s.P1.X-s.P0.X, s.P1.Y-s.P0.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return pt.Distance(s.P0)
	}
	t := ((pt.X-s.P0.X)*dx + (pt.Y-s.P0.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := model.Point{X: s.P0.X + t*dx, Y: s.P0.Y + t*dy}
	return pt.Distance(closest)
}

// IsClose reports whether s and other are the same edge: both endpoints
// coincide within tol, in either direction.
func (s Segment) IsClose(other Segment, tol float64) bool {
	if s.P0.IsClose(other.P0, tol) && s.P1.IsClose(other.P1, tol) {
		return true
	}
	return s.P0.IsClose(other.P1, tol) && s.P1.IsClose(other.P0, tol)
}

// Intersect computes where s and other cross. A crossing is accepted when it
// lies on both segments, or when it lies within tol of both (near misses from
// imprecise geometry). Near-parallel pairs never intersect.
func (s Segment) Intersect(other Segment, p Params) (model.Point, bool) {
	dx1, dy1 := s.P1.X-s.P0.X, s.P1.Y-s.P0.Y
	dx2, dy2 := other.P1.X-other.P0.X, other.P1.Y-other.P0.Y

	denom := dx1*dy2 - dy1*dx2
	if math.Abs(denom) < p.DirectionTol || denom == 0 {
		return model.Point{}, false
	}

	ox, oy := other.P0.X-s.P0.X, other.P0.Y-s.P0.Y
	t1 := (ox*dy2 - oy*dx2) / denom
	t2 := (ox*dy1 - oy*dx1) / denom

	pt := model.Point{X: s.P0.X + t1*dx1, Y: s.P0.Y + t1*dy1}
	if t1 >= 0 && t1 <= 1 && t2 >= 0 && t2 <= 1 {
		return pt, true
	}
	if s.MinDistance(pt) <= p.PositionTol && other.MinDistance(pt) <= p.PositionTol {
		return pt, true
	}
	return model.Point{}, false
}

// Decompose turns the rect and line primitives of a page into segments.
// Rects yield their four sides, lines yield themselves, everything else is
// ignored. Segments shorter than p.MinLineLength are dropped.
func Decompose(prims []model.Primitive, p Params) []Segment {
	ordered := make([]model.Primitive, 0, len(prims))
	for _, prim := range prims {
		switch prim.Kind {
		case model.KindRect, model.KindLine:
			ordered = append(ordered, prim)
		case model.KindCurve, model.KindTextRun, model.KindFigure:
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].BBox, ordered[j].BBox
		if a.Top() != b.Top() {
			return a.Top() < b.Top()
		}
		return a.Left() < b.Left()
	})

	var rects, lines []Segment
	for _, prim := range ordered {
		switch prim.Kind {
		case model.KindRect:
			rects = append(rects, rectSides(prim)...)
		case model.KindLine:
			p0, p1 := prim.Endpoints()
			lines = append(lines, NewSegment(p0, p1, prim.Style))
		}
	}

	segments := make([]Segment, 0, len(rects)+len(lines))
	for _, s := range append(rects, lines...) {
		if s.Length() < p.MinLineLength {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

func rectSides(prim model.Primitive) []Segment {
	x0, y0, x1, y1 := prim.BBox.Corners()
	bl := model.Point{X: x0, Y: y0}
	br := model.Point{X: x1, Y: y0}
	tl := model.Point{X: x0, Y: y1}
	tr := model.Point{X: x1, Y: y1}
	return []Segment{
		NewSegment(bl, br, prim.Style),
		NewSegment(br, tr, prim.Style),
		NewSegment(tl, tr, prim.Style),
		NewSegment(bl, tl, prim.Style),
	}
}
