package tables

import (
	"math"
	"sort"

	"github.com/tsawler/gridmatch/model"
)

// Reconstruct finds the minimal rectangles formed by the intersection graph.
//
// Points are consumed as top-left anchors in top-to-bottom, left-to-right
// order. For an anchor the nearest connected point below it is tried first
// as bottom-left; for that bottom-left, every connected point to the right
// of the anchor is a top-right candidate, and the leftmost candidate whose
// bottom-right corner exists with verified edges wins (ties: topmost). An
// anchor is consumed once, but any point may close its rectangle: a top-right
// corner drawn slightly above the anchor sorts before it and is still found.
// Only the first rectangle per anchor is kept, then cells smaller than the
// configured minimum are dropped.
func Reconstruct(points []*IntersectionPoint, p Params) []*model.Cell {
	queue := make([]*IntersectionPoint, len(points))
	copy(queue, points)
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i].Point, queue[j].Point
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		return a.X < b.X
	})

	tol := p.PositionTol
	var cells []*model.Cell
	for i, tl := range queue {
		if tl.Degree() < 2 {
			continue
		}
		rest := queue[i+1:]

		for _, bl := range rest {
			if bl.Point.IsClose(tl.Point, tol) ||
				bl.Point.Y >= tl.Point.Y ||
				math.Abs(bl.Point.X-tl.Point.X) > tol {
				continue
			}
			if !tl.EdgeExistsBetween(bl.Point, Vertical, tol) {
				continue
			}
			if cell := closeRect(tl, bl, queue, tol); cell != nil {
				cells = append(cells, cell)
				break
			}
		}
	}

	kept := cells[:0]
	for _, c := range cells {
		if c.BBox.Width >= p.MinRectWidth && c.BBox.Height >= p.MinRectHeight {
			kept = append(kept, c)
		}
	}
	return kept
}

// closeRect looks for the top-right and bottom-right corners completing the
// rectangle anchored at tl and bl among points.
func closeRect(tl, bl *IntersectionPoint, points []*IntersectionPoint, tol float64) *model.Cell {
	var rights []*IntersectionPoint
	for _, tr := range points {
		if tr.Point.IsClose(tl.Point, tol) ||
			tr.Point.X <= tl.Point.X ||
			math.Abs(tr.Point.Y-tl.Point.Y) > tol {
			continue
		}
		rights = append(rights, tr)
	}
	sort.SliceStable(rights, func(i, j int) bool {
		a, b := rights[i].Point, rights[j].Point
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y > b.Y
	})

	for _, tr := range rights {
		if !tl.EdgeExistsBetween(tr.Point, Horizontal, tol) {
			continue
		}
		br := model.Point{X: tr.Point.X, Y: bl.Point.Y}
		if !pointExists(points, br, tol) {
			continue
		}
		if !bl.EdgeExistsBetween(br, Horizontal, tol) || !tr.EdgeExistsBetween(br, Vertical, tol) {
			continue
		}
		bbox := model.NewBBoxFromPoints(bl.Point, tr.Point)
		return model.NewCell(bbox, edgeStyle(bl, tl, tr))
	}
	return nil
}

func pointExists(points []*IntersectionPoint, pt model.Point, tol float64) bool {
	for _, ip := range points {
		if ip.Point.IsClose(pt, tol) {
			return true
		}
	}
	return false
}

// edgeStyle picks the paint style of a contributing edge, preferring the
// left side.
func edgeStyle(corners ...*IntersectionPoint) model.Style {
	for _, c := range corners {
		if len(c.Vertical) > 0 {
			return c.Vertical[0].Style
		}
	}
	for _, c := range corners {
		if len(c.Horizontal) > 0 {
			return c.Horizontal[0].Style
		}
	}
	return model.Style{}
}
