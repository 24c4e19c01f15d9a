package graphicsstate

import (
	"math"

	"github.com/tsawler/gridmatch/model"
)

// Subpath is a connected run of segments in device space.
type Subpath struct {
	// Points holds the start point, then the end point of each line and the
	// two control points and end point of each curve.
	Points []model.Point
	Curved bool
	Closed bool
}

// Path is a path under construction. Points are transformed by the CTM
// when they are added, as PDF requires.
type Path struct {
	Subpaths []Subpath

	current    model.Point
	hasCurrent bool
	start      model.Point // user space start of the current subpath
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath (m operator).
func (p *Path) MoveTo(ctm Matrix, x, y float64) {
	pt := model.Point{X: x, Y: y}
	p.Subpaths = append(p.Subpaths, Subpath{Points: []model.Point{ctm.Transform(pt)}})
	p.current = pt
	p.start = pt
	p.hasCurrent = true
}

// LineTo appends a straight segment (l operator). Without a current point
// it behaves as MoveTo.
func (p *Path) LineTo(ctm Matrix, x, y float64) {
	if !p.hasCurrent {
		p.MoveTo(ctm, x, y)
		return
	}
	p.extend(ctm, false, model.Point{X: x, Y: y})
}

// CurveTo appends a cubic Bézier curve (c operator).
func (p *Path) CurveTo(ctm Matrix, x1, y1, x2, y2, x3, y3 float64) {
	if !p.hasCurrent {
		p.MoveTo(ctm, x1, y1)
	}
	p.extend(ctm, true, model.Point{X: x1, Y: y1}, model.Point{X: x2, Y: y2}, model.Point{X: x3, Y: y3})
}

// CurveToV appends a curve whose first control point is the current point
// (v operator).
func (p *Path) CurveToV(ctm Matrix, x2, y2, x3, y3 float64) {
	if !p.hasCurrent {
		return
	}
	p.CurveTo(ctm, p.current.X, p.current.Y, x2, y2, x3, y3)
}

// CurveToY appends a curve whose second control point is the end point
// (y operator).
func (p *Path) CurveToY(ctm Matrix, x1, y1, x3, y3 float64) {
	if !p.hasCurrent {
		return
	}
	p.CurveTo(ctm, x1, y1, x3, y3, x3, y3)
}

// ClosePath closes the current subpath (h operator).
func (p *Path) ClosePath() {
	if !p.hasCurrent || len(p.Subpaths) == 0 {
		return
	}
	p.Subpaths[len(p.Subpaths)-1].Closed = true
	p.current = p.start
}

// Rectangle appends a closed rectangular subpath (re operator).
func (p *Path) Rectangle(ctm Matrix, x, y, width, height float64) {
	p.MoveTo(ctm, x, y)
	p.LineTo(ctm, x+width, y)
	p.LineTo(ctm, x+width, y+height)
	p.LineTo(ctm, x, y+height)
	p.ClosePath()
	p.current = model.Point{X: x, Y: y}
}

// Clear discards the path.
func (p *Path) Clear() {
	p.Subpaths = p.Subpaths[:0]
	p.hasCurrent = false
}

// IsEmpty reports whether the path has no subpaths.
func (p *Path) IsEmpty() bool {
	return len(p.Subpaths) == 0
}

func (p *Path) extend(ctm Matrix, curved bool, pts ...model.Point) {
	sp := &p.Subpaths[len(p.Subpaths)-1]
	if sp.Closed {
		// drawing after h continues from the subpath start
		p.Subpaths = append(p.Subpaths, Subpath{Points: []model.Point{ctm.Transform(p.start)}})
		sp = &p.Subpaths[len(p.Subpaths)-1]
	}
	for _, pt := range pts {
		sp.Points = append(sp.Points, ctm.Transform(pt))
	}
	sp.Curved = sp.Curved || curved
	p.current = pts[len(pts)-1]
}

// Primitives converts the painted path. Line segments shorter than minLen
// are dropped.
func (p *Path) Primitives(style model.Style, minLen float64) []model.Primitive {
	var out []model.Primitive
	for _, sp := range p.Subpaths {
		if len(sp.Points) < 2 {
			continue
		}
		if sp.Curved {
			out = append(out, model.NewCurve(append([]model.Point(nil), sp.Points...), style))
			continue
		}
		if bbox, ok := sp.rectangle(style.Filled); ok {
			out = append(out, model.NewRect(bbox, style))
			continue
		}
		if !style.Stroked {
			if len(sp.Points) > 2 {
				out = append(out, model.NewCurve(append([]model.Point(nil), sp.Points...), style))
			}
			continue
		}
		pts := sp.Points
		if sp.Closed && !pts[0].IsClose(pts[len(pts)-1], rectTolerance) {
			pts = append(append([]model.Point(nil), pts...), pts[0])
		}
		for i := 1; i < len(pts); i++ {
			if pts[i-1].Distance(pts[i]) < minLen {
				continue
			}
			out = append(out, model.NewLine(pts[i-1], pts[i], style))
		}
	}
	return out
}

// rectTolerance is how far, in points, a corner may be off its axis.
const rectTolerance = 0.1

// rectangle reports whether the subpath outlines an axis-aligned rectangle
// and returns its box. Filling closes a subpath implicitly.
func (sp Subpath) rectangle(filled bool) (model.BBox, bool) {
	pts := sp.Points
	closed := sp.Closed || filled
	if len(pts) == 5 && pts[0].IsClose(pts[4], rectTolerance) {
		pts = pts[:4]
		closed = true
	}
	if len(pts) != 4 || !closed {
		return model.BBox{}, false
	}

	// Each edge must be horizontal or vertical, alternating.
	horizontal := func(a, b model.Point) bool { return math.Abs(a.Y-b.Y) <= rectTolerance }
	vertical := func(a, b model.Point) bool { return math.Abs(a.X-b.X) <= rectTolerance }
	first := horizontal(pts[0], pts[1])
	for i := 0; i < 4; i++ {
		a, b := pts[i], pts[(i+1)%4]
		if (i%2 == 0) == first {
			if !horizontal(a, b) {
				return model.BBox{}, false
			}
		} else if !vertical(a, b) {
			return model.BBox{}, false
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range pts {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	return model.NewBBoxFromCorners(minX, minY, maxX, maxY), true
}
