package tables

import (
	"math"
	"testing"

	"github.com/tsawler/gridmatch/model"
)

func rect(x0, y0, x1, y1 float64) model.Primitive {
	return model.NewRect(model.NewBBoxFromCorners(x0, y0, x1, y1), model.Style{StrokeWidth: 1, Stroked: true})
}

func line(x0, y0, x1, y1 float64) model.Primitive {
	return model.NewLine(model.Point{X: x0, Y: y0}, model.Point{X: x1, Y: y1}, model.Style{StrokeWidth: 1, Stroked: true})
}

func testParams() Params {
	p := DefaultParams()
	p.PositionTol = 1
	return p
}

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative tolerance", func(p *Params) { p.PositionTol = -1 }},
		{"negative min width", func(p *Params) { p.MinRectWidth = -1 }},
		{"zero overlap", func(p *Params) { p.VerticalOverlap = 0 }},
		{"overlap above one", func(p *Params) { p.VerticalOverlap = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	prims := []model.Primitive{
		rect(0, 0, 100, 50),
		line(0, 100, 200, 100),
		line(0, 200, 3, 200), // too short
		model.NewTextRun(model.TextLine{BBox: model.NewBBox(10, 10, 20, 5), Text: "ignored"}),
		model.NewCurve([]model.Point{{X: 0, Y: 0}, {X: 50, Y: 50}}, model.Style{}),
	}

	segs := Decompose(prims, DefaultParams())
	if len(segs) != 5 {
		t.Fatalf("Decompose() returned %d segments, want 5", len(segs))
	}

	var h, v int
	for _, s := range segs {
		if s.Orientation() == Horizontal {
			h++
		} else {
			v++
		}
	}
	if h != 3 || v != 2 {
		t.Errorf("orientation counts = %d horizontal, %d vertical, want 3 and 2", h, v)
	}
}

func TestDecomposeDropsShortRectSides(t *testing.T) {
	// A thin filled rect drawn as a rule keeps only its long sides.
	segs := Decompose([]model.Primitive{rect(0, 0, 100, 0.5)}, DefaultParams())
	if len(segs) != 2 {
		t.Fatalf("Decompose() returned %d segments, want 2", len(segs))
	}
	for _, s := range segs {
		if s.Orientation() != Horizontal {
			t.Errorf("segment %+v orientation = %v, want horizontal", s, s.Orientation())
		}
	}
}

func TestSegmentMinDistance(t *testing.T) {
	s := NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0}, model.Style{})
	tests := []struct {
		pt   model.Point
		want float64
	}{
		{model.Point{X: 5, Y: 3}, 3},
		{model.Point{X: -4, Y: 3}, 5},
		{model.Point{X: 10, Y: 0}, 0},
	}
	for _, tt := range tests {
		if got := s.MinDistance(tt.pt); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MinDistance(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
}

func TestSegmentIntersect(t *testing.T) {
	p := testParams()
	h := NewSegment(model.Point{X: 0, Y: 10}, model.Point{X: 100, Y: 10}, model.Style{})

	tests := []struct {
		name   string
		other  Segment
		wantOK bool
		want   model.Point
	}{
		{"crossing", NewSegment(model.Point{X: 50, Y: 0}, model.Point{X: 50, Y: 20}, model.Style{}), true, model.Point{X: 50, Y: 10}},
		{"touching end", NewSegment(model.Point{X: 100, Y: 10}, model.Point{X: 100, Y: 40}, model.Style{}), true, model.Point{X: 100, Y: 10}},
		{"near miss", NewSegment(model.Point{X: 100.5, Y: 10.5}, model.Point{X: 100.5, Y: 40}, model.Style{}), true, model.Point{X: 100.5, Y: 10}},
		{"too far", NewSegment(model.Point{X: 105, Y: 10}, model.Point{X: 105, Y: 40}, model.Style{}), false, model.Point{}},
		{"parallel", NewSegment(model.Point{X: 0, Y: 20}, model.Point{X: 100, Y: 20}, model.Style{}), false, model.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.Intersect(tt.other, p)
			if ok != tt.wantOK {
				t.Fatalf("Intersect() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Distance(tt.want) > 1e-9 {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentIsClose(t *testing.T) {
	a := NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0}, model.Style{})
	b := NewSegment(model.Point{X: 100.5, Y: 0.2}, model.Point{X: 0.3, Y: 0}, model.Style{})
	if !a.IsClose(b, 1) {
		t.Error("IsClose() = false for reversed near-identical segment")
	}
	if a.IsClose(b, 0.1) {
		t.Error("IsClose() = true outside tolerance")
	}
}

func TestBuildSharedEndpointSinglePoint(t *testing.T) {
	p := testParams()
	segs := []Segment{
		NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 50, Y: 0}, model.Style{}),
		NewSegment(model.Point{X: 0.5, Y: 0.5}, model.Point{X: 0.5, Y: 50}, model.Style{}),
	}
	points := Build(segs, p)
	if len(points) != 1 {
		t.Fatalf("Build() returned %d points, want 1", len(points))
	}
	if len(points[0].Horizontal) != 1 || len(points[0].Vertical) != 1 {
		t.Errorf("incident sets = %d/%d, want 1/1", len(points[0].Horizontal), len(points[0].Vertical))
	}
}

func TestBuildMergesPointsAndEdges(t *testing.T) {
	p := testParams()
	segs := []Segment{
		NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0}, model.Style{}),
		// duplicate of the first edge within tolerance
		NewSegment(model.Point{X: 0.2, Y: 0.3}, model.Point{X: 100.1, Y: 0.3}, model.Style{}),
		NewSegment(model.Point{X: 50, Y: -50}, model.Point{X: 50, Y: 50}, model.Style{}),
	}
	points := Build(segs, p)
	if len(points) != 1 {
		t.Fatalf("Build() returned %d points, want 1", len(points))
	}
	if n := len(points[0].Horizontal); n != 1 {
		t.Errorf("horizontal incident segments = %d, want 1", n)
	}
}

func TestBuildOrdersTopDownLeftRight(t *testing.T) {
	segs := Decompose([]model.Primitive{rect(0, 0, 100, 50)}, DefaultParams())
	points := Build(segs, DefaultParams())
	if len(points) != 4 {
		t.Fatalf("Build() returned %d points, want 4", len(points))
	}
	want := []model.Point{{X: 0, Y: 50}, {X: 100, Y: 50}, {X: 0, Y: 0}, {X: 100, Y: 0}}
	for i, ip := range points {
		if ip.Point.Distance(want[i]) > 1e-9 {
			t.Errorf("points[%d] = %v, want %v", i, ip.Point, want[i])
		}
	}
}

func TestReconstructSingleRect(t *testing.T) {
	p := testParams()
	r := model.NewBBoxFromCorners(10, 20, 110, 70)
	segs := Decompose([]model.Primitive{model.NewRect(r, model.Style{StrokeWidth: 1})}, p)
	cells := Reconstruct(Build(segs, p), p)
	if len(cells) != 1 {
		t.Fatalf("Reconstruct() returned %d cells, want 1", len(cells))
	}
	if !cells[0].BBox.Near(r, p.PositionTol) {
		t.Errorf("cell = %+v, want %+v", cells[0].BBox, r)
	}
}

func TestReconstructInheritsEdgeStyle(t *testing.T) {
	p := testParams()
	style := model.Style{StrokeWidth: 2, Fill: model.Green, Filled: true}
	segs := Decompose([]model.Primitive{model.NewRect(model.NewBBox(0, 0, 50, 50), style)}, p)
	cells := Reconstruct(Build(segs, p), p)
	if len(cells) != 1 {
		t.Fatalf("Reconstruct() returned %d cells, want 1", len(cells))
	}
	if cells[0].Fill() != model.Green {
		t.Errorf("Fill() = %v, want green", cells[0].Fill())
	}
}

func TestReconstructGridFromLines(t *testing.T) {
	p := testParams()
	// 2x2 grid drawn with 3 horizontal and 3 vertical rules.
	var prims []model.Primitive
	for _, y := range []float64{0, 50, 100} {
		prims = append(prims, line(0, y, 200, y))
	}
	for _, x := range []float64{0, 100, 200} {
		prims = append(prims, line(x, 0, x, 100))
	}

	cells := Reconstruct(Build(Decompose(prims, p), p), p)
	if len(cells) != 4 {
		t.Fatalf("Reconstruct() returned %d cells, want 4", len(cells))
	}
	want := []model.BBox{
		model.NewBBox(0, 50, 100, 50),
		model.NewBBox(100, 50, 100, 50),
		model.NewBBox(0, 0, 100, 50),
		model.NewBBox(100, 0, 100, 50),
	}
	for i, c := range cells {
		if !c.BBox.Near(want[i], p.PositionTol) {
			t.Errorf("cells[%d] = %+v, want %+v", i, c.BBox, want[i])
		}
	}
}

func TestReconstructSlantedTopRule(t *testing.T) {
	p := testParams()
	// The top rule rises 0.5pt to the right, so the top-right corners sort
	// before the top-left anchors.
	prims := []model.Primitive{
		line(0, 100, 200, 100.5),
		line(0, 50, 200, 50),
		line(0, 0, 200, 0),
	}
	for _, x := range []float64{0, 100, 200} {
		prims = append(prims, line(x, 0, x, 100))
	}

	cells := Reconstruct(Build(Decompose(prims, p), p), p)
	if len(cells) != 4 {
		t.Fatalf("Reconstruct() returned %d cells, want 4", len(cells))
	}
	want := []model.BBox{
		model.NewBBox(0, 50, 100, 50),
		model.NewBBox(100, 50, 100, 50),
		model.NewBBox(0, 0, 100, 50),
		model.NewBBox(100, 0, 100, 50),
	}
	for _, w := range want {
		found := false
		for _, c := range cells {
			if c.BBox.Near(w, p.PositionTol) {
				found = true
			}
		}
		if !found {
			t.Errorf("no cell near %+v in %v", w, cells)
		}
	}
}

func TestReconstructDropsSmallCells(t *testing.T) {
	p := testParams()
	segs := Decompose([]model.Primitive{rect(0, 0, 100, 8)}, DefaultParams())
	p.MinRectHeight = 10
	if cells := Reconstruct(Build(segs, p), p); len(cells) != 0 {
		t.Errorf("Reconstruct() returned %d cells, want 0", len(cells))
	}
}

func TestReconstructSkipsIsolatedPoints(t *testing.T) {
	p := testParams()
	// A cross yields one point with no rectangle.
	segs := []Segment{
		NewSegment(model.Point{X: 0, Y: 50}, model.Point{X: 100, Y: 50}, model.Style{}),
		NewSegment(model.Point{X: 50, Y: 0}, model.Point{X: 50, Y: 100}, model.Style{}),
	}
	if cells := Reconstruct(Build(segs, p), p); len(cells) != 0 {
		t.Errorf("Reconstruct() returned %d cells, want 0", len(cells))
	}
}
