package layout

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

// Composer assigns the primitives of a page into a containment forest rooted
// at the reconstructed cells.
type Composer struct {
	params tables.Params

	cells []*model.Cell
	tree  rtree.RTreeG[int]
	roots []*model.Cell

	leftovers []model.Node
}

// NewComposer creates a composer using the position tolerance and minimum
// sizes of p.
func NewComposer(p tables.Params) *Composer {
	return &Composer{params: p}
}

// Compose is a convenience wrapper around NewComposer(p).Compose.
func Compose(cells []*model.Cell, prims []model.Primitive, p tables.Params) []*model.Cell {
	return NewComposer(p).Compose(cells, prims)
}

// Compose builds the forest. Rect primitives matching a reconstructed cell
// lend it their paint style; the others become residual cells. Text runs,
// curves and figures are then placed in the smallest cell containing their
// center. Items that fit nowhere are wrapped in synthetic cells and placed
// once more. Every level of the result is in reading order.
func (c *Composer) Compose(cells []*model.Cell, prims []model.Primitive) []*model.Cell {
	c.cells = c.cells[:0]
	c.roots = nil
	c.leftovers = nil
	c.tree = rtree.RTreeG[int]{}

	ordered := make([]model.Primitive, len(prims))
	copy(ordered, prims)
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.SortKeyLess(ordered[i].BBox, ordered[j].BBox)
	})

	c.index(cells, ordered)
	c.nest()

	var texts, curves, figures []model.Primitive
	for _, prim := range ordered {
		switch prim.Kind {
		case model.KindTextRun:
			texts = append(texts, prim)
		case model.KindCurve:
			curves = append(curves, prim)
		case model.KindFigure:
			figures = append(figures, prim)
		case model.KindRect, model.KindLine:
			// consumed by reconstruction
		}
	}

	for _, run := range texts {
		c.placeText(run)
	}
	for _, curve := range curves {
		c.placeShape(curve)
	}
	for _, fig := range figures {
		c.placeShape(fig)
	}
	c.wrapLeftovers()

	model.SortTree(c.roots)
	return c.roots
}

// index records the reconstructed cells plus residual rects in the spatial
// index.
func (c *Composer) index(cells []*model.Cell, prims []model.Primitive) {
	tol := c.params.PositionTol
	captured := make([]bool, len(cells))

	var residual []*model.Cell
	for _, prim := range prims {
		if prim.Kind != model.KindRect {
			continue
		}
		matched := false
		for i, cell := range cells {
			if !captured[i] && cell.BBox.Near(prim.BBox, tol) {
				cell.Style = prim.Style
				captured[i] = true
				matched = true
				break
			}
		}
		if matched || !c.keepResidual(prim.BBox) {
			continue
		}
		residual = append(residual, model.NewCell(prim.BBox, prim.Style))
	}

	all := append(append([]*model.Cell{}, cells...), residual...)
	model.SortCells(all)
	for _, cell := range all {
		c.cells = append(c.cells, cell)
		lo, hi := cell.BBox.Bounds()
		c.tree.Insert(lo, hi, len(c.cells)-1)
	}
}

func (c *Composer) keepResidual(b model.BBox) bool {
	if b.Width <= c.params.PositionTol || b.Height <= c.params.PositionTol {
		return false
	}
	return b.Width >= c.params.MinRectWidth && b.Height >= c.params.MinRectHeight
}

// smallest returns the smallest indexed cell containing pt whose area is
// strictly greater than minArea, skipping self.
func (c *Composer) smallest(pt model.Point, minArea float64, self *model.Cell) *model.Cell {
	best := -1
	c.tree.Search([2]float64{pt.X, pt.Y}, [2]float64{pt.X, pt.Y}, func(_, _ [2]float64, i int) bool {
		cell := c.cells[i]
		if cell == self || !cell.BBox.Contains(pt) || cell.BBox.Area() <= minArea {
			return true
		}
		if best < 0 || cell.BBox.Area() < c.cells[best].BBox.Area() ||
			(cell.BBox.Area() == c.cells[best].BBox.Area() && i < best) {
			best = i
		}
		return true
	})
	if best < 0 {
		return nil
	}
	return c.cells[best]
}

// nest places every indexed cell under the smallest strictly larger cell
// containing its center.
func (c *Composer) nest() {
	for _, cell := range c.cells {
		parent := c.smallest(cell.BBox.Center(), cell.BBox.Area(), cell)
		if parent == nil {
			c.roots = append(c.roots, cell)
			continue
		}
		parent.Children = append(parent.Children, cell)
	}
}

// placeText walks the glyph lines of a run, splitting the run wherever its
// lines cross into another cell.
func (c *Composer) placeText(run model.Primitive) {
	var cur *model.Cell
	var block *model.TextBlock

	flush := func() {
		if block == nil {
			return
		}
		if cur != nil {
			cur.Children = append(cur.Children, block)
		} else {
			c.leftovers = append(c.leftovers, block)
		}
		block = nil
	}

	for _, line := range run.Lines {
		center := line.BBox.Center()
		target := cur
		if target == nil || !target.BBox.Contains(center) {
			target = c.smallest(center, 0, nil)
		}
		if block == nil || target != cur {
			flush()
			cur = target
			block = &model.TextBlock{}
		}
		block.Append(line)
	}
	flush()
}

func (c *Composer) placeShape(prim model.Primitive) {
	shape := &model.Shape{Primitive: prim}
	if cell := c.smallest(prim.BBox.Center(), prim.BBox.Area(), nil); cell != nil {
		cell.Children = append(cell.Children, shape)
		return
	}
	c.leftovers = append(c.leftovers, shape)
}

// wrapLeftovers gives every unplaced item a synthetic cell of its own and
// runs containment once more, so borderless items can still nest under a
// bordered ancestor.
func (c *Composer) wrapLeftovers() {
	if len(c.leftovers) == 0 {
		return
	}

	width := 0.0
	for _, r := range c.roots {
		width += r.Style.StrokeWidth
	}
	if len(c.roots) > 0 {
		width /= float64(len(c.roots))
	}

	for _, item := range c.leftovers {
		wrapper := model.NewCell(item.BoundingBox(), model.Style{StrokeWidth: width})
		wrapper.Synthetic = true
		wrapper.Children = []model.Node{item}

		if parent := c.smallest(wrapper.BBox.Center(), wrapper.BBox.Area(), nil); parent != nil {
			parent.Children = append(parent.Children, wrapper)
			continue
		}
		c.roots = append(c.roots, wrapper)
	}
	c.leftovers = nil
}
