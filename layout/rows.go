package layout

import (
	"math"
	"sort"

	"github.com/tsawler/gridmatch/model"
)

// Row is a left-to-right group of sibling cells sharing a vertical band.
type Row struct {
	Cells []*model.Cell

	// Vertical extent of the row, extended by the position tolerance
	Bottom, Top float64
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.Cells)
}

// First returns the leftmost cell, or nil for an empty row.
func (r Row) First() *model.Cell {
	if len(r.Cells) == 0 {
		return nil
	}
	return r.Cells[0]
}

// Cell returns the i-th cell, or nil when out of range.
func (r Row) Cell(i int) *model.Cell {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	return r.Cells[i]
}

// RowConfig holds configuration for row grouping
type RowConfig struct {
	// PositionTol extends every vertical span before comparing (points)
	PositionTol float64

	// Overlap is the minimum shared height over row height for a cell to join
	// the open row (default: 0.55)
	Overlap float64
}

// DefaultRowConfig returns sensible default configuration
func DefaultRowConfig() RowConfig {
	return RowConfig{PositionTol: 0, Overlap: 0.55}
}

// GroupRows walks cells in order and groups them into rows. A cell joins the
// open row when its vertical span overlaps the row's running extent by at
// least cfg.Overlap of the row height; otherwise it opens a new row. Cells
// within a row are ordered left to right.
func GroupRows(cells []*model.Cell, cfg RowConfig) []Row {
	groups, spans := bands(cells, func(c *model.Cell) model.BBox { return c.BBox }, cfg)
	rows := make([]Row, len(groups))
	for i, g := range groups {
		rows[i] = Row{Cells: g, Bottom: spans[i][0], Top: spans[i][1]}
	}
	return rows
}

// GroupNodes orders nodes top to bottom and groups them into lines with the
// same rule as GroupRows. Nodes within a line are ordered left to right.
func GroupNodes(nodes []model.Node, cfg RowConfig) [][]model.Node {
	sorted := make([]model.Node, len(nodes))
	copy(sorted, nodes)
	model.SortNodes(sorted)
	groups, _ := bands(sorted, model.Node.BoundingBox, cfg)
	return groups
}

func bands[T any](items []T, box func(T) model.BBox, cfg RowConfig) ([][]T, [][2]float64) {
	var groups [][]T
	var spans [][2]float64
	tol := cfg.PositionTol

	for _, item := range items {
		b := box(item)
		bottom := b.Bottom() - tol
		top := b.Top() + tol

		if n := len(groups); n > 0 {
			span := &spans[n-1]
			if overlapFraction(bottom, top, span[0], span[1]) >= cfg.Overlap {
				groups[n-1] = append(groups[n-1], item)
				span[0] = math.Min(span[0], bottom)
				span[1] = math.Max(span[1], top)
				continue
			}
		}
		groups = append(groups, []T{item})
		spans = append(spans, [2]float64{bottom, top})
	}

	for _, g := range groups {
		sort.SliceStable(g, func(a, b int) bool {
			return box(g[a]).Left() < box(g[b]).Left()
		})
	}
	return groups, spans
}

// overlapFraction returns the shared height of [bottom, top] and the row band
// divided by the row height.
func overlapFraction(bottom, top, rowBottom, rowTop float64) float64 {
	if top <= rowBottom || bottom >= rowTop {
		return 0
	}
	height := rowTop - rowBottom
	if height <= 0 {
		return 0
	}
	shared := math.Min(top, rowTop) - math.Max(bottom, rowBottom)
	return shared / height
}
