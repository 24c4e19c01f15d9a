package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/model"
)

// Column is a named table column located by the horizontal midpoint of its
// header cell.
type Column struct {
	Name string
	Mid  float64
}

// Schema is the running set of table columns. It is learned from header rows
// and carried across pages.
type Schema struct {
	Columns []Column
}

// NewSchema returns a schema with the given columns.
func NewSchema(columns ...Column) *Schema {
	return &Schema{Columns: columns}
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Columns)
}

// Clone returns a copy.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return &Schema{}
	}
	out := &Schema{Columns: make([]Column, len(s.Columns))}
	copy(out.Columns, s.Columns)
	return out
}

// Learn replaces the columns with the cells of a header row. Header text is
// mapped onto the first known name it starts with; other text is kept
// as printed.
func (s *Schema) Learn(row layout.Row, known []string) {
	s.Columns = s.Columns[:0]
	for i, cell := range row.Cells {
		name := canonical(cell.Text(), known)
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		s.Columns = append(s.Columns, Column{Name: name, Mid: cell.BBox.Center().X})
	}
}

func canonical(text string, known []string) string {
	for _, k := range known {
		if textnorm.HasPrefix(text, k) {
			return k
		}
	}
	return textnorm.Clean(text)
}

// Nearest returns the column whose midpoint is closest to x, if it lies
// within tol. Ties go to the leftmost column.
func (s *Schema) Nearest(x, tol float64) (string, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, col := range s.Columns {
		if d := math.Abs(col.Mid - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > tol {
		return "", false
	}
	return s.Columns[best].Name, true
}

// Buckets holds the cells of one row sorted into columns.
type Buckets struct {
	order []string
	cells map[string][]*model.Cell
}

// Bucket assigns every cell of a data row to the nearest column within tol,
// or to fallback. With no learned columns the cells are assigned by
// position to positional, overflowing into fallback.
func (s *Schema) Bucket(row layout.Row, tol float64, fallback string, positional []string) *Buckets {
	b := &Buckets{cells: make(map[string][]*model.Cell)}
	for i, cell := range row.Cells {
		name := fallback
		if s.Len() > 0 {
			if col, ok := s.Nearest(cell.BBox.Center().X, tol); ok {
				name = col
			}
		} else if i < len(positional) {
			name = positional[i]
		}
		b.add(name, cell)
	}
	return b
}

func (b *Buckets) add(name string, cell *model.Cell) {
	if _, ok := b.cells[name]; !ok {
		b.order = append(b.order, name)
	}
	b.cells[name] = append(b.cells[name], cell)
}

// Columns returns the names of the non-empty buckets in the order they were
// first filled.
func (b *Buckets) Columns() []string {
	return b.order
}

// Cells returns the cells in a column.
func (b *Buckets) Cells(name string) []*model.Cell {
	return b.cells[name]
}

// First returns the first cell in a column, or nil.
func (b *Buckets) First(name string) *model.Cell {
	if cells := b.cells[name]; len(cells) > 0 {
		return cells[0]
	}
	return nil
}

// Text returns the cleaned text of a column, joining multiple cells with a
// space.
func (b *Buckets) Text(name string) string {
	var parts []string
	for _, c := range b.cells[name] {
		if t := textnorm.Clean(c.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Has reports whether a column with the given name was learned.
func (s *Schema) Has(name string) bool {
	if s == nil {
		return false
	}
	for _, col := range s.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}
