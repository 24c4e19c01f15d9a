package model

import (
	"sort"
	"strings"
)

// Node is anything a Cell can own: *Cell, *TextBlock or *Shape.
type Node interface {
	BoundingBox() BBox
	node()
}

// Cell is a reconstructed or composed rectangular region.
type Cell struct {
	BBox      BBox
	Style     Style
	Children  []Node
	Synthetic bool // wraps an item that had no bordered container
}

// TextBlock is a run of consecutive glyph lines that landed in the same cell.
type TextBlock struct {
	BBox  BBox
	Lines []TextLine
}

// Shape wraps a curve or figure primitive placed in the tree.
type Shape struct {
	Primitive Primitive
}

func (c *Cell) node()      {}
func (t *TextBlock) node() {}
func (s *Shape) node()     {}

// BoundingBox returns the cell box.
func (c *Cell) BoundingBox() BBox { return c.BBox }

// BoundingBox returns the union of the block's line boxes.
func (t *TextBlock) BoundingBox() BBox { return t.BBox }

// BoundingBox returns the shape's primitive box.
func (s *Shape) BoundingBox() BBox { return s.Primitive.BBox }

// NewCell creates an empty cell.
func NewCell(bbox BBox, style Style) *Cell {
	return &Cell{BBox: bbox, Style: style}
}

// Fill returns the cell's fill color, white when unfilled.
func (c *Cell) Fill() Color {
	return c.Style.FillColor()
}

// Add places child in the deepest descendant cell containing the child's
// center, or directly under c when no child cell does. Children stay in
// reading order.
func (c *Cell) Add(child Node) {
	center := child.BoundingBox().Center()
	for _, existing := range c.Children {
		if sub, ok := existing.(*Cell); ok && sub != child && sub.BBox.Contains(center) {
			sub.Add(child)
			return
		}
	}
	c.Children = append(c.Children, child)
	SortNodes(c.Children)
}

// Text returns the cell text: the text of its blocks joined by a space when
// every child is a text block (or the only text child is a single block).
// Cells holding anything else return "".
func (c *Cell) Text() string {
	blocks := c.TextBlocks()
	if len(blocks) == 0 {
		return ""
	}
	if len(blocks) != len(c.Children) && len(blocks) != 1 {
		return ""
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Text())
	}
	return strings.Join(parts, " ")
}

// TextBlocks returns the direct text children.
func (c *Cell) TextBlocks() []*TextBlock {
	var out []*TextBlock
	for _, n := range c.Children {
		if t, ok := n.(*TextBlock); ok {
			out = append(out, t)
		}
	}
	return out
}

// Cells returns the direct child cells.
func (c *Cell) Cells() []*Cell {
	var out []*Cell
	for _, n := range c.Children {
		if sub, ok := n.(*Cell); ok {
			out = append(out, sub)
		}
	}
	return out
}

// Shapes returns the direct curve and figure children.
func (c *Cell) Shapes() []*Shape {
	var out []*Shape
	for _, n := range c.Children {
		if s, ok := n.(*Shape); ok {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether the cell owns nothing.
func (c *Cell) IsEmpty() bool {
	return len(c.Children) == 0
}

// Walk visits c and every descendant cell depth-first in reading order.
func (c *Cell) Walk(fn func(*Cell)) {
	fn(c)
	for _, sub := range c.Cells() {
		sub.Walk(fn)
	}
}

// NewTextBlock creates a block from glyph lines.
func NewTextBlock(lines ...TextLine) *TextBlock {
	t := &TextBlock{}
	for _, l := range lines {
		t.Append(l)
	}
	return t
}

// Append adds a glyph line and grows the block box.
func (t *TextBlock) Append(l TextLine) {
	if len(t.Lines) == 0 {
		t.BBox = l.BBox
	} else {
		t.BBox = t.BBox.Union(l.BBox)
	}
	t.Lines = append(t.Lines, l)
}

// Text returns the block text, one glyph line per line.
func (t *TextBlock) Text() string {
	parts := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, "\n")
}

// SortNodes orders nodes top-to-bottom then left-to-right.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return SortKeyLess(nodes[i].BoundingBox(), nodes[j].BoundingBox())
	})
}

// SortCells orders cells top-to-bottom then left-to-right.
func SortCells(cells []*Cell) {
	sort.SliceStable(cells, func(i, j int) bool {
		return SortKeyLess(cells[i].BBox, cells[j].BBox)
	})
}

// SortTree sorts the children of every cell in the forest recursively.
func SortTree(cells []*Cell) {
	SortCells(cells)
	for _, c := range cells {
		SortNodes(c.Children)
		SortTree(c.Cells())
	}
}
