package model

// Page is one page of primitives as delivered by a primitive source.
type Page struct {
	Number     int     // 1-indexed page number
	Width      float64 // Page width in points
	Height     float64 // Page height in points
	Primitives []Primitive
}

// NewPage creates a new page with given dimensions
func NewPage(number int, width, height float64) *Page {
	return &Page{
		Number:     number,
		Width:      width,
		Height:     height,
		Primitives: make([]Primitive, 0),
	}
}

// Add appends primitives to the page.
func (p *Page) Add(prims ...Primitive) {
	p.Primitives = append(p.Primitives, prims...)
}

// OfKind returns the primitives of the given kind in page order.
func (p *Page) OfKind(kind Kind) []Primitive {
	var out []Primitive
	for _, prim := range p.Primitives {
		if prim.Kind == kind {
			out = append(out, prim)
		}
	}
	return out
}

// OutOfBounds returns the number of primitives whose origin lies below or
// left of the page origin. Such pages usually need a larger position
// tolerance.
func (p *Page) OutOfBounds() int {
	n := 0
	for _, prim := range p.Primitives {
		if prim.BBox.Left() < 0 || prim.BBox.Bottom() < 0 {
			n++
		}
	}
	return n
}

// FirstLine returns the text of the topmost glyph line on the page, ties
// broken left to right. It returns "" for a page without text.
func (p *Page) FirstLine() string {
	var best *TextLine
	for i := range p.Primitives {
		prim := &p.Primitives[i]
		if prim.Kind != KindTextRun {
			continue
		}
		for j := range prim.Lines {
			l := &prim.Lines[j]
			if best == nil ||
				l.BBox.Top() > best.BBox.Top() ||
				(l.BBox.Top() == best.BBox.Top() && l.BBox.Left() < best.BBox.Left()) {
				best = l
			}
		}
	}
	if best == nil {
		return ""
	}
	return best.Text
}
