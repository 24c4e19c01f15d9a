package model

import "strings"

// Kind identifies the variant held by a Primitive.
type Kind int

const (
	KindRect Kind = iota
	KindLine
	KindCurve
	KindTextRun
	KindFigure
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindLine:
		return "line"
	case KindCurve:
		return "curve"
	case KindTextRun:
		return "text"
	case KindFigure:
		return "figure"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "rect":
		return KindRect, true
	case "line":
		return KindLine, true
	case "curve":
		return KindCurve, true
	case "text", "textrun":
		return KindTextRun, true
	case "figure":
		return KindFigure, true
	}
	return 0, false
}

// Style is the paint state a primitive was drawn with.
type Style struct {
	StrokeWidth float64
	Stroke      Color
	Fill        Color
	Stroked     bool
	Filled      bool
}

// FillColor returns the fill color, or white when the shape is not filled.
func (s Style) FillColor() Color {
	if !s.Filled {
		return White
	}
	return s.Fill
}

// TextLine is one glyph line of a text run.
type TextLine struct {
	BBox BBox
	Text string
}

// Primitive is a raw drawing object from a page. Kind selects which of the
// optional fields are meaningful:
//
//   - KindRect: BBox, Style
//   - KindLine: Points holds the two endpoints
//   - KindCurve: Points holds the path points
//   - KindTextRun: Lines holds the glyph lines in reading order
//   - KindFigure: Image optionally holds encoded image bytes
type Primitive struct {
	Kind   Kind
	BBox   BBox
	Style  Style
	Points []Point
	Lines  []TextLine
	Image  []byte
}

// NewRect creates a rectangle primitive.
func NewRect(bbox BBox, style Style) Primitive {
	return Primitive{Kind: KindRect, BBox: bbox, Style: style}
}

// NewLine creates a straight line primitive between two points.
func NewLine(p0, p1 Point, style Style) Primitive {
	return Primitive{
		Kind:   KindLine,
		BBox:   NewBBoxFromPoints(p0, p1),
		Style:  style,
		Points: []Point{p0, p1},
	}
}

// NewCurve creates a curve primitive through the given points.
func NewCurve(points []Point, style Style) Primitive {
	p := Primitive{Kind: KindCurve, Style: style, Points: points}
	for i, pt := range points {
		b := BBox{X: pt.X, Y: pt.Y}
		if i == 0 {
			p.BBox = b
			continue
		}
		p.BBox = p.BBox.Union(b)
	}
	return p
}

// NewTextRun creates a text run from its glyph lines. The run's box is the
// union of the line boxes.
func NewTextRun(lines ...TextLine) Primitive {
	p := Primitive{Kind: KindTextRun, Lines: lines}
	for i, l := range lines {
		if i == 0 {
			p.BBox = l.BBox
			continue
		}
		p.BBox = p.BBox.Union(l.BBox)
	}
	return p
}

// NewFigure creates a figure primitive.
func NewFigure(bbox BBox, image []byte) Primitive {
	return Primitive{Kind: KindFigure, BBox: bbox, Image: image}
}

// Text returns the text of a text run, one glyph line per line.
func (p Primitive) Text() string {
	parts := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, "\n")
}

// Endpoints returns the two endpoints of a line. For other kinds it returns
// the bottom-left and top-right corners of the box.
func (p Primitive) Endpoints() (Point, Point) {
	if p.Kind == KindLine && len(p.Points) >= 2 {
		return p.Points[0], p.Points[len(p.Points)-1]
	}
	return Point{p.BBox.Left(), p.BBox.Bottom()}, Point{p.BBox.Right(), p.BBox.Top()}
}
