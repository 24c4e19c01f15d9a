package graphicsstate

import (
	"errors"
	"math"

	"github.com/tsawler/gridmatch/model"
)

// ErrStackUnderflow is returned by Restore when no state was saved.
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m applied first, then other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p model.Point) model.Point {
	return model.Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// LineScale is the factor the matrix scales line widths by.
func (m Matrix) LineScale() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// GraphicsState is the part of the PDF graphics state that affects how
// paths are painted.
type GraphicsState struct {
	CTM         Matrix
	LineWidth   float64
	StrokeColor model.Color
	FillColor   model.Color

	stack []GraphicsState
}

// NewGraphicsState returns the initial state: identity CTM, line width 1,
// black stroke and fill.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:         Identity(),
		LineWidth:   1,
		StrokeColor: model.Black,
		FillColor:   model.Black,
	}
}

// Save pushes a copy of the state (q operator).
func (gs *GraphicsState) Save() {
	saved := *gs
	saved.stack = nil
	gs.stack = append(gs.stack, saved)
}

// Restore pops the last saved state (Q operator).
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return ErrStackUnderflow
	}
	stack := gs.stack[:len(gs.stack)-1]
	*gs = gs.stack[len(gs.stack)-1]
	gs.stack = stack
	return nil
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform concatenates m onto the CTM (cm operator).
func (gs *GraphicsState) Transform(m Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// Style returns the paint style of a path painted in this state.
func (gs *GraphicsState) Style(stroked, filled bool) model.Style {
	return model.Style{
		StrokeWidth: gs.LineWidth * gs.CTM.LineScale(),
		Stroke:      gs.StrokeColor,
		Fill:        gs.FillColor,
		Stroked:     stroked,
		Filled:      filled,
	}
}

// DeviceColor converts gray (1 component), RGB (3) or CMYK (4) components
// to a color. Components are clamped to [0, 1].
func DeviceColor(c []float64) (model.Color, bool) {
	v := make([]float64, len(c))
	for i, x := range c {
		v[i] = math.Max(0, math.Min(1, x))
	}
	switch len(v) {
	case 1:
		return model.Gray(v[0]), true
	case 3:
		return model.Color{R: v[0], G: v[1], B: v[2]}, true
	case 4:
		k := 1 - v[3]
		return model.Color{R: (1 - v[0]) * k, G: (1 - v[1]) * k, B: (1 - v[2]) * k}, true
	}
	return model.Color{}, false
}
