package graphicsstate

import (
	"github.com/tsawler/gridmatch/contentstream"
	"github.com/tsawler/gridmatch/model"
)

// Extractor collects the painted paths of a content stream as primitives.
type Extractor struct {
	gs    *GraphicsState
	path  *Path
	prims []model.Primitive

	// MinLineLength drops shorter stroked segments
	MinLineLength float64
}

// NewExtractor creates an extractor with the initial graphics state.
func NewExtractor() *Extractor {
	return &Extractor{
		gs:            NewGraphicsState(),
		path:          NewPath(),
		MinLineLength: 0.5,
	}
}

// Extract processes content stream operations.
func (e *Extractor) Extract(operations []contentstream.Operation) {
	for _, op := range operations {
		e.processOperation(op)
	}
}

// ExtractFromBytes parses and processes raw content stream data. On a parse
// error the operations before it are still processed and the error is
// returned.
func (e *Extractor) ExtractFromBytes(data []byte) error {
	operations, err := contentstream.NewParser(data).Parse()
	e.Extract(operations)
	return err
}

// Primitives returns the primitives collected so far, in paint order.
func (e *Extractor) Primitives() []model.Primitive {
	return e.prims
}

// State returns the current graphics state.
func (e *Extractor) State() *GraphicsState {
	return e.gs
}

// Reset discards collected primitives and restores the initial state.
func (e *Extractor) Reset() {
	e.gs = NewGraphicsState()
	e.path.Clear()
	e.prims = nil
}

// processOperation processes a single content stream operation. Operations
// with malformed operands are ignored.
func (e *Extractor) processOperation(op contentstream.Operation) {
	switch op.Operator {
	// Graphics state operators
	case "q":
		e.gs.Save()
	case "Q":
		// unbalanced Q is common in the wild; keep the current state
		_ = e.gs.Restore()
	case "cm":
		if v, ok := numbers(op, 6); ok {
			e.gs.Transform(Matrix{v[0], v[1], v[2], v[3], v[4], v[5]})
		}
	case "w":
		if v, ok := numbers(op, 1); ok {
			e.gs.LineWidth = v[0]
		}

	// Color operators
	case "G", "RG", "K", "SC", "SCN":
		if c, ok := color(op); ok {
			e.gs.StrokeColor = c
		}
	case "g", "rg", "k", "sc", "scn":
		if c, ok := color(op); ok {
			e.gs.FillColor = c
		}

	// Path construction operators
	case "m":
		if v, ok := numbers(op, 2); ok {
			e.path.MoveTo(e.gs.CTM, v[0], v[1])
		}
	case "l":
		if v, ok := numbers(op, 2); ok {
			e.path.LineTo(e.gs.CTM, v[0], v[1])
		}
	case "c":
		if v, ok := numbers(op, 6); ok {
			e.path.CurveTo(e.gs.CTM, v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case "v":
		if v, ok := numbers(op, 4); ok {
			e.path.CurveToV(e.gs.CTM, v[0], v[1], v[2], v[3])
		}
	case "y":
		if v, ok := numbers(op, 4); ok {
			e.path.CurveToY(e.gs.CTM, v[0], v[1], v[2], v[3])
		}
	case "h":
		e.path.ClosePath()
	case "re":
		if v, ok := numbers(op, 4); ok {
			e.path.Rectangle(e.gs.CTM, v[0], v[1], v[2], v[3])
		}

	// W and W* only clip; a clipping path ended with n is never painted
	// Path painting operators
	case "S":
		e.paint(true, false)
	case "s":
		e.path.ClosePath()
		e.paint(true, false)
	case "f", "F", "f*":
		e.paint(false, true)
	case "B", "B*":
		e.paint(true, true)
	case "b", "b*":
		e.path.ClosePath()
		e.paint(true, true)
	case "n":
		e.path.Clear()
	}
}

// paint converts the current path and ends it.
func (e *Extractor) paint(stroked, filled bool) {
	if !e.path.IsEmpty() {
		e.prims = append(e.prims, e.path.Primitives(e.gs.Style(stroked, filled), e.MinLineLength)...)
	}
	e.path.Clear()
}

// numbers returns the operands of op when there are exactly n numbers.
func numbers(op contentstream.Operation, n int) ([]float64, bool) {
	if len(op.Operands) != n {
		return nil, false
	}
	return op.Floats()
}

// color reads the numeric operands of a color operator. A trailing pattern
// name (scn, SCN) is ignored.
func color(op contentstream.Operation) (model.Color, bool) {
	var comps []float64
	for i := range op.Operands {
		f, ok := op.Float(i)
		if !ok {
			break
		}
		comps = append(comps, f)
	}
	return DeviceColor(comps)
}
