package tables

import "fmt"

// Params holds the tolerances used by layout reconstruction. They are
// per-template calibration knobs; see config profiles for the values used
// by each document type.
type Params struct {
	// Distance under which two coordinates are the same (points)
	PositionTol float64 `yaml:"position_tol"`

	// Cross-product magnitude under which two segments are parallel
	DirectionTol float64 `yaml:"direction_tol"`

	// Minimum size of a reconstructed cell (points)
	MinRectWidth  float64 `yaml:"min_rect_width"`
	MinRectHeight float64 `yaml:"min_rect_height"`

	// Minimum length of a segment kept by the decomposer (points)
	MinLineLength float64 `yaml:"min_line_length"`

	// Fraction of a row's height a cell must overlap to join the row (0-1]
	VerticalOverlap float64 `yaml:"vertical_overlap"`
}

// DefaultParams returns default parameters
func DefaultParams() Params {
	return Params{
		PositionTol:     0,
		DirectionTol:    1e-6,
		MinRectWidth:    6,
		MinRectHeight:   6,
		MinLineLength:   6,
		VerticalOverlap: 0.55,
	}
}

// Validate checks that the parameters are usable.
func (p Params) Validate() error {
	switch {
	case p.PositionTol < 0:
		return fmt.Errorf("position tolerance must not be negative: %v", p.PositionTol)
	case p.DirectionTol < 0:
		return fmt.Errorf("direction tolerance must not be negative: %v", p.DirectionTol)
	case p.MinRectWidth < 0 || p.MinRectHeight < 0:
		return fmt.Errorf("minimum cell size must not be negative: %vx%v", p.MinRectWidth, p.MinRectHeight)
	case p.MinLineLength < 0:
		return fmt.Errorf("minimum line length must not be negative: %v", p.MinLineLength)
	case p.VerticalOverlap <= 0 || p.VerticalOverlap > 1:
		return fmt.Errorf("vertical overlap must be in (0, 1]: %v", p.VerticalOverlap)
	}
	return nil
}
