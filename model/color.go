package model

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is an RGB color with components in [0, 1], the way PDF device
// colors are expressed.
type Color struct {
	R, G, B float64
}

// Common colors.
var (
	White = Color{1, 1, 1}
	Black = Color{0, 0, 0}
	Red   = Color{1, 0, 0}
	Green = Color{0, 1, 0}
)

// Gray returns a gray level color.
func Gray(level float64) Color {
	return Color{level, level, level}
}

// Colorful converts the color for use with go-colorful.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Distance returns the Euclidean distance between two colors in RGB space.
func (c Color) Distance(other Color) float64 {
	return c.Colorful().DistanceRgb(other.Colorful())
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return c.Colorful().Clamped().Hex()
}

// String returns the hex representation of the color.
func (c Color) String() string {
	return c.Hex()
}

// ParseColor parses a hex color ("#b3b3ff") or an SVG color name ("green").
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Color{c.R, c.G, c.B}, nil
	}

	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("unknown color name %q", s)
	}
	c, _ := colorful.MakeColor(rgba)
	return Color{c.R, c.G, c.B}, nil
}
