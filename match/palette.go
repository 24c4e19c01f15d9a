package match

import (
	"math"

	"github.com/tsawler/gridmatch/model"
)

// Reference names used by the row palette.
const (
	RefSection = "section"
	RefElement = "element"
	RefData    = "data"
)

// Reference is a named color.
type Reference struct {
	Name  string
	Color model.Color
}

// Palette is an ordered list of reference colors. Lookups pick the nearest
// reference; on equal distance the one declared first wins.
type Palette []Reference

// Nearest returns the reference closest to c. It returns false for an empty
// palette.
func (p Palette) Nearest(c model.Color) (Reference, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, ref := range p {
		if d := ref.Color.Distance(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Reference{}, false
	}
	return p[best], true
}

// Classify returns the name of the nearest reference, or "".
func (p Palette) Classify(c model.Color) string {
	ref, _ := p.Nearest(c)
	return ref.Name
}

// Lookup returns the reference with the given name.
func (p Palette) Lookup(name string) (Reference, bool) {
	for _, ref := range p {
		if ref.Name == name {
			return ref, true
		}
	}
	return Reference{}, false
}

// RowPalette is the default fill palette: green sections, blue element
// headers, white data.
func RowPalette() Palette {
	return Palette{
		{Name: RefSection, Color: model.Color{R: 0.7, G: 1, B: 0.7}},
		{Name: RefElement, Color: model.Color{R: 0.7, G: 0.7, B: 1}},
		{Name: RefData, Color: model.White},
	}
}

// StatusPalette is the default marker palette.
func StatusPalette() Palette {
	return Palette{
		{Name: "OK", Color: model.Green},
		{Name: "NOT OK", Color: model.Red},
	}
}
