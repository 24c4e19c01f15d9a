package layout

import (
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

// Options configures ComposePage.
type Options struct {
	Params  tables.Params
	Markers []MarkerRule
}

// ComposePage runs the whole geometry pipeline for one page: marker
// extraction, decomposition, intersection, rectangle reconstruction and
// composition.
func ComposePage(page *model.Page, opts Options) []*model.Cell {
	prims := page.Primitives
	var markers []model.Primitive
	for _, rule := range opts.Markers {
		var found []model.Primitive
		found, prims = ExtractMarkers(prims, rule)
		markers = append(markers, found...)
	}

	p := opts.Params
	cells := tables.Reconstruct(tables.Build(tables.Decompose(prims, p), p), p)

	all := make([]model.Primitive, 0, len(prims)+len(markers))
	all = append(all, prims...)
	all = append(all, markers...)
	return Compose(cells, all, p)
}
