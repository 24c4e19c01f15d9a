// Package layout composes reconstructed cells and the remaining page
// primitives into an ordered containment forest, and groups that forest into
// visual rows.
//
// Composition happens in passes. Residual cells are nested first, then text
// runs are placed glyph line by glyph line (a run crossing a cell border is
// split between cells), then curves, then figures. Every item goes to the
// smallest cell containing its center. Whatever is left is wrapped in a
// synthetic cell and placed once more.
//
//	cells := layout.ComposePage(page, layout.Options{Params: params})
//	rows := layout.GroupRows(cells, layout.RowConfig{PositionTol: 5, Overlap: 0.55})
package layout
