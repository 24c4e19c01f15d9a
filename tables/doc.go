// Package tables rebuilds the implicit cell grid of a page from its ruling
// geometry.
//
// Reconstruction runs in three steps:
//
//  1. [Decompose] normalizes rect and line primitives into [Segment] values.
//  2. [Build] intersects every pair of segments and clusters the crossings
//     into [IntersectionPoint] values, treating coordinates within
//     [Params].PositionTol as identical. Candidate pairs are pruned with an
//     R-tree; the result matches an exhaustive pairwise scan.
//  3. [Reconstruct] walks the intersection graph from the top-left and emits
//     the smallest rectangle anchored at each point as a [model.Cell].
//
// Degenerate geometry (parallel or zero-length segments, isolated points) is
// skipped silently; nothing in this package returns an error except
// [Params.Validate].
//
// # Configuration
//
// Tolerances are held in [Params]:
//
//	p := tables.DefaultParams()
//	p.PositionTol = 5
//	cells := tables.Reconstruct(tables.Build(tables.Decompose(page.Primitives, p), p), p)
package tables
