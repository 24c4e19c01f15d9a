// Package model defines the data shared by every stage of the extraction
// pipeline.
//
// # Primitives
//
// A [Page] is a flat list of [Primitive] values as delivered by a primitive
// source. A primitive is a tagged variant: its [Kind] selects which fields
// are meaningful (rectangles and lines carry geometry and paint [Style], text
// runs carry [TextLine] glyph lines, figures may carry image bytes).
//
// # Composed tree
//
// Layout reconstruction turns a page into a forest of [Cell] values. A cell
// exclusively owns its children, each of which is a [Node]: a nested *Cell,
// a *[TextBlock] of glyph lines, or a *[Shape] wrapping a curve or figure.
// Children at every level are kept in reading order (top-to-bottom, then
// left-to-right).
//
// # Geometry
//
// [BBox] uses the PDF coordinate system: X/Y is the bottom-left corner and Y
// grows upward.
package model
