// Package graphicsstate turns the path operators of a PDF content stream
// into layout primitives.
//
// The graphics state tracks the current transformation matrix, the line
// width and the stroke and fill colors through q/Q nesting. Paths are
// built in device space and turned into primitives when painted:
//   - rectangles (re, or four axis-aligned corners) become rect primitives
//   - straight stroked segments become line primitives
//   - paths with curves, and filled polygons, become curve primitives
//
// Paths ended with n, clipping paths included, are discarded. Text and image
// operators are ignored, and form XObjects (Do) are not followed.
//
// Example usage:
//
//	ex := graphicsstate.NewExtractor()
//	if err := ex.ExtractFromBytes(contents); err != nil {
//	    log.Printf("partial page: %v", err)
//	}
//	prims := ex.Primitives()
package graphicsstate
