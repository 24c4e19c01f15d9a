// Package gridmatch provides a fluent API for extracting checklist records
// from documents drawn as flat vector primitives.
//
// Basic usage:
//
//	doc, err := gridmatch.Open("checklist.pdf").Extract(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, row := range doc.Rows {
//	    fmt.Println(row)
//	}
//
// With options:
//
//	doc, err := gridmatch.Open("checklist.pdf").
//	    Config(cfg).
//	    Pages(1, 2, 3).
//	    ContinueOnMismatch().
//	    Extract(ctx)
//
// Pages can also be processed one at a time:
//
//	run, err := gridmatch.Open("checklist.pdf").Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	defer run.Close()
//	for run.Next() {
//	    fmt.Println(run.Page().Number, run.Result().Elements())
//	}
//	if err := run.Err(); err != nil {
//	    // handle error
//	}
//
// For advanced use cases the source, layout and match packages are also
// available.
package gridmatch

import (
	"github.com/tsawler/gridmatch/source"
)

// Open returns an Extractor for the document at path. The file is opened
// when Run or Extract is called.
//
// Example:
//
//	doc, err := gridmatch.Open("checklist.pdf").Extract(ctx)
func Open(path string) *Extractor {
	return &Extractor{
		path:    path,
		options: defaultOptions(),
	}
}

// FromSource returns an Extractor reading pages from src. The caller is
// responsible for closing src.
//
// Example:
//
//	src, err := source.Open("dump.json")
//	if err != nil {
//	    // handle error
//	}
//	defer src.Close()
//	doc, err := gridmatch.FromSource(src).Extract(ctx)
func FromSource(src source.PageSource) *Extractor {
	return &Extractor{
		src:     src,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := gridmatch.Must(gridmatch.Open("checklist.pdf").Extract(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
