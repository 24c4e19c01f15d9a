// Package source delivers pages of drawing primitives to the extraction
// pipeline.
//
// A PageSource is forward-only: Next returns pages in document order and
// io.EOF once the document is exhausted. Open picks a source for a file by
// sniffing its leading bytes, falling back to the file extension:
//
//	src, err := source.Open("checklist.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//	for {
//	    page, err := src.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/gridmatch/model"
)

// ErrUnsupportedFormat is returned by Open for files that are neither PDF
// documents nor JSON page dumps.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// PageSource yields the pages of one document in order.
type PageSource interface {
	// Next returns the next page, or io.EOF after the last one.
	Next(ctx context.Context) (*model.Page, error)
	Close() error
}

// defaultStyle is used for primitives whose paint state is unknown.
var defaultStyle = model.Style{StrokeWidth: 1, Stroke: model.Black, Stroked: true}

// Open opens the file at path with the source matching its format.
func Open(path string) (PageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	format, err := DetectFromReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if format == Unknown {
		format = Detect(path)
	}

	switch format {
	case PDF:
		src, err := NewPDFSource(f, info.Size())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
		}
		src.closer = f
		return src, nil
	case JSON:
		src := NewJSONSource(f)
		src.closer = f
		return src, nil
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Slice is a PageSource over pages already in memory.
type Slice struct {
	pages []*model.Page
	next  int
}

// NewSlice returns a source yielding pages in order.
func NewSlice(pages ...*model.Page) *Slice {
	return &Slice{pages: pages}
}

// Next returns the next page.
func (s *Slice) Next(ctx context.Context) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.pages) {
		return nil, io.EOF
	}
	p := s.pages[s.next]
	s.next++
	return p, nil
}

// Close is a no-op.
func (s *Slice) Close() error { return nil }

// filtered skips pages whose number is not selected.
type filtered struct {
	PageSource
	pages map[int]bool
	last  int
}

// Filter returns a source yielding only the given page numbers. Reading
// stops once the highest selected page has been returned. With no page
// numbers src is returned unchanged.
func Filter(src PageSource, pages ...int) PageSource {
	if len(pages) == 0 {
		return src
	}
	f := &filtered{PageSource: src, pages: make(map[int]bool, len(pages))}
	for _, p := range pages {
		f.pages[p] = true
		if p > f.last {
			f.last = p
		}
	}
	return f
}

func (f *filtered) Next(ctx context.Context) (*model.Page, error) {
	for {
		page, err := f.PageSource.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page.Number > f.last {
			return nil, io.EOF
		}
		if f.pages[page.Number] {
			return page, nil
		}
	}
}
