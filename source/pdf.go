package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/gridmatch/graphicsstate"
	"github.com/tsawler/gridmatch/model"
)

// Letter size, used when a page has no readable media box.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// PDFSource reads primitives from a PDF document. Glyphs are joined into
// glyph lines by baseline and horizontal gap; lines stacked directly under
// each other with the same left edge form one text run. Rectangles, lines
// and curves come from the page's path operators with their stroke and fill
// colors. When the content streams cannot be read, the rectangles found by
// the PDF reader are used instead, each with a black one-point stroke.
type PDFSource struct {
	r      *pdf.Reader
	next   int
	closer io.Closer

	// BaselineTol is the fraction of the font size two glyph baselines may
	// differ by and still share a line.
	BaselineTol float64
	// GapFactor is the gap between glyphs, in font sizes, that splits a line.
	GapFactor float64
}

// NewPDFSource reads a PDF document of the given size from r.
func NewPDFSource(r io.ReaderAt, size int64) (*PDFSource, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &PDFSource{r: reader, BaselineTol: 0.3, GapFactor: 1.0}, nil
}

// NumPage returns the number of pages in the document.
func (s *PDFSource) NumPage() int {
	return s.r.NumPage()
}

// Next returns the next page. Pages that cannot be read are returned empty.
func (s *PDFSource) Next(ctx context.Context) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= s.r.NumPage() {
		return nil, io.EOF
	}
	s.next++
	return s.page(s.next)
}

// Close closes the underlying file when the source owns one.
func (s *PDFSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *PDFSource) page(num int) (page *model.Page, err error) {
	p := s.r.Page(num)
	if p.V.IsNull() {
		return model.NewPage(num, defaultWidth, defaultHeight), nil
	}

	// The content stream parser panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("page %d: malformed content: %v", num, r)
		}
	}()

	width, height := mediaBox(p)
	page = model.NewPage(num, width, height)

	content := p.Content()
	if prims, ok := paths(p); ok {
		page.Add(prims...)
	} else {
		for _, r := range content.Rect {
			bbox := model.NewBBoxFromCorners(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
			page.Add(model.NewRect(bbox, defaultStyle))
		}
	}
	for _, run := range s.runs(content.Text) {
		page.Add(model.NewTextRun(run...))
	}
	return page, nil
}

// paths extracts the painted paths of the page's content streams. It
// reports false when the streams cannot be read and nothing was extracted.
func paths(p pdf.Page) ([]model.Primitive, bool) {
	data, err := contents(p)
	ex := graphicsstate.NewExtractor()
	if perr := ex.ExtractFromBytes(data); err == nil {
		err = perr
	}
	prims := ex.Primitives()
	return prims, err == nil || len(prims) > 0
}

// contents concatenates the decoded content streams of a page.
func contents(p pdf.Page) ([]byte, error) {
	v := p.V.Key("Contents")
	var streams []pdf.Value
	switch v.Kind() {
	case pdf.Stream:
		streams = append(streams, v)
	case pdf.Array:
		for i := 0; i < v.Len(); i++ {
			streams = append(streams, v.Index(i))
		}
	}

	var buf bytes.Buffer
	for _, stream := range streams {
		if stream.Kind() != pdf.Stream {
			continue
		}
		rc := stream.Reader()
		_, err := io.Copy(&buf, rc)
		rc.Close()
		if err != nil {
			return buf.Bytes(), fmt.Errorf("content stream: %w", err)
		}
		// streams split operators only at token boundaries
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func mediaBox(p pdf.Page) (float64, float64) {
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultWidth, defaultHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// glyphLine is a glyph line under construction.
type glyphLine struct {
	x0, x1, y, size float64
	text            strings.Builder
}

func (l *glyphLine) textLine() model.TextLine {
	// Descenders go about a fifth of the font size below the baseline.
	bottom := l.y - 0.2*l.size
	return model.TextLine{
		BBox: model.NewBBoxFromCorners(l.x0, bottom, l.x1, bottom+l.size),
		Text: strings.TrimSpace(l.text.String()),
	}
}

// lines groups glyphs into glyph lines, top to bottom then left to right.
func (s *PDFSource) lines(texts []pdf.Text) []model.TextLine {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			glyphs = append(glyphs, t)
		}
	}
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})

	// Rows of glyphs sharing a baseline.
	var rows [][]pdf.Text
	for _, g := range glyphs {
		if n := len(rows); n > 0 {
			ref := rows[n-1][0]
			if math.Abs(ref.Y-g.Y) <= s.BaselineTol*math.Max(ref.FontSize, 1) {
				rows[n-1] = append(rows[n-1], g)
				continue
			}
		}
		rows = append(rows, []pdf.Text{g})
	}

	var out []model.TextLine
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var cur *glyphLine
		for _, g := range row {
			size := math.Max(g.FontSize, 1)
			if cur != nil && g.X-cur.x1 > s.GapFactor*size {
				out = append(out, cur.textLine())
				cur = nil
			}
			if cur == nil {
				cur = &glyphLine{x0: g.X, x1: g.X, y: g.Y, size: size}
			}
			cur.text.WriteString(g.S)
			cur.x1 = math.Max(cur.x1, g.X+g.W)
			cur.size = math.Max(cur.size, size)
		}
		if cur != nil {
			out = append(out, cur.textLine())
		}
	}

	kept := out[:0]
	for _, l := range out {
		if l.Text != "" {
			kept = append(kept, l)
		}
	}
	return kept
}

// runs stacks glyph lines into text runs: a line joins the run above it
// when their left edges align and the vertical gap is under one line.
func (s *PDFSource) runs(texts []pdf.Text) [][]model.TextLine {
	var runs [][]model.TextLine
	for _, l := range s.lines(texts) {
		joined := false
		for i := len(runs) - 1; i >= 0; i-- {
			last := runs[i][len(runs[i])-1]
			gap := last.BBox.Bottom() - l.BBox.Top()
			if gap < 0 || gap > l.BBox.Height {
				continue
			}
			if math.Abs(last.BBox.Left()-l.BBox.Left()) <= s.BaselineTol*l.BBox.Height {
				runs[i] = append(runs[i], l)
				joined = true
				break
			}
		}
		if !joined {
			runs = append(runs, []model.TextLine{l})
		}
	}
	return runs
}
