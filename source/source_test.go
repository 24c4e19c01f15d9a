package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/gridmatch/model"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, "PDF"},
		{JSON, "JSON"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"checklist.pdf", PDF},
		{"checklist.PDF", PDF},
		{"pages.json", JSON},
		{"pages.ndjson", JSON},
		{"pages.jsonl", JSON},
		{"report.xlsx", Unknown},
		{"noext", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf", []byte("%PDF-1.7\n"), PDF},
		{"json array", []byte("  [\n{\"number\":1}]"), JSON},
		{"json object", []byte("{\"number\":1}"), JSON},
		{"bom", []byte("\xEF\xBB\xBF{}"), JSON},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04}, Unknown},
		{"empty", nil, Unknown},
	}

	for _, tt := range tests {
		if got := DetectFromMagic(tt.data); got != tt.want {
			t.Errorf("DetectFromMagic(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectFromReader(t *testing.T) {
	got, err := DetectFromReader(bytes.NewReader([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if got != PDF {
		t.Errorf("DetectFromReader() = %v, want PDF", got)
	}
}

const dump = `[
{"number": 1, "width": 595, "height": 842, "primitives": [
  {"kind": "rect", "bbox": [10, 10, 200, 40], "style": {"stroke": "#000000", "fill": [0.7, 1, 0.7]}},
  {"kind": "line", "points": [[10, 10], [200, 10]]},
  {"kind": "text", "lines": [{"bbox": [12, 20, 80, 30], "text": "TD Code"}]},
  {"kind": "figure", "bbox": [100, 12, 120, 38], "image": "aGVsbG8="}
]},
{"width": 595, "height": 842, "primitives": [
  {"kind": "curve", "points": [[1, 1], [5, 5], [9, 1]], "style": {"stroke": "red", "stroke_width": 0.5}}
]}
]`

func drain(t *testing.T, src PageSource) []*model.Page {
	t.Helper()
	var pages []*model.Page
	for {
		page, err := src.Next(context.Background())
		if err == io.EOF {
			return pages
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		pages = append(pages, page)
	}
}

func TestJSONSource_Array(t *testing.T) {
	pages := drain(t, NewJSONSource(strings.NewReader(dump)))
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}

	p1 := pages[0]
	if p1.Number != 1 || p1.Width != 595 || len(p1.Primitives) != 4 {
		t.Fatalf("page 1 = %d %vx%v with %d primitives", p1.Number, p1.Width, p1.Height, len(p1.Primitives))
	}

	rect := p1.Primitives[0]
	if rect.Kind != model.KindRect {
		t.Errorf("Primitives[0].Kind = %v, want rect", rect.Kind)
	}
	if rect.BBox != model.NewBBox(10, 10, 190, 30) {
		t.Errorf("rect BBox = %+v", rect.BBox)
	}
	if !rect.Style.Filled || rect.Style.Fill != (model.Color{R: 0.7, G: 1, B: 0.7}) {
		t.Errorf("rect fill = %+v", rect.Style)
	}
	if !rect.Style.Stroked || rect.Style.StrokeWidth != 1 {
		t.Errorf("rect stroke = %+v", rect.Style)
	}

	line := p1.Primitives[1]
	if line.Kind != model.KindLine || line.Style != defaultStyle {
		t.Errorf("line = %v %+v, want default style", line.Kind, line.Style)
	}
	if got := p1.Primitives[2].Text(); got != "TD Code" {
		t.Errorf("text = %q, want %q", got, "TD Code")
	}
	if got := string(p1.Primitives[3].Image); got != "hello" {
		t.Errorf("figure image = %q, want %q", got, "hello")
	}

	p2 := pages[1]
	if p2.Number != 2 {
		t.Errorf("unnumbered page Number = %d, want 2", p2.Number)
	}
	curve := p2.Primitives[0]
	if curve.Kind != model.KindCurve || curve.Style.Stroke != model.Red || curve.Style.StrokeWidth != 0.5 {
		t.Errorf("curve = %v %+v", curve.Kind, curve.Style)
	}
	if curve.BBox != model.NewBBox(1, 1, 8, 4) {
		t.Errorf("curve BBox = %+v", curve.BBox)
	}
}

func TestJSONSource_Stream(t *testing.T) {
	in := `{"number": 3, "primitives": [{"kind": "text", "bbox": [0, 0, 10, 10], "text": "a"}]}
{"number": 4, "primitives": []}
`
	pages := drain(t, NewJSONSource(strings.NewReader(in)))
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 3 || pages[1].Number != 4 {
		t.Errorf("numbers = %d, %d, want 3, 4", pages[0].Number, pages[1].Number)
	}
	if got := pages[0].FirstLine(); got != "a" {
		t.Errorf("FirstLine() = %q, want %q", got, "a")
	}
}

func TestJSONSource_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n", "[]"} {
		pages := drain(t, NewJSONSource(strings.NewReader(in)))
		if len(pages) != 0 {
			t.Errorf("%q: got %d pages, want 0", in, len(pages))
		}
	}
}

func TestJSONSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown kind", `[{"primitives": [{"kind": "blob"}]}]`},
		{"short bbox", `[{"primitives": [{"kind": "rect", "bbox": [1, 2]}]}]`},
		{"bad color", `[{"primitives": [{"kind": "rect", "bbox": [0, 0, 1, 1], "style": {"fill": "nocolor"}}]}]`},
		{"line without points", `[{"primitives": [{"kind": "line"}]}]`},
		{"truncated", `[{"number": 1`},
	}

	for _, tt := range tests {
		src := NewJSONSource(strings.NewReader(tt.in))
		_, err := src.Next(context.Background())
		if err == nil || err == io.EOF {
			t.Errorf("%s: Next() error = %v, want a decode error", tt.name, err)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	// Content wins over the extension.
	path := filepath.Join(dir, "pages.dat")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pages := drain(t, src); len(pages) != 2 {
		t.Errorf("got %d pages, want 2", len(pages))
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(other); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(txt) error = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := Open(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("Open(missing) error = nil")
	}
}

func numbered(n int) []*model.Page {
	pages := make([]*model.Page, n)
	for i := range pages {
		pages[i] = model.NewPage(i+1, 100, 100)
	}
	return pages
}

func TestFilter(t *testing.T) {
	src := Filter(NewSlice(numbered(5)...), 4, 2)
	pages := drain(t, src)
	if len(pages) != 2 || pages[0].Number != 2 || pages[1].Number != 4 {
		t.Errorf("Filter() pages = %v", pages)
	}

	all := Filter(NewSlice(numbered(3)...))
	if got := len(drain(t, all)); got != 3 {
		t.Errorf("Filter() without pages = %d pages, want 3", got)
	}
}

func TestSlice_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSlice(numbered(1)...).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

type fakeRecognizer struct {
	text string
	err  error
	seen int
}

func (f *fakeRecognizer) RecognizeImage(data []byte) (string, error) {
	f.seen++
	return f.text, f.err
}

func TestWithOCR(t *testing.T) {
	page := model.NewPage(1, 100, 100)
	page.Add(
		model.NewFigure(model.NewBBox(10, 10, 40, 20), []byte("png")),
		model.NewFigure(model.NewBBox(60, 10, 20, 20), nil),
	)
	rec := &fakeRecognizer{text: "OK\n\n  42 Nm \n"}

	pages := drain(t, WithOCR(NewSlice(page), rec))
	if rec.seen != 1 {
		t.Errorf("recognizer called %d times, want 1", rec.seen)
	}
	runs := pages[0].OfKind(model.KindTextRun)
	if len(runs) != 1 {
		t.Fatalf("got %d text runs, want 1", len(runs))
	}
	if got := runs[0].Text(); got != "OK\n42 Nm" {
		t.Errorf("run text = %q", got)
	}
	if runs[0].BBox != model.NewBBox(10, 10, 40, 20) {
		t.Errorf("run BBox = %+v, want the figure box", runs[0].BBox)
	}
	if got := runs[0].Lines[0].BBox; got != model.NewBBox(10, 20, 40, 10) {
		t.Errorf("first line BBox = %+v", got)
	}

	failing := &fakeRecognizer{err: errors.New("boom")}
	page2 := model.NewPage(1, 100, 100)
	page2.Add(model.NewFigure(model.NewBBox(0, 0, 1, 1), []byte("x")))
	if _, err := WithOCR(NewSlice(page2), failing).Next(context.Background()); err == nil {
		t.Error("Next() error = nil, want recognizer error")
	}
}

func TestFigureText_Blank(t *testing.T) {
	if _, ok := FigureText(model.NewBBox(0, 0, 10, 10), " \n "); ok {
		t.Error("FigureText(blank) ok = true")
	}
}

func glyphs(y, size float64, x float64, s string) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{X: x, Y: y, W: size * 0.5, FontSize: size, S: string(r)})
		x += size * 0.5
	}
	return out
}

func TestPDFSource_Lines(t *testing.T) {
	s := &PDFSource{BaselineTol: 0.3, GapFactor: 1}

	var texts []pdf.Text
	texts = append(texts, glyphs(700, 10, 300, "Result")...)
	texts = append(texts, glyphs(700.5, 10, 50, "TD Code")...)
	texts = append(texts, glyphs(680, 10, 50, "Torque")...)

	lines := s.lines(texts)
	want := []string{"TD Code", "Result", "Torque"}
	if len(lines) != len(want) {
		t.Fatalf("lines() = %d lines, want %d", len(lines), len(want))
	}
	for i, l := range lines {
		if l.Text != want[i] {
			t.Errorf("lines()[%d] = %q, want %q", i, l.Text, want[i])
		}
	}
	if got := lines[0].BBox.Left(); got != 50 {
		t.Errorf("first line left = %v, want 50", got)
	}
}

func TestPDFSource_Runs(t *testing.T) {
	s := &PDFSource{BaselineTol: 0.3, GapFactor: 1}

	var texts []pdf.Text
	texts = append(texts, glyphs(700, 10, 50, "Check the")...)
	texts = append(texts, glyphs(689, 10, 50, "bolts")...)
	texts = append(texts, glyphs(600, 10, 50, "Far below")...)

	runs := s.runs(texts)
	if len(runs) != 2 {
		t.Fatalf("runs() = %d runs, want 2", len(runs))
	}
	if len(runs[0]) != 2 || runs[0][1].Text != "bolts" {
		t.Errorf("runs()[0] = %+v", runs[0])
	}
}
