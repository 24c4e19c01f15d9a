package gridmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch/classify"
	"github.com/tsawler/gridmatch/config"
	"github.com/tsawler/gridmatch/match"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/source"
)

var sectionFill = model.Color{R: 0.7, G: 1, B: 0.7}

const testConfig = `
profiles:
  inspection:
    base: generic
    params:
      position_tol: 1
    header_tokens: [Code]
    columns: [code, name, result]
    output_columns: [section, code, name, result]
`

// rowPrims draws a row of 50pt wide bordered cells at height y, with one
// text line per cell.
func rowPrims(y float64, fill *model.Color, texts ...string) []model.Primitive {
	style := model.Style{StrokeWidth: 1, Stroke: model.Black, Stroked: true}
	if fill != nil {
		style.Filled = true
		style.Fill = *fill
	}
	var prims []model.Primitive
	for i, t := range texts {
		x := float64(i) * 50
		prims = append(prims,
			model.NewRect(model.NewBBoxFromCorners(x, y, x+50, y+20), style),
			model.NewTextRun(model.TextLine{BBox: model.NewBBoxFromCorners(x+2, y+2, x+48, y+18), Text: t}),
		)
	}
	return prims
}

func sectionPrims(y float64, name string) []model.Primitive {
	style := model.Style{StrokeWidth: 1, Stroke: model.Black, Stroked: true, Filled: true, Fill: sectionFill}
	return []model.Primitive{
		model.NewRect(model.NewBBoxFromCorners(0, y, 150, y+20), style),
		model.NewTextRun(model.TextLine{BBox: model.NewBBoxFromCorners(2, y+2, 148, y+18), Text: name}),
	}
}

func newPage(n int, prims ...[]model.Primitive) *model.Page {
	page := model.NewPage(n, 300, 200)
	for _, p := range prims {
		page.Add(p...)
	}
	return page
}

// inspection returns a three page document: a header row and a section on
// page 1, more elements on page 2 and a page 3 whose data row precedes any
// section when matched alone.
func inspection() []*model.Page {
	return []*model.Page{
		newPage(1,
			rowPrims(140, nil, "Code", "Name", "Result"),
			sectionPrims(120, "Nacelle"),
			rowPrims(100, nil, "A1", "Yaw brake", "OK"),
			rowPrims(80, nil, "A2", "Yaw motor", "NOK"),
		),
		newPage(2,
			sectionPrims(120, "Tower"),
			rowPrims(100, nil, "B1", "Ladder", "OK"),
		),
		newPage(3,
			rowPrims(100, nil, "C1", "Door", "OK"),
		),
	}
}

func testCfg(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}
	return cfg
}

func TestExtract(t *testing.T) {
	pages := inspection()[:2]
	doc, err := FromSource(source.NewSlice(pages...)).
		Config(testCfg(t)).
		Profile("inspection").
		Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if doc.Pages != 2 || doc.Profile != "inspection" {
		t.Errorf("Pages/Profile = %d/%q, want 2/inspection", doc.Pages, doc.Profile)
	}
	if want := []string{"section", "code", "name", "result"}; !reflect.DeepEqual(doc.Columns, want) {
		t.Errorf("Columns = %v, want %v", doc.Columns, want)
	}
	want := [][]string{
		{"Nacelle", "A1", "Yaw brake", "OK"},
		{"Nacelle", "A2", "Yaw motor", "NOK"},
		{"Tower", "B1", "Ladder", "OK"},
	}
	if !reflect.DeepEqual(doc.Rows, want) {
		t.Errorf("Rows = %v, want %v", doc.Rows, want)
	}
	if doc.Result.Elements() != 3 {
		t.Errorf("Result.Elements() = %d, want 3", doc.Result.Elements())
	}
}

func TestExtract_PageSelection(t *testing.T) {
	doc, err := FromSource(source.NewSlice(inspection()...)).
		Config(testCfg(t)).
		Profile("inspection").
		Pages(1).
		Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if doc.Pages != 1 || len(doc.Rows) != 2 {
		t.Errorf("Pages = %d, Rows = %v, want page 1 only", doc.Pages, doc.Rows)
	}
}

func TestExtract_Mismatch(t *testing.T) {
	// Page 3 alone has a data row before any section.
	ext := FromSource(source.NewSlice(inspection()...)).
		Config(testCfg(t)).
		Profile("inspection").
		Pages(3)

	_, err := ext.Extract(context.Background())
	var fm *match.FormatMismatch
	if !errors.As(err, &fm) {
		t.Fatalf("Extract() error = %v, want *match.FormatMismatch", err)
	}
	if fm.Page != 3 || fm.State != match.AwaitingSection {
		t.Errorf("mismatch = page %d state %v", fm.Page, fm.State)
	}
}

func TestExtract_ContinueOnMismatch(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	pages := inspection()
	// Swap so the orphan data row comes first.
	pages[0], pages[2] = pages[2], pages[0]
	pages[0].Number, pages[2].Number = 1, 3

	doc, err := FromSource(source.NewSlice(pages...)).
		Config(testCfg(t)).
		Profile("inspection").
		Logger(log).
		ContinueOnMismatch().
		Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0].Page != 1 {
		t.Fatalf("Warnings = %v, want one on page 1", doc.Warnings)
	}
	if doc.Pages != 2 {
		t.Errorf("Pages = %d, want 2", doc.Pages)
	}
	if !strings.Contains(FormatWarnings(doc.Warnings), "page 1: format mismatch") {
		t.Errorf("FormatWarnings() = %q", FormatWarnings(doc.Warnings))
	}
	if !strings.Contains(buf.String(), "page skipped") {
		t.Errorf("log = %s, want a skipped page warning", buf.String())
	}
}

func TestRun_OnePagePerNext(t *testing.T) {
	run, err := FromSource(source.NewSlice(inspection()[:2]...)).
		Config(testCfg(t)).
		Profile("inspection").
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	defer run.Close()

	wantElements := []int{2, 3}
	for i, want := range wantElements {
		if !run.Next() {
			t.Fatalf("Next() #%d = false, err %v", i+1, run.Err())
		}
		if run.Page().Number != i+1 {
			t.Errorf("Page() = %d, want %d", run.Page().Number, i+1)
		}
		if got := run.Result().Elements(); got != want {
			t.Errorf("after page %d: Elements() = %d, want %d", i+1, got, want)
		}
	}
	if run.Next() {
		t.Error("Next() after the last page = true")
	}
	if run.Err() != nil {
		t.Errorf("Err() = %v, want nil", run.Err())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run, err := FromSource(source.NewSlice(inspection()[:2]...)).
		Config(testCfg(t)).
		Profile("inspection").
		Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !run.Next() {
		t.Fatalf("Next() = false, err %v", run.Err())
	}
	cancel()
	if run.Next() {
		t.Error("Next() after cancel = true")
	}
	if !errors.Is(run.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", run.Err())
	}
	if run.Result().Elements() != 2 {
		t.Errorf("Elements() = %d, want the first page kept", run.Result().Elements())
	}
}

func TestRun_Classification(t *testing.T) {
	title := func(s string) *model.Page {
		page := model.NewPage(1, 300, 200)
		page.Add(model.NewTextRun(model.TextLine{BBox: model.NewBBoxFromCorners(10, 180, 200, 190), Text: s}))
		return page
	}

	tests := []struct {
		name    string
		line    string
		want    classify.DocType
		wantErr bool
	}{
		{"mv", "Preventive Maintenance MV", classify.MV, false},
		{"preventive", "SGRE Preventive Maintenance", classify.Preventive, false},
		{"unknown", "Invoice", classify.Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := FromSource(source.NewSlice(title(tt.line))).Run(context.Background())
			if tt.wantErr {
				if !errors.Is(err, classify.ErrUnknownDocument) {
					t.Errorf("Run() error = %v, want ErrUnknownDocument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			defer run.Close()
			if run.Type() != tt.want {
				t.Errorf("Type() = %v, want %v", run.Type(), tt.want)
			}
		})
	}
}

func TestRun_DocTypeSkipsClassification(t *testing.T) {
	run, err := FromSource(source.NewSlice(model.NewPage(1, 100, 100))).
		DocType(classify.MV).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	defer run.Close()
	if run.Type() != classify.MV || run.Document().Profile != "mv" {
		t.Errorf("Type() = %v, profile %q", run.Type(), run.Document().Profile)
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := FromSource(source.NewSlice()).Run(context.Background()); !errors.Is(err, ErrNoPages) {
		t.Errorf("Run(empty) error = %v, want ErrNoPages", err)
	}
	if _, err := Open("nonexistent.json").Run(context.Background()); err == nil {
		t.Error("Run(missing file) error = nil")
	}
	_, err := FromSource(source.NewSlice(inspection()...)).
		Config(testCfg(t)).
		Profile("nope").
		Run(context.Background())
	if err == nil {
		t.Error("Run(unknown profile) error = nil")
	}
}

// jsonPrim mirrors the JSON page dump format.
type jsonPrim struct {
	Kind  string         `json:"kind"`
	BBox  []float64      `json:"bbox"`
	Style map[string]any `json:"style,omitempty"`
	Text  string         `json:"text,omitempty"`
}

func dump(t *testing.T, pages []*model.Page) string {
	t.Helper()
	var out []map[string]any
	for _, p := range pages {
		var prims []jsonPrim
		for _, prim := range p.Primitives {
			b := prim.BBox
			jp := jsonPrim{BBox: []float64{b.X, b.Y, b.X + b.Width, b.Y + b.Height}}
			switch prim.Kind {
			case model.KindRect:
				jp.Kind = "rect"
				jp.Style = map[string]any{"stroke": "black"}
				if prim.Style.Filled {
					jp.Style["fill"] = prim.Style.Fill.Hex()
				}
			case model.KindTextRun:
				jp.Kind = "text"
				jp.Text = prim.Lines[0].Text
			}
			prims = append(prims, jp)
		}
		out = append(out, map[string]any{"number": p.Number, "width": p.Width, "height": p.Height, "primitives": prims})
	}
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "inspection.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_JSONDump(t *testing.T) {
	path := dump(t, inspection()[:2])

	doc, err := Open(path).Config(testCfg(t)).Profile("inspection").Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Rows) != 3 || doc.Rows[2][0] != "Tower" {
		t.Errorf("Rows = %v", doc.Rows)
	}
}

func TestExtractor_Immutable(t *testing.T) {
	base := Open("doc.json")
	withPages := base.Pages(1, 2)
	_ = withPages.PageRange(4, 5)

	if len(base.options.pages) != 0 {
		t.Errorf("base pages = %v, want none", base.options.pages)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(withPages.options.pages, want) {
		t.Errorf("pages = %v, want %v", withPages.options.pages, want)
	}
	if base.ContinueOnMismatch().options.continueOnMismatch == base.options.continueOnMismatch {
		t.Error("ContinueOnMismatch() modified nothing or the receiver")
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic")
		}
	}()
	Must(0, errors.New("boom"))
}
