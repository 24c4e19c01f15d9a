package match

import (
	"errors"
	"testing"

	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

var (
	green = model.Color{R: 0.7, G: 1, B: 0.7}
	blue  = model.Color{R: 0.7, G: 0.7, B: 1}
)

// textCell builds a bordered cell holding one line of text.
func textCell(x0, y0, x1, y1 float64, fill *model.Color, text string) *model.Cell {
	style := model.Style{StrokeWidth: 1, Stroked: true}
	if fill != nil {
		style.Filled = true
		style.Fill = *fill
	}
	c := model.NewCell(model.NewBBoxFromCorners(x0, y0, x1, y1), style)
	if text != "" {
		c.Add(model.NewTextBlock(model.TextLine{
			BBox: model.NewBBoxFromCorners(x0+2, y0+2, x1-2, y1-2),
			Text: text,
		}))
	}
	return c
}

// gridRow builds a row of 50pt wide cells starting at x=0.
func gridRow(y float64, fill *model.Color, texts ...string) []*model.Cell {
	cells := make([]*model.Cell, len(texts))
	for i, t := range texts {
		x := float64(i) * 50
		cells[i] = textCell(x, y, x+50, y+20, fill, t)
	}
	return cells
}

func forest(rows ...[]*model.Cell) []*model.Cell {
	var out []*model.Cell
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func genericMatcher(t *testing.T) *Matcher {
	t.Helper()
	s := DefaultSettings()
	s.Columns = []string{"code", "name", "result", "comment", "reading"}
	p, err := NewPolicy(GenericName, s)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	schema := NewSchema(
		Column{"code", 25}, Column{"name", 75}, Column{"result", 125},
		Column{"comment", 175}, Column{"reading", 225},
	)
	return NewMatcher(p, WithSchema(schema))
}

func TestMatchPageSectionWithTwoElements(t *testing.T) {
	m := genericMatcher(t)
	page := forest(
		[]*model.Cell{textCell(0, 100, 250, 120, &green, "Nacelle")},
		gridRow(80, nil, "A1", "Yaw brake", "OK", "worn", "12"),
		gridRow(60, nil, "A2", "Yaw motor", "NOK", "", "7"),
	)

	if err := m.MatchPage(2, tables.DefaultParams(), page); err != nil {
		t.Fatalf("MatchPage() error = %v", err)
	}
	r := m.Result()
	if r.Sections.Len() != 1 {
		t.Fatalf("Sections = %d, want 1", r.Sections.Len())
	}
	s := r.Section("Nacelle")
	if s == nil {
		t.Fatalf("Section(Nacelle) = nil, have %v", r.Sections.Keys())
	}
	if got := s.Elements.Keys(); len(got) != 2 || got[0] != "A1" || got[1] != "A2" {
		t.Fatalf("Elements = %v, want [A1 A2]", got)
	}
	first := s.Element("A1")
	want := map[string]string{"code": "A1", "name": "Yaw brake", "result": "OK", "comment": "worn", "reading": "12"}
	for k, v := range want {
		if got := first.Field(k); got != v {
			t.Errorf("A1.Field(%q) = %q, want %q", k, got, v)
		}
	}
	if got := s.Element("A2").Field("name"); got != "Yaw motor" {
		t.Errorf("A2.Field(name) = %q, want %q", got, "Yaw motor")
	}
	if m.State() != InElement {
		t.Errorf("State() = %v, want %v", m.State(), InElement)
	}
}

func TestMatchPageDataBeforeSection(t *testing.T) {
	m := genericMatcher(t)
	err := m.MatchPage(1, tables.DefaultParams(), gridRow(80, nil, "A1", "x", "y", "z", "w"))

	var mismatch *FormatMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("MatchPage() error = %v, want *FormatMismatch", err)
	}
	if mismatch.Page != 1 || mismatch.State != AwaitingSection {
		t.Errorf("mismatch = page %d state %v, want page 1 state %v", mismatch.Page, mismatch.State, AwaitingSection)
	}
}

func TestMatchPageIsAtomic(t *testing.T) {
	m := genericMatcher(t)
	good := forest(
		[]*model.Cell{textCell(0, 100, 250, 120, &green, "Nacelle")},
		gridRow(80, nil, "A1", "Yaw brake", "OK", "", "1"),
	)
	if err := m.MatchPage(1, tables.DefaultParams(), good); err != nil {
		t.Fatalf("MatchPage(1) error = %v", err)
	}
	before := m.Result()

	bad := forest(
		[]*model.Cell{textCell(0, 100, 250, 120, &green, "Hub")},
		gridRow(80, nil, "B1", "Pitch", "OK", "", "2"),
		gridRow(60, nil, "B2", "short"),
	)
	err := m.MatchPage(2, tables.DefaultParams(), bad)
	var mismatch *FormatMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("MatchPage(2) error = %v, want *FormatMismatch", err)
	}
	if mismatch.Row != 2 {
		t.Errorf("mismatch.Row = %d, want 2", mismatch.Row)
	}
	if m.Result() != before {
		t.Error("Result() changed after a failed page")
	}
	if m.Result().Section("Hub") != nil {
		t.Error("section from the failed page was committed")
	}
	if m.State() != InElement {
		t.Errorf("State() = %v, want %v", m.State(), InElement)
	}
}

func TestMatchPageStateCarriesAcrossPages(t *testing.T) {
	m := genericMatcher(t)
	if err := m.MatchPage(1, tables.DefaultParams(), []*model.Cell{textCell(0, 100, 250, 120, &green, "Tower")}); err != nil {
		t.Fatalf("MatchPage(1) error = %v", err)
	}
	if err := m.MatchPage(2, tables.DefaultParams(), gridRow(80, nil, "T1", "Bolts", "OK", "", "")); err != nil {
		t.Fatalf("MatchPage(2) error = %v", err)
	}
	if got := m.Result().Section("Tower").Elements.Len(); got != 1 {
		t.Errorf("Tower elements = %d, want 1", got)
	}
}

func TestConsecutiveSectionRowsMerge(t *testing.T) {
	m := genericMatcher(t)
	page := forest(
		[]*model.Cell{textCell(0, 130, 250, 150, &green, "Nacelle")},
		[]*model.Cell{textCell(0, 100, 250, 120, &green, "rear frame")},
		gridRow(70, nil, "N1", "Bolts", "OK", "", ""),
	)
	if err := m.MatchPage(1, tables.DefaultParams(), page); err != nil {
		t.Fatalf("MatchPage() error = %v", err)
	}
	if got := m.Result().Sections.Keys(); len(got) != 1 || got[0] != "Nacelle rear frame" {
		t.Errorf("Sections = %v, want [Nacelle rear frame]", got)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from State
		kind RowKind
		want State
		ok   bool
	}{
		{AwaitingSection, RowSection, InSection, true},
		{AwaitingSection, RowElement, AwaitingSection, false},
		{InSection, RowContinuation, InSection, false},
		{InSection, RowElementHeader, InElement, true},
		{InElement, RowSection, InSection, true},
		{InElement, RowContinuation, InElement, true},
		{InElement, RowSkip, InElement, true},
	}
	for _, tt := range tests {
		got, ok := Transition(tt.from, tt.kind)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Transition(%v, %v) = %v, %v; want %v, %v", tt.from, tt.kind, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPaletteNearest(t *testing.T) {
	p := RowPalette()
	tests := []struct {
		color model.Color
		want  string
	}{
		{model.Color{R: 0.72, G: 0.98, B: 0.7}, RefSection},
		{model.Color{R: 0.7, G: 0.7, B: 0.95}, RefElement},
		{model.White, RefData},
		{model.Gray(0.95), RefData},
	}
	for _, tt := range tests {
		if got := p.Classify(tt.color); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.color, got, tt.want)
		}
	}
}

func TestPaletteTieGoesToFirst(t *testing.T) {
	p := Palette{
		{Name: "first", Color: model.Black},
		{Name: "second", Color: model.White},
	}
	mid := model.Gray(0.5)
	for i := 0; i < 10; i++ {
		if got := p.Classify(mid); got != "first" {
			t.Fatalf("Classify(mid gray) = %q, want %q", got, "first")
		}
	}
	if _, ok := (Palette{}).Nearest(mid); ok {
		t.Error("Nearest() on empty palette ok = true")
	}
}

func TestSchemaBucket(t *testing.T) {
	s := NewSchema(Column{"code", 25}, Column{"name", 75})
	row := layout.Row{Cells: []*model.Cell{
		textCell(0, 0, 50, 20, nil, "A1"),
		textCell(50, 0, 100, 20, nil, "Brake"),
		textCell(300, 0, 350, 20, nil, "stray"),
	}}
	b := s.Bucket(row, 10, "description", nil)
	if got := b.Text("code"); got != "A1" {
		t.Errorf("Text(code) = %q, want A1", got)
	}
	if got := b.Text("description"); got != "stray" {
		t.Errorf("Text(description) = %q, want stray", got)
	}
	if got := b.Columns(); len(got) != 3 {
		t.Errorf("Columns() = %v, want 3 names", got)
	}
}

func TestSchemaBucketPositional(t *testing.T) {
	row := layout.Row{Cells: []*model.Cell{
		textCell(0, 0, 50, 20, nil, "A1"),
		textCell(50, 0, 100, 20, nil, "Brake"),
		textCell(100, 0, 150, 20, nil, "extra"),
	}}
	b := (&Schema{}).Bucket(row, 10, "description", []string{"code", "name"})
	if b.Text("code") != "A1" || b.Text("name") != "Brake" || b.Text("description") != "extra" {
		t.Errorf("positional buckets = %q %q %q", b.Text("code"), b.Text("name"), b.Text("description"))
	}
}

func TestSchemaLearn(t *testing.T) {
	row := layout.Row{Cells: gridRow(0, nil, "TD Code", "Checkpoint", "MORS Case ID", "Extra col", "")}
	s := &Schema{}
	s.Learn(row, []string{ColTDCode, ColCheckpoint, ColMORS})
	want := []string{ColTDCode, ColCheckpoint, ColMORS, "Extra col", "column5"}
	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	for i, name := range want {
		if s.Columns[i].Name != name {
			t.Errorf("Columns[%d] = %q, want %q", i, s.Columns[i].Name, name)
		}
	}
	if got, ok := s.Nearest(80, 10); !ok || got != ColCheckpoint {
		t.Errorf("Nearest(80) = %q, %v; want %q", got, ok, ColCheckpoint)
	}
	if _, ok := s.Nearest(1000, 10); ok {
		t.Error("Nearest(1000) ok = true, want false")
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	r := NewMatchResult()
	s := NewSection("Hub")
	e := NewElement("H1", "")
	e.Fields.Set("name", "Pitch")
	s.Elements.Set("H1", e)
	r.Sections.Set("Hub", s)

	c := r.Clone()
	c.Section("Hub").Element("H1").Fields.Set("name", "changed")
	c.Sections.Set("Tower", NewSection("Tower"))

	if got := r.Section("Hub").Element("H1").Field("name"); got != "Pitch" {
		t.Errorf("original field = %q, want Pitch", got)
	}
	if r.Sections.Len() != 1 {
		t.Errorf("original sections = %d, want 1", r.Sections.Len())
	}
}

func TestOrderedRename(t *testing.T) {
	o := NewOrdered[int]()
	o.Set("a", 1)
	o.Set("b", 2)
	o.Set("c", 3)
	if !o.Rename("b", "x") {
		t.Fatal("Rename(b, x) = false")
	}
	if o.Rename("a", "c") {
		t.Error("Rename onto an existing key = true")
	}
	keys := o.Keys()
	if keys[0] != "a" || keys[1] != "x" || keys[2] != "c" {
		t.Errorf("Keys() = %v, want [a x c]", keys)
	}
	o.Delete("a")
	if o.Len() != 2 || o.Has("a") {
		t.Errorf("after Delete: Len() = %d, Has(a) = %v", o.Len(), o.Has("a"))
	}
}

func TestSplitSigned(t *testing.T) {
	tests := []struct {
		in, value, unit string
	}{
		{"+45 Nm", "+45", "Nm"},
		{"-0.5  mm", "-0.5", "mm"},
		{"+12", "+12", ""},
		{"fine", "fine", ""},
	}
	for _, tt := range tests {
		v, u := SplitSigned(tt.in)
		if v != tt.value || u != tt.unit {
			t.Errorf("SplitSigned(%q) = %q, %q; want %q, %q", tt.in, v, u, tt.value, tt.unit)
		}
	}
}

func TestRegistry(t *testing.T) {
	names := ListPolicies()
	want := []string{GenericName, MVName, PreventiveName}
	if len(names) != len(want) {
		t.Fatalf("ListPolicies() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListPolicies()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if _, err := NewPolicy("nope", nil); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("NewPolicy(nope) error = %v, want ErrUnknownPolicy", err)
	}
	bad := DefaultSettings()
	bad.Params.VerticalOverlap = 0
	if _, err := NewPolicy(GenericName, bad); err == nil {
		t.Error("NewPolicy() with invalid settings error = nil")
	}
}

func TestGenericFlatten(t *testing.T) {
	m := genericMatcher(t)
	page := forest(
		[]*model.Cell{textCell(0, 100, 250, 120, &green, "Nacelle")},
		gridRow(80, nil, "A1", "Yaw brake", "OK", "worn", "12"),
	)
	if err := m.MatchPage(1, tables.DefaultParams(), page); err != nil {
		t.Fatalf("MatchPage() error = %v", err)
	}
	m.Result().Section("Nacelle").Element("A1").Measures.Set("gap", Measure{Value: "3", Unit: "mm"})

	table := m.Policy().Flatten(m.Result())
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	col := func(name string) int {
		for i, c := range table.Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("column %q missing from %v", name, table.Columns)
		return -1
	}
	if got := table.Rows[0][col("name")]; got != "Yaw brake" {
		t.Errorf("row 0 name = %q, want Yaw brake", got)
	}
	if got := table.Rows[1][col("measure")]; got != "gap" {
		t.Errorf("row 1 measure = %q, want gap", got)
	}
	if got := table.Rows[1][col("unit")]; got != "mm" {
		t.Errorf("row 1 unit = %q, want mm", got)
	}
	if got := table.Rows[0][col("section")]; got != "Nacelle" {
		t.Errorf("row 0 section = %q, want Nacelle", got)
	}

	rows := m.Rows()
	if len(rows) != len(table.Rows) || rows[0][col("name")] != "Yaw brake" || rows[1][col("measure")] != "gap" {
		t.Errorf("Rows() = %v, want the flattened rows %v", rows, table.Rows)
	}
}
