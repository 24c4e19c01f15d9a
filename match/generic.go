package match

import (
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/layout"
)

// GenericName is the registry name of the generic policy.
const GenericName = "generic"

// Base is the palette-driven policy. Sections and element headers are told
// apart by the fill of a row's first cell, header rows by a leading token,
// and data rows are bucketed into the learned columns. Document-specific
// policies embed it and override what their template needs.
type Base struct {
	name     string
	settings *Settings
}

// NewGeneric returns the generic policy.
func NewGeneric(s *Settings) Policy {
	return &Base{name: GenericName, settings: s}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Settings() *Settings {
	return b.settings
}

// Prepare drops the configured number of framing rows from the top and the
// bottom of the page.
func (b *Base) Prepare(ctx *Context, rows []layout.Row) ([]layout.Row, error) {
	return trim(rows, b.settings.TrimTop, b.settings.TrimBottom), nil
}

func trim(rows []layout.Row, top, bottom int) []layout.Row {
	if top+bottom >= len(rows) {
		return nil
	}
	return rows[top : len(rows)-bottom]
}

func (b *Base) Classify(ctx *Context, row layout.Row) (RowKind, error) {
	s := b.settings
	first := row.First()
	if first == nil {
		return RowSkip, nil
	}
	text := first.Text()

	if hasAnyPrefix(text, s.HeaderTokens) {
		return RowHeader, nil
	}
	if s.SectionPrefix != "" && textnorm.HasPrefix(text, s.SectionPrefix) {
		return RowSection, nil
	}

	switch s.Palette.Classify(first.Fill()) {
	case RefSection:
		if s.SectionMaxCells == 0 || row.Len() <= s.SectionMaxCells {
			return RowSection, nil
		}
	case RefElement:
		if s.ElementMaxCells == 0 || row.Len() <= s.ElementMaxCells {
			return RowElementHeader, nil
		}
	}
	if _, ok := tokenValue(row, s.ElementToken); ok {
		return RowElementHeader, nil
	}

	if row.Len() == 1 && s.SkipSingleCells {
		return RowSkip, nil
	}
	if textnorm.Clean(text) == "" {
		return RowContinuation, nil
	}
	return RowElement, nil
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && textnorm.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// tokenValue finds the cell starting with token and returns what follows
// it, in the same cell or the next one.
func tokenValue(row layout.Row, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for i, c := range row.Cells {
		text := c.Text()
		if !textnorm.HasPrefix(text, token) {
			continue
		}
		v := strings.Trim(textnorm.TrimPrefix(text, token), ".: ")
		if v == "" {
			if next := row.Cell(i + 1); next != nil {
				v = textnorm.Clean(next.Text())
			}
		}
		return v, true
	}
	return "", false
}

func (b *Base) Apply(ctx *Context, kind RowKind, row layout.Row) error {
	switch kind {
	case RowSection:
		b.openSection(ctx, b.sectionName(row))
	case RowElementHeader:
		label := textnorm.Clean(row.First().Text())
		g := ctx.OpenGroup(label)
		if g == nil {
			return ctx.Mismatch("element header %q outside a section", label)
		}
		if v, ok := tokenValue(row, b.settings.ElementToken); ok {
			g.Fields.Set(b.settings.ElementToken, v)
		}
	case RowElement:
		key := textnorm.Clean(row.First().Text())
		e := ctx.OpenElement(key)
		if e == nil {
			return ctx.Mismatch("element %q outside a section", key)
		}
		fill(e, ctx.Bucket(row), false)
	case RowContinuation:
		e := ctx.Element()
		if e == nil {
			return ctx.Mismatch("continuation row without an element")
		}
		fill(e, ctx.Bucket(row), true)
	}
	return nil
}

func (b *Base) sectionName(row layout.Row) string {
	var parts []string
	for _, c := range row.Cells {
		parts = append(parts, textnorm.Clean(c.Text()))
	}
	name := joinName(parts...)
	if b.settings.SectionPrefix != "" {
		name = textnorm.TrimPrefix(name, b.settings.SectionPrefix)
	}
	return name
}

// openSection opens a section, or extends the name of the open one when it
// directly follows another section row and has no elements yet.
func (b *Base) openSection(ctx *Context, name string) {
	if b.settings.MergeSections && ctx.LastKind() == RowSection {
		if s := ctx.Section(); s != nil && s.Elements.Len() == 0 {
			merged := joinName(s.Name, name)
			if ctx.RenameSection(merged) {
				return
			}
			name = merged
		}
	}
	ctx.OpenSection(name)
}

func fill(e *Element, b *Buckets, appendValues bool) {
	for _, col := range b.Columns() {
		v := b.Text(col)
		if appendValues {
			e.AppendField(col, v)
		} else if v != "" || !e.Fields.Has(col) {
			e.Fields.Set(col, v)
		}
	}
}

// Flatten emits one row per element and one per measure. Columns are the
// header fields, the section, group and element keys, every field name in
// order of first appearance, and the measure name, value and unit.
func (b *Base) Flatten(r *MatchResult) Table {
	fields := NewOrdered[struct{}]()
	for _, col := range b.settings.Columns {
		fields.Set(col, struct{}{})
	}
	for _, s := range r.Sections.Values() {
		for _, e := range s.Elements.Values() {
			for _, k := range e.Fields.Keys() {
				fields.Set(k, struct{}{})
			}
		}
	}

	columns := b.settings.Output
	if len(columns) == 0 {
		columns = append(columns, r.Header.Keys()...)
		columns = append(columns, "section", "group", "element")
		columns = append(columns, fields.Keys()...)
		columns = append(columns, "measure", "value", "unit")
	}

	t := Table{Columns: columns}
	r.Each(func(s *Section, e *Element) {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = value(r, s, e, col)
		}
		t.Rows = append(t.Rows, row)
		for _, name := range e.Measures.Keys() {
			m := e.Measures.Value(name)
			row := make([]string, len(columns))
			for i, col := range columns {
				switch col {
				case "measure":
					row[i] = name
				case "value":
					row[i] = m.Value
				case "unit":
					row[i] = m.Unit
				default:
					row[i] = value(r, s, e, col)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	})
	return t
}

func value(r *MatchResult, s *Section, e *Element, col string) string {
	switch col {
	case "section":
		return s.Name
	case "group":
		return e.Group
	case "element":
		return e.Key
	}
	if v, ok := e.Fields.Get(col); ok {
		return v
	}
	return r.Header.Value(col)
}
