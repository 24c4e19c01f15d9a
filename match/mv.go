package match

import (
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/model"
)

// MVName is the registry name of the medium-voltage inspection policy.
const MVName = "mv"

// Header fields of an MV checklist.
const (
	FieldChecklistName = "ChecklistName"
	FieldSite          = "Site"
	FieldOrderNumber   = "OrderNumber"
	FieldLanguage      = "Language"
	FieldRevisionDate  = "RevisionDate"
	FieldApprovalDate  = "ApprovalDate"
	FieldYearMV        = "Year"
)

// Table columns of an MV checklist.
const (
	ColNumber      = "#"
	ColDescription = "Description"
	ColRemarks     = "Remarks"
	ColTools       = "Tools"
	ColStatus      = "Status"
)

// MVColumns is the output schema of the MV policy.
var MVColumns = []string{
	"WTG",
	"Checklist name",
	"Revision date checklist",
	"Order number",
	"Approval date",
	"WTG SECTION",
	"Task description",
	"Remarks",
	"Measures",
	"Unit",
	"Status acc. Doc. / Result",
	"*DNV-GL Possible issue",
	"Current Status",
	"Comment",
}

// notApplicable fills the columns an MV row has no value for.
const notApplicable = "N/A"

// MVSettings returns the default calibration for MV checklists.
func MVSettings() *Settings {
	s := DefaultSettings()
	s.Params.PositionTol = 1.5
	s.Markers = []layout.MarkerRule{{Color: model.Red, Tolerance: 0.1}}
	s.HeaderTokens = []string{"#"}
	s.SectionPrefix = "location:"
	s.SectionMaxCells = 1
	s.MinDataCells = 5
	s.MergeSections = false
	s.Columns = []string{ColNumber, ColDescription, ColRemarks, ColTools, ColStatus}
	s.FallbackColumn = ColDescription
	s.TrimTop, s.TrimBottom = 2, 2
	s.SkipPageToken = "tools"
	s.Output = append([]string(nil), MVColumns...)
	return s
}

// MV matches medium-voltage inspection checklists: "Location:" section
// rows and numbered element rows whose description cell carries the
// element's measures.
type MV struct {
	Base
}

// NewMV returns the MV policy.
func NewMV(s *Settings) Policy {
	return &MV{Base{name: MVName, settings: s}}
}

// Prepare drops the page frame, reads the header fields of the first page,
// skips tools pages and everything above the "#" header row of the others.
func (p *MV) Prepare(ctx *Context, rows []layout.Row) ([]layout.Row, error) {
	rows = trim(rows, p.settings.TrimTop, p.settings.TrimBottom)
	if ctx.Page == 1 {
		return nil, p.header(ctx, rows)
	}

	// Page number row, then the title.
	if len(rows) < 2 {
		return nil, nil
	}
	if title := rows[1].First(); title != nil && textnorm.Contains(title.Text(), p.settings.SkipPageToken) {
		return nil, nil
	}
	for i := 2; i < len(rows); i++ {
		if first := rows[i].First(); first != nil && hasAnyPrefix(first.Text(), p.settings.HeaderTokens) {
			return rows[i:], nil
		}
	}
	return nil, nil
}

// header reads the value rows of the first page. Each value row follows the
// row of its labels.
func (p *MV) header(ctx *Context, rows []layout.Row) error {
	h := ctx.Result.Header
	for _, f := range []string{FieldChecklistName, FieldYearMV, FieldSite, FieldWTG, FieldOrderNumber, FieldLanguage, FieldRevisionDate, FieldApprovalDate} {
		h.Set(f, "")
	}
	values := []struct {
		row    int
		fields []string
	}{
		{2, []string{FieldChecklistName, FieldYearMV}},
		{4, []string{FieldSite, FieldWTG, FieldOrderNumber}},
		{6, []string{FieldLanguage, FieldRevisionDate, FieldApprovalDate}},
	}
	for _, l := range values {
		ctx.Row = l.row
		if l.row >= len(rows) || rows[l.row].Len() < len(l.fields) {
			return ctx.Mismatch("first page value row %d is missing or short", l.row)
		}
		for i, f := range l.fields {
			h.Set(f, firstText(rows[l.row].Cell(i)))
		}
	}
	return nil
}

// firstText returns the first text block of a cell.
func firstText(c *model.Cell) string {
	if blocks := c.TextBlocks(); len(blocks) > 0 {
		return textnorm.Clean(blocks[0].Text())
	}
	return ""
}

func (p *MV) Classify(ctx *Context, row layout.Row) (RowKind, error) {
	first := row.First()
	if first == nil {
		return RowSkip, nil
	}
	text := first.Text()
	switch {
	case hasAnyPrefix(text, p.settings.HeaderTokens):
		return RowHeader, nil
	case row.Len() == 1:
		if !textnorm.HasPrefix(text, p.settings.SectionPrefix) {
			return RowSkip, ctx.Mismatch("single-cell row %q is not a location", textnorm.Clean(text))
		}
		return RowSection, nil
	case textnorm.Clean(text) == "":
		return RowContinuation, nil
	default:
		return RowElement, nil
	}
}

func (p *MV) Apply(ctx *Context, kind RowKind, row layout.Row) error {
	switch kind {
	case RowSection:
		name := strings.ToUpper(textnorm.TrimPrefix(row.First().Text(), p.settings.SectionPrefix))
		ctx.OpenSection(name)
		return nil
	case RowElement, RowContinuation:
	default:
		return p.Base.Apply(ctx, kind, row)
	}

	b := ctx.Bucket(row)
	var e *Element
	if kind == RowElement {
		number := strings.ToLower(b.Text(ColNumber))
		if e = ctx.OpenElement(number); e == nil {
			return ctx.Mismatch("element %q outside a location", number)
		}
		e.Fields.Set(ColNumber, number)
	} else if e = ctx.Element(); e == nil {
		return ctx.Mismatch("continuation row without an element")
	}

	set := e.Fields.Set
	if kind == RowContinuation {
		set = e.AppendField
	}
	desc := b.First(ColDescription)
	if desc != nil {
		set(ColDescription, firstText(desc))
		if err := p.measures(ctx, e, desc); err != nil {
			return err
		}
	}
	set(ColRemarks, b.Text(ColRemarks))
	set(ColTools, b.Text(ColTools))
	if status := Status(b.First(ColStatus), p.settings.StatusPalette); status != "" || !e.Fields.Has(ColStatus) {
		e.Fields.Set(ColStatus, status)
	}
	return nil
}

// measures reads the lines under the description text. A line starts with
// the measure name and holds either a value box, Yes/No checkboxes, or
// option labels each followed by a value box.
func (p *MV) measures(ctx *Context, e *Element, desc *model.Cell) error {
	var nodes []model.Node
	skipped := false
	for _, n := range desc.Children {
		if _, ok := n.(*model.TextBlock); ok && !skipped {
			skipped = true
			continue
		}
		nodes = append(nodes, n)
	}

	for _, line := range layout.GroupNodes(nodes, RowConfig(p.settings.Params)) {
		head, ok := line[0].(*model.TextBlock)
		if !ok {
			continue
		}
		name := textnorm.Clean(head.Text())
		if !e.Measures.Has(name) {
			e.Measures.Set(name, Measure{})
		}
		rest := line[1:]
		if len(rest) == 0 {
			continue
		}

		if box, ok := rest[0].(*model.Cell); ok {
			value, unit := SplitSigned(firstText(box))
			e.Measures.Set(name, Measure{Value: value, Unit: unit})
			continue
		}

		if len(rest)%2 != 0 {
			return ctx.Mismatch("measure %q has an option without a box", name)
		}
		opening, ok := rest[0].(*model.TextBlock)
		if !ok {
			continue
		}
		first := textnorm.Fold(opening.Text())
		checkbox := first == "yes" || first == "no"
		var value string
		for i := 0; i < len(rest); i += 2 {
			label, ok1 := rest[i].(*model.TextBlock)
			box, ok2 := rest[i+1].(*model.Cell)
			if !ok1 || !ok2 {
				return ctx.Mismatch("measure %q has an option without a box", name)
			}
			option := textnorm.Clean(label.Text())
			if checkbox {
				if value == "" && Checked(box) {
					value = option
				}
				continue
			}
			e.Measures.Set(strings.ToLower(option), Measure{Value: firstText(box)})
		}
		if checkbox {
			e.Measures.Set(name, Measure{Value: value})
		}
	}
	return nil
}

// Flatten emits one row per element and one per measure, with "N/A" in the
// columns a row kind has no value for.
func (p *MV) Flatten(r *MatchResult) Table {
	columns := p.settings.Output
	if len(columns) != len(MVColumns) {
		columns = MVColumns
	}
	h := r.Header.Value
	head := func(s *Section) []string {
		return []string{h(FieldWTG), h(FieldChecklistName), h(FieldRevisionDate), h(FieldOrderNumber), h(FieldApprovalDate), s.Name}
	}
	t := Table{Columns: columns}
	r.Each(func(s *Section, e *Element) {
		t.Rows = append(t.Rows, append(head(s),
			e.Field(ColDescription), e.Field(ColRemarks), notApplicable, notApplicable, e.Field(ColStatus), "", "", ""))
		for _, name := range e.Measures.Keys() {
			m := e.Measures.Value(name)
			t.Rows = append(t.Rows, append(head(s),
				name, notApplicable, m.Value, m.Unit, notApplicable, "", "", ""))
		}
	})
	return t
}
