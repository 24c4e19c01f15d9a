package match

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/tables"
)

// PreventiveName is the registry name of the preventive maintenance policy.
const PreventiveName = "preventive"

// Header fields of a preventive checklist.
const (
	FieldYear                = "YearAnnualService"
	FieldCode                = "Code"
	FieldDate                = "Date"
	FieldRevision            = "Revision"
	FieldWTG                 = "WTG"
	FieldBeginningDate       = "BeginningDate"
	FieldOperationalHours    = "OperationalHours"
	FieldFinishDate          = "FinishDate"
	FieldShutdownHours       = "ShutdownHours"
	FieldSignatureSGRE       = "SignatureSGRE"
	FieldSignatureThirdParty = "SignatureThirdParty"
)

// Task list columns of a preventive checklist.
const (
	ColTDCode      = "TD Code"
	ColCheckpoint  = "Checkpoint"
	ColResult      = "Result"
	ColComment     = "Comment"
	ColMORS        = "MORS Case ID"
	ColMeasurement = "Measurement"
	ColUnit        = "Unit"
	ColMin         = "Min"
	ColMax         = "Max"
)

// PreventiveColumns is the output schema of the preventive policy.
var PreventiveColumns = []string{
	"WTG",
	"Year Annual Service",
	"Beginning Date",
	"Finish Date",
	"Checklist Code",
	"Revision",
	"Checklist Rev Date",
	"Signature SGRE site manager",
	"Signature 3rd Party site manager",
	"WTG Section",
	"Task Description Code/Name",
	"Task Code",
	"Task Description",
	"Status acc. Doc. / Result",
	"Fault/Observation Description",
	"Mors Case ID",
	"Measurement",
	"Unit",
	"Min",
	"Max",
	"*DNV-GL Possible issue",
	"Current Status",
	"Comment",
}

var preventiveHeader = []string{
	FieldYear, FieldCode, FieldDate, FieldRevision, FieldWTG, FieldBeginningDate,
	FieldOperationalHours, FieldFinishDate, FieldShutdownHours,
}

// PreventiveSettings returns the default calibration for preventive
// maintenance checklists. The first page is a form with small boxes and
// uses a tighter tolerance.
func PreventiveSettings() *Settings {
	s := DefaultSettings()
	s.Params = tables.Params{
		PositionTol:     5,
		DirectionTol:    1e-6,
		MinRectWidth:    6,
		MinRectHeight:   6,
		MinLineLength:   6,
		VerticalOverlap: 0.55,
	}
	first := s.Params
	first.PositionTol = 3
	first.MinRectWidth, first.MinRectHeight, first.MinLineLength = 0, 0, 0
	s.Overrides = map[int]tables.Params{1: first}

	s.HeaderTokens = []string{"td code", "comment"}
	s.ElementToken = "tech"
	s.SectionMaxCells = 1
	s.ElementMaxCells = 4
	s.MinDataCells = 6
	s.SkipSingleCells = true
	s.MergeSections = true

	s.Columns = []string{ColTDCode, ColCheckpoint, ColResult, ColComment, ColMORS, ColMeasurement, ColUnit, ColMin, ColMax}
	s.FallbackColumn = ColCheckpoint
	s.HeaderLabels = map[string]string{
		"code":               FieldCode,
		"date":               FieldDate,
		"rev":                FieldRevision,
		"wtg":                FieldWTG,
		"beginning date":     FieldBeginningDate,
		"operational hours":  FieldOperationalHours,
		"operationnal hours": FieldOperationalHours,
		"finish date":        FieldFinishDate,
		"shut-down hours":    FieldShutdownHours,
		"signature of sgre":  FieldSignatureSGRE,
		"signature of 3rd":   FieldSignatureThirdParty,
	}
	s.Output = append([]string(nil), PreventiveColumns...)
	return s
}

// Preventive matches preventive maintenance checklists: green section rows,
// blue task description rows and task code rows under a "TD Code" header,
// or positional block rows under a "Comments" header.
type Preventive struct {
	Base
}

// NewPreventive returns the preventive policy.
func NewPreventive(s *Settings) Policy {
	return &Preventive{Base{name: PreventiveName, settings: s}}
}

// Prepare reads the header fields of the first page. The first page has no
// task rows.
func (p *Preventive) Prepare(ctx *Context, rows []layout.Row) ([]layout.Row, error) {
	if ctx.Page != 1 {
		return p.Base.Prepare(ctx, rows)
	}
	return nil, p.header(ctx, rows)
}

func (p *Preventive) header(ctx *Context, rows []layout.Row) error {
	h := ctx.Result.Header
	for _, f := range preventiveHeader {
		h.Set(f, "")
	}
	h.Set(FieldSignatureSGRE, "false")
	h.Set(FieldSignatureThirdParty, "false")

	// The title row sits below the logo row.
	if len(rows) < 2 || rows[1].First() == nil {
		return ctx.Mismatch("first page has %d rows, want a title row", len(rows))
	}
	h.Set(FieldYear, textnorm.Clean(rows[1].First().Text()))

	for i, row := range rows {
		ctx.Row = i
		for j := 0; j < row.Len(); j++ {
			field, ok := lookupLabel(row.Cell(j).Text(), p.settings.HeaderLabels)
			if !ok {
				continue
			}
			next := row.Cell(j + 1)
			if strings.HasPrefix(field, "Signature") {
				h.Set(field, strconv.FormatBool(Checked(next)))
			} else if next != nil {
				h.Set(field, textnorm.Clean(next.Text()))
			}
			j++
		}
	}
	return nil
}

// lookupLabel returns the field of the longest label the text starts with.
func lookupLabel(text string, labels map[string]string) (string, bool) {
	folded := strings.Trim(textnorm.Fold(text), " .:")
	if folded == "" {
		return "", false
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		if strings.HasPrefix(folded, textnorm.Fold(k)) {
			return labels[k], true
		}
	}
	return "", false
}

// Classify skips short white rows and treats rows under a block header as
// elements even when their first cell is blank.
func (p *Preventive) Classify(ctx *Context, row layout.Row) (RowKind, error) {
	kind, err := p.Base.Classify(ctx, row)
	if err != nil || (kind != RowElement && kind != RowContinuation) {
		return kind, err
	}
	if row.Len() < p.settings.MinDataCells {
		return RowSkip, nil
	}
	if !ctx.Schema.Has(ColTDCode) {
		return RowElement, nil
	}
	return kind, nil
}

func (p *Preventive) Apply(ctx *Context, kind RowKind, row layout.Row) error {
	if kind != RowElement {
		return p.Base.Apply(ctx, kind, row)
	}
	if ctx.Group() == nil {
		return ctx.Mismatch("task code row outside a task description")
	}
	b := ctx.Bucket(row)
	key := b.Text(ColTDCode)
	if !ctx.Schema.Has(ColTDCode) {
		empty := true
		for _, col := range b.Columns() {
			if b.Text(col) != "" {
				empty = false
				break
			}
		}
		if empty {
			return nil
		}
		key = strconv.Itoa(members(ctx.Section(), ctx.Group()))
	}
	fill(ctx.OpenElement(key), b, false)
	return nil
}

// members counts the elements of a group.
func members(s *Section, g *Element) int {
	n := 0
	for _, e := range s.Elements.Values() {
		if !e.Header && e.Group == g.Key {
			n++
		}
	}
	return n
}

// Flatten emits one row per task code.
func (p *Preventive) Flatten(r *MatchResult) Table {
	columns := p.settings.Output
	if len(columns) != len(PreventiveColumns) {
		columns = PreventiveColumns
	}
	h := r.Header.Value
	t := Table{Columns: columns}
	r.Each(func(s *Section, e *Element) {
		if e.Header {
			return
		}
		t.Rows = append(t.Rows, []string{
			h(FieldWTG),
			h(FieldYear),
			h(FieldBeginningDate),
			h(FieldFinishDate),
			h(FieldCode),
			h(FieldRevision),
			h(FieldDate),
			signature(h(FieldSignatureSGRE)),
			signature(h(FieldSignatureThirdParty)),
			s.Name,
			e.Group,
			e.Field(ColTDCode),
			e.Field(ColCheckpoint),
			e.Field(ColResult),
			e.Field(ColComment),
			e.Field(ColMORS),
			e.Field(ColMeasurement),
			e.Field(ColUnit),
			e.Field(ColMin),
			e.Field(ColMax),
			"", "", "",
		})
	})
	return t
}

func signature(v string) string {
	if ok, _ := strconv.ParseBool(v); ok {
		return "OK"
	}
	return "NO OK"
}
