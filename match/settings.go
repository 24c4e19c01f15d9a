package match

import (
	"fmt"

	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

// Settings are the calibration knobs a policy works with. Profiles loaded
// by the config package fill them in; each policy has its own defaults.
type Settings struct {
	// Layout parameters for every page, with per-page replacements
	Params    tables.Params
	Overrides map[int]tables.Params

	// UnderflowTol replaces the position tolerance on pages that draw
	// outside their media box (0 disables)
	UnderflowTol float64

	Markers []layout.MarkerRule

	// Row classification
	Palette         Palette
	StatusPalette   Palette
	HeaderTokens    []string // first cell of a header row starts with one
	ElementToken    string   // any cell of an element-header row starts with it
	SectionPrefix   string   // first cell of a section row starts with it
	SectionMaxCells int      // 0 means any
	ElementMaxCells int      // 0 means any
	MinDataCells    int      // 0 means the learned column count
	SkipSingleCells bool     // single-cell data rows are skipped
	MergeSections   bool     // consecutive section rows form one name

	// Column bucketing
	Columns         []string
	ColumnTolerance float64
	FallbackColumn  string

	// Page framing
	TrimTop       int
	TrimBottom    int
	SkipPageToken string

	// HeaderLabels maps first-page labels to header field names.
	HeaderLabels map[string]string

	// Output column order
	Output []string
}

// DefaultSettings returns the settings of the generic policy.
func DefaultSettings() *Settings {
	return &Settings{
		Params:          tables.DefaultParams(),
		Palette:         RowPalette(),
		StatusPalette:   StatusPalette(),
		MergeSections:   true,
		ColumnTolerance: 10,
		FallbackColumn:  "description",
	}
}

// ParamsFor returns the layout parameters for a page.
func (s *Settings) ParamsFor(page *model.Page) tables.Params {
	p, ok := s.Overrides[page.Number]
	if !ok {
		p = s.Params
	}
	if s.UnderflowTol > 0 && page.OutOfBounds() > 0 {
		p.PositionTol = s.UnderflowTol
	}
	return p
}

// RowConfig returns the row grouping configuration for a set of layout
// parameters.
func RowConfig(p tables.Params) layout.RowConfig {
	return layout.RowConfig{PositionTol: p.PositionTol, Overlap: p.VerticalOverlap}
}

// Validate checks the settings for values no page could be matched with.
func (s *Settings) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	for page, p := range s.Overrides {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
	}
	if len(s.Palette) == 0 {
		return fmt.Errorf("empty row palette")
	}
	if s.ColumnTolerance < 0 {
		return fmt.Errorf("column tolerance must not be negative: %v", s.ColumnTolerance)
	}
	if s.TrimTop < 0 || s.TrimBottom < 0 {
		return fmt.Errorf("row trims must not be negative: %d/%d", s.TrimTop, s.TrimBottom)
	}
	return nil
}

// Clone returns a copy that can be modified without affecting s.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Overrides = make(map[int]tables.Params, len(s.Overrides))
	for k, v := range s.Overrides {
		out.Overrides[k] = v
	}
	out.Markers = append([]layout.MarkerRule(nil), s.Markers...)
	out.Palette = append(Palette(nil), s.Palette...)
	out.StatusPalette = append(Palette(nil), s.StatusPalette...)
	out.Columns = append([]string(nil), s.Columns...)
	out.HeaderTokens = append([]string(nil), s.HeaderTokens...)
	out.Output = append([]string(nil), s.Output...)
	out.HeaderLabels = make(map[string]string, len(s.HeaderLabels))
	for k, v := range s.HeaderLabels {
		out.HeaderLabels[k] = v
	}
	return &out
}
