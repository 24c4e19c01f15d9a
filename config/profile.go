package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/match"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

// Profile is the calibration of one document type. Every field maps onto
// match.Settings.
type Profile struct {
	// Base names the profile this one starts from (defaults to the profile
	// of the same name, else "generic")
	Base string `yaml:"base,omitempty"`

	// Policy is the registered matching policy (defaults to Base's)
	Policy string `yaml:"policy"`

	Description string `yaml:"description,omitempty"`

	// Layout tolerances, with per-page replacements
	Params       tables.Params `yaml:"params"`
	Pages        []PageRule    `yaml:"pages"`
	UnderflowTol float64       `yaml:"underflow_tol"`

	Markers       []Marker    `yaml:"markers"`
	Palette       []Reference `yaml:"palette"`
	StatusPalette []Reference `yaml:"status_palette"`

	HeaderTokens    []string `yaml:"header_tokens"`
	ElementToken    string   `yaml:"element_token"`
	SectionPrefix   string   `yaml:"section_prefix"`
	SectionMaxCells int      `yaml:"section_max_cells"`
	ElementMaxCells int      `yaml:"element_max_cells"`
	MinDataCells    int      `yaml:"min_data_cells"`
	SkipSingleCells bool     `yaml:"skip_single_cells"`
	MergeSections   bool     `yaml:"merge_sections"`

	Columns         []string `yaml:"columns"`
	ColumnTolerance float64  `yaml:"column_tolerance"`
	FallbackColumn  string   `yaml:"fallback_column"`

	TrimTop       int    `yaml:"trim_top"`
	TrimBottom    int    `yaml:"trim_bottom"`
	SkipPageToken string `yaml:"skip_page_token"`

	HeaderLabels  map[string]string `yaml:"header_labels"`
	OutputColumns []string          `yaml:"output_columns"`
}

// PageRule replaces layout tolerances on some pages. Params lists only the
// tolerances that differ from the profile's; the rest are inherited.
type PageRule struct {
	Pages  []int     `yaml:"pages"`
	Params yaml.Node `yaml:"params"`
}

// Marker selects stroked lines drawing status marks.
type Marker struct {
	Color     Color   `yaml:"color"`
	Tolerance float64 `yaml:"tolerance"`
}

// Reference is a named palette color.
type Reference struct {
	Name  string `yaml:"name"`
	Color Color  `yaml:"color"`
}

// Color is a color in YAML: "#b3ffb3", an SVG color name ("green"), a gray
// level (0.5) or an [r, g, b] list with components in [0, 1].
type Color model.Color

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var level float64
		if n.Tag == "!!float" || n.Tag == "!!int" {
			if err := n.Decode(&level); err != nil {
				return err
			}
			if level < 0 || level > 1 {
				return fmt.Errorf("line %d: gray level %v outside [0, 1]", n.Line, level)
			}
			*c = Color(model.Gray(level))
			return nil
		}
		parsed, err := model.ParseColor(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		*c = Color(parsed)
		return nil

	case yaml.SequenceNode:
		var rgb []float64
		if err := n.Decode(&rgb); err != nil {
			return err
		}
		if len(rgb) != 3 {
			return fmt.Errorf("line %d: color needs 3 components, got %d", n.Line, len(rgb))
		}
		for _, v := range rgb {
			if v < 0 || v > 1 {
				return fmt.Errorf("line %d: color component %v outside [0, 1]", n.Line, v)
			}
		}
		*c = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		return nil
	}
	return fmt.Errorf("line %d: invalid color", n.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (interface{}, error) {
	return model.Color(c).Hex(), nil
}

// FromSettings describes settings as a profile of the given policy.
func FromSettings(policy string, s *match.Settings) (*Profile, error) {
	p := &Profile{
		Policy:          policy,
		Params:          s.Params,
		UnderflowTol:    s.UnderflowTol,
		HeaderTokens:    append([]string(nil), s.HeaderTokens...),
		ElementToken:    s.ElementToken,
		SectionPrefix:   s.SectionPrefix,
		SectionMaxCells: s.SectionMaxCells,
		ElementMaxCells: s.ElementMaxCells,
		MinDataCells:    s.MinDataCells,
		SkipSingleCells: s.SkipSingleCells,
		MergeSections:   s.MergeSections,
		Columns:         append([]string(nil), s.Columns...),
		ColumnTolerance: s.ColumnTolerance,
		FallbackColumn:  s.FallbackColumn,
		TrimTop:         s.TrimTop,
		TrimBottom:      s.TrimBottom,
		SkipPageToken:   s.SkipPageToken,
		OutputColumns:   append([]string(nil), s.Output...),
	}
	for _, m := range s.Markers {
		p.Markers = append(p.Markers, Marker{Color: Color(m.Color), Tolerance: m.Tolerance})
	}
	p.Palette = references(s.Palette)
	p.StatusPalette = references(s.StatusPalette)
	if len(s.HeaderLabels) > 0 {
		p.HeaderLabels = make(map[string]string, len(s.HeaderLabels))
		for k, v := range s.HeaderLabels {
			p.HeaderLabels[k] = v
		}
	}

	pages := make([]int, 0, len(s.Overrides))
	for page := range s.Overrides {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	for _, page := range pages {
		rule := PageRule{Pages: []int{page}}
		if err := rule.Params.Encode(s.Overrides[page]); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		p.Pages = append(p.Pages, rule)
	}
	return p, nil
}

func references(p match.Palette) []Reference {
	out := make([]Reference, len(p))
	for i, ref := range p {
		out[i] = Reference{Name: ref.Name, Color: Color(ref.Color)}
	}
	return out
}

func palette(refs []Reference) match.Palette {
	out := make(match.Palette, len(refs))
	for i, ref := range refs {
		out[i] = match.Reference{Name: ref.Name, Color: model.Color(ref.Color)}
	}
	return out
}

// Settings turns the profile into validated matcher settings.
func (p *Profile) Settings() (*match.Settings, error) {
	s := &match.Settings{
		Params:          p.Params,
		UnderflowTol:    p.UnderflowTol,
		Palette:         palette(p.Palette),
		StatusPalette:   palette(p.StatusPalette),
		HeaderTokens:    append([]string(nil), p.HeaderTokens...),
		ElementToken:    p.ElementToken,
		SectionPrefix:   p.SectionPrefix,
		SectionMaxCells: p.SectionMaxCells,
		ElementMaxCells: p.ElementMaxCells,
		MinDataCells:    p.MinDataCells,
		SkipSingleCells: p.SkipSingleCells,
		MergeSections:   p.MergeSections,
		Columns:         append([]string(nil), p.Columns...),
		ColumnTolerance: p.ColumnTolerance,
		FallbackColumn:  p.FallbackColumn,
		TrimTop:         p.TrimTop,
		TrimBottom:      p.TrimBottom,
		SkipPageToken:   p.SkipPageToken,
		Output:          append([]string(nil), p.OutputColumns...),
	}
	for _, m := range p.Markers {
		s.Markers = append(s.Markers, layout.MarkerRule{Color: model.Color(m.Color), Tolerance: m.Tolerance})
	}
	if len(p.HeaderLabels) > 0 {
		s.HeaderLabels = make(map[string]string, len(p.HeaderLabels))
		for k, v := range p.HeaderLabels {
			s.HeaderLabels[k] = v
		}
	}

	for i, rule := range p.Pages {
		params := p.Params
		if rule.Params.Kind != 0 {
			if err := rule.Params.Decode(&params); err != nil {
				return nil, fmt.Errorf("page rule %d: %w", i+1, err)
			}
		}
		for _, page := range rule.Pages {
			if page < 1 {
				return nil, fmt.Errorf("page rule %d: invalid page number %d", i+1, page)
			}
			if s.Overrides == nil {
				s.Overrides = make(map[int]tables.Params)
			}
			s.Overrides[page] = params
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPolicy builds the profile's matching policy.
func (p *Profile) NewPolicy() (match.Policy, error) {
	s, err := p.Settings()
	if err != nil {
		return nil, err
	}
	return match.NewPolicy(p.Policy, s)
}

// clone returns a deep copy of p.
func (p *Profile) clone() *Profile {
	out := *p
	out.Pages = append([]PageRule(nil), p.Pages...)
	out.Markers = append([]Marker(nil), p.Markers...)
	out.Palette = append([]Reference(nil), p.Palette...)
	out.StatusPalette = append([]Reference(nil), p.StatusPalette...)
	out.HeaderTokens = append([]string(nil), p.HeaderTokens...)
	out.Columns = append([]string(nil), p.Columns...)
	out.OutputColumns = append([]string(nil), p.OutputColumns...)
	if p.HeaderLabels != nil {
		out.HeaderLabels = make(map[string]string, len(p.HeaderLabels))
		for k, v := range p.HeaderLabels {
			out.HeaderLabels[k] = v
		}
	}
	return &out
}
