package match

import "strings"

// Measure is a named value recorded under an element, with its unit when
// the source printed one.
type Measure struct {
	Value string
	Unit  string
}

// Element is one matched item of a section: its column fields and its
// measures, both in the order they were first seen.
type Element struct {
	Key string

	// Group is the label of the element header the element was matched
	// under, if any.
	Group string

	// Header marks an element opened by an element-header row.
	Header bool

	Fields   *Ordered[string]
	Measures *Ordered[Measure]
}

// NewElement returns an empty element.
func NewElement(key, group string) *Element {
	return &Element{
		Key:      key,
		Group:    group,
		Fields:   NewOrdered[string](),
		Measures: NewOrdered[Measure](),
	}
}

// Field returns the value of a field, or "".
func (e *Element) Field(name string) string {
	return e.Fields.Value(name)
}

// AppendField extends a field with more text, separated by a space.
func (e *Element) AppendField(name, value string) {
	if value == "" {
		return
	}
	if old := e.Fields.Value(name); old != "" {
		value = old + " " + value
	}
	e.Fields.Set(name, value)
}

func (e *Element) clone() *Element {
	out := *e
	out.Fields = e.Fields.clone(nil)
	out.Measures = e.Measures.clone(nil)
	return &out
}

// Section is a named group of elements.
type Section struct {
	Name     string
	Elements *Ordered[*Element]
}

// NewSection returns an empty section.
func NewSection(name string) *Section {
	return &Section{Name: name, Elements: NewOrdered[*Element]()}
}

// Element returns the element stored under id.
func (s *Section) Element(id string) *Element {
	return s.Elements.Value(id)
}

func (s *Section) clone() *Section {
	return &Section{Name: s.Name, Elements: s.Elements.clone((*Element).clone)}
}

// MatchResult is the structured data extracted from one document: scalar
// header fields from the first page and the ordered section tree.
type MatchResult struct {
	Header   *Ordered[string]
	Sections *Ordered[*Section]
}

// NewMatchResult returns an empty result.
func NewMatchResult() *MatchResult {
	return &MatchResult{
		Header:   NewOrdered[string](),
		Sections: NewOrdered[*Section](),
	}
}

// Section returns the section with the given name.
func (r *MatchResult) Section(name string) *Section {
	return r.Sections.Value(name)
}

// Elements returns the number of elements across all sections.
func (r *MatchResult) Elements() int {
	n := 0
	for _, s := range r.Sections.Values() {
		n += s.Elements.Len()
	}
	return n
}

// Clone returns a deep copy.
func (r *MatchResult) Clone() *MatchResult {
	return &MatchResult{
		Header:   r.Header.clone(nil),
		Sections: r.Sections.clone((*Section).clone),
	}
}

// elementID keys an element inside its section. Elements with the same key
// under different groups stay distinct.
func elementID(group, key string) string {
	if group == "" {
		return key
	}
	return group + "\x1f" + key
}

func joinName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Each calls fn for every element in document order, skipping element
// headers whose group has members.
func (r *MatchResult) Each(fn func(*Section, *Element)) {
	for _, s := range r.Sections.Values() {
		grouped := make(map[string]bool)
		for _, e := range s.Elements.Values() {
			if !e.Header && e.Group != "" {
				grouped[e.Group] = true
			}
		}
		for _, e := range s.Elements.Values() {
			if e.Header && grouped[e.Key] {
				continue
			}
			fn(s, e)
		}
	}
}
