package match

import (
	"fmt"

	"github.com/tsawler/gridmatch/layout"
)

// cursor locates the open section and element by key so it can be carried
// from one page's draft to the next.
type cursor struct {
	section string
	group   string
	element string
	last    RowKind
}

// Context is what a policy sees while one page is matched. Result is a
// draft: it replaces the matcher's result only when the whole page
// succeeds.
type Context struct {
	Page     int
	State    State
	Row      int
	Schema   *Schema
	Result   *MatchResult
	Settings *Settings

	cur cursor
}

// Section returns the open section, or nil.
func (c *Context) Section() *Section {
	if c.cur.section == "" {
		return nil
	}
	return c.Result.Section(c.cur.section)
}

// Group returns the open element group header, or nil.
func (c *Context) Group() *Element {
	s := c.Section()
	if s == nil || c.cur.group == "" {
		return nil
	}
	return s.Element(c.cur.group)
}

// Element returns the open element, or nil.
func (c *Context) Element() *Element {
	s := c.Section()
	if s == nil || c.cur.element == "" {
		return nil
	}
	return s.Element(c.cur.element)
}

// LastKind returns the kind of the previous non-skipped row, which may be on
// an earlier page.
func (c *Context) LastKind() RowKind {
	return c.cur.last
}

// OpenSection makes the named section current, creating it if needed.
func (c *Context) OpenSection(name string) *Section {
	s := c.Result.Section(name)
	if s == nil {
		s = NewSection(name)
		c.Result.Sections.Set(name, s)
	}
	c.cur = cursor{section: name, last: c.cur.last}
	return s
}

// RenameSection gives the open section a new name. It fails when no section
// is open or the name is taken.
func (c *Context) RenameSection(name string) bool {
	s := c.Section()
	if s == nil || !c.Result.Sections.Rename(s.Name, name) {
		return false
	}
	s.Name = name
	c.cur.section = name
	return true
}

// OpenGroup opens an element group under the current section. The group
// header is itself recorded as an element.
func (c *Context) OpenGroup(label string) *Element {
	s := c.Section()
	if s == nil {
		return nil
	}
	id := elementID(label, "")
	e := s.Element(id)
	if e == nil {
		e = NewElement(label, label)
		e.Header = true
		s.Elements.Set(id, e)
	}
	c.cur.group = id
	c.cur.element = id
	return e
}

// OpenElement opens the element with the given key under the current
// section and group. An element seen before, on this page or an earlier
// one, is reopened.
func (c *Context) OpenElement(key string) *Element {
	s := c.Section()
	if s == nil {
		return nil
	}
	var group string
	if g := c.Group(); g != nil {
		group = g.Key
	}
	id := elementID(group, key)
	e := s.Element(id)
	if e == nil {
		e = NewElement(key, group)
		s.Elements.Set(id, e)
	}
	c.cur.element = id
	return e
}

// Bucket sorts the cells of a data row into the schema's columns.
func (c *Context) Bucket(row layout.Row) *Buckets {
	s := c.Settings
	return c.Schema.Bucket(row, s.ColumnTolerance, s.FallbackColumn, s.Columns)
}

// MinCells returns the fewest cells a data row may have.
func (c *Context) MinCells() int {
	if n := c.Settings.MinDataCells; n > 0 {
		return n
	}
	if n := c.Schema.Len(); n > 0 {
		return n
	}
	return len(c.Settings.Columns)
}

// Mismatch returns a FormatMismatch for the row being matched.
func (c *Context) Mismatch(format string, args ...any) *FormatMismatch {
	return &FormatMismatch{
		Page:   c.Page,
		State:  c.State,
		Row:    c.Row,
		Reason: fmt.Sprintf(format, args...),
	}
}
