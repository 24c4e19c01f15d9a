package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sheetAttr marks the table holding a sheet's rows.
const sheetAttr = "data-sheet"

// HTMLWriter renders rows as an HTML table, one table per sheet. Writing to
// a file that already holds the sheet's table appends to its body.
type HTMLWriter struct {
	// Out, when set, receives a fresh document instead of t.Path.
	Out io.Writer
}

// WriteRows writes rows to t.Path, or to w.Out when set.
func (w *HTMLWriter) WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var doc *html.Node
	if w.Out == nil {
		data, err := os.ReadFile(t.Path)
		if err == nil && len(bytes.TrimSpace(data)) > 0 {
			doc, err = html.Parse(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", t.Path, err)
			}
		}
	}
	if doc == nil {
		doc = newDocument(t.Sheet)
	}

	body := findElement(doc, atom.Body, "")
	if body == nil {
		return fmt.Errorf("%s has no body", t.Path)
	}
	table := findElement(body, atom.Table, t.Sheet)
	if table == nil {
		table = newTable(t.Sheet, columns, !t.NoHeader)
		body.AppendChild(table)
	}
	tbody := findElement(table, atom.Tbody, "")
	if tbody == nil {
		tbody = element(atom.Tbody)
		table.AppendChild(tbody)
	}
	for _, r := range rows {
		tbody.AppendChild(tableRow(atom.Td, pad(r, len(columns))))
	}

	if w.Out != nil {
		return html.Render(w.Out, doc)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(t.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.Path, err)
	}
	return nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func newDocument(title string) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	t := element(atom.Title)
	t.AppendChild(text(title))
	head.AppendChild(t)
	root.AppendChild(head)
	root.AppendChild(element(atom.Body))
	doc.AppendChild(root)
	return doc
}

func newTable(sheet string, columns []string, header bool) *html.Node {
	table := element(atom.Table, html.Attribute{Key: sheetAttr, Val: sheet})
	if sheet != "" {
		caption := element(atom.Caption)
		caption.AppendChild(text(sheet))
		table.AppendChild(caption)
	}
	if header && len(columns) > 0 {
		thead := element(atom.Thead)
		thead.AppendChild(tableRow(atom.Th, columns))
		table.AppendChild(thead)
	}
	table.AppendChild(element(atom.Tbody))
	return table
}

func tableRow(cell atom.Atom, values []string) *html.Node {
	tr := element(atom.Tr)
	for _, v := range values {
		td := element(cell)
		if v != "" {
			td.AppendChild(text(v))
		}
		tr.AppendChild(td)
	}
	return tr
}

// findElement returns the first element of kind a under n, depth-first.
// For tables, sheet must match the table's sheet attribute.
func findElement(n *html.Node, a atom.Atom, sheet string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a && (a != atom.Table || attr(c, sheetAttr) == sheet) {
			return c
		}
		if found := findElement(c, a, sheet); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
