package gridmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch/batch"
	"github.com/tsawler/gridmatch/classify"
	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/match"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/source"
)

// DocumentError is the failure of one document in a batch.
type DocumentError = batch.DocumentError

// Warning is a non-fatal issue found while matching a page.
type Warning struct {
	Page    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings joins warnings into one line each.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Document is the outcome of matching one document.
type Document struct {
	Type    classify.DocType
	Profile string
	Pages   int // pages matched

	Result  *match.MatchResult
	Columns []string
	Rows    [][]string

	Warnings []Warning
}

// Run matches the pages of one document in order. It is forward-only: each
// call to Next reads and matches exactly one page. Stopping early leaves the
// result of the pages matched so far. A Run is not safe for concurrent use.
type Run struct {
	ctx     context.Context
	src     source.PageSource
	owned   bool
	pending *model.Page

	docType classify.DocType
	profile string
	matcher *match.Matcher
	log     logrus.FieldLogger

	keepGoing bool
	warnings  []Warning

	page    *model.Page
	pages   int
	err     error
	done    bool
	started time.Time
}

// Next matches the next selected page. It returns false when the document
// is exhausted or matching failed; Err tells which.
func (r *Run) Next() bool {
	if r.done {
		return false
	}

	page, err := r.read()
	if err != nil {
		r.finish(err)
		return false
	}
	r.page = page

	settings := r.matcher.Policy().Settings()
	if n := page.OutOfBounds(); n > 0 {
		r.log.WithFields(logrus.Fields{
			"page":       page.Number,
			"primitives": n,
		}).Warn("primitives outside the page origin")
	}
	params := settings.ParamsFor(page)
	forest := layout.ComposePage(page, layout.Options{Params: params, Markers: settings.Markers})

	err = r.matcher.MatchPage(page.Number, params, forest)
	var fm *match.FormatMismatch
	switch {
	case err == nil:
		r.pages++
	case r.keepGoing && errors.As(err, &fm):
		r.warnings = append(r.warnings, Warning{Page: page.Number, Message: fm.Error()})
		r.log.WithFields(logrus.Fields{
			"page":   page.Number,
			"state":  fm.State.String(),
			"row":    fm.Row,
			"reason": fm.Reason,
		}).Warn("page skipped")
	default:
		r.finish(err)
		return false
	}
	return true
}

func (r *Run) read() (*model.Page, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	if p := r.pending; p != nil {
		r.pending = nil
		return p, nil
	}
	return r.src.Next(r.ctx)
}

func (r *Run) finish(err error) {
	r.done = true
	if !errors.Is(err, io.EOF) {
		r.err = err
		return
	}
	r.log.WithFields(logrus.Fields{
		"pages":    r.pages,
		"elements": r.matcher.Result().Elements(),
		"warnings": len(r.warnings),
		"elapsed":  time.Since(r.started).String(),
	}).Info("document matched")
}

// Err returns the error that stopped the run, or nil at the end of the
// document.
func (r *Run) Err() error {
	return r.err
}

// Page returns the page read by the last call to Next.
func (r *Run) Page() *model.Page {
	return r.page
}

// Type returns the document type.
func (r *Run) Type() classify.DocType {
	return r.docType
}

// Result returns the result of the pages matched so far. It must be treated
// as read-only.
func (r *Run) Result() *match.MatchResult {
	return r.matcher.Result()
}

// Warnings returns the pages skipped so far.
func (r *Run) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}

// Document flattens the result matched so far.
func (r *Run) Document() *Document {
	t := r.matcher.Policy().Flatten(r.matcher.Result())
	return &Document{
		Type:     r.docType,
		Profile:  r.profile,
		Pages:    r.pages,
		Result:   r.matcher.Result(),
		Columns:  t.Columns,
		Rows:     t.Rows,
		Warnings: r.Warnings(),
	}
}

// Close releases the page source. It is safe to call Close multiple times.
func (r *Run) Close() error {
	r.done = true
	if !r.owned || r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	return err
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
