package match

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch/layout"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/tables"
)

// Matcher walks the composed pages of one document in order and builds its
// MatchResult. A Matcher is not safe for concurrent use.
type Matcher struct {
	policy Policy
	log    logrus.FieldLogger

	state  State
	schema *Schema
	result *MatchResult
	cur    cursor
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSchema seeds the column schema, for documents whose header row sits on
// a page that is not matched.
func WithSchema(s *Schema) Option {
	return func(m *Matcher) {
		m.schema = s.Clone()
	}
}

// WithLogger sets the logger used for per-page progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.log = l
		}
	}
}

// NewMatcher returns a matcher driven by p.
func NewMatcher(p Policy, opts ...Option) *Matcher {
	m := &Matcher{
		policy: p,
		log:    discard(),
		schema: &Schema{},
		result: NewMatchResult(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Policy returns the policy driving the matcher.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// State returns the state after the last committed page.
func (m *Matcher) State() State {
	return m.state
}

// Schema returns a copy of the current column schema.
func (m *Matcher) Schema() *Schema {
	return m.schema.Clone()
}

// Result returns the result committed so far. Each committed page replaces
// the result with a new value, so a returned result is never modified
// afterwards and must be treated as read-only.
func (m *Matcher) Result() *MatchResult {
	return m.result
}

// Rows flattens the committed result with the policy's output schema.
func (m *Matcher) Rows() [][]string {
	return m.policy.Flatten(m.result).Rows
}

// MatchPage groups the forest of one page into rows and feeds them to the
// policy. The page is applied atomically: on error the result, state and
// schema are left as they were before the call.
func (m *Matcher) MatchPage(page int, params tables.Params, forest []*model.Cell) error {
	start := time.Now()
	settings := m.policy.Settings()
	ctx := &Context{
		Page:     page,
		State:    m.state,
		Schema:   m.schema.Clone(),
		Result:   m.result.Clone(),
		Settings: settings,
		cur:      m.cur,
	}

	rows, err := m.policy.Prepare(ctx, layout.GroupRows(forest, RowConfig(params)))
	if err != nil {
		return err
	}

	for i, row := range rows {
		ctx.Row = i
		kind, err := m.policy.Classify(ctx, row)
		if err != nil {
			return err
		}
		next, ok := Transition(ctx.State, kind)
		if !ok {
			return ctx.Mismatch("%s row not allowed", kind)
		}
		switch kind {
		case RowSkip:
			continue
		case RowHeader:
			ctx.Schema.Learn(row, settings.Columns)
		case RowElement, RowContinuation:
			if row.Len() < ctx.MinCells() {
				return ctx.Mismatch("%s row has %d cells, want at least %d", kind, row.Len(), ctx.MinCells())
			}
			if err := m.policy.Apply(ctx, kind, row); err != nil {
				return err
			}
		default:
			if err := m.policy.Apply(ctx, kind, row); err != nil {
				return err
			}
		}
		ctx.State = next
		ctx.cur.last = kind
	}

	m.result = ctx.Result
	m.state = ctx.State
	m.schema = ctx.Schema
	m.cur = ctx.cur

	m.log.WithFields(logrus.Fields{
		"page":    page,
		"state":   m.state.String(),
		"rows":    len(rows),
		"elapsed": time.Since(start).String(),
	}).Debug("page matched")
	return nil
}
