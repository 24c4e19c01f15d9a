package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultTable receives rows when the target names no sheet.
const DefaultTable = "gridmatch_rows"

// Conn is the part of *pgx.Conn the PostgreSQL writer needs.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresWriter bulk-loads rows into a table named after the sheet, with
// one text column per output column. The table is created when missing.
type PostgresWriter struct {
	// Conn is used when set; otherwise each call connects to t.Path.
	Conn Conn
}

// WriteRows copies rows into the target table.
func (w *PostgresWriter) WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error {
	if len(columns) == 0 {
		return fmt.Errorf("postgres: no columns")
	}

	conn := w.Conn
	if conn == nil {
		c, err := pgx.Connect(ctx, t.Path)
		if err != nil {
			return fmt.Errorf("postgres: failed to connect: %w", err)
		}
		defer c.Close(context.Background())
		conn = c
	}

	table := pgx.Identifier{TableName(t.Sheet)}
	if _, err := conn.Exec(ctx, CreateTableSQL(table, columns)); err != nil {
		return fmt.Errorf("postgres: failed to create table %s: %w", table.Sanitize(), err)
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		r = pad(r, len(columns))
		row := make([]any, len(columns))
		for j := range columns {
			row[j] = r[j]
		}
		values[i] = row
	}
	n, err := conn.CopyFrom(ctx, table, columns, pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("postgres: failed to copy rows into %s: %w", table.Sanitize(), err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("postgres: copied %d of %d rows into %s", n, len(rows), table.Sanitize())
	}
	return nil
}

// TableName turns a sheet name into a table name: lower case, runs of
// anything but letters and digits collapsed to "_".
func TableName(sheet string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(sheet)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		return DefaultTable
	}
	return name
}

// CreateTableSQL returns the statement creating table with text columns.
func CreateTableSQL(table pgx.Identifier, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pgx.Identifier{c}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table.Sanitize(), strings.Join(defs, ", "))
}
