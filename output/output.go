// Package output writes flattened document rows to tabular sinks: Excel
// workbooks, CSV files, HTML tables and PostgreSQL tables.
//
// Every sink implements Writer. Rows are written at a start cell given as
// an A1-style reference; sinks that have no cells (HTML, PostgreSQL) ignore
// it.
package output

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Target says where a Writer puts rows.
type Target struct {
	// Path is a file path, or a connection string for PostgreSQL.
	Path string
	// Sheet names the worksheet, HTML caption or database table.
	Sheet string
	// Cell is the A1-style start cell ("" means A1).
	Cell string
	// NoHeader suppresses the header row, for templates that carry their own.
	NoHeader bool
	// Template is copied to Path before the first write when Path does not
	// exist yet (XLSX only).
	Template string
}

// Writer writes a block of rows under a header of column names.
type Writer interface {
	WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error
}

// Format names a sink.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatPostgres Format = "postgres"
)

// FormatFor guesses the sink from a target path.
func FormatFor(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return FormatPostgres
	}
	switch filepath.Ext(lower) {
	case ".csv":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatXLSX
	}
}

// New returns the writer for a format.
func New(format Format) (Writer, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatXLSX:
		return &XLSXWriter{}, nil
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatHTML:
		return &HTMLWriter{}, nil
	case FormatPostgres, "postgresql", "pg":
		return &PostgresWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type locked struct {
	mu sync.Mutex
	w  Writer
}

// Locked serializes calls to w, for writers shared by concurrent documents
// appending to one file.
func Locked(w Writer) Writer {
	return &locked{w: w}
}

func (l *locked) WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteRows(ctx, t, columns, rows)
}

// pad returns row widened to n cells.
func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
