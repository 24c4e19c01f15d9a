package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVWriter appends rows to a CSV file. A new or empty file gets the header
// first. The start cell offsets the block: its row index adds leading empty
// records to a new file and its column index adds leading empty fields to
// every record.
type CSVWriter struct {
	// Comma is the field delimiter (',' when zero).
	Comma rune
	// Out, when set, receives the output instead of t.Path. Only the first
	// block written to it gets a header.
	Out io.Writer

	started bool
}

// WriteRows writes rows to t.Path, or to w.Out when set.
func (w *CSVWriter) WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	col, row, err := ParseCellRef(t.Cell)
	if err != nil {
		return err
	}

	out := w.Out
	fresh := !w.started
	if out == nil {
		fresh = true
		if info, err := os.Stat(t.Path); err == nil && info.Size() > 0 {
			fresh = false
		}
		f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", t.Path, err)
		}
		defer f.Close()
		out = f
	}

	cw := csv.NewWriter(out)
	if w.Comma != 0 {
		cw.Comma = w.Comma
	}
	width := len(columns)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	record := func(values []string) []string {
		rec := make([]string, col, col+width)
		return append(rec, pad(values, width)...)
	}

	if fresh {
		for i := 0; i < row; i++ {
			if err := cw.Write(make([]string, col+width)); err != nil {
				return err
			}
		}
		if !t.NoHeader && len(columns) > 0 {
			if err := cw.Write(record(columns)); err != nil {
				return err
			}
		}
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	w.started = w.Out != nil
	return nil
}
