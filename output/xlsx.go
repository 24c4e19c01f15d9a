package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter appends rows to a worksheet of an Excel workbook, creating the
// workbook and the sheet when they do not exist. The header goes at the
// start cell when nothing has been written at or below it yet; otherwise
// rows are appended after the last used row.
type XLSXWriter struct{}

// WriteRows writes rows to t.Path.
func (w *XLSXWriter) WriteRows(ctx context.Context, t Target, columns []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	col, row, err := ParseCellRef(t.Cell)
	if err != nil {
		return err
	}
	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}

	f, created, err := openWorkbook(t.Path, t.Template)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ensureSheet(f, sheet, created); err != nil {
		return err
	}

	existing, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	next := row
	if last := lastUsedRow(existing, row, col); last >= 0 {
		next = last + 1
	} else if !t.NoHeader && len(columns) > 0 {
		if err := setRow(f, sheet, col, next, columns); err != nil {
			return err
		}
		next++
	}

	for _, r := range rows {
		if err := setRow(f, sheet, col, next, r); err != nil {
			return err
		}
		next++
	}

	if err := f.SaveAs(t.Path); err != nil {
		return fmt.Errorf("failed to save %s: %w", t.Path, err)
	}
	return nil
}

// openWorkbook opens path, or creates it from template (or empty).
func openWorkbook(path, template string) (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	if template == "" {
		return excelize.NewFile(), true, nil
	}
	f, err = excelize.OpenFile(template)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open template %s: %w", template, err)
	}
	return f, false, nil
}

// ensureSheet adds sheet when missing. A freshly created workbook has its
// default sheet renamed instead.
func ensureSheet(f *excelize.File, sheet string, created bool) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}
	if idx >= 0 {
		return nil
	}
	if created {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return nil
}

// lastUsedRow returns the index of the last row at or below fromRow holding
// a value at or right of fromCol, or -1.
func lastUsedRow(rows [][]string, fromRow, fromCol int) int {
	for r := len(rows) - 1; r >= fromRow; r-- {
		for c := fromCol; c < len(rows[r]); c++ {
			if rows[r][c] != "" {
				return r
			}
		}
	}
	return -1
}

func setRow(f *excelize.File, sheet string, col, row int, values []string) error {
	if row >= MaxRows {
		return fmt.Errorf("sheet %s is full", sheet)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, FormatCellRef(col, row), &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row+1, err)
	}
	return nil
}
