package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCellRef is returned for cell references that are not of the
// form "B3".
var ErrInvalidCellRef = errors.New("invalid cell reference")

// Worksheet limits.
const (
	MaxColumns = 16384
	MaxRows    = 1048576
)

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and
// row indices (0-indexed). An empty reference means "A1".
func ParseCellRef(ref string) (col, row int, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, 0, nil
	}

	// Find where letters end and numbers begin
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("%w %q: no column letters", ErrInvalidCellRef, ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("%w %q: no row number", ErrInvalidCellRef, ref)
	}

	col = ColumnIndex(ref[:i])
	if col < 0 || col >= MaxColumns {
		return 0, 0, fmt.Errorf("%w %q: column out of range", ErrInvalidCellRef, ref)
	}

	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 || rowNum > MaxRows {
		return 0, 0, fmt.Errorf("%w %q: invalid row", ErrInvalidCellRef, ref)
	}
	return col, rowNum - 1, nil
}

// ColumnIndex converts column letters to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26. It returns -1 for anything but letters.
func ColumnIndex(col string) int {
	if col == "" {
		return -1
	}
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
		if result > MaxColumns {
			return -1
		}
	}
	return result - 1
}

// ColumnName converts a 0-indexed column number to column letters.
// 0=A, 1=B, ..., 25=Z, 26=AA.
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}

	var b []byte
	index++
	for index > 0 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
		index /= 26
	}
	return string(b)
}

// FormatCellRef creates a cell reference from column and row indices
// (0-indexed).
func FormatCellRef(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row+1)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
