// Package textnorm normalizes cell text for storage and for token matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Clean composes the text to NFC, collapses runs of whitespace (including
// the newlines between glyph lines) to single spaces and trims the result.
func Clean(s string) string {
	return strings.Join(strings.FieldsFunc(norm.NFC.String(s), unicode.IsSpace), " ")
}

// Fold returns the cleaned text in compatibility form with case folded, for
// comparisons only.
func Fold(s string) string {
	return folder.String(norm.NFKC.String(Clean(s)))
}

// HasPrefix reports whether s starts with prefix, ignoring case, width and
// whitespace differences.
func HasPrefix(s, prefix string) bool {
	return strings.HasPrefix(Fold(s), Fold(prefix))
}

// Contains reports whether sub occurs in s, ignoring case, width and
// whitespace differences.
func Contains(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}

// Equal reports whether a and b are the same after folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// TrimPrefix removes prefix from the cleaned s when s starts with it
// (compared folded) and returns the remainder trimmed.
func TrimPrefix(s, prefix string) string {
	clean := Clean(s)
	if !HasPrefix(clean, prefix) {
		return clean
	}
	// Folding can change byte lengths; walk runes until the folded head
	// matches the folded prefix.
	want := Fold(prefix)
	for i := range clean {
		if Fold(clean[:i]) == want {
			return strings.TrimSpace(clean[i:])
		}
	}
	if Fold(clean) == want {
		return ""
	}
	return clean
}
