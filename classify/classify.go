// Package classify decides which checklist template a document follows from
// the first text line of its first page.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/model"
)

// ErrUnknownDocument is returned when the first page matches no template.
var ErrUnknownDocument = errors.New("unknown document type")

// DocType is a checklist template.
type DocType int

const (
	// Unknown indicates an unrecognized document.
	Unknown DocType = iota
	// Preventive indicates a preventive maintenance checklist.
	Preventive
	// MV indicates a medium-voltage inspection checklist.
	MV
)

// String returns the policy tag of the document type.
func (t DocType) String() string {
	switch t {
	case Preventive:
		return "preventive"
	case MV:
		return "mv"
	default:
		return "unknown"
	}
}

// Parse returns the document type with the given tag.
func Parse(tag string) (DocType, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "preventive":
		return Preventive, nil
	case "mv":
		return MV, nil
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownDocument, tag)
	}
}

const keyword = "preventive"

// Classify maps the first text line of a document to its type. MV
// checklists open with the word "Preventive" (their title names the
// preventive programme they belong to); preventive checklists carry the word
// later in the line.
func Classify(firstLine string) DocType {
	line := textnorm.Fold(firstLine)
	switch {
	case strings.HasPrefix(line, keyword):
		return MV
	case strings.Contains(line, keyword):
		return Preventive
	default:
		return Unknown
	}
}

// ClassifyPage classifies a document from its first page.
func ClassifyPage(page *model.Page) (DocType, error) {
	line := page.FirstLine()
	t := Classify(line)
	if t == Unknown {
		return Unknown, fmt.Errorf("%w: first line %q", ErrUnknownDocument, line)
	}
	return t, nil
}
