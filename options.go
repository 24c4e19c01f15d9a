package gridmatch

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch/classify"
	"github.com/tsawler/gridmatch/config"
	"github.com/tsawler/gridmatch/source"
)

// ExtractOptions holds configuration for an extraction.
type ExtractOptions struct {
	// Page selection (1-indexed, nil means all pages)
	pages []int

	// Calibration. A nil config means the built-in defaults; profile
	// overrides the profile named after the document type; explicit skips
	// classification.
	config   *config.Config
	profile  string
	docType  classify.DocType
	explicit bool

	// Processing options
	continueOnMismatch bool
	ocr                source.Recognizer

	log logrus.FieldLogger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages: nil, // nil means all pages
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
