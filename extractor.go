package gridmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch/classify"
	"github.com/tsawler/gridmatch/config"
	"github.com/tsawler/gridmatch/match"
	"github.com/tsawler/gridmatch/model"
	"github.com/tsawler/gridmatch/source"
)

// ErrNoPages is returned for a document without pages.
var ErrNoPages = errors.New("document has no pages")

// Extractor provides a fluent interface for extracting checklist records.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	path string
	src  source.PageSource // set by FromSource or Source; not owned

	// Configuration
	options ExtractOptions
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		path:    e.path,
		src:     e.src,
		options: e.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Path returns an Extractor with the same configuration reading the
// document at path. It is the way to reuse one configured Extractor across
// a batch.
//
// Example:
//
//	base := gridmatch.Open("").Config(cfg).ContinueOnMismatch()
//	for _, path := range paths {
//	    doc, err := base.Path(path).Extract(ctx)
//	    ...
//	}
func (e *Extractor) Path(path string) *Extractor {
	newExt := e.clone()
	newExt.path = path
	newExt.src = nil
	return newExt
}

// Pages specifies which pages to match (1-indexed). Multiple calls are
// cumulative. The first page is always read for classification.
//
// Example:
//
//	doc, err := gridmatch.Open("doc.pdf").Pages(1, 3, 5).Extract(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to match (1-indexed, inclusive).
//
// Example:
//
//	doc, err := gridmatch.Open("doc.pdf").PageRange(2, 10).Extract(ctx)
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Config sets the configuration profiles are picked from.
//
// Example:
//
//	cfg, err := config.Load("gridmatch.yaml")
//	doc, err := gridmatch.Open("doc.pdf").Config(cfg).Extract(ctx)
func (e *Extractor) Config(cfg *config.Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = cfg
	return newExt
}

// Profile forces the named calibration profile instead of the one named
// after the document type. Classification failures are then ignored.
//
// Example:
//
//	doc, err := gridmatch.Open("doc.pdf").Config(cfg).Profile("siemens").Extract(ctx)
func (e *Extractor) Profile(name string) *Extractor {
	newExt := e.clone()
	newExt.options.profile = name
	return newExt
}

// DocType sets the document type and skips classification.
//
// Example:
//
//	doc, err := gridmatch.Open("doc.pdf").DocType(classify.MV).Extract(ctx)
func (e *Extractor) DocType(t classify.DocType) *Extractor {
	newExt := e.clone()
	newExt.options.docType = t
	newExt.options.explicit = true
	return newExt
}

// Logger sets the logger for per-page progress and warnings.
func (e *Extractor) Logger(l logrus.FieldLogger) *Extractor {
	newExt := e.clone()
	newExt.options.log = l
	return newExt
}

// OCR recognizes text in figures with r before matching.
//
// Example:
//
//	client, err := ocr.New(ocr.Config{Language: "eng"})
//	doc, err := gridmatch.Open("scan.pdf").OCR(client).Extract(ctx)
func (e *Extractor) OCR(r source.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.options.ocr = r
	return newExt
}

// Source reads pages from src instead of the file. The caller is
// responsible for closing src.
func (e *Extractor) Source(src source.PageSource) *Extractor {
	newExt := e.clone()
	newExt.src = src
	return newExt
}

// ContinueOnMismatch records pages that do not fit the template as warnings
// and keeps matching the following pages. By default the first mismatch
// fails the document.
func (e *Extractor) ContinueOnMismatch() *Extractor {
	newExt := e.clone()
	newExt.options.continueOnMismatch = true
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Run opens the document, classifies it on its first page and returns a Run
// ready to match pages one by one. The Run must be closed.
func (e *Extractor) Run(ctx context.Context) (*Run, error) {
	log := e.options.log
	if log == nil {
		log = discard()
	}
	if e.path != "" {
		log = log.WithField("document", e.path)
	}

	src, owned, err := e.openSource()
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Run, error) {
		if owned {
			src.Close()
		}
		return nil, err
	}

	if e.options.ocr != nil {
		src = source.WithOCR(src, e.options.ocr)
	}

	first, err := src.Next(ctx)
	if errors.Is(err, io.EOF) {
		err = ErrNoPages
	}
	if err != nil {
		return fail(err)
	}

	docType, err := e.classify(first)
	if err != nil {
		return fail(err)
	}
	profile, name, err := e.resolveProfile(docType)
	if err != nil {
		return fail(err)
	}
	policy, err := profile.NewPolicy()
	if err != nil {
		return fail(fmt.Errorf("profile %s: %w", name, err))
	}

	log = log.WithFields(logrus.Fields{
		"type":    docType.String(),
		"profile": name,
	})
	log.Debug("document classified")

	r := &Run{
		ctx:       ctx,
		src:       source.Filter(src, e.options.pages...),
		owned:     owned,
		docType:   docType,
		profile:   name,
		matcher:   match.NewMatcher(policy, match.WithLogger(log)),
		log:       log,
		keepGoing: e.options.continueOnMismatch,
		started:   time.Now(),
	}
	if selected(e.options.pages, first.Number) {
		r.pending = first
	}
	return r, nil
}

// Extract matches every selected page and returns the flattened document.
// A page that does not fit the template fails the document with a
// *match.FormatMismatch unless ContinueOnMismatch is set.
//
// Example:
//
//	doc, err := gridmatch.Open("checklist.pdf").Extract(ctx)
//	if err != nil {
//	    var fm *match.FormatMismatch
//	    if errors.As(err, &fm) {
//	        log.Printf("page %d does not fit: %s", fm.Page, fm.Reason)
//	    }
//	}
func (e *Extractor) Extract(ctx context.Context) (*Document, error) {
	run, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	defer run.Close()

	for run.Next() {
	}
	if err := run.Err(); err != nil {
		return nil, err
	}
	return run.Document(), nil
}

// openSource returns the page source and whether the Run owns it.
func (e *Extractor) openSource() (source.PageSource, bool, error) {
	if e.src != nil {
		return e.src, false, nil
	}
	if e.path == "" {
		return nil, false, fmt.Errorf("no filename specified")
	}
	src, err := source.Open(e.path)
	if err != nil {
		return nil, false, err
	}
	return src, true, nil
}

func (e *Extractor) classify(first *model.Page) (classify.DocType, error) {
	if e.options.explicit {
		return e.options.docType, nil
	}
	t, err := classify.ClassifyPage(first)
	if err != nil && e.options.profile == "" {
		return classify.Unknown, err
	}
	return t, nil
}

// resolveProfile returns the profile for a document type and its name.
func (e *Extractor) resolveProfile(t classify.DocType) (*config.Profile, string, error) {
	name := e.options.profile
	if name == "" {
		name = t.String()
	}

	cfg := e.options.config
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, "", err
		}
	}
	p, err := cfg.Profile(name)
	if err != nil {
		return nil, "", err
	}
	return p, name, nil
}

func selected(pages []int, n int) bool {
	if len(pages) == 0 {
		return true
	}
	for _, p := range pages {
		if p == n {
			return true
		}
	}
	return false
}
