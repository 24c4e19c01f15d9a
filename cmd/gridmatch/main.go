// Command gridmatch extracts checklist records from PDF documents or JSON
// page dumps and writes them to a spreadsheet, CSV, HTML or PostgreSQL.
//
// Usage:
//
//	gridmatch [flags] file...
//
// Flags override the values of the configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/gridmatch"
	"github.com/tsawler/gridmatch/batch"
	"github.com/tsawler/gridmatch/classify"
	"github.com/tsawler/gridmatch/config"
	"github.com/tsawler/gridmatch/ocr"
	"github.com/tsawler/gridmatch/output"
)

type options struct {
	configPath string
	profile    string
	docType    string
	pages      []int
	paths      []string

	out      string
	format   string
	sheet    string
	cell     string
	template string
	noHeader bool
	split    bool

	workers   int
	errorDir  string
	keepGoing bool
	ocr       bool
	logLevel  string
	logFormat string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridmatch: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "gridmatch: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("gridmatch", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: gridmatch [flags] file...\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.profile, "profile", "", "Profile to use instead of the one named after the document type")
	fs.StringVar(&opts.docType, "type", "", "Document type (preventive, mv); skips classification")
	pages := fs.String("pages", "", "Comma separated page numbers to match")
	fs.StringVar(&opts.out, "out", "", "Output file, directory with -split, or postgres:// URL")
	fs.StringVar(&opts.format, "format", "", "Output format: xlsx, csv, html or postgres")
	fs.StringVar(&opts.sheet, "sheet", "", "Sheet (or table) name; defaults to the document type")
	fs.StringVar(&opts.cell, "cell", "", "Top-left cell of the output, e.g. B4")
	fs.StringVar(&opts.template, "template", "", "Workbook copied for new xlsx files")
	fs.BoolVar(&opts.noHeader, "no-header", false, "Do not write the column header")
	fs.BoolVar(&opts.split, "split", false, "Write one output file per document into -out")
	fs.IntVar(&opts.workers, "workers", 0, "Documents processed concurrently")
	fs.StringVar(&opts.errorDir, "errors", "", "Directory receiving copies of failed documents")
	fs.BoolVar(&opts.keepGoing, "continue", false, "Skip pages that do not fit the template instead of failing the document")
	fs.BoolVar(&opts.ocr, "ocr", false, "Recognize text in figures (needs a build with -tags ocr)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return options{}, fmt.Errorf("missing input files")
	}
	opts.paths = fs.Args()

	var err error
	if opts.pages, err = parsePages(*pages); err != nil {
		return options{}, err
	}
	return opts, nil
}

// parsePages parses "1,3,5-7".
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(from)
		if err != nil || start < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(to); err != nil || end < start {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// apply overrides configuration values with the flags that were given.
func (o options) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Output.Path, o.out)
	set(&cfg.Output.Format, o.format)
	set(&cfg.Output.Sheet, o.sheet)
	set(&cfg.Output.Cell, o.cell)
	set(&cfg.Output.Template, o.template)
	set(&cfg.ErrorDir, o.errorDir)
	set(&cfg.Log.Level, o.logLevel)
	set(&cfg.Log.Format, o.logFormat)
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	cfg.Output.NoHeader = cfg.Output.NoHeader || o.noHeader
	cfg.Output.Split = cfg.Output.Split || o.split
	cfg.ContinueOnMismatch = cfg.ContinueOnMismatch || o.keepGoing
	cfg.OCR.Enabled = cfg.OCR.Enabled || o.ocr
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if c.Level != "" {
		level, err := logrus.ParseLevel(c.Level)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}
	switch c.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	return log, nil
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ext := gridmatch.Open("").Config(cfg).Logger(log)
	if opts.profile != "" {
		ext = ext.Profile(opts.profile)
	}
	if opts.docType != "" {
		t, err := classify.Parse(opts.docType)
		if err != nil {
			return err
		}
		ext = ext.DocType(t)
	}
	if len(opts.pages) > 0 {
		ext = ext.Pages(opts.pages...)
	}
	if cfg.ContinueOnMismatch {
		ext = ext.ContinueOnMismatch()
	}
	if cfg.OCR.Enabled {
		client, err := ocr.New(ocr.Config{Language: cfg.OCR.Language})
		if err != nil {
			return err
		}
		defer client.Close()
		ext = ext.OCR(client)
	}

	dest, err := newDestination(cfg.Output)
	if err != nil {
		return err
	}

	runner := &batch.Runner{Workers: cfg.Workers, Logger: log}
	rep := runner.Run(ctx, opts.paths, func(ctx context.Context, path string) error {
		doc, err := ext.Path(path).Extract(ctx)
		if err != nil {
			return err
		}
		for _, w := range doc.Warnings {
			log.WithField("document", path).Warn(w.String())
		}
		return dest.write(ctx, path, doc)
	})

	if cfg.ErrorDir != "" && len(rep.Failed) > 0 {
		if err := batch.CopyFailed(rep, cfg.ErrorDir); err != nil {
			log.WithError(err).Error("failed to copy failed documents")
		}
	}

	if len(rep.Failed) > 0 {
		mismatches := 0
		for _, f := range rep.Failed {
			if f.Mismatch() {
				mismatches++
			}
		}
		return fmt.Errorf("%d of %d documents failed (%d format mismatches)",
			len(rep.Failed), len(rep.Failed)+len(rep.Succeeded), mismatches)
	}
	return nil
}

// destination routes documents to their output target.
type destination struct {
	cfg    config.OutputConfig
	format output.Format
	writer output.Writer
}

func newDestination(c config.OutputConfig) (*destination, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("no output path: set -out or output.path")
	}
	format := output.Format(strings.ToLower(c.Format))
	switch format {
	case "":
		format = output.FormatFor(c.Path)
	case "postgresql", "pg":
		format = output.FormatPostgres
	}
	if c.Split && format == output.FormatPostgres {
		return nil, fmt.Errorf("-split does not apply to postgres output")
	}
	w, err := output.New(format)
	if err != nil {
		return nil, err
	}
	if c.Split {
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &destination{cfg: c, format: format, writer: output.Locked(w)}, nil
}

func (d *destination) target(path string, doc *gridmatch.Document) output.Target {
	t := output.Target{
		Path:     d.cfg.Path,
		Sheet:    d.cfg.Sheet,
		Cell:     d.cfg.Cell,
		NoHeader: d.cfg.NoHeader,
		Template: d.cfg.Template,
	}
	if t.Sheet == "" {
		t.Sheet = sheetName(doc)
	}
	if d.cfg.Split {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Path = filepath.Join(d.cfg.Path, name+"."+string(d.format))
	}
	return t
}

func (d *destination) write(ctx context.Context, path string, doc *gridmatch.Document) error {
	if len(doc.Rows) == 0 {
		return nil
	}
	return d.writer.WriteRows(ctx, d.target(path, doc), doc.Columns, doc.Rows)
}

// sheetName names the default sheet after the document type.
func sheetName(doc *gridmatch.Document) string {
	switch doc.Type {
	case classify.Preventive:
		return "Preventive"
	case classify.MV:
		return "MV"
	}
	return doc.Profile
}
