// Package batch runs document extractions concurrently. A failing document
// never stops the others; failures are collected into a Report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/gridmatch/match"
)

// Func processes one document.
type Func func(ctx context.Context, path string) error

// DocumentError is the failure of one document in a batch.
type DocumentError struct {
	Path string
	Err  error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e DocumentError) Unwrap() error { return e.Err }

// Mismatch reports whether the document failed because a page did not fit
// its template, as opposed to an unreadable input or a failed write.
func (e DocumentError) Mismatch() bool {
	var fm *match.FormatMismatch
	return errors.As(e.Err, &fm)
}

// Report is the outcome of a batch, in input order.
type Report struct {
	Succeeded []string
	Failed    []DocumentError
	Elapsed   time.Duration
}

// Err joins the document failures, or returns nil.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Runner runs a Func over many documents.
type Runner struct {
	// Workers bounds concurrency (1 when < 1)
	Workers int
	Logger  logrus.FieldLogger
}

// Run calls fn for every path and waits for all of them. Documents not
// started before ctx is done fail with the context's error. Duplicate paths
// run once.
func (r *Runner) Run(ctx context.Context, paths []string, fn Func) *Report {
	start := time.Now()
	log := r.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	seen := make(map[string]bool, len(paths))
	var unique []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}

	results := make([]error, len(unique))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range unique {
		i, path := i, path
		g.Go(func() error {
			entry := log.WithField("document", path)
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}

			t0 := time.Now()
			err := fn(ctx, path)
			results[i] = err
			if err != nil {
				entry.WithError(err).Error("document failed")
				return nil
			}
			entry.WithField("elapsed", time.Since(t0)).Info("document done")
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{Elapsed: time.Since(start)}
	for i, path := range unique {
		if results[i] != nil {
			rep.Failed = append(rep.Failed, DocumentError{Path: path, Err: results[i]})
			continue
		}
		rep.Succeeded = append(rep.Succeeded, path)
	}
	log.WithFields(logrus.Fields{
		"succeeded": len(rep.Succeeded),
		"failed":    len(rep.Failed),
		"elapsed":   rep.Elapsed,
	}).Info("batch done")
	return rep
}

// CopyFailed copies every failed document into dir, creating it when
// needed. Copies are named after the document's base name; documents sharing
// a base name get a numeric suffix ("report-2.pdf").
func CopyFailed(rep *Report, dir string) error {
	if len(rep.Failed) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create error directory: %w", err)
	}

	var mu sync.Mutex
	var errs []error
	var g errgroup.Group
	g.SetLimit(4)
	used := make(map[string]bool, len(rep.Failed))
	for _, f := range rep.Failed {
		src := f.Path
		dst := filepath.Join(dir, uniqueName(filepath.Base(src), used))
		g.Go(func() error {
			if err := copyFile(src, dst); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// uniqueName returns name, or name with the first free numeric suffix, and
// marks the result as used.
func uniqueName(name string, used map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	out := name
	for n := 2; used[out]; n++ {
		out = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	used[out] = true
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
