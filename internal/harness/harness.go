// Package harness runs an extractor over every epub in a sample directory,
// clearing the output left behind by the previous run first.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const Suffix = ".epub"

type Runner struct {
	// Dir is the input directory holding the epub samples.
	Dir       string
	Extractor Extractor

	// Stdout receives the path of each epub as it is processed.
	Stdout io.Writer
	Logger *zap.Logger

	removeAll func(string) error
}

// Failure records an extractor error for one epub.
type Failure struct {
	Path string
	Err  error
}

type Report struct {
	Processed []string
	Failed    []Failure
}

func New(dir string, ext Extractor, stdout io.Writer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Dir: dir, Extractor: ext, Stdout: stdout, Logger: logger, removeAll: os.RemoveAll}
}

// entries lists the input directory. A missing directory has no entries.
func (r *Runner) entries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(r.Dir)
	if errors.Is(err, os.ErrNotExist) {
		r.Logger.Debug("input directory does not exist", zap.String("dir", r.Dir))
		return nil, nil
	}
	return entries, err
}

// Clean removes every subdirectory of the input directory. Files are kept.
func (r *Runner) Clean(ctx context.Context) error {
	entries, err := r.entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(r.Dir, e.Name())
		remove := r.removeAll
		if remove == nil {
			remove = os.RemoveAll
		}
		if err := remove(p); err != nil {
			return fmt.Errorf("remove stale output %s: %w", p, err)
		}
		r.Logger.Debug("removed stale output", zap.String("dir", p))
	}
	return nil
}

// Books lists the epub files of the input directory in enumeration order.
func (r *Runner) Books() ([]string, error) {
	entries, err := r.entries()
	if err != nil {
		return nil, err
	}
	var books []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Suffix) {
			continue
		}
		books = append(books, filepath.Join(r.Dir, e.Name()))
	}
	return books, nil
}

// Run cleans the input directory and then extracts each epub in turn.
// Extractor failures are recorded in the report and do not stop the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.Clean(ctx); err != nil {
		return nil, err
	}
	books, err := r.Books()
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := fmt.Fprintln(r.Stdout, book); err != nil {
			return report, err
		}
		report.Processed = append(report.Processed, book)
		if err := r.Extractor.Extract(ctx, book); err != nil {
			r.Logger.Warn("extractor failed", zap.String("epub", book), zap.Error(err))
			report.Failed = append(report.Failed, Failure{Path: book, Err: err})
		}
	}
	fields := []zap.Field{
		zap.String("dir", r.Dir),
		zap.Int("processed", len(report.Processed)),
	}
	if len(report.Failed) == 0 {
		r.Logger.Info("harness finished", fields...)
		return report, nil
	}
	failed := make([]string, 0, len(report.Failed))
	for _, f := range report.Failed {
		failed = append(failed, f.Path)
	}
	r.Logger.Warn("harness finished with failures", append(fields, zap.Strings("failed", failed))...)
	return report, nil
}
