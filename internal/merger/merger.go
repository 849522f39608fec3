// =============================================================================
// Sales Pipeline - Dataset Merger
// =============================================================================
//
// This module turns a directory of sales extracts into one raw Dataset.
//
// MERGE PROCESS:
//   1. List the directory entries (sorted by name)
//   2. For each entry (concurrently, bounded by MaxConcurrency):
//      a. Load it with the format loader
//      b. Run it through the schema gate
//   3. Concatenate every accepted Dataset, in listing order
//
// Files that cannot be used are excluded with a Diagnostic; they never abort
// the run. Only a merge with zero accepted files fails (ErrNoValidInput).
// Duplicate rows are kept verbatim.
//
// =============================================================================

package merger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sales-pipeline/internal/loader"
	"github.com/ginjaninja78/sales-pipeline/internal/logger"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
	"github.com/ginjaninja78/sales-pipeline/internal/validation"
)

// ErrNoValidInput is returned when no file passes loading and validation.
var ErrNoValidInput = errors.New("no valid input")

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Kind classifies why a file was excluded.
type Kind string

const (
	KindUnsupported Kind = "unsupported"
	KindReadFailure Kind = "read_failure"
	KindSchema      Kind = "schema"
)

// Diagnostic reports one excluded file.
type Diagnostic struct {
	File    string
	Kind    Kind
	Message string

	// Missing is set for KindSchema.
	Missing []string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", filepath.Base(d.File), d.Kind, d.Message)
}

// =============================================================================
// MERGE
// =============================================================================

// Options configures a merge.
type Options struct {
	Loader loader.Options

	// MaxConcurrency bounds parallel file loads. Values below 1 mean 1.
	MaxConcurrency int

	Logger *zap.Logger
}

// Stats counts what happened to the examined files.
type Stats struct {
	FilesSeen     int
	FilesAccepted int
	FilesSkipped  int
	Rows          int
}

// AcceptedFile reports one file that passed the schema gate.
type AcceptedFile struct {
	File string
	Rows int
}

// Output is the result of a merge.
type Output struct {
	Dataset     *types.Dataset
	Accepted    []AcceptedFile
	Diagnostics []Diagnostic
	Stats       Stats
}

// fileResult is what one loader goroutine hands back. Each goroutine owns
// exactly one slot of the results slice.
type fileResult struct {
	ds   *types.Dataset
	diag *Diagnostic
}

// MergeDir merges every entry of dir. Subdirectories are reported as
// unsupported and skipped.
func MergeDir(ctx context.Context, dir string, opts Options) (*Output, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	var dirDiags []Diagnostic
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			dirDiags = append(dirDiags, Diagnostic{File: path, Kind: KindUnsupported, Message: "is a directory"})
			continue
		}
		paths = append(paths, path)
	}

	log := logger.OrNop(opts.Logger)
	for _, d := range dirDiags {
		log.Warn("skipping input", zap.String("file", d.File), zap.String("kind", string(d.Kind)), zap.String("reason", d.Message))
	}

	out, err := Merge(ctx, paths, opts)
	if out != nil {
		out.Diagnostics = append(dirDiags, out.Diagnostics...)
		out.Stats.FilesSeen += len(dirDiags)
		out.Stats.FilesSkipped += len(dirDiags)
		if out.Dataset != nil {
			out.Dataset.Source = dir
		}
	}
	if err != nil {
		return out, fmt.Errorf("%s: %w", dir, err)
	}
	return out, nil
}

// Merge loads, validates and concatenates the given files. It is a pure
// function of the file list: no state is kept between calls.
//
// RETURNS:
//   - The merge output. It is returned together with ErrNoValidInput so that
//     callers can still report the diagnostics.
//   - ErrNoValidInput when no file was accepted, or the context error.
func Merge(ctx context.Context, paths []string, opts Options) (*Output, error) {
	log := logger.OrNop(opts.Logger)

	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = loadOne(path, opts.Loader)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{
		Dataset: &types.Dataset{},
		Stats:   Stats{FilesSeen: len(paths)},
	}
	for i, r := range results {
		if r.diag != nil {
			out.Diagnostics = append(out.Diagnostics, *r.diag)
			out.Stats.FilesSkipped++
			log.Warn("skipping input",
				zap.String("file", r.diag.File),
				zap.String("kind", string(r.diag.Kind)),
				zap.String("reason", r.diag.Message),
				zap.Strings("missing", r.diag.Missing),
			)
			continue
		}

		log.Info("loaded input",
			zap.String("file", paths[i]),
			zap.Int("rows", r.ds.Len()),
			zap.Int("columns", len(r.ds.Columns)),
		)
		out.Dataset.Append(r.ds)
		out.Accepted = append(out.Accepted, AcceptedFile{File: paths[i], Rows: r.ds.Len()})
		out.Stats.FilesAccepted++
	}
	out.Stats.Rows = out.Dataset.Len()

	if out.Stats.FilesAccepted == 0 {
		return out, fmt.Errorf("%w: %d file(s) examined", ErrNoValidInput, len(paths))
	}
	return out, nil
}

// loadOne runs the loader and the schema gate for one file.
func loadOne(path string, opts loader.Options) fileResult {
	ds, err := loader.Load(path, opts)
	if err != nil {
		kind := KindReadFailure
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			kind = KindUnsupported
		}
		return fileResult{diag: &Diagnostic{File: path, Kind: kind, Message: err.Error()}}
	}

	if err := validation.Check(ds); err != nil {
		var verr *validation.Error
		errors.As(err, &verr)
		return fileResult{diag: &Diagnostic{
			File:    path,
			Kind:    KindSchema,
			Message: err.Error(),
			Missing: verr.Missing,
		}}
	}

	return fileResult{ds: ds}
}
