// =============================================================================
// Sales Pipeline - Pipeline Module
// =============================================================================
//
// This module runs the core of one pipeline run, from the raw input
// directory to verified aggregates.
//
// PIPELINE:
//   1. Merge: load and schema-gate every file in the input directory
//   2. Clean: coerce fields and derive revenue
//   3. Aggregate: sum revenue by month, region and product
//   4. Verify: recompute the aggregates from the cleaned rows
//
// The steps run strictly in order and never go back. A run ends either with
// a Result (cleaned rows + three aggregates) or with merger.ErrNoValidInput.
// Nothing is cached between runs.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-pipeline/internal/aggregator"
	"github.com/ginjaninja78/sales-pipeline/internal/cleaner"
	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/loader"
	"github.com/ginjaninja78/sales-pipeline/internal/logger"
	"github.com/ginjaninja78/sales-pipeline/internal/merger"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of a successful run.
type Result struct {
	// RunID identifies the run in logs and output names.
	RunID uuid.UUID

	// InputDir is the directory that was merged.
	InputDir string

	// Dataset is the merged raw data.
	Dataset *types.Dataset

	// Cleaned is the coerced data with revenue.
	Cleaned *types.CleanedDataset

	// Aggregates holds the monthly, regional and product sums.
	Aggregates *aggregator.Result

	// Diagnostics lists the files excluded by the merge.
	Diagnostics []merger.Diagnostic

	Stats Stats
}

// Stats contains statistics about the run.
type Stats struct {
	Merge   merger.Stats
	Repairs cleaner.RepairStats

	StartTime time.Time
	Duration  time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs merge, clean and aggregate with one configuration.
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates a Pipeline. A nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{cfg: cfg, log: logger.OrNop(log)}
}

// Run executes one run over inputDir.
//
// RETURNS:
//   - The Result of the run.
//   - An error wrapping merger.ErrNoValidInput when no file survived the
//     merge, or any error that stopped the run. Diagnostics gathered before
//     a failed merge are returned in the partial Result.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*Result, error) {
	res := &Result{
		RunID:    uuid.New(),
		InputDir: inputDir,
		Stats:    Stats{StartTime: time.Now()},
	}
	log := p.log.With(zap.String("run_id", res.RunID.String()))

	// =========================================================================
	// STEP 1: MERGE
	// =========================================================================

	log.Info("loading raw data", zap.String("dir", inputDir))

	out, err := merger.MergeDir(ctx, inputDir, merger.Options{
		Loader:         loader.OptionsFromConfig(p.cfg),
		MaxConcurrency: p.cfg.MaxConcurrency,
		Logger:         log,
	})
	if out != nil {
		res.Diagnostics = out.Diagnostics
		res.Stats.Merge = out.Stats
	}
	if err != nil {
		log.Error("merge failed", zap.Error(err))
		return res, err
	}
	res.Dataset = out.Dataset

	log.Info("rows loaded",
		zap.Int("rows", out.Stats.Rows),
		zap.Int("files_accepted", out.Stats.FilesAccepted),
		zap.Int("files_skipped", out.Stats.FilesSkipped),
	)

	// =========================================================================
	// STEP 2: CLEAN
	// =========================================================================

	res.Cleaned = cleaner.Clean(res.Dataset, cleaner.OptionsFromConfig(p.cfg))
	res.Stats.Repairs = cleaner.Summarize(res.Cleaned)

	log.Info("cleaned and transformed",
		zap.Int("rows", res.Stats.Repairs.Rows),
		zap.Int("rows_repaired", res.Stats.Repairs.RowsRepaired),
		zap.Int("unknown_dates", res.Stats.Repairs.UnknownDates),
		zap.Int("quantity_defaults", res.Stats.Repairs.Quantities),
		zap.Int("unit_price_defaults", res.Stats.Repairs.UnitPrices),
		zap.Int("discount_defaults", res.Stats.Repairs.Discounts),
		zap.Int("missing_region", res.Stats.Repairs.MissingRegion),
	)

	// =========================================================================
	// STEP 3: AGGREGATE AND VERIFY
	// =========================================================================

	res.Aggregates = aggregator.Aggregate(res.Cleaned)
	if err := aggregator.Verify(res.Cleaned, res.Aggregates); err != nil {
		return res, fmt.Errorf("aggregate verification failed: %w", err)
	}

	res.Stats.Duration = time.Since(res.Stats.StartTime)
	log.Info("aggregates computed",
		zap.Int("months", len(res.Aggregates.Monthly.Groups)),
		zap.Int("regions", len(res.Aggregates.Regional.Groups)),
		zap.Int("products", len(res.Aggregates.Product.Groups)),
		zap.Duration("elapsed", res.Stats.Duration),
	)

	return res, nil
}
