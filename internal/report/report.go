// =============================================================================
// Sales Pipeline - Report Emitter
// =============================================================================
//
// This module writes the artifacts of a finished run to the output directory.
//
// OUTPUT FILES:
//   csv   monthly_sales.csv    date,revenue
//         regional_sales.csv   region,revenue
//         product_sales.csv    product,revenue
//         cleaned_sales.csv    cleaned rows with the computed revenue
//   xlsx  summary_report.xlsx  one sheet per aggregate, each with a chart
//   xml   summary_report.xml   run summary and the three aggregates
//
// The emitter only reads the Result. It never recomputes or reorders the
// aggregates, so every format shows the same groups in the same order.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/logger"
	"github.com/ginjaninja78/sales-pipeline/internal/pipeline"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// Output file names.
const (
	MonthlyFile  = "monthly_sales.csv"
	RegionalFile = "regional_sales.csv"
	ProductFile  = "product_sales.csv"
	CleanedFile  = "cleaned_sales.csv"
	WorkbookFile = "summary_report.xlsx"
	XMLFile      = "summary_report.xml"
)

// ErrIncompleteResult is returned when the Result has no aggregates.
var ErrIncompleteResult = errors.New("result has no aggregates")

// Options configures the emitter.
type Options struct {
	// Title is written into the workbook properties and the XML summary.
	Title string

	// Formats lists the artifact groups to write: csv, xlsx, xml.
	Formats []string

	// Precision is the number of decimal places for aggregate revenue.
	Precision int32

	Logger *zap.Logger
}

// OptionsFromConfig builds emitter options from the pipeline configuration.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) Options {
	return Options{
		Title:     cfg.Report.Title,
		Formats:   cfg.Report.Formats,
		Precision: 2,
		Logger:    log,
	}
}

func (o Options) wants(format string) bool {
	return config.ReportSettings{Formats: o.Formats}.WantsFormat(format)
}

// headerFor returns the key column name of an aggregate file.
func headerFor(dimension string) string {
	if dimension == types.DimensionMonth {
		return types.ColDate
	}
	return dimension
}

// Emit writes the requested artifacts of res into outDir.
//
// PARAMETERS:
//   - res: A successful pipeline Result.
//   - outDir: The output directory. It is created if missing.
//   - opts: Emitter options.
//
// RETURNS:
//   - The paths written, in the order they were written.
//   - An error if any artifact could not be written.
func Emit(res *pipeline.Result, outDir string, opts Options) ([]string, error) {
	if res == nil || res.Aggregates == nil || res.Cleaned == nil {
		return nil, ErrIncompleteResult
	}
	log := logger.OrNop(opts.Logger)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string

	if opts.wants(config.FormatCSV) {
		files := []string{MonthlyFile, RegionalFile, ProductFile}
		for i, agg := range res.Aggregates.All() {
			path := filepath.Join(outDir, files[i])
			if err := WriteAggregateCSV(path, agg, opts.Precision); err != nil {
				return written, err
			}
			written = append(written, path)
		}

		path := filepath.Join(outDir, CleanedFile)
		if err := WriteCleanedCSV(path, res.Cleaned); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if opts.wants(config.FormatXLSX) {
		path := filepath.Join(outDir, WorkbookFile)
		if err := WriteWorkbook(path, res, opts); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if opts.wants(config.FormatXML) {
		data, err := GenerateXML(res, opts)
		if err != nil {
			return written, err
		}
		path := filepath.Join(outDir, XMLFile)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", XMLFile, err)
		}
		written = append(written, path)
	}

	for _, p := range written {
		log.Info("report written", zap.String("file", p))
	}
	return written, nil
}
