// =============================================================================
// Sales Pipeline - Run Command
// =============================================================================
//
// This file defines the 'run' command, which is the main command of the
// application. It orchestrates one full pipeline run.
//
// COMMAND USAGE:
//   salespipe run [flags]
//
// FLAGS:
//   --raw-dir   : Directory holding the raw sales extracts
//   --out-dir   : Directory receiving the reports
//
// PROCESSING PIPELINE:
//   1. Merge, clean and aggregate the raw directory
//   2. Write the reports
//   3. Write the processing summary
//
// EXIT STATUS:
//   Non-zero only when no input file was usable, or when configuration or
//   output I/O fails. Skipped files are warnings.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-pipeline/internal/merger"
	"github.com/ginjaninja78/sales-pipeline/internal/pipeline"
	"github.com/ginjaninja78/sales-pipeline/internal/report"
	"github.com/ginjaninja78/sales-pipeline/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// rawDir overrides the configured input directory.
var rawDir string

// outDir overrides the configured output directory.
var outDir string

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Merge, clean and aggregate the raw directory and write reports",
	Long: `The run command reads every file in the raw directory, skips files with an
unsupported format, unreadable content or missing required columns, and merges
the rest into one table.

Malformed fields are repaired with defaults and revenue is recomputed for every
row. Revenue is then summed per month, region and product, and the sums are
written as CSV, XLSX and XML reports together with a processing summary.

The command fails only when no input file could be used.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the run command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&rawDir, "raw-dir", "", "Path to raw data (default from config: data/raw)")
	runCmd.Flags().StringVar(&outDir, "out-dir", "", "Path to output reports (default from config: reports)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runPipeline runs the pipeline and writes every output.
func runPipeline(ctx context.Context, out io.Writer) error {
	fm := utils.NewFileManager(firstNonEmpty(rawDir, appConfig.InputDir), firstNonEmpty(outDir, appConfig.OutputDir))

	fmt.Fprintln(out, "=== Sales Pipeline ===")
	if abs, err := filepath.Abs(fm.InputDir); err == nil {
		fmt.Fprintf(out, "Loading raw data from %s ...\n", abs)
	}

	if err := fm.CheckInputDir(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: MERGE, CLEAN, AGGREGATE
	// =========================================================================

	res, err := pipeline.New(appConfig, log).Run(ctx, fm.InputDir)
	if res != nil {
		printDiagnostics(out, res.Diagnostics)
	}
	if err != nil {
		if errors.Is(err, merger.ErrNoValidInput) {
			fmt.Fprintln(out, "No valid datasets found.")
		}
		return err
	}

	fmt.Fprintf(out, "Rows loaded: %d (from %d of %d file(s))\n",
		res.Cleaned.Len(), res.Stats.Merge.FilesAccepted, res.Stats.Merge.FilesSeen)
	if n := res.Stats.Repairs.RowsRepaired; n > 0 {
		fmt.Fprintf(out, "Rows with repaired fields: %d\n", n)
	}

	// =========================================================================
	// STEP 2: REPORTS
	// =========================================================================

	if err := fm.EnsureOutputDir(); err != nil {
		return err
	}

	written, err := report.Emit(res, fm.OutputDir, report.OptionsFromConfig(appConfig, log))
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	summaryPath, err := utils.WriteSummaryLog(buildSummary(res, fm, written), fm.OutputDir)
	if err != nil {
		return err
	}
	log.Info("run complete", zap.String("run_id", res.RunID.String()), zap.String("summary", summaryPath))

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	for _, p := range written {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
	fmt.Fprintf(out, "Time elapsed:    %s\n", res.Stats.Duration)

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func printDiagnostics(out io.Writer, diags []merger.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(out, "  ✗ %s\n", d)
	}
}

func buildSummary(res *pipeline.Result, fm *utils.FileManager, written []string) utils.ProcessingSummary {
	s := utils.ProcessingSummary{
		RunID:         res.RunID,
		StartTime:     res.Stats.StartTime,
		EndTime:       time.Now(),
		InputDir:      fm.InputDir,
		OutputDir:     fm.OutputDir,
		TotalFiles:    res.Stats.Merge.FilesSeen,
		AcceptedFiles: res.Stats.Merge.FilesAccepted,
		SkippedFiles:  res.Stats.Merge.FilesSkipped,
		TotalRows:     res.Cleaned.Len(),
		RowsRepaired:  res.Stats.Repairs.RowsRepaired,
		UnknownDates:  res.Stats.Repairs.UnknownDates,
		MissingRegion: res.Stats.Repairs.MissingRegion,
	}
	for _, d := range res.Diagnostics {
		s.SkippedFilesList = append(s.SkippedFilesList, utils.SkippedFileInfo{
			InputFile:    d.File,
			Kind:         string(d.Kind),
			ErrorMessage: d.Message,
		})
	}
	for _, p := range written {
		s.Reports = append(s.Reports, filepath.Base(p))
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
