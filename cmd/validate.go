// =============================================================================
// Sales Pipeline - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It runs the same merge step as
// 'run' over the raw directory and prints a verdict per entry, without
// cleaning, aggregating or writing anything.
//
// COMMAND USAGE:
//   salespipe validate [--raw-dir DIR]
//
// OUTPUT:
//   ✓ sales_part_a.csv   (csv, 3612 rows)
//   ✗ notes.txt [unsupported]: unsupported format: .txt
//   ✗ old.csv [schema]: old.csv: missing required columns [region]
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-pipeline/internal/loader"
	"github.com/ginjaninja78/sales-pipeline/internal/merger"
)

// validateDir overrides the configured input directory.
var validateDir string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check which raw files would be accepted by a run",
	Long: `The validate command loads every file of the raw directory and checks it
against the required columns (order_id, date, region, product, quantity,
unit_price, discount). It exits non-zero when no file would be accepted.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateDir, "raw-dir", "", "Path to raw data (default from config: data/raw)")
}

func runValidate(ctx context.Context, out io.Writer) error {
	dir := firstNonEmpty(validateDir, appConfig.InputDir)

	res, err := merger.MergeDir(ctx, dir, merger.Options{
		Loader:         loader.OptionsFromConfig(appConfig),
		MaxConcurrency: appConfig.MaxConcurrency,
		Logger:         log,
	})
	if res != nil {
		for _, a := range res.Accepted {
			format, _ := loader.DetectFormat(a.File)
			fmt.Fprintf(out, "  ✓ %-24s (%s, %d rows)\n", filepath.Base(a.File), format, a.Rows)
		}
		printDiagnostics(out, res.Diagnostics)
		fmt.Fprintf(out, "%d of %d file(s) accepted\n", res.Stats.FilesAccepted, res.Stats.FilesSeen)
	}
	return err
}
