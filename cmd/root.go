// =============================================================================
// Sales Pipeline - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'run', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salespipe)
//   ├── runCmd      (salespipe run)
//   ├── validateCmd (salespipe validate)
//   ├── generateCmd (salespipe generate)
//   └── versionCmd  (salespipe version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file before any subcommand runs
//   3. Building the logger from that configuration
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// When --config is not given and config.yaml does not exist, defaults apply.
// A path given with --config must exist.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// appConfig and log are set by the root command's PersistentPreRunE.
var (
	appConfig *config.Config
	log       *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salespipe",
	Short: "Sales pipeline - merge, clean and aggregate sales extracts",
	Long: `salespipe ingests sales transaction extracts in CSV, JSON and XLSX format,
reconciles them into one table, repairs malformed fields, derives revenue and
writes monthly, regional and product revenue reports.

Key Features:
  - Per-file schema gate: unusable files are skipped, never fatal
  - Field repair with defaults instead of dropped rows
  - Order-independent, verified aggregates
  - CSV, XLSX (with charts) and XML reports

Example Usage:
  salespipe run                                     # data/raw -> reports
  salespipe run --raw-dir ./in --out-dir ./out      # Custom directories
  salespipe validate --raw-dir ./in                 # Check inputs only
  salespipe generate --raw-dir ./data/raw --seed 7  # Synthetic inputs`,

	// Execute prints the error itself.
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd.Flags().Changed("config"))
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running command through its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// initApp loads the configuration and builds the logger. explicitConfig is
// true when the user named the configuration file on the command line.
func initApp(explicitConfig bool) error {
	load := config.LoadOrDefault
	if explicitConfig {
		load = config.Load
	}
	cfg, err := load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Output = cfg.LogFile
	if verbose {
		logCfg.Level = "debug"
	}

	l, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig, log = cfg, l
	log.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("input_dir", cfg.InputDir),
		zap.String("output_dir", cfg.OutputDir),
	)
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: YAML configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (defaults apply if config.yaml is absent)",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
