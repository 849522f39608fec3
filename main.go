// =============================================================================
// Sales Pipeline - Main Entry Point
// =============================================================================
//
// This is the main entry point for the salespipe CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   salespipe run           - Merge, clean, aggregate and write reports
//   salespipe validate      - Check which raw files a run would accept
//   salespipe generate      - Write synthetic raw files
//   salespipe version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - config.yaml    : Optional pipeline configuration
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-pipeline/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
