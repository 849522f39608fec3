// =============================================================================
// Sales Pipeline - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the command layer:
//   - Directory management
//   - Run-scoped file naming
//   - Processing summary generation
//
// The summary file is the plain-text record of one run: what was read, what
// was skipped and why, how many fields were repaired and which reports were
// written. It sits next to the reports in the output directory.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the directories of one pipeline run.
type FileManager struct {
	// InputDir is the directory holding the raw sales extracts.
	InputDir string

	// OutputDir is the directory receiving reports and summaries.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// EnsureOutputDir creates the output directory if it doesn't exist.
// The input directory is never created: a missing input directory is an
// error for the run, not something to paper over.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// CheckInputDir reports an error if the input directory is missing or is not
// a directory.
func (fm *FileManager) CheckInputDir() error {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory %s is not a directory", fm.InputDir)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a run-scoped output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {run}       - The run ID (first 8 hex digits)
//               {uuid}      - The full run ID
//               {timestamp} - Run start (YYYYMMDD_HHMMSS)
//               {date}      - Run start date (YYYYMMDD)
//   - runID: The run ID. uuid.Nil draws a fresh random ID.
//   - at: The run start time.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "processing_summary_{timestamp}_{run}.txt"
//   output: "processing_summary_20250115_143022_a1b2c3d4.txt"
func GenerateOutputFileName(format string, runID uuid.UUID, at time.Time) string {
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	id := runID.String()

	return strings.NewReplacer(
		"{run}", id[:8],
		"{uuid}", id,
		"{timestamp}", at.Format("20060102_150405"),
		"{date}", at.Format("20060102"),
	).Replace(format)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a pipeline run.
type ProcessingSummary struct {
	RunID     uuid.UUID
	StartTime time.Time
	EndTime   time.Time

	InputDir  string
	OutputDir string

	TotalFiles    int
	AcceptedFiles int
	SkippedFiles  int
	TotalRows     int

	RowsRepaired  int
	UnknownDates  int
	MissingRegion int

	SkippedFilesList []SkippedFileInfo
	Reports          []string
}

// SkippedFileInfo contains information about an input file left out of the
// merge.
type SkippedFileInfo struct {
	InputFile    string
	Kind         string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a text file in outputDir.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryFileName := GenerateOutputFileName("processing_summary_{timestamp}_{run}.txt", summary.RunID, summary.StartTime)
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	rule := strings.Repeat("=", 80) + "\n"
	thin := strings.Repeat("-", 80) + "\n"

	fmt.Fprintf(writer, "Sales Pipeline - Processing Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Input:          %s\n"+
		"  Output:         %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.InputDir,
		summary.OutputDir)

	fmt.Fprintf(writer, "Statistics:\n"+
		"  Files Examined:     %d\n"+
		"  Files Accepted:     %d\n"+
		"  Files Skipped:      %d\n"+
		"  Total Rows:         %d\n"+
		"  Rows Repaired:      %d\n"+
		"  Unknown Dates:      %d\n"+
		"  Missing Region:     %d\n\n",
		summary.TotalFiles,
		summary.AcceptedFiles,
		summary.SkippedFiles,
		summary.TotalRows,
		summary.RowsRepaired,
		summary.UnknownDates,
		summary.MissingRegion)

	if len(summary.SkippedFilesList) > 0 {
		writer.WriteString("Skipped Files:\n" + thin)
		for _, sf := range summary.SkippedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", sf.InputFile)
			fmt.Fprintf(writer, "  Kind:  %s\n", sf.Kind)
			fmt.Fprintf(writer, "  Error: %s\n\n", sf.ErrorMessage)
		}
	}

	if len(summary.Reports) > 0 {
		writer.WriteString("Reports:\n" + thin)
		for _, r := range summary.Reports {
			fmt.Fprintf(writer, "  %s\n", r)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(rule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
