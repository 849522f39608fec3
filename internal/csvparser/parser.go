// =============================================================================
// Sales Pipeline - CSV Parser Module
// =============================================================================
//
// This module is responsible for parsing tabular-text (CSV) sales extracts
// into a raw Dataset. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - UTF-8 files with or without a byte order mark
//   - Legacy single-byte encodings (windows-1252, ISO-8859-1)
//   - Quoted fields and rows with a varying number of fields
//
// The first row is always the header row. Cell values are trimmed; a cell
// missing from a short row is read as the empty string.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the configuration.
//
// RETURNS:
//   - The raw Dataset read from the file.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings)
}

// ParseReader parses CSV content from r. source is recorded on the Dataset.
//
// PARSING PROCESS:
//  1. Decode the byte stream to UTF-8 (dropping any BOM)
//  2. Configure the CSV reader with the delimiter
//  3. Read the header row
//  4. Convert each non-empty data row to a map of header -> value
func ParseReader(r io.Reader, source string, settings config.CSVSettings) (*types.Dataset, error) {
	dec, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(transform.NewReader(r, dec)))
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])

	return &types.Dataset{
		Source:  source,
		Columns: headers,
		Rows:    extractDataRows(allRows[1:], headers),
	}, nil
}

// decoderFor returns a transformer that converts the named encoding to UTF-8.
// A leading UTF-8 BOM is stripped in every case.
func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := settings.Comma()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
	return nil
}

// cleanHeaders cleans and normalizes header values.
//
// CLEANING OPERATIONS:
//   - Trim whitespace
//   - Name empty headers after their position (Column_N)
//   - Suffix repeated headers (amount, amount.1, amount.2)
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return types.UniqueColumns(cleaned)
}

// extractDataRows converts data rows to maps keyed by header.
func extractDataRows(rows [][]string, headers []string) []types.Row {
	dataRows := make([]types.Row, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(types.Row, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				rowMap[header] = strings.TrimSpace(row[colIndex])
			} else {
				rowMap[header] = ""
			}
		}

		dataRows = append(dataRows, rowMap)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
