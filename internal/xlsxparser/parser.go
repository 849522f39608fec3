// =============================================================================
// Sales Pipeline - XLSX Parser
// =============================================================================
//
// This module is responsible for reading spreadsheet (XLSX) sales extracts
// into a raw Dataset.
//
// SHEET LAYOUT (Expected):
//
//   | order_id | date       | region | product | quantity | unit_price | discount | ... |
//   |----------|------------|--------|---------|----------|------------|----------|-----|
//   | 100000   | 2025-01-01 | North  | Laptop  | 1        | 59812.5    | 0.12     | ... |
//
// The header row is row 1 of the first sheet unless SheetOptions says
// otherwise. Cells are read as stored values, not display text, so numbers
// keep full precision. Numeric cells with a date or time number format are
// converted from date serials to "2006-01-02" or "2006-01-02 15:04:05".
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// =============================================================================
// SHEET CONFIGURATION
// =============================================================================

// SheetOptions selects where the table lives inside the workbook.
type SheetOptions struct {
	// Sheet is the sheet name. Empty selects the first sheet.
	Sheet string

	// HeaderRow is the 0-based index of the header row.
	// Data starts on the following row.
	HeaderRow int
}

// DefaultSheetOptions returns the first sheet with the header on row 1.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of an XLSX file.
func Parse(path string) (*types.Dataset, error) {
	return ParseWithOptions(path, DefaultSheetOptions())
}

// ParseWithOptions reads an XLSX file using custom sheet options.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - opts: The sheet selection.
//
// RETURNS:
//   - The raw Dataset. A sheet without rows yields a Dataset with no columns.
//   - An error if the workbook cannot be opened or the sheet read.
func ParseWithOptions(path string, opts SheetOptions) (*types.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	ds := &types.Dataset{Source: path}
	if opts.HeaderRow >= len(rows) {
		return ds, nil
	}

	ds.Columns = headerNames(rows[opts.HeaderRow])
	cells := newCellReader(f, sheetName)

	for r := opts.HeaderRow + 1; r < len(rows); r++ {
		row := rows[r]
		if isRowEmpty(row) {
			continue
		}

		// excelize drops trailing empty cells, so short rows are padded.
		rec := make(types.Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(row) {
				rec[col] = cells.value(row[i], i+1, r+1)
			} else {
				rec[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}

	return ds, nil
}

// headerNames trims header cells, names blank ones after their column
// letter (Column_A, Column_B, ...) and suffixes repeated names.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			letter, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				letter = fmt.Sprint(i + 1)
			}
			name = "Column_" + letter
		}
		names[i] = name
	}
	return types.UniqueColumns(names)
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

// =============================================================================
// DATE CELLS
// =============================================================================

// builtInDateFormats are the built-in number format IDs that render a date
// or a time.
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// cellReader turns raw cell text into Row values. Style lookups are cached
// per style ID.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	c := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c
}

// value returns the trimmed cell text, with date serials of date-formatted
// numeric cells rendered as text.
func (c *cellReader) value(raw string, col, row int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	switch typ, _ := c.f.GetCellType(c.sheet, cell); typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return raw
	}
	styleID, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil || !c.isDateStyle(styleID) {
		return raw
	}

	t, err := excelize.ExcelDateToTime(serial, c.date1904)
	if err != nil {
		return raw
	}
	return formatDate(t.Round(time.Second))
}

func (c *cellReader) isDateStyle(styleID int) bool {
	if styleID == 0 {
		return false
	}
	if v, ok := c.dateStyles[styleID]; ok {
		return v
	}

	isDate := false
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = builtInDateFormats[style.NumFmt]
		}
	}
	c.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a custom number format code contains date or
// time tokens outside quoted text and bracketed sections.
func isDateFormat(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '\\':
			i++
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
