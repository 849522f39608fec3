package xlsxparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// writeWorkbook saves rows to Sheet1 of a new workbook.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"order_id", "date", "region", "quantity", "unit_price", "discount"},
		{100000, "2025-01-01", "North", 2, 59812.5, 0.12},
		{100001, "2025-01-02", nil, 1, 3000, nil},
		{},
		{100002, "2025-01-03", "West"},
	})

	ds, err := Parse(path)

	require.NoError(t, err)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, []string{"order_id", "date", "region", "quantity", "unit_price", "discount"}, ds.Columns)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, "100000", ds.Rows[0]["order_id"])
	assert.Equal(t, "59812.5", ds.Rows[0]["unit_price"])
	assert.Equal(t, "", ds.Rows[1]["region"])
	assert.Equal(t, types.Row{
		"order_id": "100002", "date": "2025-01-03", "region": "West",
		"quantity": "", "unit_price": "", "discount": "",
	}, ds.Rows[2])
}

func TestParseBlankHeaderCell(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"order_id", nil, "region"}, {1, "x", "South"}})

	ds, err := Parse(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "Column_B", "region"}, ds.Columns)
}

func TestParseEmptySheet(t *testing.T) {
	path := writeWorkbook(t, nil)

	ds, err := Parse(path)

	require.NoError(t, err)
	assert.Empty(t, ds.Columns)
	assert.Zero(t, ds.Len())
}

func TestParseWithOptions(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Quarterly extract"},
		{"order_id", "region"},
		{7, "East"},
	})

	ds, err := ParseWithOptions(path, SheetOptions{HeaderRow: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "region"}, ds.Columns)
	assert.Equal(t, "East", ds.Rows[0]["region"])

	_, err = ParseWithOptions(path, SheetOptions{Sheet: "Missing"})
	assert.Error(t, err)
}

// styledCell sets a value and a number format on one cell of Sheet1.
func styledCell(t *testing.T, f *excelize.File, cell string, value any, style *excelize.Style) {
	t.Helper()
	require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	if style == nil {
		return
	}
	id, err := f.NewStyle(style)
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", cell, cell, id))
}

func TestParseDateFormattedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	ymd := "yyyy/mm/dd"
	twoDecimals := "0.00"
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"order_id", "date", "unit_price"}))

	// Serial 45658 is 2025-01-01; 45725.6041666667 is 2025-03-09 14:30.
	styledCell(t, f, "A2", 1, nil)
	styledCell(t, f, "B2", 45658, &excelize.Style{NumFmt: 14})
	styledCell(t, f, "C2", 12345.678901234567, nil)

	styledCell(t, f, "A3", 2, nil)
	styledCell(t, f, "B3", 45658, &excelize.Style{NumFmt: 15})
	styledCell(t, f, "C3", 19.5, &excelize.Style{CustomNumFmt: &twoDecimals})

	styledCell(t, f, "A4", 3, nil)
	styledCell(t, f, "B4", 45725.6041666667, &excelize.Style{NumFmt: 22})
	styledCell(t, f, "C4", 45658, nil)

	styledCell(t, f, "A5", 4, nil)
	styledCell(t, f, "B5", time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC), nil)

	styledCell(t, f, "A6", 5, nil)
	styledCell(t, f, "B6", 45659, &excelize.Style{CustomNumFmt: &ymd})

	styledCell(t, f, "A7", 6, nil)
	styledCell(t, f, "B7", "45658", &excelize.Style{NumFmt: 14})

	path := filepath.Join(t.TempDir(), "dates.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := Parse(path)

	require.NoError(t, err)
	require.Len(t, ds.Rows, 6)
	assert.Equal(t, "2025-01-01", ds.Rows[0]["date"])
	assert.Equal(t, "12345.678901234567", ds.Rows[0]["unit_price"])
	assert.Equal(t, "2025-01-01", ds.Rows[1]["date"])
	assert.Equal(t, "19.5", ds.Rows[1]["unit_price"])
	assert.Equal(t, "2025-03-09 14:30:00", ds.Rows[2]["date"])
	assert.Equal(t, "45658", ds.Rows[2]["unit_price"], "unstyled numbers stay numbers")
	assert.Equal(t, "2025-03-09 14:30:00", ds.Rows[3]["date"])
	assert.Equal(t, "2025-01-02", ds.Rows[4]["date"])
	assert.Equal(t, "45658", ds.Rows[5]["date"], "text cells are never converted")
}

func TestIsDateFormat(t *testing.T) {
	assert.True(t, isDateFormat("yyyy-mm-dd"))
	assert.True(t, isDateFormat("[$-409]h:mm AM/PM"))
	assert.False(t, isDateFormat("0.00"))
	assert.False(t, isDateFormat(`#,##0 "days"`))
	assert.False(t, isDateFormat("[Red]0.0"))
}

func TestParseDuplicateHeaders(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"order_id", "region", "region", "region.1"},
		{1, "North", "South", "East"},
	})

	ds, err := Parse(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "region", "region.2", "region.1"}, ds.Columns)
	assert.Equal(t, "North", ds.Rows[0]["region"])
	assert.Equal(t, "South", ds.Rows[0]["region.2"])
	assert.Equal(t, "East", ds.Rows[0]["region.1"])
}

func TestParseCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := Parse(path)
	assert.ErrorContains(t, err, "failed to open workbook")
}
