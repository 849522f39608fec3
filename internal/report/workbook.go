package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-pipeline/internal/pipeline"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// sheetLayout describes the worksheet of one aggregate.
type sheetLayout struct {
	Name       string
	ChartTitle string
	ChartType  excelize.ChartType
}

// Worksheets in aggregator.Result.All order.
var sheetLayouts = []sheetLayout{
	{Name: "Monthly", ChartTitle: "Monthly Sales Trend", ChartType: excelize.Line},
	{Name: "Regional", ChartTitle: "Regional Sales", ChartType: excelize.Col},
	{Name: "Product", ChartTitle: "Product Sales", ChartType: excelize.Col},
}

// WriteWorkbook writes the aggregates to an XLSX workbook, one sheet per
// aggregate with its table in columns A:B and a chart beside it.
func WriteWorkbook(path string, res *pipeline.Result, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, agg := range res.Aggregates.All() {
		layout := sheetLayouts[i]
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), layout.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(layout.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", layout.Name, err)
		}

		if err := writeSheet(f, layout, agg, opts.Precision); err != nil {
			return fmt.Errorf("sheet %s: %w", layout.Name, err)
		}

		last := len(agg.Groups) + 1
		if err := f.SetCellStyle(layout.Name, "A1", "B1", headerStyle); err != nil {
			return err
		}
		if last > 1 {
			if err := f.SetCellStyle(layout.Name, "B2", fmt.Sprintf("B%d", last), moneyStyle); err != nil {
				return err
			}
			if err := addChart(f, layout, last); err != nil {
				return fmt.Errorf("sheet %s: %w", layout.Name, err)
			}
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:      opts.Title,
		Creator:    "salespipe",
		Identifier: res.RunID.String(),
	}); err != nil {
		return fmt.Errorf("failed to set workbook properties: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, layout sheetLayout, agg *types.Aggregate, precision int32) error {
	if err := f.SetSheetRow(layout.Name, "A1", &[]interface{}{headerFor(agg.Dimension), types.ColRevenue}); err != nil {
		return err
	}
	for r, g := range agg.Groups {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		revenue := g.Revenue
		if precision >= 0 {
			revenue = revenue.Round(precision)
		}
		if err := f.SetSheetRow(layout.Name, cell, &[]interface{}{g.Key, revenue.InexactFloat64()}); err != nil {
			return err
		}
	}
	return f.SetColWidth(layout.Name, "A", "B", 18)
}

func addChart(f *excelize.File, layout sheetLayout, lastRow int) error {
	return f.AddChart(layout.Name, "D2", &excelize.Chart{
		Type: layout.ChartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", layout.Name),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", layout.Name, lastRow),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", layout.Name, lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: layout.ChartTitle}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}
