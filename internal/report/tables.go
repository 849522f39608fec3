package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// formatRevenue renders an aggregate sum. A negative precision keeps every
// digit of the sum.
func formatRevenue(d decimal.Decimal, precision int32) string {
	if precision < 0 {
		return d.String()
	}
	return d.StringFixed(precision)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteAggregateCSV writes one aggregate as a two-column CSV file with a
// header row of <key>,revenue.
func WriteAggregateCSV(path string, agg *types.Aggregate, precision int32) error {
	records := make([][]string, 0, len(agg.Groups)+1)
	records = append(records, []string{headerFor(agg.Dimension), types.ColRevenue})
	for _, g := range agg.Groups {
		records = append(records, []string{g.Key, formatRevenue(g.Revenue, precision)})
	}
	return writeCSV(path, records)
}

// WriteCleanedCSV writes the cleaned rows. Columns follow the source order
// with revenue appended; core fields carry their coerced values and an
// unknown date is written as an empty cell.
func WriteCleanedCSV(path string, cd *types.CleanedDataset) error {
	columns := cd.Columns
	if len(columns) == 0 {
		columns = types.RequiredColumns
	}

	records := make([][]string, 0, cd.Len()+1)
	records = append(records, append(append([]string(nil), columns...), types.ColRevenue))
	for i := range cd.Records {
		rec := &cd.Records[i]
		line := make([]string, 0, len(columns)+1)
		for _, c := range columns {
			line = append(line, cellValue(rec, c))
		}
		line = append(line, formatFloat(rec.Revenue))
		records = append(records, line)
	}
	return writeCSV(path, records)
}

func cellValue(rec *types.CleanedRecord, column string) string {
	switch column {
	case types.ColOrderID:
		return rec.OrderID
	case types.ColDate:
		if !rec.Date.Known {
			return ""
		}
		return rec.Date.String()
	case types.ColRegion:
		return rec.Region
	case types.ColProduct:
		return rec.Product
	case types.ColQuantity:
		return strconv.FormatInt(rec.Quantity, 10)
	case types.ColUnitPrice:
		return formatFloat(rec.UnitPrice)
	case types.ColDiscount:
		return formatFloat(rec.Discount)
	case types.ColPaymentMethod:
		return rec.PaymentMethod
	}
	return rec.Extra[column]
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
