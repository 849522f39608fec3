// =============================================================================
// Sales Pipeline - Cleaner / Transformer
// =============================================================================
//
// This module converts the merged raw Dataset into a CleanedDataset.
//
// FIELD RULES:
//   date        parsed with the configured layouts; unparsable -> unknown
//   quantity    integer; invalid, missing or negative -> 0
//   unit_price  float; invalid, missing or negative -> 0.0
//   discount    float; invalid or missing -> 0.0; range is NOT clamped
//               unless ClampDiscount is set
//   revenue     quantity * unit_price * (1 - discount), always recomputed;
//               a product that overflows float64 -> 0.0
//
// Bad values never drop a row and never fail the run. Each defaulted field is
// recorded in CleanedRecord.Repairs so that a repaired zero can be told apart
// from a genuine zero.
//
// =============================================================================

package cleaner

import (
	"math"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// coreColumns are mapped onto CleanedRecord fields; all other columns go to
// Extra. revenue is listed so that a source revenue column is discarded.
var coreColumns = map[string]bool{
	types.ColOrderID:       true,
	types.ColDate:          true,
	types.ColRegion:        true,
	types.ColProduct:       true,
	types.ColQuantity:      true,
	types.ColUnitPrice:     true,
	types.ColDiscount:      true,
	types.ColPaymentMethod: true,
	types.ColRevenue:       true,
}

// Options configures cleaning.
type Options struct {
	// DateLayouts overrides DefaultDateLayouts when non-empty.
	DateLayouts []string

	// ClampDiscount clamps discount into [0,1].
	ClampDiscount bool
}

// OptionsFromConfig builds cleaning options from the pipeline configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DateLayouts:   cfg.Cleaning.DateLayouts,
		ClampDiscount: cfg.Cleaning.ClampDiscount,
	}
}

// RepairStats counts defaulted fields over a CleanedDataset.
type RepairStats struct {
	Rows          int
	RowsRepaired  int
	UnknownDates  int
	Quantities    int
	UnitPrices    int
	Discounts     int
	MissingRegion int
}

// =============================================================================
// CLEANING FUNCTIONS
// =============================================================================

// Clean returns a new CleanedDataset built from ds. ds is not modified.
func Clean(ds *types.Dataset, opts Options) *types.CleanedDataset {
	out := &types.CleanedDataset{}
	if ds == nil {
		return out
	}

	for _, c := range ds.Columns {
		if c != types.ColRevenue {
			out.Columns = append(out.Columns, c)
		}
	}

	out.Records = make([]types.CleanedRecord, len(ds.Rows))
	for i, row := range ds.Rows {
		out.Records[i] = CleanRow(row, opts)
	}
	return out
}

// CleanRow coerces one raw row and derives its revenue.
func CleanRow(row types.Row, opts Options) types.CleanedRecord {
	rec := types.CleanedRecord{
		OrderID:       row[types.ColOrderID],
		Region:        row[types.ColRegion],
		Product:       row[types.ColProduct],
		PaymentMethod: row[types.ColPaymentMethod],
	}

	var defaulted bool

	rec.Date, defaulted = ParseDate(row[types.ColDate], opts.DateLayouts)
	if defaulted {
		rec.Repairs |= types.RepairDate
	}

	rec.Quantity, defaulted = CoerceInt(row[types.ColQuantity])
	if defaulted {
		rec.Repairs |= types.RepairQuantity
	}

	rec.UnitPrice, defaulted = CoerceNonNegativeFloat(row[types.ColUnitPrice])
	if defaulted {
		rec.Repairs |= types.RepairUnitPrice
	}

	rec.Discount, defaulted = CoerceFloat(row[types.ColDiscount])
	if defaulted {
		rec.Repairs |= types.RepairDiscount
	}
	if opts.ClampDiscount {
		rec.Discount = clamp01(rec.Discount)
	}

	rec.Revenue = Revenue(rec.Quantity, rec.UnitPrice, rec.Discount)
	if math.IsInf(rec.Revenue, 0) || math.IsNaN(rec.Revenue) {
		rec.Revenue = 0
		rec.Repairs |= types.RepairRevenue
	}

	for k, v := range row {
		if coreColumns[k] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = v
	}

	return rec
}

// Revenue computes quantity * unit_price * (1 - discount).
func Revenue(quantity int64, unitPrice, discount float64) float64 {
	return float64(quantity) * unitPrice * (1 - discount)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Summarize counts the repairs recorded on cd.
func Summarize(cd *types.CleanedDataset) RepairStats {
	s := RepairStats{Rows: cd.Len()}
	if s.Rows == 0 {
		return s
	}
	for _, r := range cd.Records {
		if r.Repairs != 0 {
			s.RowsRepaired++
		}
		if r.Repairs.Has(types.RepairDate) {
			s.UnknownDates++
		}
		if r.Repairs.Has(types.RepairQuantity) {
			s.Quantities++
		}
		if r.Repairs.Has(types.RepairUnitPrice) {
			s.UnitPrices++
		}
		if r.Repairs.Has(types.RepairDiscount) {
			s.Discounts++
		}
		if r.Region == "" {
			s.MissingRegion++
		}
	}
	return s
}
