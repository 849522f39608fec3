// =============================================================================
// Sales Pipeline - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - loader / csvparser / jsonparser / xlsxparser
//   - validation
//   - merger
//   - cleaner
//   - aggregator
//   - report
//
// =============================================================================

package types

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Column names of a sales extract. Names are matched exactly (case-sensitive).
const (
	ColOrderID       = "order_id"
	ColDate          = "date"
	ColRegion        = "region"
	ColProduct       = "product"
	ColQuantity      = "quantity"
	ColUnitPrice     = "unit_price"
	ColDiscount      = "discount"
	ColPaymentMethod = "payment_method"
	ColRevenue       = "revenue"
)

// RequiredColumns is the fixed column set every input file must expose before
// its rows may enter the merge.
var RequiredColumns = []string{
	ColOrderID,
	ColDate,
	ColRegion,
	ColProduct,
	ColQuantity,
	ColUnitPrice,
	ColDiscount,
}

// NullKey is the group key of records with no region or product. Cell text
// is trimmed on load, so the empty key never collides with a present value.
const NullKey = ""

// UniqueColumns returns names with repeated entries suffixed in order of
// appearance (amount, amount.1, amount.2). A suffix already taken by another
// column is skipped, so every returned name is distinct.
func UniqueColumns(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	count := make(map[string]int, len(names))
	for i, n := range names {
		c, dup := count[n]
		count[n] = c + 1
		if !dup {
			out[i] = n
			continue
		}
		name := n
		for k := c; ; k++ {
			name = n + "." + strconv.Itoa(k)
			if !taken[name] {
				count[n] = k + 1
				break
			}
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// =============================================================================
// RAW DATASET
// =============================================================================

// Row is one raw transaction line as read from a source file.
// Key is the column header, value is the trimmed cell text. Missing and null
// cells are represented by the empty string.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered collection of raw rows.
type Dataset struct {
	// Source is the file the rows were read from.
	// For a merged dataset this is the input directory.
	Source string

	// Columns lists the column headers in first-seen order.
	Columns []string

	// Rows contains the data rows.
	Rows []Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether the dataset exposes the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append concatenates other onto d. Columns are unioned in first-seen order;
// rows are appended verbatim, duplicates included.
func (d *Dataset) Append(other *Dataset) {
	if other == nil {
		return
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range other.Columns {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			d.Columns = append(d.Columns, c)
		}
	}
	d.Rows = append(d.Rows, other.Rows...)
}

// =============================================================================
// CLEANED DATASET
// =============================================================================

// Date is a calendar date or the "unknown" marker.
//
// The zero value is the unknown marker. It is disjoint from every parsed date
// because Known is only set by the date parser, so a source value such as
// "0001-01-01" is still a known date.
type Date struct {
	Time  time.Time
	Known bool
}

// KnownDate wraps t as a known calendar date.
func KnownDate(t time.Time) Date {
	return Date{Time: t, Known: true}
}

// Month returns the "YYYY-MM" period of the date.
// The second return value is false for the unknown marker.
func (d Date) Month() (string, bool) {
	if !d.Known {
		return "", false
	}
	return d.Time.Format("2006-01"), true
}

// String formats the date as YYYY-MM-DD, or "unknown".
func (d Date) String() string {
	if !d.Known {
		return "unknown"
	}
	return d.Time.Format("2006-01-02")
}

// Repair is a bit set of the fields whose values were defaulted by coercion.
type Repair uint8

const (
	RepairDate Repair = 1 << iota
	RepairQuantity
	RepairUnitPrice
	RepairDiscount
	RepairRevenue
)

// Has reports whether all bits of f are set.
func (r Repair) Has(f Repair) bool {
	return r&f == f
}

// CleanedRecord is one transaction after type coercion and revenue derivation.
type CleanedRecord struct {
	OrderID       string
	Date          Date
	Region        string
	Product       string
	Quantity      int64
	UnitPrice     float64
	Discount      float64
	PaymentMethod string

	// Revenue is quantity * unit_price * (1 - discount), computed from the
	// coerced fields. It is never read from the source.
	Revenue float64

	// Repairs records which fields were defaulted.
	Repairs Repair

	// Extra holds non-core source columns, passed through untouched.
	Extra map[string]string
}

// CleanedDataset is a Dataset after cleaning.
type CleanedDataset struct {
	// Columns lists the source columns in first-seen order (without revenue).
	Columns []string

	Records []CleanedRecord
}

// Len returns the number of records.
func (c *CleanedDataset) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// =============================================================================
// AGGREGATES
// =============================================================================

// Aggregate dimensions.
const (
	DimensionMonth   = "month"
	DimensionRegion  = "region"
	DimensionProduct = "product"
)

// Group is one group key with its summed revenue.
type Group struct {
	Key     string
	Revenue decimal.Decimal
}

// Aggregate maps group keys of one dimension to summed revenue.
// Groups are sorted ascending by key.
type Aggregate struct {
	Dimension string
	Groups    []Group
}

// Get returns the revenue of the group with the given key.
func (a *Aggregate) Get(key string) (decimal.Decimal, bool) {
	for _, g := range a.Groups {
		if g.Key == key {
			return g.Revenue, true
		}
	}
	return decimal.Zero, false
}

// Total returns the sum of all group revenues.
func (a *Aggregate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range a.Groups {
		total = total.Add(g.Revenue)
	}
	return total
}

// Keys returns the group keys in order.
func (a *Aggregate) Keys() []string {
	keys := make([]string, len(a.Groups))
	for i, g := range a.Groups {
		keys[i] = g.Key
	}
	return keys
}
