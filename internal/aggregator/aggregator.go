// Package aggregator groups a CleanedDataset by month, region and product
// and sums revenue per group.
//
// Sums are accumulated as decimals. Each record's float revenue converts to
// its shortest round-trip decimal, and decimal addition is exact, so the
// totals do not depend on the order in which the merged rows arrived.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// Result holds the three aggregates of one run.
type Result struct {
	Monthly  types.Aggregate
	Regional types.Aggregate
	Product  types.Aggregate
}

// All returns the aggregates in report order.
func (r *Result) All() []*types.Aggregate {
	return []*types.Aggregate{&r.Monthly, &r.Regional, &r.Product}
}

// keyFunc returns the group key of a record, or false to leave the record
// out of the aggregate.
type keyFunc func(rec *types.CleanedRecord) (string, bool)

func monthKey(rec *types.CleanedRecord) (string, bool) {
	return rec.Date.Month()
}

// Records without a region or product group under types.NullKey.
func regionKey(rec *types.CleanedRecord) (string, bool) {
	return rec.Region, true
}

func productKey(rec *types.CleanedRecord) (string, bool) {
	return rec.Product, true
}

var dimensions = []struct {
	name string
	key  keyFunc
}{
	{types.DimensionMonth, monthKey},
	{types.DimensionRegion, regionKey},
	{types.DimensionProduct, productKey},
}

// Aggregate computes the monthly, regional and product aggregates.
// Records with an unknown date count toward region and product only.
func Aggregate(cd *types.CleanedDataset) *Result {
	res := &Result{}
	for i, agg := range res.All() {
		*agg = groupBy(cd, dimensions[i].name, dimensions[i].key)
	}
	return res
}

func groupBy(cd *types.CleanedDataset, dimension string, key keyFunc) types.Aggregate {
	sums := make(map[string]decimal.Decimal)
	if cd != nil {
		for i := range cd.Records {
			rec := &cd.Records[i]
			k, ok := key(rec)
			if !ok {
				continue
			}
			sums[k] = sums[k].Add(decimal.NewFromFloat(rec.Revenue))
		}
	}

	agg := types.Aggregate{Dimension: dimension, Groups: make([]types.Group, 0, len(sums))}
	for k, v := range sums {
		agg.Groups = append(agg.Groups, types.Group{Key: k, Revenue: v})
	}
	sort.Slice(agg.Groups, func(i, j int) bool {
		return agg.Groups[i].Key < agg.Groups[j].Key
	})
	return agg
}

// Verify recomputes every group sum directly from cd and reports the first
// group that disagrees with res.
func Verify(cd *types.CleanedDataset, res *Result) error {
	for i, agg := range res.All() {
		if agg.Dimension != dimensions[i].name {
			return fmt.Errorf("aggregate %d: dimension %q, want %q", i, agg.Dimension, dimensions[i].name)
		}

		want := make(map[string]decimal.Decimal)
		if cd != nil {
			for j := range cd.Records {
				if k, ok := dimensions[i].key(&cd.Records[j]); ok {
					want[k] = want[k].Add(decimal.NewFromFloat(cd.Records[j].Revenue))
				}
			}
		}

		if len(want) != len(agg.Groups) {
			return fmt.Errorf("%s aggregate has %d groups, want %d", agg.Dimension, len(agg.Groups), len(want))
		}
		for _, g := range agg.Groups {
			w, ok := want[g.Key]
			if !ok {
				return fmt.Errorf("%s aggregate has unexpected group %q", agg.Dimension, g.Key)
			}
			if !w.Equal(g.Revenue) {
				return fmt.Errorf("%s aggregate group %q sums to %s, want %s", agg.Dimension, g.Key, g.Revenue, w)
			}
		}
	}
	return nil
}
