package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/merger"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

const header = "order_id,date,region,product,quantity,unit_price,discount,payment_method"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func run(t *testing.T, dir string) (*Result, error) {
	t.Helper()
	return New(config.Default(), zaptest.NewLogger(t)).Run(context.Background(), dir)
}

func TestRunSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "%d,2025-0%d-10,South,Phone,2,100,0.5,UPI\n", 1000+i, i%3+1)
	}
	writeFile(t, dir, "sales.csv", b.String())
	writeFile(t, dir, "no_region.csv", "order_id,date,product,quantity,unit_price,discount\n1,2025-01-01,Phone,1,1,0\n")
	writeFile(t, dir, "readme.md", "# notes")

	res, err := run(t, dir)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Dataset.Len())
	assert.Equal(t, 10, res.Cleaned.Len())
	assert.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 2, res.Stats.Merge.FilesSkipped)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.RunID))

	total, ok := res.Aggregates.Regional.Get("South")
	require.True(t, ok)
	assert.Equal(t, "1000", total.String())
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, res.Aggregates.Monthly.Keys())
}

func TestRunInvalidQuantity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", header+"\n1,2025-01-01,North,Laptop,abc,100,0.1,Card\n")

	res, err := run(t, dir)
	require.NoError(t, err)

	require.Equal(t, 1, res.Cleaned.Len())
	rec := res.Cleaned.Records[0]
	assert.Equal(t, int64(0), rec.Quantity)
	assert.Equal(t, 0.0, rec.Revenue)
	assert.Equal(t, 1, res.Stats.Repairs.Quantities)
}

func TestRunNoValidInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "order_id,date\n1,2025-01-01\n")
	writeFile(t, dir, "data.parquet", "PAR1")

	res, err := run(t, dir)
	require.ErrorIs(t, err, merger.ErrNoValidInput)

	require.NotNil(t, res)
	assert.Nil(t, res.Aggregates)
	assert.Nil(t, res.Cleaned)
	assert.Len(t, res.Diagnostics, 2)
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestRunKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	line := "42,2025-04-01,West,Tablet,1,20000,0,COD\n"
	writeFile(t, dir, "a.csv", header+"\n"+line+line)

	res, err := run(t, dir)
	require.NoError(t, err)

	require.Equal(t, 2, res.Cleaned.Len())
	got, ok := res.Aggregates.Product.Get("Tablet")
	require.True(t, ok)
	assert.Equal(t, "40000", got.String())
}

func TestRunMixedFormatsIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", header+"\n1,2025-01-05,North,Laptop,1,60000.5,0.1,UPI\n2,2025-02-07,,Phone,3,29999.99,,Card\n")
	writeFile(t, dir, "b.json",
		`{"order_id":3,"date":"2025-01-09","region":"East","product":"Camera","quantity":2,"unit_price":45000.25,"discount":0.05}`+"\n"+
			`{"order_id":4,"date":"bad","region":"South","product":"Laptop","quantity":1,"unit_price":59000,"discount":0.2}`+"\n")

	first, err := run(t, dir)
	require.NoError(t, err)
	second, err := run(t, dir)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	for i, agg := range first.Aggregates.All() {
		other := second.Aggregates.All()[i]
		require.Equal(t, agg.Keys(), other.Keys())
		for j := range agg.Groups {
			assert.True(t, agg.Groups[j].Revenue.Equal(other.Groups[j].Revenue))
		}
	}

	assert.Equal(t, []string{types.NullKey, "East", "North", "South"}, first.Aggregates.Regional.Keys())
	assert.Equal(t, 1, first.Stats.Repairs.UnknownDates)
	assert.True(t, first.Aggregates.Regional.Total().GreaterThan(first.Aggregates.Monthly.Total()))
}

func TestRevenueIsRecomputed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", header+",revenue\n1,2025-01-01,North,Phone,2,100,0.25,UPI,1\n")

	res, err := run(t, dir)
	require.NoError(t, err)

	assert.InDelta(t, 150.0, res.Cleaned.Records[0].Revenue, 1e-9)
	assert.NotContains(t, res.Cleaned.Columns, types.ColRevenue)
}
