package merger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/loader"
)

const header = "order_id,date,region,product,quantity,unit_price,discount,payment_method"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func csvRows(startID, n int) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,2025-01-%02d,North,Laptop,1,100,0.1,UPI\n", startID+i, i%28+1)
	}
	return b.String()
}

func testOptions(log *zap.Logger) Options {
	return Options{
		Loader:         loader.OptionsFromConfig(config.Default()),
		MaxConcurrency: 2,
		Logger:         log,
	}
}

func TestMergeDirSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.csv", csvRows(1, 10))
	writeFile(t, dir, "no_region.csv", "order_id,date,product,quantity,unit_price,discount\n1,2025-01-01,Phone,1,1,0\n")
	writeFile(t, dir, "notes.txt", "not sales data")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	core, logs := observer.New(zapcore.InfoLevel)
	out, err := MergeDir(context.Background(), dir, testOptions(zap.New(core)))

	require.NoError(t, err)
	assert.Equal(t, 10, out.Dataset.Len())
	assert.Equal(t, dir, out.Dataset.Source)
	assert.Equal(t, Stats{FilesSeen: 4, FilesAccepted: 1, FilesSkipped: 3, Rows: 10}, out.Stats)
	assert.Equal(t, []AcceptedFile{{File: filepath.Join(dir, "good.csv"), Rows: 10}}, out.Accepted)

	kinds := map[string]Kind{}
	for _, d := range out.Diagnostics {
		kinds[filepath.Base(d.File)] = d.Kind
	}
	assert.Equal(t, map[string]Kind{
		"archive":       KindUnsupported,
		"no_region.csv": KindSchema,
		"notes.txt":     KindUnsupported,
	}, kinds)

	for _, d := range out.Diagnostics {
		if d.Kind == KindSchema {
			assert.Equal(t, []string{"region"}, d.Missing)
		}
	}

	assert.Equal(t, 3, logs.FilterMessage("skipping input").Len())
	assert.Equal(t, 1, logs.FilterMessage("loaded input").Len())
}

func TestMergeKeepsDuplicatesAndExtraColumns(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", csvRows(1, 3))
	b := writeFile(t, dir, "b.json",
		`{"order_id":1,"date":"2025-01-01","region":"North","product":"Laptop","quantity":1,"unit_price":100,"discount":0.1,"channel":"web"}`+"\n")

	out, err := Merge(context.Background(), []string{a, b}, testOptions(nil))

	require.NoError(t, err)
	assert.Equal(t, 4, out.Dataset.Len())
	assert.True(t, out.Dataset.HasColumn("payment_method"))
	assert.True(t, out.Dataset.HasColumn("channel"))

	// Row order follows the given file order.
	assert.Equal(t, "1", out.Dataset.Rows[0]["order_id"])
	assert.Equal(t, "1", out.Dataset.Rows[3]["order_id"])
	assert.Equal(t, "web", out.Dataset.Rows[3]["channel"])
	assert.Equal(t, []AcceptedFile{{File: a, Rows: 3}, {File: b, Rows: 1}}, out.Accepted)
}

func TestMergeReadFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", csvRows(1, 2))
	bad := writeFile(t, dir, "broken.xlsx", "definitely not a workbook")

	out, err := Merge(context.Background(), []string{good, bad}, testOptions(nil))

	require.NoError(t, err)
	assert.Equal(t, 2, out.Dataset.Len())
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, KindReadFailure, out.Diagnostics[0].Kind)
}

func TestMergeNoValidInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# nothing here")
	writeFile(t, dir, "partial.csv", "order_id,date\n1,2025-01-01\n")

	out, err := MergeDir(context.Background(), dir, testOptions(nil))

	require.ErrorIs(t, err, ErrNoValidInput)
	require.NotNil(t, out)
	assert.Len(t, out.Diagnostics, 2)
	assert.Zero(t, out.Stats.FilesAccepted)
}

func TestMergeEmptyDirectory(t *testing.T) {
	_, err := MergeDir(context.Background(), t.TempDir(), testOptions(nil))
	assert.ErrorIs(t, err, ErrNoValidInput)
}

func TestMergeDirMissing(t *testing.T) {
	_, err := MergeDir(context.Background(), filepath.Join(t.TempDir(), "nope"), testOptions(nil))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoValidInput)
}

func TestMergeCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", csvRows(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Merge(ctx, []string{path}, testOptions(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeIsDeterministicAcrossConcurrency(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 6; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("part_%d.csv", i), csvRows(i*100, 5)))
	}

	serial := testOptions(nil)
	serial.MaxConcurrency = 1
	parallel := testOptions(nil)
	parallel.MaxConcurrency = 8

	a, err := Merge(context.Background(), paths, serial)
	require.NoError(t, err)
	b, err := Merge(context.Background(), paths, parallel)
	require.NoError(t, err)

	assert.Equal(t, a.Dataset.Rows, b.Dataset.Rows)
}
