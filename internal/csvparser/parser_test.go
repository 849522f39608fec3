package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

var utf8Settings = config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"}

func TestParseReader(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		in := "order_id,date,region\n1,2025-01-01,North\n2,2025-01-02,\n"
		ds, err := ParseReader(strings.NewReader(in), "a.csv", utf8Settings)

		require.NoError(t, err)
		assert.Equal(t, "a.csv", ds.Source)
		assert.Equal(t, []string{"order_id", "date", "region"}, ds.Columns)
		require.Len(t, ds.Rows, 2)
		assert.Equal(t, types.Row{"order_id": "2", "date": "2025-01-02", "region": ""}, ds.Rows[1])
	})

	t.Run("BOM is stripped", func(t *testing.T) {
		ds, err := ParseReader(strings.NewReader("\xEF\xBB\xBForder_id,date\n1,x\n"), "bom.csv", utf8Settings)

		require.NoError(t, err)
		assert.Equal(t, "order_id", ds.Columns[0])
	})

	t.Run("short rows padded and blank rows skipped", func(t *testing.T) {
		in := "a,b,c\n1\n\n , ,\n4,5,6\n"
		ds, err := ParseReader(strings.NewReader(in), "s.csv", utf8Settings)

		require.NoError(t, err)
		require.Len(t, ds.Rows, 2)
		assert.Equal(t, types.Row{"a": "1", "b": "", "c": ""}, ds.Rows[0])
		assert.Equal(t, "6", ds.Rows[1]["c"])
	})

	t.Run("header only", func(t *testing.T) {
		ds, err := ParseReader(strings.NewReader("a,b\n"), "h.csv", utf8Settings)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ds.Columns)
		assert.Empty(t, ds.Rows)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader(""), "e.csv", utf8Settings)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		settings := config.CSVSettings{Delimiter: "semicolon", Encoding: "UTF-8"}
		ds, err := ParseReader(strings.NewReader("a;b\n1;2\n"), "x.csv", settings)

		require.NoError(t, err)
		assert.Equal(t, "2", ds.Rows[0]["b"])
	})

	t.Run("windows-1252", func(t *testing.T) {
		settings := config.CSVSettings{Delimiter: ",", Encoding: "windows-1252"}
		// 0xE9 is "é" in windows-1252.
		ds, err := ParseReader(strings.NewReader("region\nOr\xE9gon\n"), "w.csv", settings)

		require.NoError(t, err)
		assert.Equal(t, "Orégon", ds.Rows[0]["region"])
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		settings := config.CSVSettings{Delimiter: ",", Encoding: "EBCDIC"}
		_, err := ParseReader(strings.NewReader("a\n1\n"), "x.csv", settings)
		assert.Error(t, err)
	})
}

func TestCleanHeaders(t *testing.T) {
	got := cleanHeaders([]string{" order_id ", "", "revenue", "revenue"})
	assert.Equal(t, []string{"order_id", "Column_2", "revenue", "revenue.1"}, got)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("order_id\n7\n"), 0o644))

	ds, err := Parse(path, utf8Settings)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), utf8Settings)
	assert.ErrorContains(t, err, "failed to open file")
}
