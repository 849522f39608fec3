// Package loader reads a single sales extract of a recognized format into a
// raw Dataset. The format is inferred from the file extension.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/sales-pipeline/internal/config"
	"github.com/ginjaninja78/sales-pipeline/internal/csvparser"
	"github.com/ginjaninja78/sales-pipeline/internal/jsonparser"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
	"github.com/ginjaninja78/sales-pipeline/internal/xlsxparser"
)

// ErrUnsupportedFormat is returned for files whose extension maps to no
// known format. Callers skip such files; it is not a failure of the run.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a recognized input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

var extensions = map[string]Format{
	".csv":    FormatCSV,
	".json":   FormatJSON,
	".jsonl":  FormatJSON,
	".ndjson": FormatJSON,
	".xlsx":   FormatXLSX,
}

// Options configures the per-format parsers.
type Options struct {
	CSV config.CSVSettings
}

// OptionsFromConfig builds loader options from the pipeline configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{CSV: cfg.CSV}
}

// DetectFormat maps the file extension (case-insensitive) to a Format.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: no file extension", ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Load reads the file at path. It returns an error wrapping
// ErrUnsupportedFormat for unknown extensions and a read error otherwise.
func Load(path string, opts Options) (*types.Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var ds *types.Dataset
	switch format {
	case FormatCSV:
		ds, err = csvparser.Parse(path, opts.CSV)
	case FormatJSON:
		ds, err = jsonparser.Parse(path)
	case FormatXLSX:
		ds, err = xlsxparser.Parse(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", format, err)
	}
	return ds, nil
}
