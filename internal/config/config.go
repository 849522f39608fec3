// =============================================================================
// Sales Pipeline - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the pipeline
// configuration file. Every setting has a default, so the configuration file
// itself is optional.
//
// CONFIGURATION FILE (config.yaml):
//
//   input_dir: ./data/raw
//   output_dir: ./reports
//   log_level: info
//   log_format: console
//   max_concurrency: 4
//   csv:
//     delimiter: ","
//     encoding: UTF-8
//   cleaning:
//     clamp_discount: false
//   report:
//     title: Sales Report
//     formats: [csv, xlsx, xml]
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the pipeline configuration.
type Config struct {
	// InputDir is the directory scanned for sales extracts.
	// Default: "./data/raw"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where reports are written.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// LogFile is "stdout", "stderr" or a file path.
	// Default: "stderr"
	LogFile string `yaml:"log_file"`

	// MaxConcurrency bounds how many input files are read at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	CSV      CSVSettings      `yaml:"csv"`
	Cleaning CleaningSettings `yaml:"cleaning"`
	Report   ReportSettings   `yaml:"report"`
}

// CSVSettings contains settings for reading tabular-text files.
type CSVSettings struct {
	// Delimiter is the field separator. Accepts a single character or one of
	// "tab", "pipe", "semicolon".
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the files.
	// Supported: UTF-8, windows-1252, ISO-8859-1.
	Encoding string `yaml:"encoding"`
}

// CleaningSettings controls field coercion.
type CleaningSettings struct {
	// DateLayouts overrides the accepted date layouts (Go reference time).
	// Empty means the built-in layout list.
	DateLayouts []string `yaml:"date_layouts"`

	// ClampDiscount clamps discount into [0,1]. Off by default, which keeps
	// out-of-range source values as they are.
	ClampDiscount bool `yaml:"clamp_discount"`
}

// ReportSettings controls the report emitter.
type ReportSettings struct {
	// Title is written at the top of the workbook and XML summary.
	Title string `yaml:"title"`

	// Formats lists the artifacts to emit: csv, xlsx, xml.
	Formats []string `yaml:"formats"`
}

// Report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

var supportedFormats = map[string]bool{
	FormatCSV:  true,
	FormatXLSX: true,
	FormatXML:  true,
}

var supportedEncodings = map[string]bool{
	"utf-8":        true,
	"utf8":         true,
	"windows-1252": true,
	"cp1252":       true,
	"iso-8859-1":   true,
	"latin1":       true,
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
//
// PARAMETERS:
//   - path: The path to the YAML file.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file cannot be read, parsed or fails validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults fills in default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./data/raw"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./reports"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "stderr"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "UTF-8"
	}
	if cfg.Report.Title == "" {
		cfg.Report.Title = "Sales Report"
	}
	if len(cfg.Report.Formats) == 0 {
		cfg.Report.Formats = []string{FormatCSV, FormatXLSX, FormatXML}
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative (got %d)", c.MaxConcurrency)
	}
	if !supportedEncodings[strings.ToLower(c.CSV.Encoding)] {
		return fmt.Errorf("unsupported csv encoding %q", c.CSV.Encoding)
	}
	if _, err := c.CSV.Comma(); err != nil {
		return err
	}
	for _, f := range c.Report.Formats {
		if !supportedFormats[strings.ToLower(f)] {
			return fmt.Errorf("unsupported report format %q", f)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	return nil
}

// Comma resolves Delimiter to the rune used by the CSV reader.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "", ",":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}
	r := []rune(s.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid csv delimiter %q", s.Delimiter)
	}
	return r[0], nil
}

// WantsFormat reports whether the report format f is enabled.
func (r ReportSettings) WantsFormat(f string) bool {
	for _, v := range r.Formats {
		if strings.EqualFold(v, f) {
			return true
		}
	}
	return false
}
