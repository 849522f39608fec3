// =============================================================================
// Sales Pipeline - Schema Validation Module
// =============================================================================
//
// This module is the schema gate of the pipeline. A Dataset may enter the
// merge only if it exposes every required column (see types.RequiredColumns).
//
// VALIDATION RULES:
//   - Column names are matched exactly (case-sensitive)
//   - Extra columns (payment_method, a stale revenue column, ...) are allowed
//     and passed through untouched
//   - Cell contents are not inspected here; bad values are repaired later by
//     the cleaner
//
// A failed validation is not fatal to a run: the merger excludes the file and
// reports the missing columns.
//
// =============================================================================

package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the outcome of checking one Dataset.
type Result struct {
	// Valid is true when no required column is missing.
	Valid bool

	// Missing lists the absent required columns in required-column order.
	Missing []string
}

// Error describes a Dataset rejected by the schema gate.
type Error struct {
	// Source is the file the Dataset was read from.
	Source string

	// Missing lists the absent required columns.
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: missing required columns [%s]",
		filepath.Base(e.Source), strings.Join(e.Missing, ", "))
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate checks ds against the required column set.
func Validate(ds *types.Dataset) Result {
	return ValidateColumns(ds, types.RequiredColumns)
}

// ValidateColumns checks ds against an explicit column set.
func ValidateColumns(ds *types.Dataset, required []string) Result {
	present := make(map[string]struct{})
	if ds != nil {
		for _, c := range ds.Columns {
			present[c] = struct{}{}
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}

	return Result{
		Valid:   len(missing) == 0,
		Missing: missing,
	}
}

// Check runs Validate and returns an *Error for a rejected Dataset.
func Check(ds *types.Dataset) error {
	res := Validate(ds)
	if res.Valid {
		return nil
	}
	source := ""
	if ds != nil {
		source = ds.Source
	}
	return &Error{Source: source, Missing: res.Missing}
}
