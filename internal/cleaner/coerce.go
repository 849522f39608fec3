package cleaner

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// DefaultDateLayouts are tried in order when no layouts are configured.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseDate parses s with the first matching layout.
// JSON exports that store dates as epoch milliseconds (13 digits) are
// accepted as well. The second return value is true when s could not be
// parsed and the unknown marker was returned instead.
func ParseDate(s string, layouts []string) (types.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Date{}, true
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.KnownDate(t), false
		}
	}

	if len(s) == 13 {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms >= 0 {
			return types.KnownDate(time.UnixMilli(ms).UTC()), false
		}
	}

	return types.Date{}, true
}

// CoerceFloat parses s as a finite number. Missing, non-numeric, NaN and
// infinite values become 0 with defaulted set.
func CoerceFloat(s string) (value float64, defaulted bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true
	}
	return f, false
}

// CoerceNonNegativeFloat is CoerceFloat that also defaults negative values.
func CoerceNonNegativeFloat(s string) (float64, bool) {
	f, defaulted := CoerceFloat(s)
	if f < 0 {
		return 0, true
	}
	return f, defaulted
}

// CoerceInt parses s as a non-negative integer. Decimal text is truncated
// toward zero ("2.0" and "2.9" both give 2). Missing, non-numeric, negative
// and out-of-range values become 0 with defaulted set.
func CoerceInt(s string) (value int64, defaulted bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, true
		}
		return n, false
	}

	f, defaulted := CoerceFloat(s)
	if defaulted || f < 0 || f >= math.MaxInt64 {
		return 0, true
	}
	return int64(f), false
}
