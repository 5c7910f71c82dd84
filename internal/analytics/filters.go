package analytics

import (
	"strings"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// Filter narrows the denormalized row set. Dimensions are AND-combined;
// values within a dimension are OR-combined. Zero values mean "no
// restriction".
type Filter struct {
	// From and To bound the transaction date, inclusive, at day
	// granularity. Rows with an unknown date never match a bounded range.
	From time.Time
	To   time.Time

	Divisions      []string
	PaymentMethods []string
}

// IsEmpty reports whether the filter places no restriction at all.
func (f Filter) IsEmpty() bool {
	return f.From.IsZero() && f.To.IsZero() &&
		len(f.Divisions) == 0 && len(f.PaymentMethods) == 0
}

// Apply returns the rows matching the filter in a single pass. The filter is
// applied once per request and the result is shared by every summary, so
// simultaneously displayed charts always agree. An empty filter returns the
// input unchanged.
func Apply(rows []domain.DenormalizedRow, f Filter) []domain.DenormalizedRow {
	if f.IsEmpty() {
		return rows
	}

	divisions := toLowerSet(f.Divisions)
	payments := toLowerSet(f.PaymentMethods)

	matched := make([]domain.DenormalizedRow, 0, len(rows))
	for _, row := range rows {
		if !matchesDateRange(row.Date, f.From, f.To) {
			continue
		}
		if divisions != nil && !divisions[strings.ToLower(row.Division)] {
			continue
		}
		if payments != nil && !payments[strings.ToLower(row.TransType)] {
			continue
		}
		matched = append(matched, row)
	}
	return matched
}

func matchesDateRange(date, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if date.IsZero() {
		return false
	}
	day := date.Truncate(24 * time.Hour)
	if !from.IsZero() && day.Before(from.Truncate(24*time.Hour)) {
		return false
	}
	if !to.IsZero() && day.After(to.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// toLowerSet converts a string slice to a lowercase lookup set, or nil for
// an empty slice.
func toLowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
