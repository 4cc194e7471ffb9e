package census

import (
	"fmt"
	"strconv"
	"time"
)

const isoDateLayout = "2006-01-02"

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
// Dates are stored and compared as strings, so the format is load-bearing:
// lexicographic order on this layout equals chronological order.
func ValidateDate(s string) error {
	if len(s) != len(isoDateLayout) {
		return fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	if _, err := time.Parse(isoDateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return nil
}

// ShiftYear moves an ISO date by delta years by rewriting the leading 4-digit
// year and leaving month and day untouched. This is deliberately calendar
// naive: shifting 2024-02-29 by -1 yields 2023-02-29, which matches no stored
// record, so a leap-day bucket simply has no counterpart in a non-leap year's
// series. Year-over-year charts depend on this exact behavior.
func ShiftYear(date string, delta int) string {
	if len(date) < 4 {
		return date
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return date
	}
	return fmt.Sprintf("%04d%s", year+delta, date[4:])
}

// Range is an inclusive [Start, End] date window.
type Range struct {
	Start string
	End   string
}

// Validate checks that both bounds are present, well formed, and ordered.
func (r Range) Validate() error {
	if r.Start == "" || r.End == "" {
		return fmt.Errorf("startDate and endDate are required")
	}
	if err := ValidateDate(r.Start); err != nil {
		return err
	}
	if err := ValidateDate(r.End); err != nil {
		return err
	}
	if r.Start > r.End {
		return fmt.Errorf("startDate %s is after endDate %s", r.Start, r.End)
	}
	return nil
}

// shifted returns the same window one year earlier.
func (r Range) shifted() Range {
	return Range{Start: ShiftYear(r.Start, -1), End: ShiftYear(r.End, -1)}
}

// RangeFilter is an optional date window for the breakdowns that accept
// partial bounds.
type RangeFilter struct {
	Start string
	End   string
}

// Validate checks whichever bounds are present. A missing bound is not an
// error; these queries default to the full dataset.
func (f RangeFilter) Validate() error {
	if f.Start != "" {
		if err := ValidateDate(f.Start); err != nil {
			return err
		}
	}
	if f.End != "" {
		if err := ValidateDate(f.End); err != nil {
			return err
		}
	}
	if f.Start != "" && f.End != "" && f.Start > f.End {
		return fmt.Errorf("startDate %s is after endDate %s", f.Start, f.End)
	}
	return nil
}

// VisitTypeFilter adds the optional department restriction the visit-type
// breakdown accepts on top of the optional date window.
type VisitTypeFilter struct {
	RangeFilter
	Department string
}
