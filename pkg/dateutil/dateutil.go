package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the YYYY-MM form used for plan start months and period labels.
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM string into the first day of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t, nil
}

// BeginningOfMonth returns the first instant of the month containing date
func BeginningOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// AddMonths adds a specified number of months to the first day of date's month.
// Anchoring on day one avoids AddDate normalisation (Jan 31 + 1 month = Mar 3).
func AddMonths(date time.Time, months int) time.Time {
	return BeginningOfMonth(date).AddDate(0, months, 0)
}

// PeriodDate returns the calendar month for a 1-based projection period.
func PeriodDate(start time.Time, period int) time.Time {
	return AddMonths(start, period-1)
}

// PeriodLabel returns the YYYY-MM label for a 1-based projection period.
func PeriodLabel(start time.Time, period int) string {
	return PeriodDate(start, period).Format(MonthLayout)
}

// MonthsBetween returns the whole calendar months from one date to another.
func MonthsBetween(fromDate, toDate time.Time) int {
	return (toDate.Year()-fromDate.Year())*12 + int(toDate.Month()) - int(fromDate.Month())
}

// YearsFromMonths converts a month count into fractional years.
func YearsFromMonths(months int) float64 {
	return float64(months) / 12
}
