package services

import (
	"fmt"
	"strings"
	"time"
)

// ForecastHorizonMonths is the number of months projected by a forecast run.
const ForecastHorizonMonths = 6

// YearMonth is a calendar month of a specific year. Month is 1..12.
type YearMonth struct {
	Year  int
	Month int
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidStartDate, s)
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// Label renders the month as "<MonthName> <Year>", e.g. "April 2023".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", time.Month(ym.Month), ym.Year)
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// GenerateHorizon returns months consecutive months beginning with start,
// rolling the year over after December.
func GenerateHorizon(start YearMonth, months int) []YearMonth {
	if months <= 0 {
		return nil
	}
	horizon := make([]YearMonth, months)
	for i := 0; i < months; i++ {
		offset := start.Month + i - 1
		horizon[i] = YearMonth{
			Year:  start.Year + offset/monthsPerYear,
			Month: offset%monthsPerYear + 1,
		}
	}
	return horizon
}
