package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"sales-forecast-api/pkg/models"
)

// ValidRecord is a raw record whose date and quantity have been parsed.
type ValidRecord struct {
	Month              int
	Year               int
	ProductDescription string
	QuantitySold       float64
}

// MonthIndex returns the absolute month counter year*12 + month.
func (r ValidRecord) MonthIndex() int {
	return r.Year*monthsPerYear + r.Month
}

// RecordIssue describes a raw record that was skipped.
type RecordIssue struct {
	Row    int // 0-based position in the input
	Reason string
}

func (i RecordIssue) Error() string {
	return fmt.Sprintf("row %d: %s", i.Row, i.Reason)
}

func (i RecordIssue) Unwrap() error {
	return ErrMalformedRecord
}

// SalesRecordValidator filters raw records down to typed, well-formed ones.
type SalesRecordValidator struct {
	logger *slog.Logger
}

// NewSalesRecordValidator creates a validator. A nil logger falls back to slog.Default().
func NewSalesRecordValidator(logger *slog.Logger) *SalesRecordValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesRecordValidator{logger: logger}
}

// Validate returns the well-formed records in input order together with one
// issue per skipped record. An empty result is not an error.
func (v *SalesRecordValidator) Validate(raw []models.RawRecord) ([]ValidRecord, []RecordIssue) {
	valid := make([]ValidRecord, 0, len(raw))
	var issues []RecordIssue

	for i, rec := range raw {
		record, reason := validateRecord(rec)
		if reason != "" {
			issue := RecordIssue{Row: i, Reason: reason}
			issues = append(issues, issue)
			v.logger.Warn("Skipping malformed sales record",
				slog.Int("row", i),
				slog.String("sales_date", rec.SalesDate),
				slog.String("reason", reason))
			continue
		}
		valid = append(valid, record)
	}

	return valid, issues
}

func validateRecord(rec models.RawRecord) (ValidRecord, string) {
	if strings.TrimSpace(rec.SalesDate) == "" {
		return ValidRecord{}, "missing sales_date"
	}
	quantity, err := coerceQuantity(rec.QuantitySold)
	if err != nil {
		return ValidRecord{}, err.Error()
	}
	month, year, err := parseSalesDate(rec.SalesDate)
	if err != nil {
		return ValidRecord{}, err.Error()
	}
	return ValidRecord{
		Month:              month,
		Year:               year,
		ProductDescription: strings.TrimSpace(rec.ProductDescription),
		QuantitySold:       quantity,
	}, ""
}

// parseSalesDate reads month and year from an M/D/YYYY date, ignoring any
// trailing time component ("1/31/2023 14:00").
func parseSalesDate(s string) (month, year int, err error) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	datePart, _, _ = strings.Cut(datePart, "T")

	fields := strings.Split(datePart, "/")
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("sales_date %q is not M/D/Y", s)
	}

	month, err = strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || month < 1 || month > monthsPerYear {
		return 0, 0, fmt.Errorf("sales_date %q has invalid month", s)
	}

	yearField := strings.TrimSpace(fields[2])
	if len(yearField) != 4 {
		return 0, 0, fmt.Errorf("sales_date %q needs a 4-digit year", s)
	}
	year, err = strconv.Atoi(yearField)
	if err != nil {
		return 0, 0, fmt.Errorf("sales_date %q has invalid year", s)
	}

	return month, year, nil
}

// coerceQuantity accepts JSON numbers and numeric strings. The result must be
// finite and non-negative.
func coerceQuantity(v interface{}) (float64, error) {
	var q float64
	switch x := v.(type) {
	case float64:
		q = x
	case float32:
		q = float64(x)
	case int:
		q = float64(x)
	case int64:
		q = float64(x)
	case int32:
		q = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("quantity_sold %q is not a number", x.String())
		}
		q = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("quantity_sold %q is not a number", x)
		}
		q = f
	case nil:
		return 0, fmt.Errorf("missing quantity_sold")
	default:
		return 0, fmt.Errorf("quantity_sold has unsupported type %T", v)
	}

	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, fmt.Errorf("quantity_sold is not finite")
	}
	if q < 0 {
		return 0, fmt.Errorf("quantity_sold %g is negative", q)
	}
	return q, nil
}
