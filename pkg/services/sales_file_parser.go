package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sales-forecast-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// Accepted header names per column, matched case-insensitively.
var (
	dateColumnNames     = []string{"sales_date", "date", "日付"}
	productColumnNames  = []string{"product_description", "product", "product_name", "製品名", "商品名", "製品"}
	quantityColumnNames = []string{"quantity_sold", "quantity", "sales", "販売数", "数量"}
)

// SalesFileParser turns an uploaded CSV or XLSX sales history into raw
// records. Row-level problems are left for the validator; only a missing
// header or an unreadable file fails the parse.
type SalesFileParser struct {
	logger *slog.Logger
}

// NewSalesFileParser creates a parser. A nil logger falls back to slog.Default().
func NewSalesFileParser(logger *slog.Logger) *SalesFileParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesFileParser{logger: logger}
}

// Parse reads r according to the extension of fileName.
func (p *SalesFileParser) Parse(fileName string, r io.Reader) ([]models.RawRecord, error) {
	var rows [][]string
	var convertDate func(string) string
	var err error

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		rows, err = readCSVRows(r)
	case ".xlsx":
		var date1904 bool
		rows, date1904, err = readXLSXRows(r)
		convertDate = excelCellDate(date1904)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
	}
	if err != nil {
		return nil, err
	}

	records, err := p.parseRows(rows, convertDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	p.logger.Info("Parsed sales file",
		slog.String("file", fileName),
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)))
	return records, nil
}

// ParseRows maps a header row plus data rows to raw records. Blank rows are
// dropped; short rows produce records with empty fields.
func (p *SalesFileParser) ParseRows(rows [][]string) ([]models.RawRecord, error) {
	return p.parseRows(rows, nil)
}

// parseRows is ParseRows with an optional rewrite of the date cell.
func (p *SalesFileParser) parseRows(rows [][]string, convertDate func(string) string) ([]models.RawRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	dateCol := findIndex(header, dateColumnNames...)
	productCol := findIndex(header, productColumnNames...)
	quantityCol := findIndex(header, quantityColumnNames...)

	var missing []string
	if dateCol == -1 {
		missing = append(missing, "sales_date")
	}
	if productCol == -1 {
		missing = append(missing, "product_description")
	}
	if quantityCol == -1 {
		missing = append(missing, "quantity_sold")
	}
	if len(missing) > 0 {
		p.logger.Warn("Sales file header is missing columns",
			slog.Any("header", header),
			slog.Any("missing", missing))
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		date := cell(row, dateCol)
		if convertDate != nil {
			date = convertDate(date)
		}
		records = append(records, models.RawRecord{
			SalesDate:          date,
			ProductDescription: cell(row, productCol),
			QuantitySold:       cell(row, quantityCol),
		})
	}
	return records, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readXLSXRows reads the first sheet without number formats, so date cells
// come back as serial numbers. It also reports the workbook's date system.
func readXLSXRows(r io.Reader) ([][]string, bool, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read XLSX rows: %w", err)
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	return rows, date1904, nil
}

// excelCellDate renders serial and ISO 8601 date cells as M/D/YYYY.
// Text dates pass through unchanged.
func excelCellDate(date1904 bool) func(string) string {
	return func(value string) string {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				return value
			}
			return t.Format("1/2/2006")
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.Format("1/2/2006")
		}
		return value
	}
}

// findIndex returns the position of the first candidate found in slice.
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(item, candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
