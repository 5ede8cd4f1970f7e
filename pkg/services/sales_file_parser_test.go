package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sales-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csvData := "\ufeffSales_Date,Product_Description,Quantity_Sold\n" +
		"1/1/2023,Widget,10\n" +
		"2/1/2023, Widget ,20\n" +
		"\n" +
		"3/1/2023,Widget\n" +
		"4/1/2023,Gadget,abc,extra\n"

	records, err := NewSalesFileParser(nil).Parse("sales.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, []models.RawRecord{
		{SalesDate: "1/1/2023", ProductDescription: "Widget", QuantitySold: "10"},
		{SalesDate: "2/1/2023", ProductDescription: "Widget", QuantitySold: "20"},
		{SalesDate: "3/1/2023", ProductDescription: "Widget", QuantitySold: ""},
		{SalesDate: "4/1/2023", ProductDescription: "Gadget", QuantitySold: "abc"},
	}, records)
}

func TestParseCSVAlternativeHeaders(t *testing.T) {
	csvData := "数量,日付,製品名\n5,6/1/2023,ミネラルウォーター\n"

	records, err := NewSalesFileParser(nil).Parse("SALES.CSV", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "6/1/2023", records[0].SalesDate)
	assert.Equal(t, "ミネラルウォーター", records[0].ProductDescription)
	assert.Equal(t, "5", records[0].QuantitySold)
}

func TestParseMissingColumns(t *testing.T) {
	_, err := NewSalesFileParser(nil).Parse("sales.csv", strings.NewReader("date,amount\n1/1/2023,3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_description")
	assert.Contains(t, err.Error(), "quantity_sold")
}

func TestParseEmptyFile(t *testing.T) {
	_, err := NewSalesFileParser(nil).Parse("sales.csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := NewSalesFileParser(nil).Parse("sales.json", strings.NewReader("[]"))
	assert.True(t, errors.Is(err, ErrUnsupportedFile))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"date", "product", "quantity"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"1/1/2023", "Widget", 10}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2/1/2023", "Widget", 20}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := NewSalesFileParser(nil).Parse("history.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, []models.RawRecord{
		{SalesDate: "1/1/2023", ProductDescription: "Widget", QuantitySold: "10"},
		{SalesDate: "2/1/2023", ProductDescription: "Widget", QuantitySold: "20"},
	}, records)
}

func writeDateWorkbook(t *testing.T, date1904 bool) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if date1904 {
		require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}))
	}
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Sales_Date", "Product_Description", "Quantity_Sold"}))
	for i, month := range []time.Month{time.January, time.February, time.March} {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		row := []interface{}{time.Date(2023, month, 1, 14, 30, 0, 0, time.UTC), "Widget", 10 * (i + 1)}
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSXDateCells(t *testing.T) {
	for _, date1904 := range []bool{false, true} {
		records, err := NewSalesFileParser(nil).Parse("history.xlsx", bytes.NewReader(writeDateWorkbook(t, date1904)))
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, "1/1/2023", records[0].SalesDate, "date1904=%v", date1904)
		assert.Equal(t, "2/1/2023", records[1].SalesDate, "date1904=%v", date1904)
		assert.Equal(t, "3/1/2023", records[2].SalesDate, "date1904=%v", date1904)
		assert.Equal(t, "30", records[2].QuantitySold)
	}
}

func TestXLSXDateCellsReachForecast(t *testing.T) {
	records, err := NewSalesFileParser(nil).Parse("history.xlsx", bytes.NewReader(writeDateWorkbook(t, false)))
	require.NoError(t, err)

	valid, issues := NewSalesRecordValidator(nil).Validate(records)
	assert.Len(t, valid, 3)
	assert.Empty(t, issues)

	result, err := NewSalesForecastService(ForecastOptions{Seed: 42}, nil, nil).
		Run(context.Background(), records, "Widget", "2023-04")
	require.NoError(t, err)
	assert.Len(t, result.Points, ForecastHorizonMonths)
	assert.Equal(t, 3, result.TrainingExamples)
}

func TestExcelCellDate(t *testing.T) {
	convert := excelCellDate(false)

	assert.Equal(t, "1/1/2023", convert("44927"))
	assert.Equal(t, "1/1/2023", convert("44927.604166667"))
	assert.Equal(t, "4/15/2024", convert("2024-04-15T00:00:00Z"))
	assert.Equal(t, "1/31/2023", convert("1/31/2023"))
	assert.Equal(t, "", convert(""))
	assert.Equal(t, "-5", convert("-5"))
}

func TestParseInvalidXLSX(t *testing.T) {
	_, err := NewSalesFileParser(nil).Parse("broken.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestParsedRecordsFeedValidator(t *testing.T) {
	csvData := "sales_date,product_description,quantity_sold\n1/5/2023,Widget,10\n,Widget,3\n2/5/2023,Widget,x\n"
	records, err := NewSalesFileParser(nil).Parse("s.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	valid, issues := NewSalesRecordValidator(nil).Validate(records)
	assert.Len(t, valid, 1)
	assert.Len(t, issues, 2)
}
