package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHistoryStatistics(t *testing.T) {
	records := []ValidRecord{
		{Month: 1, Year: 2023, ProductDescription: "Widget", QuantitySold: 10},
		{Month: 1, Year: 2023, ProductDescription: "Widget", QuantitySold: 5},
		{Month: 2, Year: 2023, ProductDescription: "Widget", QuantitySold: 20},
		{Month: 3, Year: 2023, ProductDescription: "Widget", QuantitySold: 25},
		{Month: 1, Year: 2024, ProductDescription: "Widget", QuantitySold: 40},
		{Month: 2, Year: 2023, ProductDescription: "Gadget", QuantitySold: 1000},
	}

	stats, err := ProductHistoryStatistics(records, "Widget")
	require.NoError(t, err)

	// monthly totals in order: 15, 20, 25, 40
	assert.Equal(t, "Widget", stats.Product)
	assert.Equal(t, 4, stats.Months)
	assert.InDelta(t, 100.0, stats.Total, 1e-9)
	assert.InDelta(t, 25.0, stats.Mean, 1e-9)
	assert.InDelta(t, 25.0, stats.Median, 1e-9)
	assert.InDelta(t, 15.0, stats.Min, 1e-9)
	assert.InDelta(t, 40.0, stats.Max, 1e-9)
	assert.InDelta(t, 9.354143, stats.StdDev, 1e-6)
	assert.InDelta(t, 27.5, stats.MonthlyAverage["January"], 1e-9)
	assert.InDelta(t, 20.0, stats.MonthlyAverage["February"], 1e-9)
	assert.InDelta(t, 25.0, stats.MonthlyAverage["March"], 1e-9)
	assert.InDelta(t, 25.0/3, stats.Trend, 1e-9)
	assert.Equal(t, "increasing", stats.TrendDirection)
}

func TestProductHistoryStatisticsShortHistory(t *testing.T) {
	records := []ValidRecord{
		{Month: 5, Year: 2023, ProductDescription: "Widget", QuantitySold: 7},
	}

	stats, err := ProductHistoryStatistics(records, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Months)
	assert.Zero(t, stats.StdDev)
	assert.Zero(t, stats.Trend)
	assert.Equal(t, "stable", stats.TrendDirection)
}

func TestProductHistoryStatisticsUnknownProduct(t *testing.T) {
	_, err := ProductHistoryStatistics(nil, "Widget")
	assert.True(t, errors.Is(err, ErrUnknownProduct))
}

func TestCalculateTrendDecreasing(t *testing.T) {
	trend := calculateTrend([]float64{30, 30, 30, 10, 10, 10})
	assert.InDelta(t, -5.0, trend, 1e-9)
}
