package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"sales-forecast-api/pkg/models"
)

// trendThreshold is the per-month change below which a history counts as stable.
const trendThreshold = 0.5

// ProductHistoryStatistics 製品の月次販売履歴の統計情報を計算
// Quantities are summed per calendar month before the statistics are taken.
func ProductHistoryStatistics(records []ValidRecord, product string) (models.ProductHistoryStatistics, error) {
	totals := make(map[int]float64)
	calendarMonth := make(map[int]time.Month)
	for _, r := range records {
		if r.ProductDescription == product {
			totals[r.MonthIndex()] += r.QuantitySold
			calendarMonth[r.MonthIndex()] = time.Month(r.Month)
		}
	}
	if len(totals) == 0 {
		return models.ProductHistoryStatistics{}, fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}

	monthIndexes := make([]int, 0, len(totals))
	for idx := range totals {
		monthIndexes = append(monthIndexes, idx)
	}
	sort.Ints(monthIndexes)

	sales := make([]float64, len(monthIndexes))
	monthlySales := make(map[string][]float64)
	for i, idx := range monthIndexes {
		sales[i] = totals[idx]
		month := calendarMonth[idx].String()
		monthlySales[month] = append(monthlySales[month], totals[idx])
	}

	// 月別平均
	monthlyAvg := make(map[string]float64, len(monthlySales))
	for month, values := range monthlySales {
		monthlyAvg[month] = calculateMean(values)
	}

	trend := calculateTrend(sales)
	trendDirection := "stable"
	if trend > trendThreshold {
		trendDirection = "increasing"
	} else if trend < -trendThreshold {
		trendDirection = "decreasing"
	}

	sorted := make([]float64, len(sales))
	copy(sorted, sales)
	sort.Float64s(sorted)

	return models.ProductHistoryStatistics{
		Product:        product,
		Months:         len(sales),
		Total:          sum(sales),
		Mean:           calculateMean(sales),
		Median:         sorted[len(sorted)/2],
		StdDev:         calculateStandardDeviation(sales),
		Min:            sorted[0],
		Max:            sorted[len(sorted)-1],
		MonthlyAverage: monthlyAvg,
		Trend:          trend,
		TrendDirection: trendDirection,
	}, nil
}

// calculateTrend 最初の1/3と最後の1/3の平均を比較した1か月あたりの変化量
func calculateTrend(sales []float64) float64 {
	n := len(sales)
	third := n / 3
	if third == 0 {
		return 0
	}
	early := calculateMean(sales[:third])
	late := calculateMean(sales[n-third:])
	return (late - early) / float64(n-third)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// calculateMean 平均値を計算
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// calculateStandardDeviation 母標準偏差を計算
func calculateStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := calculateMean(values)
	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}
