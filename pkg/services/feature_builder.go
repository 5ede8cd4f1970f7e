package services

import "math"

const monthsPerYear = 12

// FeatureVector is the model input: [sin(phase), cos(phase), product code].
type FeatureVector [3]float64

// ForecastFeatures builds the input for a forecast target month. The phase is
// calendarMonth-1, so January is phase 0.
func ForecastFeatures(calendarMonth, productCode int) FeatureVector {
	return monthFeatures(calendarMonth-1, productCode)
}

// TrainingFeatures builds the input for a historical record from its absolute
// month index (year*12 + month). The phase is monthIndex mod 12.
func TrainingFeatures(monthIndex, productCode int) FeatureVector {
	return monthFeatures(monthIndex%monthsPerYear, productCode)
}

func monthFeatures(phase, productCode int) FeatureVector {
	p := ((phase % monthsPerYear) + monthsPerYear) % monthsPerYear
	angle := 2 * math.Pi * float64(p) / monthsPerYear
	return FeatureVector{math.Sin(angle), math.Cos(angle), float64(productCode)}
}
