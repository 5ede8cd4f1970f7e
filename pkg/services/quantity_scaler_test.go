package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityScalerRoundTrip(t *testing.T) {
	values := []float64{10, 20, 15, 3.5, 120}
	scaler, err := FitQuantityScaler(values)
	require.NoError(t, err)

	assert.Equal(t, ScaleParams{Min: 3.5, Max: 120}, scaler.Params())
	assert.InDelta(t, 0, scaler.Normalize(3.5), 1e-12)
	assert.InDelta(t, 1, scaler.Normalize(120), 1e-12)

	for _, v := range values {
		assert.InDelta(t, v, scaler.Denormalize(scaler.Normalize(v)), 1e-9)
	}
}

func TestQuantityScalerDegenerateRange(t *testing.T) {
	scaler, err := FitQuantityScaler([]float64{5, 5, 5})
	require.NoError(t, err)

	assert.Equal(t, 1.0, scaler.Params().Range())
	n := scaler.Normalize(5)
	assert.False(t, math.IsNaN(n) || math.IsInf(n, 0))
	assert.Equal(t, 0.0, n)
	assert.Equal(t, 5.0, scaler.Denormalize(n))
}

func TestQuantityScalerKeepsSubUnitRange(t *testing.T) {
	scaler, err := FitQuantityScaler([]float64{0.2, 0.5, 0.35})
	require.NoError(t, err)

	// the spread is used as-is; only an exact zero range becomes 1
	assert.InDelta(t, 0.3, scaler.Params().Range(), 1e-12)
	assert.InDelta(t, 0, scaler.Normalize(0.2), 1e-12)
	assert.InDelta(t, 1, scaler.Normalize(0.5), 1e-12)
	assert.InDelta(t, 0.5, scaler.Normalize(0.35), 1e-12)
	assert.InDelta(t, 0.35, scaler.Denormalize(0.5), 1e-12)
}

func TestQuantityScalerEmpty(t *testing.T) {
	_, err := FitQuantityScaler(nil)
	assert.True(t, errors.Is(err, ErrEmptyTrainingSet))
}

func TestQuantityScalerExtrapolates(t *testing.T) {
	scaler, err := FitQuantityScaler([]float64{10, 20})
	require.NoError(t, err)

	assert.InDelta(t, 25, scaler.Denormalize(1.5), 1e-12)
	assert.InDelta(t, 5, scaler.Denormalize(-0.5), 1e-12)
}
