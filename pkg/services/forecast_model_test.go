package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasonalExamples() []TrainingExample {
	var examples []TrainingExample
	for year := 2021; year <= 2023; year++ {
		for month := 1; month <= 12; month++ {
			target := 0.5 + 0.4*math.Sin(2*math.Pi*float64(month)/12)
			examples = append(examples, TrainingExample{
				Features: TrainingFeatures(year*12+month, 0),
				Target:   target,
			})
		}
	}
	return examples
}

func TestForecastModelFitEmpty(t *testing.T) {
	model := NewForecastModel(ModelOptions{Seed: 1})
	err := model.Fit(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptyTrainingSet))
}

func TestForecastModelPredictBeforeFit(t *testing.T) {
	model := NewForecastModel(ModelOptions{Seed: 1})
	_, err := model.Predict(ForecastFeatures(1, 0))
	assert.True(t, errors.Is(err, ErrModelNotFitted))
}

func TestForecastModelRunsEveryEpoch(t *testing.T) {
	var epochs []int
	var losses []float64
	model := NewForecastModel(ModelOptions{
		Seed: 3,
		OnEpoch: func(epoch int, loss float64) {
			epochs = append(epochs, epoch)
			losses = append(losses, loss)
		},
	})

	require.NoError(t, model.Fit(context.Background(), seasonalExamples()))

	require.Len(t, epochs, DefaultEpochs)
	assert.Equal(t, 1, epochs[0])
	assert.Equal(t, DefaultEpochs, epochs[len(epochs)-1])
	for _, l := range losses {
		assert.False(t, math.IsNaN(l) || math.IsInf(l, 0))
	}
	assert.Equal(t, losses[len(losses)-1], model.Loss())
}

func TestForecastModelReducesLoss(t *testing.T) {
	var first, last float64
	model := NewForecastModel(ModelOptions{
		Seed:         11,
		Epochs:       300,
		LearningRate: 0.01,
		OnEpoch: func(epoch int, loss float64) {
			if epoch == 1 {
				first = loss
			}
			last = loss
		},
	})

	require.NoError(t, model.Fit(context.Background(), seasonalExamples()))
	assert.Less(t, last, first)
}

func TestForecastModelIsDeterministicForSeed(t *testing.T) {
	examples := seasonalExamples()
	a := NewForecastModel(ModelOptions{Seed: 42})
	b := NewForecastModel(ModelOptions{Seed: 42})
	c := NewForecastModel(ModelOptions{Seed: 43})

	require.NoError(t, a.Fit(context.Background(), examples))
	require.NoError(t, b.Fit(context.Background(), examples))
	require.NoError(t, c.Fit(context.Background(), examples))

	for month := 1; month <= 12; month++ {
		x := ForecastFeatures(month, 0)
		pa, err := a.Predict(x)
		require.NoError(t, err)
		pb, err := b.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}

	pa, _ := a.Predict(ForecastFeatures(1, 0))
	pc, _ := c.Predict(ForecastFeatures(1, 0))
	assert.NotEqual(t, pa, pc)
}

func TestForecastModelFitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := NewForecastModel(ModelOptions{Seed: 1})
	err := model.Fit(ctx, seasonalExamples())

	assert.True(t, errors.Is(err, context.Canceled))
	_, err = model.Predict(ForecastFeatures(1, 0))
	assert.True(t, errors.Is(err, ErrModelNotFitted), "cancelled fit must not publish weights")
}

func TestForecastModelCancelKeepsPreviousWeights(t *testing.T) {
	model := NewForecastModel(ModelOptions{Seed: 5, Epochs: 10})
	require.NoError(t, model.Fit(context.Background(), seasonalExamples()))
	before, err := model.Predict(ForecastFeatures(3, 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, model.Fit(ctx, seasonalExamples()))

	after, err := model.Predict(ForecastFeatures(3, 0))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestForecastModelSmallBatches(t *testing.T) {
	model := NewForecastModel(ModelOptions{Seed: 9, BatchSize: 5, Epochs: 20})
	require.NoError(t, model.Fit(context.Background(), seasonalExamples()))

	p, err := model.Predict(ForecastFeatures(6, 0))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p) || math.IsInf(p, 0))
}
