package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	featureWidth = len(FeatureVector{})
	hiddenUnits  = 10

	DefaultEpochs       = 100
	DefaultLearningRate = 0.001
	defaultBatchSize    = 32

	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// Parameter layout inside ForecastModel.params.
const (
	offW1     = 0
	offB1     = offW1 + hiddenUnits*featureWidth
	offW2     = offB1 + hiddenUnits
	offB2     = offW2 + hiddenUnits
	numParams = offB2 + 1
)

// TrainingExample pairs a feature vector with a normalized target quantity.
type TrainingExample struct {
	Features FeatureVector
	Target   float64
}

// EpochObserver is called after every training pass with the 1-based epoch
// number and the mean squared error over that pass.
type EpochObserver func(epoch int, loss float64)

// ModelOptions configures a ForecastModel. Zero values select the defaults.
type ModelOptions struct {
	Seed         int64
	Epochs       int
	LearningRate float64
	BatchSize    int
	OnEpoch      EpochObserver
}

func (o ModelOptions) withDefaults() ModelOptions {
	if o.Epochs <= 0 {
		o.Epochs = DefaultEpochs
	}
	if o.LearningRate <= 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	return o
}

// ForecastModel is a 3-10-1 feed-forward regressor with a ReLU hidden layer
// and a linear output, trained with Adam on mean squared error.
//
// Weights are initialized from the seed in ModelOptions, so two models built
// with the same options and fitted on the same examples predict identically.
type ForecastModel struct {
	opts     ModelOptions
	rng      *rand.Rand
	params   []float64
	fitted   bool
	lastLoss float64
}

// NewForecastModel creates an untrained model with Glorot-uniform kernels and
// zero biases.
func NewForecastModel(opts ModelOptions) *ForecastModel {
	opts = opts.withDefaults()
	seed := uint64(opts.Seed)
	m := &ForecastModel{
		opts:   opts,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		params: make([]float64, numParams),
	}

	limit1 := math.Sqrt(6.0 / float64(featureWidth+hiddenUnits))
	for i := offW1; i < offB1; i++ {
		m.params[i] = (m.rng.Float64()*2 - 1) * limit1
	}
	limit2 := math.Sqrt(6.0 / float64(hiddenUnits+1))
	for i := offW2; i < offB2; i++ {
		m.params[i] = (m.rng.Float64()*2 - 1) * limit2
	}
	return m
}

// Fit trains for the configured number of epochs. There is no early stopping.
// If ctx is cancelled the partially trained weights are discarded and the
// model keeps its previous state.
func (m *ForecastModel) Fit(ctx context.Context, examples []TrainingExample) error {
	if len(examples) == 0 {
		return fmt.Errorf("fit model: %w", ErrEmptyTrainingSet)
	}

	params := make([]float64, numParams)
	copy(params, m.params)
	grad := make([]float64, numParams)
	moment1 := make([]float64, numParams)
	moment2 := make([]float64, numParams)

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	var hidden [hiddenUnits]float64
	var loss float64
	step := 0

	for epoch := 1; epoch <= m.opts.Epochs; epoch++ {
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var sumSquared float64
		for start := 0; start < len(order); start += m.opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("fit model: %w", err)
			}

			end := min(start+m.opts.BatchSize, len(order))
			batch := order[start:end]
			clear(grad)

			for _, idx := range batch {
				ex := examples[idx]
				pred := forward(params, ex.Features, &hidden)
				diff := pred - ex.Target
				sumSquared += diff * diff
				backward(params, ex.Features, &hidden, 2*diff/float64(len(batch)), grad)
			}

			step++
			m.adamStep(params, grad, moment1, moment2, step)
		}

		loss = sumSquared / float64(len(examples))
		if m.opts.OnEpoch != nil {
			m.opts.OnEpoch(epoch, loss)
		}
	}

	m.params = params
	m.lastLoss = loss
	m.fitted = true
	return nil
}

// Predict returns the normalized quantity for x. The value is not clamped and
// may fall outside [0,1].
func (m *ForecastModel) Predict(x FeatureVector) (float64, error) {
	if !m.fitted {
		return 0, ErrModelNotFitted
	}
	var hidden [hiddenUnits]float64
	return forward(m.params, x, &hidden), nil
}

// Loss is the training MSE of the last completed epoch.
func (m *ForecastModel) Loss() float64 {
	return m.lastLoss
}

func (m *ForecastModel) adamStep(params, grad, moment1, moment2 []float64, step int) {
	correction1 := 1 - math.Pow(adamBeta1, float64(step))
	correction2 := 1 - math.Pow(adamBeta2, float64(step))
	for i, g := range grad {
		moment1[i] = adamBeta1*moment1[i] + (1-adamBeta1)*g
		moment2[i] = adamBeta2*moment2[i] + (1-adamBeta2)*g*g
		mHat := moment1[i] / correction1
		vHat := moment2[i] / correction2
		params[i] -= m.opts.LearningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

// forward stores the hidden activations in hidden and returns the output.
func forward(params []float64, x FeatureVector, hidden *[hiddenUnits]float64) float64 {
	out := params[offB2]
	for j := 0; j < hiddenUnits; j++ {
		z := params[offB1+j]
		for k := 0; k < featureWidth; k++ {
			z += params[offW1+j*featureWidth+k] * x[k]
		}
		hidden[j] = math.Max(0, z)
		out += params[offW2+j] * hidden[j]
	}
	return out
}

// backward accumulates into grad the gradient of the loss given dOut, the
// derivative of the loss with respect to the output.
func backward(params []float64, x FeatureVector, hidden *[hiddenUnits]float64, dOut float64, grad []float64) {
	grad[offB2] += dOut
	for j := 0; j < hiddenUnits; j++ {
		grad[offW2+j] += dOut * hidden[j]
		if hidden[j] <= 0 {
			continue
		}
		dz := dOut * params[offW2+j]
		grad[offB1+j] += dz
		for k := 0; k < featureWidth; k++ {
			grad[offW1+j*featureWidth+k] += dz * x[k]
		}
	}
}
