package services

import "fmt"

// ScaleParams holds the min/max of the training quantities of one run.
type ScaleParams struct {
	Min float64 `json:"min_quantity"`
	Max float64 `json:"max_quantity"`
}

// Range is max-min, or 1 when every quantity was equal.
func (p ScaleParams) Range() float64 {
	r := p.Max - p.Min
	if r == 0 {
		return 1
	}
	return r
}

// QuantityScaler maps quantities to and from [0,1] with parameters fitted once
// per run.
type QuantityScaler struct {
	params ScaleParams
}

// FitQuantityScaler computes the scale parameters over values.
func FitQuantityScaler(values []float64) (*QuantityScaler, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("fit scaler: %w", ErrEmptyTrainingSet)
	}
	params := ScaleParams{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < params.Min {
			params.Min = v
		}
		if v > params.Max {
			params.Max = v
		}
	}
	return &QuantityScaler{params: params}, nil
}

func (s *QuantityScaler) Normalize(v float64) float64 {
	return (v - s.params.Min) / s.params.Range()
}

func (s *QuantityScaler) Denormalize(n float64) float64 {
	return n*s.params.Range() + s.params.Min
}

func (s *QuantityScaler) Params() ScaleParams {
	return s.params
}
