package forecast

import (
	"errors"
	"fmt"

	"StockVision/internal/model"
)

// Blend weights of the ensemble.
const (
	ForestWeight = 0.6
	LinearWeight = 0.4
)

// Combine blends forest and linear point-wise: 0.6*forest + 0.4*linear.
func Combine(forest, linear []model.ForecastPoint) ([]model.ForecastPoint, error) {
	if len(forest) != len(linear) {
		return nil, fmt.Errorf("ensemble: forest has %d points, linear has %d", len(forest), len(linear))
	}
	if len(forest) == 0 {
		return nil, errors.New("ensemble: no points to combine")
	}
	out := make([]model.ForecastPoint, len(forest))
	for i := range forest {
		out[i] = model.ForecastPoint{
			Date:  forest[i].Date,
			Close: ForestWeight*forest[i].Close + LinearWeight*linear[i].Close,
		}
	}
	return out, nil
}
