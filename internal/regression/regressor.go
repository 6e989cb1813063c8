// Package regression holds the supervised regressors used by the forecaster.
package regression

import (
	"context"
	"errors"
	"fmt"
)

// Regressor is a model fitted on a design matrix and a target vector.
type Regressor interface {
	Fit(ctx context.Context, X [][]float64, y []float64) error
	Predict(x []float64) float64
}

var ErrNotFitted = errors.New("regressor is not fitted")

func checkShape(X [][]float64, y []float64) (rows, cols int, err error) {
	if len(X) == 0 {
		return 0, 0, errors.New("empty design matrix")
	}
	if len(X) != len(y) {
		return 0, 0, fmt.Errorf("design matrix has %d rows, target has %d", len(X), len(y))
	}
	cols = len(X[0])
	for i, row := range X {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return len(X), cols, nil
}
