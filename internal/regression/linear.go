package regression

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// rankTolerance drops singular values below this fraction of the largest.
const rankTolerance = 1e-10

// Linear is ordinary least squares with an intercept on standardized inputs.
// Coefficients are the minimum-norm solution, so collinear columns are fine.
type Linear struct {
	Scaler    StandardScaler
	Intercept float64
	Coef      []float64
	Rank      int
}

// NewLinear returns an unfitted linear model.
func NewLinear() *Linear { return &Linear{} }

// Fit standardizes X on its own rows and solves the centered least-squares problem.
func (l *Linear) Fit(_ context.Context, X [][]float64, y []float64) error {
	rows, cols, err := checkShape(X, y)
	if err != nil {
		return err
	}
	l.Scaler.Fit(X)

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(rows)

	a := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)
	for i, row := range X {
		a.SetRow(i, l.Scaler.Transform(row))
		b.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return errors.New("linear: SVD factorization failed")
	}
	rank := svd.Rank(rankTolerance)

	coef := make([]float64, cols)
	if rank > 0 {
		var dst mat.VecDense
		svd.SolveVecTo(&dst, b, rank)
		for j := range coef {
			coef[j] = dst.AtVec(j)
		}
	}

	l.Intercept = yMean
	l.Coef = coef
	l.Rank = rank
	return nil
}

// Predict returns the fitted value for one raw (unscaled) row.
func (l *Linear) Predict(x []float64) float64 {
	if l.Coef == nil {
		panic(fmt.Sprintf("linear: %v", ErrNotFitted))
	}
	z := l.Scaler.Transform(x)
	out := l.Intercept
	for j, c := range l.Coef {
		out += c * z[j]
	}
	return out
}
