package forecast

import (
	"context"
	"fmt"
	"time"

	"StockVision/internal/metrics"
	"StockVision/internal/model"
	"StockVision/internal/regression"
)

// MinSamples is the smallest sample count leaving at least two rows on each side of the split.
const MinSamples = 6

// Samples pairs each feature row with the next row's close.
type Samples struct {
	X [][]float64
	Y []float64
}

// Split is the chronological train/test partition of the samples.
type Split struct {
	Train Samples
	Test  Samples
}

// MakeSamples frames the table as next-day close regression:
// X[i] is row i and y[i] is the close of row i+1.
func MakeSamples(t *model.FeatureTable) Samples {
	n := t.Len() - 1
	if n <= 0 {
		return Samples{}
	}
	s := Samples{X: make([][]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.X[i] = t.Rows[i].Slice()
		s.Y[i] = t.Rows[i+1].Values[model.FClose]
	}
	return s
}

// SplitSamples keeps the first 80% of samples for training and the rest for testing.
// There is no shuffling.
func SplitSamples(s Samples) (*Split, error) {
	n := len(s.X)
	trainN := n * 8 / 10
	testN := n - trainN
	if trainN < 2 || testN < 2 {
		return nil, &model.InsufficientDataError{Stage: "split", Rows: n, Need: MinSamples}
	}
	return &Split{
		Train: Samples{X: s.X[:trainN], Y: s.Y[:trainN]},
		Test:  Samples{X: s.X[trainN:], Y: s.Y[trainN:]},
	}, nil
}

// TrainedModel is a fitted regressor with its hold-out evaluation.
// It lives for one request and is never persisted.
type TrainedModel struct {
	Kind       model.ModelKind
	Schema     []string
	Regressor  regression.Regressor
	Evaluation model.Evaluation
}

// Train fits one base model kind on the chronological split of the table
// and evaluates it on the held-out tail.
func (e *Engine) Train(ctx context.Context, kind model.ModelKind, t *model.FeatureTable) (*TrainedModel, error) {
	split, err := SplitSamples(MakeSamples(t))
	if err != nil {
		return nil, err
	}

	reg, err := e.newRegressor(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := reg.Fit(ctx, split.Train.X, split.Train.Y); err != nil {
		return nil, fmt.Errorf("fit %s: %w", kind, err)
	}
	metrics.ObserveStage("fit", string(kind), start)

	pred := make([]float64, len(split.Test.X))
	for i, x := range split.Test.X {
		pred[i] = reg.Predict(x)
	}
	eval := model.Evaluation{
		MAE:       regression.MAE(split.Test.Y, pred),
		R2:        regression.R2(split.Test.Y, pred),
		TrainRows: len(split.Train.X),
		TestRows:  len(split.Test.X),
	}

	e.log.Debug().
		Str("model", string(kind)).
		Int("train", eval.TrainRows).
		Int("test", eval.TestRows).
		Float64("mae", eval.MAE).
		Float64("r2", eval.R2).
		Msg("model trained")

	return &TrainedModel{Kind: kind, Schema: t.Schema, Regressor: reg, Evaluation: eval}, nil
}

func (e *Engine) newRegressor(kind model.ModelKind) (regression.Regressor, error) {
	switch kind {
	case model.KindLinear:
		return regression.NewLinear(), nil
	case model.KindRandomForest:
		f := regression.NewForest(e.Trees, e.Seed)
		f.Workers = e.Workers
		return f, nil
	default:
		return nil, &model.ValidationError{Field: "model", Value: kind, Err: model.ErrUnknownModelKind}
	}
}
