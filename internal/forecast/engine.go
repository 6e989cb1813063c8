// Package forecast trains the regressors on the feature table and rolls
// them forward into multi-day close forecasts.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"StockVision/internal/calculator"
	"StockVision/internal/features"
	"StockVision/internal/metrics"
	"StockVision/internal/model"
	"StockVision/internal/regression"
)

// Engine runs the full fit-and-forecast pipeline for one series at a time.
type Engine struct {
	Trees   int
	Seed    int64
	Workers int

	log zerolog.Logger
	now func() time.Time
}

// NewEngine creates an Engine with the default forest settings.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		Trees: regression.DefaultTrees,
		Seed:  regression.DefaultSeed,
		log:   log.With().Str("component", "forecast").Logger(),
		now:   time.Now,
	}
}

// outcome is what a kind-specific fit produces before it is wrapped in a result.
type outcome struct {
	points     []model.ForecastPoint
	metrics    *model.Evaluation
	components map[model.ModelKind]model.Evaluation
}

type fitFunc func(e *Engine, ctx context.Context, in *pipelineInput) (*outcome, error)

type pipelineInput struct {
	table    *model.FeatureTable
	lastDate time.Time
	days     int
}

var fitFuncs = map[model.ModelKind]fitFunc{
	model.KindLinear:       singleFit(model.KindLinear),
	model.KindRandomForest: singleFit(model.KindRandomForest),
	model.KindEnsemble:     (*Engine).ensembleFit,
}

// TrainAndForecast validates the request, derives indicators and features
// from the raw series, fits the requested model and returns days forecast
// points dated after the last bar.
func (e *Engine) TrainAndForecast(ctx context.Context, s *model.Series, kind model.ModelKind, days int) (*model.ForecastResult, error) {
	res, err := e.trainAndForecast(ctx, s, kind, days)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}
	metrics.ForecastRuns.WithLabelValues(string(kind)).Inc()
	return res, nil
}

func (e *Engine) trainAndForecast(ctx context.Context, s *model.Series, kind model.ModelKind, days int) (*model.ForecastResult, error) {
	if err := ValidateHorizon(days); err != nil {
		return nil, err
	}
	fit, ok := fitFuncs[kind]
	if !ok {
		return nil, &model.ValidationError{Field: "model", Value: kind, Err: model.ErrUnknownModelKind}
	}

	start := time.Now()
	augmented, err := calculator.ComputeIndicators(s)
	if err != nil {
		return nil, err
	}
	table, err := features.Build(augmented)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	metrics.ObserveStage("features", string(kind), start)
	if table.Len() == 0 {
		return nil, &model.InsufficientDataError{Stage: "features", Rows: 0, Need: MinSamples + 1}
	}
	e.log.Debug().
		Str("symbol", s.Symbol).
		Int("bars", s.Len()).
		Int("rows", table.Len()).
		Int("dropped", table.Dropped).
		Msg("feature table built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := fit(e, ctx, &pipelineInput{table: table, lastDate: s.Last().Time, days: days})
	if err != nil {
		return nil, err
	}

	last := s.Last()
	res := &model.ForecastResult{
		RunID:       uuid.NewString(),
		Symbol:      s.Symbol,
		Model:       kind,
		Points:      out.points,
		Metrics:     out.metrics,
		Components:  out.components,
		LastClose:   last.Close,
		LastDate:    last.Time,
		GeneratedAt: e.now(),
	}
	if res.Metrics != nil {
		metrics.ModelR2.WithLabelValues(s.Symbol, string(kind)).Set(res.Metrics.R2)
	}
	for k, ev := range res.Components {
		metrics.ModelR2.WithLabelValues(s.Symbol, string(k)).Set(ev.R2)
	}

	e.log.Info().
		Str("run_id", res.RunID).
		Str("symbol", s.Symbol).
		Str("model", string(kind)).
		Int("days", days).
		Float64("last_close", res.LastClose).
		Float64("final_close", out.points[len(out.points)-1].Close).
		Msg("forecast complete")
	return res, nil
}

func singleFit(kind model.ModelKind) fitFunc {
	return func(e *Engine, ctx context.Context, in *pipelineInput) (*outcome, error) {
		trained, err := e.Train(ctx, kind, in.table)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		points, err := Rollout(trained.Regressor, in.table.Rows[in.table.Len()-1], in.lastDate, in.days)
		if err != nil {
			return nil, err
		}
		metrics.ObserveStage("rollout", string(kind), start)
		ev := trained.Evaluation
		return &outcome{points: points, metrics: &ev}, nil
	}
}

// ensembleFit runs both base pipelines concurrently and blends them once
// both have finished.
func (e *Engine) ensembleFit(ctx context.Context, in *pipelineInput) (*outcome, error) {
	var forest, linear *outcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forest, err = singleFit(model.KindRandomForest)(e, gctx, in)
		return err
	})
	g.Go(func() error {
		var err error
		linear, err = singleFit(model.KindLinear)(e, gctx, in)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points, err := Combine(forest.points, linear.points)
	if err != nil {
		return nil, err
	}
	return &outcome{
		points: points,
		components: map[model.ModelKind]model.Evaluation{
			model.KindRandomForest: *forest.metrics,
			model.KindLinear:       *linear.metrics,
		},
	}, nil
}

func errorKind(err error) string {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, model.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
