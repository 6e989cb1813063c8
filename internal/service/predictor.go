// Package service wires the collector, forecast engine, session store and
// recorder into the request flow shared by the bot, the API and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockVision/internal/collector"
	"StockVision/internal/forecast"
	"StockVision/internal/model"
	"StockVision/internal/recorder"
	"StockVision/internal/session"
)

// Predictor runs one forecast request at a time end to end.
type Predictor struct {
	Collector *collector.Collector
	Engine    *forecast.Engine
	Session   *session.Store
	Recorder  recorder.Recorder

	mu  sync.Mutex
	now func() time.Time
	log zerolog.Logger
}

// NewPredictor creates a Predictor. A nil recorder records nothing.
func NewPredictor(col *collector.Collector, eng *forecast.Engine, store *session.Store, rec recorder.Recorder, log zerolog.Logger) *Predictor {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Predictor{
		Collector: col,
		Engine:    eng,
		Session:   store,
		Recorder:  rec,
		now:       time.Now,
		log:       log.With().Str("component", "predictor").Logger(),
	}
}

// Predict fetches the history of symbol and forecasts days closes with the given model.
// Horizon and model are validated before any data is fetched.
func (p *Predictor) Predict(ctx context.Context, symbol string, kind model.ModelKind, days int) (*model.ForecastResult, error) {
	if err := forecast.ValidateHorizon(days); err != nil {
		return nil, err
	}
	if _, err := model.ParseModelKind(string(kind)); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	series, err := p.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.Session.PutSeries(series)

	res, err := p.Engine.TrainAndForecast(ctx, series, kind, days)
	if err != nil {
		return nil, err
	}
	p.Session.PutForecast(res)
	if err := p.Recorder.RecordForecast(res); err != nil {
		p.log.Error().Err(err).Str("run_id", res.RunID).Msg("record forecast")
	}
	return res, nil
}

// Indicators returns the indicator-augmented series. The session copy is
// reused while it is younger than the collector's cache TTL.
func (p *Predictor) Indicators(ctx context.Context, symbol string) (*model.Series, error) {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if s, ok := p.Session.Series(sym); ok && p.fresh(s) {
		return s, nil
	}
	s, err := p.Collector.Collect(ctx, sym)
	if err != nil {
		return nil, err
	}
	p.Session.PutSeries(s)
	return s, nil
}

// Info returns profile metadata together with the latest indicator series.
func (p *Predictor) Info(ctx context.Context, symbol string) (*model.Profile, *model.Series, error) {
	s, err := p.Indicators(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	prof, err := p.Collector.Profile(ctx, s.Symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("profile: %w", err)
	}
	return prof, s, nil
}

func (p *Predictor) fresh(s *model.Series) bool {
	ttl := p.Collector.CacheTTL
	return ttl > 0 && p.now().Sub(s.FetchedAt) <= ttl
}

// Latest returns the latest stored forecast of every model.
func (p *Predictor) Latest() []*model.ForecastResult {
	return p.Session.Forecasts()
}
