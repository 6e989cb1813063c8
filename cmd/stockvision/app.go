package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"StockVision/internal/collector"
	"StockVision/internal/config"
	"StockVision/internal/forecast"
	"StockVision/internal/logger"
	"StockVision/internal/recorder"
	"StockVision/internal/service"
	"StockVision/internal/session"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	predictor *service.Predictor
	closers   []func() error
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "static":
		fetcher = &collector.StaticFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	var cache collector.BarCache
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := collector.NewRedisBarCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("redis cache unavailable, using memory cache")
			cache = collector.NewMemoryBarCache()
		} else {
			cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	case "memory":
		cache = collector.NewMemoryBarCache()
	}
	col := collector.NewCollector(fetcher, cache, cfg.Cache.TTL, cfg.DataSource.LookbackDays, log)

	eng := forecast.NewEngine(log)
	eng.Trees = cfg.Forecast.Trees
	eng.Seed = cfg.Forecast.Seed
	eng.Workers = cfg.Forecast.Workers

	store, err := session.NewStore(cfg.Session.StateFile, log)
	if err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}

	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
		a.closers = append(a.closers, sr.Close)
	}

	a.predictor = service.NewPredictor(col, eng, store, rec, log)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}
