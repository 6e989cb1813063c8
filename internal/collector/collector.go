package collector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"StockVision/internal/calculator"
	"StockVision/internal/metrics"
	"StockVision/internal/model"
)

// DefaultLookbackDays is the calendar window of history fetched per request.
const DefaultLookbackDays = 730

var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// NormalizeSymbol upper-cases and trims a ticker and rejects malformed ones.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", &model.ValidationError{Field: "symbol", Value: symbol, Err: model.ErrInvalidSymbol}
	}
	return s, nil
}

// Collector orchestrates data fetching, caching and indicator computation.
type Collector struct {
	Fetcher      Fetcher
	Cache        BarCache // nil disables caching
	CacheTTL     time.Duration
	LookbackDays int

	log zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, cache BarCache, cacheTTL time.Duration, lookbackDays int, log zerolog.Logger) *Collector {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Collector{
		Fetcher:      fetcher,
		Cache:        cache,
		CacheTTL:     cacheTTL,
		LookbackDays: lookbackDays,
		log:          log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Bars fetches the raw daily history of a symbol, ordered and de-duplicated.
func (c *Collector) Bars(ctx context.Context, symbol string) (*model.Series, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	bars, err := c.fetch(ctx, sym)
	if err != nil {
		return nil, err
	}
	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, &model.InsufficientDataError{Stage: "fetch", Rows: 0, Need: 1}
	}
	return &model.Series{Symbol: sym, Bars: bars, FetchedAt: time.Now()}, nil
}

// Collect fetches the history of a symbol and attaches all indicator columns.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Series, error) {
	raw, err := c.Bars(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s, err := calculator.ComputeIndicators(raw)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	c.log.Info().Str("symbol", s.Symbol).Int("bars", s.Len()).Msg("series collected")
	return s, nil
}

// Profile returns descriptive metadata for display. Missing 52-week
// figures are filled from the bar history.
func (c *Collector) Profile(ctx context.Context, symbol string) (*model.Profile, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	p, err := c.Fetcher.FetchProfile(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if p.High52w == 0 || p.Low52w == 0 || p.MarketPrice == 0 || p.Volume == 0 {
		s, err := c.Bars(ctx, sym)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", sym).Msg("52-week range unavailable")
			return p, nil
		}
		if h, l, err := calculator.Calculate52WeekRange(s.Bars); err == nil && (p.High52w == 0 || p.Low52w == 0) {
			p.High52w, p.Low52w = h, l
		}
		if p.MarketPrice == 0 {
			p.MarketPrice = s.Last().Close
		}
		if p.Volume == 0 {
			p.Volume = s.Last().Volume
		}
	}
	if pos, err := calculator.Calculate52WeekPosition(p.MarketPrice, p.High52w, p.Low52w); err == nil {
		p.Position52w = pos
	}
	return p, nil
}

func (c *Collector) fetch(ctx context.Context, sym string) ([]model.OHLCV, error) {
	key := fmt.Sprintf("bars:%s:%s:%d", c.Fetcher.Name(), sym, c.LookbackDays)
	if c.Cache != nil {
		bars, ok, err := c.Cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheRequests.WithLabelValues("error").Inc()
			c.log.Warn().Err(err).Str("key", key).Msg("bar cache read failed")
		case ok:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return bars, nil
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, sym, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	metrics.FetchLatency.WithLabelValues(c.Fetcher.Name()).Observe(time.Since(start).Seconds())

	if c.Cache != nil && len(bars) > 0 {
		if err := c.Cache.Set(ctx, key, bars, c.CacheTTL); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("bar cache write failed")
		}
	}
	return bars, nil
}

// normalizeBars sorts by time, keeps the last bar of each calendar day and
// drops bars without a positive close.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sorted := append([]model.OHLCV(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]model.OHLCV, 0, len(sorted))
	for _, b := range sorted {
		if b.Close <= 0 {
			continue
		}
		if n := len(out); n > 0 && sameDay(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
