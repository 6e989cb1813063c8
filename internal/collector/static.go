package collector

import (
	"context"
	"math"
	"time"

	"StockVision/internal/model"
)

// StaticFetcher serves fixed bars, or a deterministic synthetic series
// around Price when Bars is nil. Used offline and in tests.
type StaticFetcher struct {
	Price   float64
	Bars    []model.OHLCV
	Profile *model.Profile
	End     time.Time
}

func (m *StaticFetcher) Name() string { return "static" }

func (m *StaticFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Bars != nil {
		return m.Bars, nil
	}
	return syntheticBars(m.Price, days, m.end()), nil
}

func (m *StaticFetcher) FetchProfile(_ context.Context, symbol string) (*model.Profile, error) {
	if m.Profile != nil {
		return m.Profile, nil
	}
	return &model.Profile{Symbol: symbol, Name: symbol, Currency: "USD", MarketPrice: m.Price}, nil
}

func (m *StaticFetcher) end() time.Time {
	if m.End.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return m.End
}

// syntheticBars emits one bar per weekday over the trailing days calendar days.
func syntheticBars(basePrice float64, days int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, 0, days)
	for d := days; d > 0; d-- {
		t := end.AddDate(0, 0, -d+1)
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		x := float64(days - d)
		p := basePrice * (1 + 0.0004*x + 0.03*math.Sin(x/9))
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   p * 0.998,
			High:   p * 1.008,
			Low:    p * 0.992,
			Close:  p,
			Volume: 1_000_000 * (1 + 0.2*math.Cos(x/5)),
		})
	}
	return bars
}
