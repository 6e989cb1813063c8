package collector

import (
	"context"

	"StockVision/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns daily bars covering the trailing days calendar days.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchProfile(ctx context.Context, symbol string) (*model.Profile, error)
	Name() string
}
