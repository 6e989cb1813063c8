package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockVision/internal/model"
)

func result(kind model.ModelKind, symbol string, closes ...float64) *model.ForecastResult {
	d := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	r := &model.ForecastResult{RunID: string(kind) + "-run", Symbol: symbol, Model: kind, LastClose: 100, LastDate: d}
	for i, c := range closes {
		r.Points = append(r.Points, model.ForecastPoint{Date: d.AddDate(0, 0, i+1), Close: c})
	}
	return r
}

func TestStore_LatestPerModel(t *testing.T) {
	s, err := NewStore("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.PutForecast(result(model.KindLinear, "AAPL", 1))
	s.PutForecast(result(model.KindLinear, "MSFT", 2))
	s.PutForecast(result(model.KindEnsemble, "MSFT", 3))

	got, ok := s.Forecast(model.KindLinear)
	if !ok || got.Symbol != "MSFT" {
		t.Errorf("latest linear = %+v", got)
	}
	if all := s.Forecasts(); len(all) != 2 || all[0].Model != model.KindEnsemble {
		t.Errorf("forecasts = %d, first %v", len(all), all[0].Model)
	}
	if s.LastSymbol() != "MSFT" {
		t.Errorf("last symbol = %s", s.LastSymbol())
	}
}

func TestStore_PersistsForecasts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.PutSeries(&model.Series{Symbol: "NVDA"})
	s.PutForecast(result(model.KindRandomForest, "NVDA", 10, 11))

	reloaded, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.Forecast(model.KindRandomForest)
	if !ok || len(got.Points) != 2 || got.Points[1].Close != 11 {
		t.Fatalf("reloaded forecast = %+v", got)
	}
	if _, ok := reloaded.Series("NVDA"); ok {
		t.Error("series should not survive a reload")
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(reloaded.Forecasts()) != 0 {
		t.Error("Clear left forecasts behind")
	}
}
