package calculator

import (
	"fmt"

	"StockVision/internal/model"
)

const (
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	bbWindow   = 20
	bbWidth    = 2.0
)

// ComputeIndicators returns a copy of s with every indicator column attached.
// The input series is not modified.
func ComputeIndicators(s *model.Series) (*model.Series, error) {
	if err := ValidateSeries(s); err != nil {
		return nil, err
	}

	closes := extractCloses(s.Bars)
	out := &model.Series{
		Symbol:    s.Symbol,
		Bars:      append([]model.OHLCV(nil), s.Bars...),
		Columns:   make(map[string][]float64, len(s.Columns)+len(model.IndicatorColumns)),
		FetchedAt: s.FetchedAt,
	}
	for k, v := range s.Columns {
		out.Columns[k] = append([]float64(nil), v...)
	}

	out.Columns[model.ColMA20] = RollingSMA(closes, 20)
	out.Columns[model.ColMA50] = RollingSMA(closes, 50)
	out.Columns[model.ColMA200] = RollingSMA(closes, 200)
	out.Columns[model.ColRSI] = RollingRSI(closes, rsiPeriod)

	line, sig := MACD(closes, macdFast, macdSlow, macdSignal)
	out.Columns[model.ColMACD] = line
	out.Columns[model.ColMACDSignal] = sig

	mid, up, low := BollingerBands(closes, bbWindow, bbWidth)
	out.Columns[model.ColBBMiddle] = mid
	out.Columns[model.ColBBUpper] = up
	out.Columns[model.ColBBLower] = low

	out.Columns[model.ColVolumeMA50] = RollingSMA(s.Volumes(), 50)
	return out, nil
}

// ValidateSeries rejects empty series and bars that are not strictly increasing by date.
func ValidateSeries(s *model.Series) error {
	if s == nil || len(s.Bars) == 0 {
		return &model.ValidationError{Field: "series", Value: "empty", Err: model.ErrEmptySeries}
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			return &model.ValidationError{
				Field: "series",
				Value: fmt.Sprintf("%s row %d", s.Symbol, i),
				Err:   model.ErrUnorderedSeries,
			}
		}
	}
	return nil
}
