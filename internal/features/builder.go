// Package features turns an indicator-augmented series into the
// fixed-schema feature table consumed by the regressors.
package features

import (
	"math"

	"StockVision/internal/calculator"
	"StockVision/internal/model"
)

// Build derives one feature row per bar and keeps only rows where every
// field is finite. Indicators are computed first when the series lacks them.
// An empty table is not an error here.
func Build(s *model.Series) (*model.FeatureTable, error) {
	if s.Column(model.ColMA20) == nil {
		var err error
		if s, err = calculator.ComputeIndicators(s); err != nil {
			return nil, err
		}
	}

	ma20 := s.Column(model.ColMA20)
	ma50 := s.Column(model.ColMA50)
	rsi := s.Column(model.ColRSI)
	macd := s.Column(model.ColMACD)

	table := &model.FeatureTable{Schema: model.FeatureNames[:]}
	for i, b := range s.Bars {
		var row model.FeatureRow
		row.Date = b.Time
		v := &row.Values

		v[model.FClose] = b.Close
		v[model.FVolume] = b.Volume
		v[model.FMA20] = at(ma20, i)
		v[model.FMA50] = at(ma50, i)
		v[model.FRSI] = at(rsi, i)
		v[model.FMACD] = at(macd, i)
		for lag := 1; lag <= model.Lags; lag++ {
			v[model.FCloseLag1+lag-1] = closeAt(s.Bars, i-lag)
			v[model.FVolumeLag1+lag-1] = volumeAt(s.Bars, i-lag)
		}
		v[model.FPriceChange] = pctChange(closeAt(s.Bars, i-1), b.Close)
		v[model.FVolumeChange] = pctChange(volumeAt(s.Bars, i-1), b.Volume)
		v[model.FHighLowRatio] = b.High / b.Low
		v[model.FPriceMA20Ratio] = b.Close / v[model.FMA20]

		if !complete(row) {
			table.Dropped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func at(col []float64, i int) float64 {
	if i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

func closeAt(bars []model.OHLCV, i int) float64 {
	if i < 0 {
		return math.NaN()
	}
	return bars[i].Close
}

func volumeAt(bars []model.OHLCV, i int) float64 {
	if i < 0 {
		return math.NaN()
	}
	return bars[i].Volume
}

// pctChange is the fractional change from prev to cur. A zero prev
// yields Inf or NaN, which the completeness check drops.
func pctChange(prev, cur float64) float64 {
	return cur/prev - 1
}

func complete(row model.FeatureRow) bool {
	for _, v := range row.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
