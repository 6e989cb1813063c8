package model

import "time"

// Feature indices into FeatureRow.Values, in schema order.
const (
	FClose = iota
	FVolume
	FMA20
	FMA50
	FRSI
	FMACD
	FCloseLag1
	FCloseLag2
	FCloseLag3
	FCloseLag4
	FCloseLag5
	FVolumeLag1
	FVolumeLag2
	FVolumeLag3
	FVolumeLag4
	FVolumeLag5
	FPriceChange
	FVolumeChange
	FHighLowRatio
	FPriceMA20Ratio

	NumFeatures
)

// Lags is the number of lagged close and volume columns.
const Lags = 5

// FeatureNames is the ordered feature schema.
var FeatureNames = [NumFeatures]string{
	"Close", "Volume", "MA20", "MA50", "RSI", "MACD",
	"Close_lag_1", "Close_lag_2", "Close_lag_3", "Close_lag_4", "Close_lag_5",
	"Volume_lag_1", "Volume_lag_2", "Volume_lag_3", "Volume_lag_4", "Volume_lag_5",
	"Price_Change", "Volume_Change", "High_Low_Ratio", "Price_MA20_Ratio",
}

// FeatureRow is one fully defined row of the feature table.
type FeatureRow struct {
	Date   time.Time
	Values [NumFeatures]float64
}

// Slice returns the values as a fresh slice.
func (r FeatureRow) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, r.Values[:])
	return out
}

// FeatureTable is the ordered set of complete feature rows.
type FeatureTable struct {
	Schema  []string
	Rows    []FeatureRow
	Dropped int
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int { return len(t.Rows) }
