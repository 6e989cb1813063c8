package features

import (
	"math"
	"testing"
	"time"

	"StockVision/internal/model"
)

func trendSeries(n int) *model.Series {
	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 50 + 0.3*float64(i) + 2*math.Cos(float64(i)/3)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 5000 + float64(i%11)*10,
		}
	}
	return &model.Series{Symbol: "TRND", Bars: bars}
}

func TestBuild_RowsAreComplete(t *testing.T) {
	table, err := Build(trendSeries(120))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// MA50 is the longest lookback the schema needs, first defined at row 49.
	if got, want := table.Len(), 120-49; got != want {
		t.Errorf("rows = %d, want %d", got, want)
	}
	if table.Dropped != 49 {
		t.Errorf("dropped = %d, want 49", table.Dropped)
	}
	if len(table.Schema) != int(model.NumFeatures) {
		t.Errorf("schema has %d fields", len(table.Schema))
	}
	for _, row := range table.Rows {
		for j, v := range row.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: %s is %v", row.Date.Format("2006-01-02"), model.FeatureNames[j], v)
			}
		}
	}
}

func TestBuild_FieldDefinitions(t *testing.T) {
	s := trendSeries(80)
	table, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	row := table.Rows[10]
	i := 49 + 10
	if !row.Date.Equal(s.Bars[i].Time) {
		t.Fatalf("row date %v, want %v", row.Date, s.Bars[i].Time)
	}
	v := row.Values
	if v[model.FCloseLag3] != s.Bars[i-3].Close {
		t.Errorf("Close_lag_3 = %v, want %v", v[model.FCloseLag3], s.Bars[i-3].Close)
	}
	if v[model.FVolumeLag5] != s.Bars[i-5].Volume {
		t.Errorf("Volume_lag_5 = %v, want %v", v[model.FVolumeLag5], s.Bars[i-5].Volume)
	}
	wantChange := s.Bars[i].Close/s.Bars[i-1].Close - 1
	if math.Abs(v[model.FPriceChange]-wantChange) > 1e-12 {
		t.Errorf("Price_Change = %v, want %v", v[model.FPriceChange], wantChange)
	}
	wantHL := s.Bars[i].High / s.Bars[i].Low
	if math.Abs(v[model.FHighLowRatio]-wantHL) > 1e-12 {
		t.Errorf("High_Low_Ratio = %v, want %v", v[model.FHighLowRatio], wantHL)
	}
	if math.Abs(v[model.FPriceMA20Ratio]-v[model.FClose]/v[model.FMA20]) > 1e-12 {
		t.Error("Price_MA20_Ratio mismatch")
	}
}

func TestBuild_ZeroVolumeRowsDropped(t *testing.T) {
	s := trendSeries(100)
	s.Bars[70].Volume = 0
	table, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// row 71 divides by a zero previous volume
	for _, row := range table.Rows {
		if row.Date.Equal(s.Bars[71].Time) {
			t.Fatal("row after zero volume should be dropped")
		}
	}
	if table.Len() != 100-49-1 {
		t.Errorf("rows = %d, want %d", table.Len(), 100-49-1)
	}
}

func TestBuild_ShortSeriesYieldsEmptyTable(t *testing.T) {
	table, err := Build(trendSeries(30))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("rows = %d, want 0", table.Len())
	}
}
