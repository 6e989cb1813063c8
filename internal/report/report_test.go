package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"StockVision/internal/model"
	"StockVision/internal/recorder"
)

var day = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestWriteForecast_Single(t *testing.T) {
	res := &model.ForecastResult{
		Symbol: "AAPL", Model: model.KindLinear, LastClose: 200, LastDate: day,
		Points: []model.ForecastPoint{
			{Date: day.AddDate(0, 0, 1), Close: 202},
			{Date: day.AddDate(0, 0, 2), Close: 198},
		},
		Metrics: &model.Evaluation{MAE: 1.25, R2: 0.91, TrainRows: 40, TestRows: 10},
	}
	var buf bytes.Buffer
	WriteForecast(&buf, res)
	out := strings.ToLower(buf.String())
	for _, want := range []string{"aapl | linear regression", "2024-07-03", "+1.00%", "-1.00%", "r2: 0.9100 (excellent)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ensemble legs") {
		t.Error("single model should not render ensemble legs")
	}
}

func TestWriteForecast_Ensemble(t *testing.T) {
	res := &model.ForecastResult{
		Symbol: "MSFT", Model: model.KindEnsemble, LastClose: 100, LastDate: day,
		Points: []model.ForecastPoint{{Date: day.AddDate(0, 0, 1), Close: 101}},
		Components: map[model.ModelKind]model.Evaluation{
			model.KindRandomForest: {MAE: 2, R2: 0.5},
			model.KindLinear:       {MAE: 1, R2: 0.7},
		},
	}
	var buf bytes.Buffer
	WriteForecast(&buf, res)
	out := strings.ToLower(buf.String())
	for _, want := range []string{"weighted average", "ensemble legs", "fair", "good"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteIndicators(t *testing.T) {
	s := &model.Series{Symbol: "AAPL", Columns: map[string][]float64{}}
	for i := 0; i < 5; i++ {
		s.Bars = append(s.Bars, model.OHLCV{Time: day.AddDate(0, 0, i), Close: 100 + float64(i)})
	}
	s.Columns[model.ColMA20] = []float64{math.NaN(), math.NaN(), 101, 102, 103.5}

	var buf bytes.Buffer
	WriteIndicators(&buf, s, 2)
	out := strings.ToLower(buf.String())
	if !strings.Contains(out, "last 2 of 5 bars") || !strings.Contains(out, "103.50") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "2024-07-01") {
		t.Error("rows outside the tail were rendered")
	}
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	WriteRuns(&buf, "AAPL", []recorder.RunSummary{
		{RunID: "run-1", Model: model.KindRandomForest, Days: 7, LastClose: 50, FinalClose: 55, CreatedAt: day},
	})
	out := strings.ToLower(buf.String())
	if !strings.Contains(out, "random forest") || !strings.Contains(out, "+10.00%") || !strings.Contains(out, "run-1") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
