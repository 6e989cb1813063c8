package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockVision/internal/model"
)

// stepRegressor predicts close+1 and records every input it sees.
type stepRegressor struct {
	seen [][]float64
}

func (s *stepRegressor) Fit(context.Context, [][]float64, []float64) error { return nil }

func (s *stepRegressor) Predict(x []float64) float64 {
	s.seen = append(s.seen, append([]float64(nil), x...))
	return x[model.FClose] + 1
}

func TestRollout_OnlyCloseRolls(t *testing.T) {
	var last model.FeatureRow
	for i := range last.Values {
		last.Values[i] = float64(i + 10)
	}
	last.Values[model.FClose] = 50
	lastDate := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)

	reg := &stepRegressor{}
	points, err := Rollout(reg, last, lastDate, 4)
	if err != nil {
		t.Fatalf("Rollout: %v", err)
	}
	for i, p := range points {
		if want := float64(51 + i); p.Close != want {
			t.Errorf("step %d close = %v, want %v", i, p.Close, want)
		}
		if want := lastDate.AddDate(0, 0, i+1); !p.Date.Equal(want) {
			t.Errorf("step %d date = %v, want %v", i, p.Date, want)
		}
	}
	// leap day and month boundary are plain calendar days
	if got := points[2].Date; got.Month() != time.March || got.Day() != 1 {
		t.Errorf("step 2 date = %v, want March 1", got)
	}
	for step, x := range reg.seen {
		for j, v := range x {
			if j == model.FClose {
				continue
			}
			if v != last.Values[j] {
				t.Errorf("step %d: %s changed to %v", step, model.FeatureNames[j], v)
			}
		}
	}
}

func TestRollout_RejectsBadHorizon(t *testing.T) {
	for _, days := range []int{0, 366} {
		_, err := Rollout(&stepRegressor{}, model.FeatureRow{}, time.Now(), days)
		if !errors.Is(err, model.ErrInvalidHorizon) {
			t.Errorf("days=%d: err = %v", days, err)
		}
	}
}

func TestCombine(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rf := []model.ForecastPoint{{Date: d, Close: 10}, {Date: d, Close: 20}}
	lr := []model.ForecastPoint{{Date: d, Close: 20}, {Date: d, Close: 10}}
	out, err := Combine(rf, lr)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if out[0].Close != 14 || out[1].Close != 16 {
		t.Errorf("Combine = %v", out)
	}
	if _, err := Combine(rf, lr[:1]); err == nil {
		t.Error("expected length mismatch error")
	}
}
