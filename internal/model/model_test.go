package model

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseModelKind(t *testing.T) {
	tests := []struct {
		in   string
		want ModelKind
	}{
		{"linear", KindLinear},
		{"Linear Regression", KindLinear},
		{"LR", KindLinear},
		{"random_forest", KindRandomForest},
		{"Random Forest", KindRandomForest},
		{"rf", KindRandomForest},
		{" Ensemble ", KindEnsemble},
	}
	for _, tt := range tests {
		got, err := ParseModelKind(tt.in)
		if err != nil {
			t.Errorf("ParseModelKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModelKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	_, err := ParseModelKind("lstm")
	if !errors.Is(err, ErrUnknownModelKind) {
		t.Errorf("err = %v, want ErrUnknownModelKind", err)
	}
	if !IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestInsufficientDataError(t *testing.T) {
	var err error = &InsufficientDataError{Stage: "split", Rows: 3, Need: 6}
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("errors.Is should match ErrInsufficientData")
	}
	if !strings.Contains(err.Error(), "split") {
		t.Errorf("message = %q", err.Error())
	}
	if IsValidation(err) {
		t.Error("insufficient data is not a validation error")
	}
}

func TestSeriesHelpers(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Series{
		Symbol: "X",
		Bars: []OHLCV{
			{Time: d, Close: 1, Volume: 10},
			{Time: d.AddDate(0, 0, 1), Close: 2, Volume: 20},
			{Time: d.AddDate(0, 0, 2), Close: 3, Volume: 30},
		},
		Columns: map[string][]float64{ColMA20: {math.NaN(), 1.5, 2.5}},
	}
	if !math.IsNaN(s.Value(ColMA20, 0)) || s.Value(ColMA20, 2) != 2.5 {
		t.Error("Value returned wrong entries")
	}
	if !math.IsNaN(s.Value(ColRSI, 1)) {
		t.Error("missing column should read as NaN")
	}
	tail := s.Tail(2)
	if tail.Len() != 2 || tail.Bars[0].Close != 2 || tail.Column(ColMA20)[0] != 1.5 {
		t.Errorf("Tail = %+v", tail)
	}
	tail.Columns[ColMA20][0] = 99
	if s.Columns[ColMA20][1] != 1.5 {
		t.Error("Tail should copy columns")
	}
}

func TestForecastResultChange(t *testing.T) {
	r := &ForecastResult{LastClose: 100, Points: []ForecastPoint{{Close: 101}, {Close: 110}}}
	if got := r.ChangePct(); math.Abs(got-10) > 1e-12 {
		t.Errorf("ChangePct = %v, want 10", got)
	}
	if _, err := (&ForecastResult{}).Final(); err == nil {
		t.Error("expected error for empty forecast")
	}
}
