package model

import (
	"fmt"
	"strings"
	"time"
)

// ModelKind selects the regression model used for forecasting.
type ModelKind string

const (
	KindLinear       ModelKind = "linear"
	KindRandomForest ModelKind = "random_forest"
	KindEnsemble     ModelKind = "ensemble"
)

// Kinds lists every supported model kind.
var Kinds = []ModelKind{KindLinear, KindRandomForest, KindEnsemble}

// DisplayName returns the human-readable model name.
func (k ModelKind) DisplayName() string {
	switch k {
	case KindLinear:
		return "Linear Regression"
	case KindRandomForest:
		return "Random Forest"
	case KindEnsemble:
		return "Ensemble"
	default:
		return string(k)
	}
}

// ParseModelKind accepts canonical names, display names and short aliases.
func ParseModelKind(s string) (ModelKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "linear", "linearregression", "lr":
		return KindLinear, nil
	case "randomforest", "rf", "forest":
		return KindRandomForest, nil
	case "ensemble", "ens":
		return KindEnsemble, nil
	}
	return "", &ValidationError{Field: "model", Value: s, Err: ErrUnknownModelKind}
}

// Evaluation holds hold-out metrics of a trained model.
type Evaluation struct {
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// ForecastPoint is one predicted close.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ForecastResult is the outcome of one train-and-forecast request.
// Metrics is nil when no aggregate metric applies (ensemble);
// per-model metrics are then found in Components.
type ForecastResult struct {
	RunID       string                   `json:"run_id"`
	Symbol      string                   `json:"symbol"`
	Model       ModelKind                `json:"model"`
	Points      []ForecastPoint          `json:"points"`
	Metrics     *Evaluation              `json:"metrics,omitempty"`
	Components  map[ModelKind]Evaluation `json:"components,omitempty"`
	LastClose   float64                  `json:"last_close"`
	LastDate    time.Time                `json:"last_date"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// Closes returns the predicted closes in order.
func (r *ForecastResult) Closes() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Close
	}
	return out
}

// Final returns the last forecast point.
func (r *ForecastResult) Final() (ForecastPoint, error) {
	if len(r.Points) == 0 {
		return ForecastPoint{}, fmt.Errorf("forecast %s has no points", r.RunID)
	}
	return r.Points[len(r.Points)-1], nil
}

// ChangePct returns the expected percentage change from the last close to the final forecast.
func (r *ForecastResult) ChangePct() float64 {
	p, err := r.Final()
	if err != nil || r.LastClose == 0 {
		return 0
	}
	return (p.Close - r.LastClose) / r.LastClose * 100
}
