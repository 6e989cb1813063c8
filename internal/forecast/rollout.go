package forecast

import (
	"time"

	"StockVision/internal/model"
	"StockVision/internal/regression"
)

const (
	MinDays = 1
	MaxDays = 365
)

// ValidateHorizon rejects forecast lengths outside [MinDays, MaxDays].
func ValidateHorizon(days int) error {
	if days < MinDays || days > MaxDays {
		return &model.ValidationError{Field: "days", Value: days, Err: model.ErrInvalidHorizon}
	}
	return nil
}

// rolloutState carries the autoregressive loop between steps. Only the
// close field rolls forward; every other feature stays frozen at the last
// observed row, so lags and indicators drift out of sync as steps accumulate.
type rolloutState struct {
	row  [model.NumFeatures]float64
	step int
}

func (s *rolloutState) advance(pred float64) {
	s.row[model.FClose] = pred
	s.step++
}

// Rollout predicts days consecutive closes starting from the last feature row.
// Point i is dated lastDate plus i+1 calendar days.
func Rollout(reg regression.Regressor, last model.FeatureRow, lastDate time.Time, days int) ([]model.ForecastPoint, error) {
	if err := ValidateHorizon(days); err != nil {
		return nil, err
	}
	st := rolloutState{row: last.Values}
	points := make([]model.ForecastPoint, 0, days)
	for st.step < days {
		pred := reg.Predict(st.row[:])
		points = append(points, model.ForecastPoint{
			Date:  lastDate.AddDate(0, 0, st.step+1),
			Close: pred,
		})
		st.advance(pred)
	}
	return points, nil
}
