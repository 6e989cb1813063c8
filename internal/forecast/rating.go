package forecast

import (
	"fmt"
	"strings"

	"StockVision/internal/model"
)

// Rating labels a model by its hold-out R2.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Ratings maps R2 lower bounds (exclusive) to labels, best first.
var Ratings = []struct {
	MinR2  float64
	Rating Rating
}{
	{0.8, RatingExcellent},
	{0.6, RatingGood},
	{0.4, RatingFair},
}

// Rate maps R2 to a rating. NaN rates Poor.
func Rate(r2 float64) Rating {
	for _, r := range Ratings {
		if r2 > r.MinR2 {
			return r.Rating
		}
	}
	return RatingPoor
}

// FormatMetrics renders an evaluation as plain text. A nil evaluation
// means the model is a weighted blend without its own metric.
func FormatMetrics(ev *model.Evaluation) string {
	if ev == nil {
		return "Metrics: weighted average of Random Forest and Linear Regression, see individual models"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MAE: %.4f\n", ev.MAE)
	fmt.Fprintf(&b, "R2: %.4f (%s)\n", ev.R2, Rate(ev.R2))
	fmt.Fprintf(&b, "Train/Test: %d/%d", ev.TrainRows, ev.TestRows)
	return b.String()
}
