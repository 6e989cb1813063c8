package recorder

import (
	"time"

	"StockVision/internal/model"
)

// RunSummary is one stored forecast run as read back for history views.
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Symbol     string          `json:"symbol"`
	Model      model.ModelKind `json:"model"`
	Days       int             `json:"days"`
	LastClose  float64         `json:"last_close"`
	FinalClose float64         `json:"final_close"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Recorder persists forecast runs for later analysis.
type Recorder interface {
	RecordForecast(res *model.ForecastResult) error
	RecentRuns(symbol string, limit int) ([]RunSummary, error)
	Close() error
}
