package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"StockVision/internal/model"
)

// State is the persisted part of a session: the latest forecast per model.
type State struct {
	Forecasts  map[model.ModelKind]*model.ForecastResult `json:"forecasts"`
	LastSymbol string                                    `json:"last_symbol"`
	UpdatedAt  time.Time                                 `json:"updated_at"`
}

// LoadState reads the session state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Forecasts: make(map[model.ModelKind]*model.ForecastResult)}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Forecasts == nil {
		state.Forecasts = make(map[model.ModelKind]*model.ForecastResult)
	}
	return &state, nil
}

// SaveState writes the session state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
