package session

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"StockVision/internal/model"
)

// Store keeps the latest series per symbol and the latest forecast per
// model kind so results can be shown again without recomputing.
// Series are held in memory only; forecasts are written to the state file.
type Store struct {
	mu       sync.Mutex
	series   map[string]*model.Series
	state    *State
	filePath string
	log      zerolog.Logger
}

// NewStore creates a Store, loading forecasts from disk. An empty path keeps everything in memory.
func NewStore(filePath string, log zerolog.Logger) (*Store, error) {
	state := &State{Forecasts: make(map[model.ModelKind]*model.ForecastResult)}
	if filePath != "" {
		var err error
		if state, err = LoadState(filePath); err != nil {
			return nil, err
		}
	}
	return &Store{
		series:   make(map[string]*model.Series),
		state:    state,
		filePath: filePath,
		log:      log.With().Str("component", "session").Logger(),
	}, nil
}

// PutSeries records the latest series for its symbol.
func (s *Store) PutSeries(series *model.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[series.Symbol] = series
	s.state.LastSymbol = series.Symbol
}

// Series returns the latest series for a symbol.
func (s *Store) Series(symbol string) (*model.Series, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	series, ok := s.series[symbol]
	return series, ok
}

// PutForecast records a result as the latest for its model kind.
func (s *Store) PutForecast(res *model.ForecastResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Forecasts[res.Model] = res
	s.state.LastSymbol = res.Symbol
	if err := s.save(); err != nil {
		s.log.Error().Err(err).Msg("failed to save session state")
	}
}

// Forecast returns the latest result for a model kind.
func (s *Store) Forecast(kind model.ModelKind) (*model.ForecastResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.state.Forecasts[kind]
	return res, ok
}

// Forecasts returns the latest result of every model kind, ordered by kind.
func (s *Store) Forecasts() []*model.ForecastResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ForecastResult, 0, len(s.state.Forecasts))
	for _, r := range s.state.Forecasts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

// LastSymbol returns the most recently used symbol.
func (s *Store) LastSymbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastSymbol
}

// Clear drops everything held by the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string]*model.Series)
	s.state = &State{Forecasts: make(map[model.ModelKind]*model.ForecastResult)}
	return s.save()
}

func (s *Store) save() error {
	if s.filePath == "" {
		return nil
	}
	return SaveState(s.filePath, s.state)
}
