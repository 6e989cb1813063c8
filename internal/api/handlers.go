package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"StockVision/internal/collector"
	"StockVision/internal/model"
	"StockVision/internal/recorder"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// writeError maps err onto a status code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Fields: reqErr.Fields})
		return
	case model.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case errors.Is(err, model.ErrInsufficientData):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	req, err := bindForecast(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	kind, err := req.modelKind()
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.Predictor.Predict(r.Context(), req.Symbol, kind, req.Days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// indicatorRow is one bar with its derived values; undefined values are null.
type indicatorRow struct {
	Date       time.Time           `json:"date"`
	Close      float64             `json:"close"`
	Volume     float64             `json:"volume"`
	Indicators map[string]*float64 `json:"indicators"`
}

type indicatorsResponse struct {
	Symbol string         `json:"symbol"`
	Total  int            `json:"total"`
	Rows   []indicatorRow `json:"rows"`
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	req, err := bindIndicators(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	series, err := s.Predictor.Indicators(r.Context(), req.Symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tail := series.Tail(req.Rows)
	resp := indicatorsResponse{Symbol: series.Symbol, Total: series.Len(), Rows: make([]indicatorRow, tail.Len())}
	for i, bar := range tail.Bars {
		row := indicatorRow{Date: bar.Time, Close: bar.Close, Volume: bar.Volume, Indicators: make(map[string]*float64, len(model.IndicatorColumns))}
		for _, col := range model.IndicatorColumns {
			row.Indicators[col] = finite(tail.Value(col, i))
		}
		resp.Rows[i] = row
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	series, err := s.Predictor.Indicators(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	prof, err := s.Predictor.Collector.Profile(r.Context(), series.Symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	results := s.Predictor.Latest()
	if results == nil {
		results = []*model.ForecastResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	req, err := bindRuns(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sym, err := collector.NormalizeSymbol(req.Symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	runs, err := s.Predictor.Recorder.RecentRuns(sym, req.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
