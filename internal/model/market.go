package model

import (
	"math"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Indicator column names produced by the calculator.
const (
	ColMA20       = "MA20"
	ColMA50       = "MA50"
	ColMA200      = "MA200"
	ColRSI        = "RSI"
	ColMACD       = "MACD"
	ColMACDSignal = "MACD_signal"
	ColBBMiddle   = "BB_middle"
	ColBBUpper    = "BB_upper"
	ColBBLower    = "BB_lower"
	ColVolumeMA50 = "Volume_MA50"
)

// IndicatorColumns lists the derived columns in display order.
var IndicatorColumns = []string{
	ColMA20, ColMA50, ColMA200, ColRSI, ColMACD, ColMACDSignal,
	ColBBMiddle, ColBBUpper, ColBBLower, ColVolumeMA50,
}

// Series holds the daily bars of one symbol plus any derived columns.
// Every column has the same length as Bars; NaN marks an undefined value.
type Series struct {
	Symbol    string
	Bars      []OHLCV
	Columns   map[string][]float64
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Closes returns the close prices in order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volumes in order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Column returns the named derived column, or nil if absent.
func (s *Series) Column(name string) []float64 {
	if s.Columns == nil {
		return nil
	}
	return s.Columns[name]
}

// Value returns the named column at row i, NaN when missing or undefined.
func (s *Series) Value(name string, i int) float64 {
	col := s.Column(name)
	if i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

// Last returns the most recent bar. The series must not be empty.
func (s *Series) Last() OHLCV { return s.Bars[len(s.Bars)-1] }

// Tail returns a copy of the series restricted to its last n rows.
func (s *Series) Tail(n int) *Series {
	if n >= len(s.Bars) || n < 0 {
		n = len(s.Bars)
	}
	start := len(s.Bars) - n
	out := &Series{
		Symbol:    s.Symbol,
		Bars:      append([]OHLCV(nil), s.Bars[start:]...),
		Columns:   make(map[string][]float64, len(s.Columns)),
		FetchedAt: s.FetchedAt,
	}
	for k, col := range s.Columns {
		out.Columns[k] = append([]float64(nil), col[start:]...)
	}
	return out
}

// Profile is descriptive metadata about a security, used only for display.
type Profile struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Exchange       string  `json:"exchange"`
	Currency       string  `json:"currency"`
	InstrumentType string  `json:"instrument_type"`
	MarketPrice    float64 `json:"market_price"`
	PreviousClose  float64 `json:"previous_close"`
	High52w        float64 `json:"high_52w"`
	Low52w         float64 `json:"low_52w"`
	Position52w    float64 `json:"position_52w"` // 0.0 ~ 1.0
	// Optional fields; zero when the data source does not provide them.
	Sector    string  `json:"sector,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
	PERatio   float64 `json:"pe_ratio,omitempty"`
	Volume    float64 `json:"volume,omitempty"`
}
