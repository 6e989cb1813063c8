package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockVision/internal/collector"
	"StockVision/internal/forecast"
	"StockVision/internal/model"
	"StockVision/internal/recorder"
	"StockVision/internal/service"
	"StockVision/internal/session"
)

func newTestServer(t *testing.T, f collector.Fetcher) *httptest.Server {
	t.Helper()
	col := collector.NewCollector(f, nil, 0, 400, zerolog.Nop())
	eng := forecast.NewEngine(zerolog.Nop())
	eng.Trees = 10
	store, err := session.NewStore("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })

	p := service.NewPredictor(col, eng, store, rec, zerolog.Nop())
	ts := httptest.NewServer(NewServer(":0", p, zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func syntheticFetcher() *collector.StaticFetcher {
	return &collector.StaticFetcher{Price: 150, End: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)}
}

func get(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())
	var body map[string]string
	if code := get(t, ts.URL+"/healthz", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", code, body)
	}
}

func TestForecast(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())

	var res model.ForecastResult
	if code := get(t, ts.URL+"/api/v1/forecast/aapl?days=5&model=linear", &res); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if res.Symbol != "AAPL" || res.Model != model.KindLinear || len(res.Points) != 5 {
		t.Errorf("result = %s %s %d points", res.Symbol, res.Model, len(res.Points))
	}
	if res.Metrics == nil {
		t.Error("linear forecast should carry metrics")
	}

	var latest []model.ForecastResult
	if code := get(t, ts.URL+"/api/v1/forecasts/latest", &latest); code != http.StatusOK || len(latest) != 1 {
		t.Errorf("latest = %d, %d results", code, len(latest))
	}

	var runs []recorder.RunSummary
	if code := get(t, ts.URL+"/api/v1/runs/aapl?limit=5", &runs); code != http.StatusOK {
		t.Fatalf("runs status = %d", code)
	}
	if len(runs) != 1 || runs[0].RunID != res.RunID || runs[0].Days != 5 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestForecast_DefaultsToEnsemble(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())
	var res model.ForecastResult
	if code := get(t, ts.URL+"/api/v1/forecast/MSFT", &res); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if res.Model != model.KindEnsemble || len(res.Points) != 30 {
		t.Errorf("got %s with %d points, want ensemble with 30", res.Model, len(res.Points))
	}
	if res.Metrics != nil || len(res.Components) != 2 {
		t.Errorf("ensemble metrics = %v, components = %d", res.Metrics, len(res.Components))
	}
}

func TestForecast_BadRequests(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())
	tests := []struct {
		path  string
		field string
	}{
		{"/api/v1/forecast/aapl?days=0", "days"},
		{"/api/v1/forecast/aapl?days=366", "days"},
		{"/api/v1/forecast/aapl?days=ten", "days"},
		{"/api/v1/forecast/aapl?model=xgboost", ""},
		{"/api/v1/forecast/not$valid", ""},
		{"/api/v1/indicators/aapl?rows=0", "rows"},
	}
	for _, tt := range tests {
		var body errorBody
		code := get(t, ts.URL+tt.path, &body)
		if code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (%s)", tt.path, code, body.Error)
			continue
		}
		if tt.field != "" && (len(body.Fields) != 1 || body.Fields[0].Field != tt.field) {
			t.Errorf("%s: fields = %+v", tt.path, body.Fields)
		}
	}
}

func TestForecast_InsufficientHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 40)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1000}
	}
	ts := newTestServer(t, &collector.StaticFetcher{Bars: bars})

	var body errorBody
	if code := get(t, ts.URL+"/api/v1/forecast/aapl?days=5", &body); code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d (%s), want 422", code, body.Error)
	}
}

func TestIndicators(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())
	var resp indicatorsResponse
	if code := get(t, ts.URL+"/api/v1/indicators/aapl?rows=5", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Symbol != "AAPL" || len(resp.Rows) != 5 || resp.Total < 250 {
		t.Fatalf("symbol %s, rows %d, total %d", resp.Symbol, len(resp.Rows), resp.Total)
	}
	last := resp.Rows[len(resp.Rows)-1]
	for _, col := range model.IndicatorColumns {
		if last.Indicators[col] == nil {
			t.Errorf("%s undefined on the last row", col)
		}
	}
	if !last.Date.After(resp.Rows[0].Date) {
		t.Error("rows should be in date order")
	}
}

func TestInfo(t *testing.T) {
	ts := newTestServer(t, syntheticFetcher())
	var prof model.Profile
	if code := get(t, ts.URL+"/api/v1/info/nvda", &prof); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if prof.Symbol != "NVDA" || prof.High52w <= prof.Low52w {
		t.Errorf("profile = %+v", prof)
	}
}
