package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockVision/internal/model"
)

var testEnd = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

type countingFetcher struct {
	StaticFetcher
	calls int
}

func (c *countingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	c.calls++
	return c.StaticFetcher.FetchDailyBars(ctx, symbol, days)
}

func TestNormalizeSymbol(t *testing.T) {
	valid := map[string]string{"aapl": "AAPL", " brk.b ": "BRK.B", "^gspc": "^GSPC", "eurusd=x": "EURUSD=X"}
	for in, want := range valid {
		got, err := NormalizeSymbol(in)
		if err != nil || got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "  ", "AA PL", "TOO-LONG-SYMBOL-NAME", "<script>"} {
		if _, err := NormalizeSymbol(in); !errors.Is(err, model.ErrInvalidSymbol) {
			t.Errorf("NormalizeSymbol(%q) err = %v, want ErrInvalidSymbol", in, err)
		}
	}
}

func TestCollector_CollectAttachesIndicators(t *testing.T) {
	f := &StaticFetcher{Price: 150, End: testEnd}
	c := NewCollector(f, nil, time.Minute, 730, zerolog.Nop())
	s, err := c.Collect(context.Background(), "msft")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if s.Symbol != "MSFT" {
		t.Errorf("symbol = %s", s.Symbol)
	}
	// 730 calendar days hold roughly 520 weekdays
	if s.Len() < 500 || s.Len() > 530 {
		t.Errorf("bars = %d", s.Len())
	}
	for _, col := range model.IndicatorColumns {
		if len(s.Column(col)) != s.Len() {
			t.Errorf("column %s has %d rows", col, len(s.Column(col)))
		}
	}
}

func TestCollector_CacheAvoidsRefetch(t *testing.T) {
	f := &countingFetcher{StaticFetcher: StaticFetcher{Price: 80, End: testEnd}}
	c := NewCollector(f, NewMemoryBarCache(), time.Hour, 365, zerolog.Nop())
	for i := 0; i < 3; i++ {
		if _, err := c.Bars(context.Background(), "IBM"); err != nil {
			t.Fatalf("Bars: %v", err)
		}
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestCollector_NormalizesBars(t *testing.T) {
	d := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	f := &StaticFetcher{Bars: []model.OHLCV{
		{Time: d.AddDate(0, 0, 2), Close: 12},
		{Time: d, Close: 10},
		{Time: d.AddDate(0, 0, 1), Close: 0},
		{Time: d.Add(2 * time.Hour), Close: 11},
	}}
	s, err := NewCollector(f, nil, 0, 30, zerolog.Nop()).Bars(context.Background(), "X")
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if s.Len() != 2 || s.Bars[0].Close != 11 || s.Bars[1].Close != 12 {
		t.Errorf("bars = %+v", s.Bars)
	}
}

func TestCollector_EmptyHistory(t *testing.T) {
	f := &StaticFetcher{Bars: []model.OHLCV{}}
	_, err := NewCollector(f, nil, 0, 30, zerolog.Nop()).Collect(context.Background(), "X")
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("err = %v, want insufficient data", err)
	}
}

func TestCollector_ProfileFillsRange(t *testing.T) {
	f := &StaticFetcher{Price: 100, End: testEnd, Profile: &model.Profile{Symbol: "X", Name: "X Corp"}}
	p, err := NewCollector(f, nil, 0, 400, zerolog.Nop()).Profile(context.Background(), "x")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.High52w <= p.Low52w || p.MarketPrice == 0 {
		t.Errorf("profile = %+v", p)
	}
	if p.Position52w < 0 || p.Position52w > 1 {
		t.Errorf("position = %v", p.Position52w)
	}
	if p.Volume <= 0 {
		t.Errorf("volume = %v, want last bar volume", p.Volume)
	}
}

func TestMemoryBarCache_Expiry(t *testing.T) {
	c := NewMemoryBarCache()
	now := testEnd
	c.now = func() time.Time { return now }
	ctx := context.Background()
	if err := c.Set(ctx, "k", []model.OHLCV{{Close: 1}}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if bars, ok, _ := c.Get(ctx, "k"); !ok || len(bars) != 1 {
		t.Fatalf("Get = %v, %v", bars, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","currency":"USD","exchangeName":"NMS","fullExchangeName":"NasdaqGS",
          "instrumentType":"EQUITY","longName":"Apple Inc.","regularMarketPrice":190.5,
          "chartPreviousClose":188.0,"fiftyTwoWeekHigh":199.6,"fiftyTwoWeekLow":164.1},
  "timestamp":[1719840600,1719927000,1720013400],
  "indicators":{"quote":[{
    "open":[190.1,null,192.0],"high":[191.0,null,193.2],"low":[189.0,null,191.1],
    "close":[190.3,null,192.8],"volume":[5000000,null,6100000]}]}}],"error":null}}`

func TestYahooFetcher(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL") {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	f.now = func() time.Time { return testEnd }

	bars, err := f.FetchDailyBars(context.Background(), "AAPL", 730)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2 (null bar skipped)", len(bars))
	}
	if bars[1].Close != 192.8 || bars[1].Volume != 6100000 {
		t.Errorf("last bar = %+v", bars[1])
	}
	if !strings.Contains(gotQuery, "period1=") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("query = %s", gotQuery)
	}

	p, err := f.FetchProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.Name != "Apple Inc." || p.Exchange != "NasdaqGS" || p.High52w != 199.6 {
		t.Errorf("profile = %+v", p)
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			w.Write([]byte(`[{"timestamp":1720013400,"close":3},{"timestamp":1719840600,"close":1}]`))
		case "/api/v1/profile":
			w.Write([]byte(`{"name":"Test Co","currency":"EUR","sector":"Industrials","market_cap":2.5e9,"pe_ratio":18.4}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	bars, err := f.FetchDailyBars(context.Background(), "TST", 30)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 2 || bars[0].Close != 1 {
		t.Errorf("bars not sorted: %+v", bars)
	}
	p, err := f.FetchProfile(context.Background(), "TST")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.Symbol != "TST" || p.Currency != "EUR" || p.Sector != "Industrials" || p.MarketCap != 2.5e9 || p.PERatio != 18.4 {
		t.Errorf("profile = %+v", p)
	}

	f.APIKey = "wrong"
	if _, err := f.FetchDailyBars(context.Background(), "TST", 30); err == nil {
		t.Error("expected error for unauthorized request")
	}
}
