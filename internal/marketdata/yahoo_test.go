package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-researcher/internal/cache"
	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
)

func newTestCache() *cache.Cache {
	return cache.New(64, time.Minute)
}

// chartPayload builds a minimal chart API response. A nil pointer in the
// quote arrays marks a null bar.
func chartPayload(timestamps []int64, closes []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"symbol": "TCS.NS", "regularMarketPrice": 4100.5, "chartPreviousClose": 4050.0},
				"timestamp": [%s],
				"indicators": {"quote": [{
					"open": [%s],
					"high": [%s],
					"low": [%s],
					"close": [%s],
					"volume": [%s]
				}]}
			}],
			"error": null
		}
	}`, strings.Join(ts, ","),
		strings.Join(closes, ","), strings.Join(closes, ","),
		strings.Join(closes, ","), strings.Join(closes, ","),
		strings.Repeat("1000,", len(closes)-1)+"1000")
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*YahooProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewYahooProvider(YahooOptions{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		RequestsPerMin: 600,
	})
	return provider, server
}

func TestYahooHistory(t *testing.T) {
	day := int64(86400)
	base := int64(1704067200) // 2024-01-01
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v8/finance/chart/TCS.NS") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("range"); got != "6mo" {
			t.Errorf("range = %q, want 6mo", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want 1d", got)
		}
		fmt.Fprint(w, chartPayload(
			[]int64{base, base + day, base + 2*day},
			[]string{"100.5", "101.25", "102.0"},
		))
	})

	candles, err := provider.History(context.Background(), "tcs", "6mo")
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}
	if candles[2].Close != 102.0 {
		t.Errorf("last close = %v, want 102.0", candles[2].Close)
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("candles should be sorted by timestamp")
	}
}

func TestYahooHistoryNullBarsSkipped(t *testing.T) {
	day := int64(86400)
	base := int64(1704067200)
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		// Middle bar is a holiday: all quote fields null
		fmt.Fprint(w, chartPayload(
			[]int64{base, base + day, base + 2*day},
			[]string{"100.5", "null", "102.0"},
		))
	})

	candles, err := provider.History(context.Background(), "TCS", "1mo")
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (null bar skipped)", len(candles))
	}
	if candles[0].Close != 100.5 || candles[1].Close != 102.0 {
		t.Errorf("candles = %v, want closes 100.5 and 102.0", candles)
	}
}

func TestYahooHistoryUnknownSymbol(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	})

	_, err := provider.History(context.Background(), "NOSUCH", "1y")
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if !apperrors.IsDataUnavailable(err) {
		t.Fatalf("expected DataUnavailableError, got %T: %v", err, err)
	}
}

func TestYahooHistoryInvalidPeriodNormalized(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("range"); got != "1y" {
			t.Errorf("range = %q, want 1y fallback", got)
		}
		fmt.Fprint(w, chartPayload([]int64{1704067200}, []string{"100.0"}))
	})

	if _, err := provider.History(context.Background(), "TCS", "7w"); err != nil {
		t.Fatal(err)
	}
}

func TestYahooRetriesAreBounded(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	provider := NewYahooProvider(YahooOptions{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		RequestsPerMin: 600,
		MaxRetries:     1,
	})

	_, err := provider.History(context.Background(), "TCS", "1y")
	if err == nil {
		t.Fatal("expected error for a persistently failing server")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one attempt plus one retry)", calls)
	}
}

func TestYahooBSETickerSuffix(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, chartPayload([]int64{1704067200}, []string{"100.0"}))
	}))
	t.Cleanup(server.Close)

	provider := NewYahooProvider(YahooOptions{
		BaseURL:        server.URL,
		Exchange:       "BSE",
		Timeout:        5 * time.Second,
		RequestsPerMin: 600,
	})

	if _, err := provider.History(context.Background(), "tcs", "1y"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(requestedPath, "TCS.BO") {
		t.Errorf("path = %q, want the BSE ticker TCS.BO", requestedPath)
	}

	// An explicit suffix is not doubled up
	if _, err := provider.History(context.Background(), "TCS.NS", "1y"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(requestedPath, "TCS.NS") {
		t.Errorf("path = %q, want the explicit TCS.NS preserved", requestedPath)
	}
}

func TestYahooQuote(t *testing.T) {
	day := int64(86400)
	base := int64(1704067200)
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload(
			[]int64{base, base + day},
			[]string{"4000.0", "4100.0"},
		))
	})

	quote, err := provider.Quote(context.Background(), "TCS")
	if err != nil {
		t.Fatal(err)
	}
	if quote.LTP != 4100.0 {
		t.Errorf("ltp = %v, want 4100.0", quote.LTP)
	}
	if quote.PrevClose != 4000.0 {
		t.Errorf("prev_close = %v, want 4000.0", quote.PrevClose)
	}
	if quote.Change != 100.0 {
		t.Errorf("change = %v, want 100.0", quote.Change)
	}
	if quote.ChangePercent != 2.5 {
		t.Errorf("change_percent = %v, want 2.5", quote.ChangePercent)
	}
}

func TestYahooCompanyInfo(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/INFY.NS") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.Query().Get("modules"), "financialData") {
			t.Errorf("modules = %q, want financialData included", r.URL.Query().Get("modules"))
		}
		fmt.Fprint(w, `{
			"quoteSummary": {
				"result": [{
					"price": {"longName": "Infosys Limited", "marketCap": {"raw": 6500000000000}},
					"assetProfile": {"sector": "Technology", "industry": "IT Services"},
					"summaryDetail": {"trailingPE": {"raw": 24.3}, "dividendYield": {"raw": 0.026}},
					"defaultKeyStatistics": {"priceToBook": {"raw": 7.1}},
					"financialData": {"returnOnEquity": {"raw": 0.31}, "debtToEquity": {"raw": 8.5}}
				}],
				"error": null
			}
		}`)
	})

	info, err := provider.CompanyInfo(context.Background(), "INFY")
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "Infosys Limited" {
		t.Errorf("name = %q, want Infosys Limited", info.Name)
	}
	if info.Sector != "Technology" {
		t.Errorf("sector = %q, want Technology", info.Sector)
	}
	if info.PE != 24.3 || info.PB != 7.1 {
		t.Errorf("pe/pb = %v/%v, want 24.3/7.1", info.PE, info.PB)
	}
	if info.ROE != 0.31 {
		t.Errorf("roe = %v, want 0.31", info.ROE)
	}
	// Unreported metrics stay zero
	if info.EarningsGrowth != 0 {
		t.Errorf("earnings_growth = %v, want 0 when unreported", info.EarningsGrowth)
	}
}

func TestYahooIndex(t *testing.T) {
	var requestedPath string
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, chartPayload([]int64{1704067200}, []string{"21750.25"}))
	})

	snapshot, err := provider.Index(context.Background(), "NIFTY50")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(requestedPath, "%5ENSEI") && !strings.Contains(requestedPath, "^NSEI") {
		t.Errorf("path = %q, want ^NSEI ticker", requestedPath)
	}
	if snapshot.Value != 4100.5 {
		t.Errorf("value = %v, want meta regularMarketPrice 4100.5", snapshot.Value)
	}
	if snapshot.Change != 50.5 {
		t.Errorf("change = %v, want 50.5", snapshot.Change)
	}
}

func TestYahooIndexUnknownName(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an unknown index")
	})

	_, err := provider.Index(context.Background(), "DOWJONES")
	if !apperrors.IsDataUnavailable(err) {
		t.Fatalf("expected DataUnavailableError, got %v", err)
	}
}

// stubProvider counts calls for cache tests.
type stubProvider struct {
	historyCalls int
	quoteCalls   int
}

func (s *stubProvider) History(ctx context.Context, symbol, period string) ([]models.Candle, error) {
	s.historyCalls++
	return []models.Candle{{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Open:      100, High: 101, Low: 99, Close: 100, Volume: 1000,
	}}, nil
}

func (s *stubProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.quoteCalls++
	return &models.Quote{Symbol: symbol, LTP: 100}, nil
}

func (s *stubProvider) CompanyInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	return &models.CompanyInfo{Symbol: symbol}, nil
}

func (s *stubProvider) Index(ctx context.Context, name string) (*models.IndexSnapshot, error) {
	return &models.IndexSnapshot{Name: name}, nil
}

func TestCachedProviderServesRepeats(t *testing.T) {
	stub := &stubProvider{}
	cached := NewCachedProvider(stub, newTestCache())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cached.History(ctx, "TCS", "1y"); err != nil {
			t.Fatal(err)
		}
	}
	if stub.historyCalls != 1 {
		t.Errorf("history calls = %d, want 1 (repeats cached)", stub.historyCalls)
	}

	// A different period is a different cache key
	if _, err := cached.History(ctx, "TCS", "6mo"); err != nil {
		t.Fatal(err)
	}
	if stub.historyCalls != 2 {
		t.Errorf("history calls = %d, want 2 after new period", stub.historyCalls)
	}

	// Quotes cache independently of history
	for i := 0; i < 2; i++ {
		if _, err := cached.Quote(ctx, "TCS"); err != nil {
			t.Fatal(err)
		}
	}
	if stub.quoteCalls != 1 {
		t.Errorf("quote calls = %d, want 1", stub.quoteCalls)
	}
}
