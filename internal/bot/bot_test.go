package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
	"stock-researcher/internal/universe"
)

// stubProvider serves canned market data to the handlers.
type stubProvider struct {
	history    []models.Candle
	lastPeriod string
	quoteErr   error
}

func (s *stubProvider) History(ctx context.Context, symbol, period string) ([]models.Candle, error) {
	s.lastPeriod = period
	return s.history, nil
}

func (s *stubProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return &models.Quote{
		Symbol: symbol, LTP: 2847.5, PrevClose: 2800,
		Change: 47.5, ChangePercent: 1.7, High: 2860, Low: 2790, Volume: 4500000,
	}, nil
}

func (s *stubProvider) CompanyInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	return &models.CompanyInfo{
		Symbol: symbol, Name: "Stub Industries", Sector: "ENERGY",
		PE: 12, PB: 0.8, ROE: 0.22, DebtToEquity: 35, EarningsGrowth: 0.18,
		MarketCap: 5e12,
	}, nil
}

func (s *stubProvider) Index(ctx context.Context, name string) (*models.IndexSnapshot, error) {
	return &models.IndexSnapshot{Name: name, Value: 24500, Change: 120, ChangePercent: 0.49}, nil
}

func (s *stubProvider) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return []models.NewsItem{{
		Title: "Stub Industries wins large order", Source: "wire",
		URL: "https://example.com/a", PublishedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}}, nil
}

func stubHistory(n int) []models.Candle {
	candles := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		price := 2800 + float64(i)
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price, High: price + 10, Low: price - 10, Close: price,
			Volume: 1000000,
		}
	}
	return candles
}

func newTestBot(t *testing.T) (*Bot, *stubProvider) {
	t.Helper()
	provider := &stubProvider{history: stubHistory(80)}
	u, err := universe.Load()
	if err != nil {
		t.Fatal(err)
	}
	b := newBot(Options{
		Provider:     provider,
		NewsProvider: provider,
		Universe:     u,
		Params:       indicators.DefaultParams(),
		Thresholds:   fundamentals.DefaultThresholds(),
		Cooldown:     30 * time.Second,
		Logger:       zerolog.Nop(),
	})
	return b, provider
}

func TestOptionDefaults(t *testing.T) {
	b := newBot(Options{Logger: zerolog.Nop()})
	if b.pollTimeout != 60*time.Second {
		t.Errorf("poll timeout = %s, want 60s default", b.pollTimeout)
	}
	if b.defaultPeriod != "1y" {
		t.Errorf("default period = %q, want 1y default", b.defaultPeriod)
	}
	if b.cooldown != 30*time.Second {
		t.Errorf("cooldown = %s, want 30s default", b.cooldown)
	}

	b = newBot(Options{
		DefaultPeriod: "6mo",
		Cooldown:      5 * time.Second,
		PollTimeout:   10 * time.Second,
		Logger:        zerolog.Nop(),
	})
	if b.pollTimeout != 10*time.Second {
		t.Errorf("poll timeout = %s, want the configured 10s", b.pollTimeout)
	}
	if b.defaultPeriod != "6mo" {
		t.Errorf("default period = %q, want the configured 6mo", b.defaultPeriod)
	}
	if b.cooldown != 5*time.Second {
		t.Errorf("cooldown = %s, want the configured 5s", b.cooldown)
	}
}

func TestDispatchTechnicalUsesConfiguredPeriod(t *testing.T) {
	b, provider := newTestBot(t)
	b.defaultPeriod = "6mo"

	b.dispatch(context.Background(), "technical", "TCS", 1)
	if provider.lastPeriod != "6mo" {
		t.Errorf("history period = %q, want the configured 6mo", provider.lastPeriod)
	}
}

func TestCooldownBlocksRepeatAnalyze(t *testing.T) {
	b, _ := newTestBot(t)
	current := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return current }

	if err := b.checkCooldown(42); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	current = current.Add(10 * time.Second)
	err := b.checkCooldown(42)
	if !errors.Is(err, apperrors.ErrCooldownActive) {
		t.Fatalf("got %v, want ErrCooldownActive", err)
	}
	if !strings.Contains(err.Error(), "20s") {
		t.Errorf("error should name the remaining wait, got %q", err)
	}

	// Another user is not affected
	if err := b.checkCooldown(43); err != nil {
		t.Errorf("different user should not share the cooldown: %v", err)
	}

	current = current.Add(25 * time.Second)
	if err := b.checkCooldown(42); err != nil {
		t.Errorf("cooldown should have expired: %v", err)
	}
}

func TestDispatchQuick(t *testing.T) {
	b, _ := newTestBot(t)
	reply := b.dispatch(context.Background(), "quick", "reliance", 1)
	if !strings.Contains(reply, "₹2847.50") {
		t.Errorf("quick reply missing price: %q", reply)
	}
	if !strings.Contains(reply, "+1.70%") {
		t.Errorf("quick reply missing change percent: %q", reply)
	}
}

func TestDispatchQuickSurfacesProviderError(t *testing.T) {
	b, provider := newTestBot(t)
	provider.quoteErr = apperrors.NewDataUnavailableError("NOSUCH", "symbol not found", nil)

	reply := b.dispatch(context.Background(), "quick", "NOSUCH", 1)
	if !strings.Contains(reply, "❌") || !strings.Contains(reply, "NOSUCH") {
		t.Errorf("error reply should carry the symbol and failure: %q", reply)
	}
}

func TestDispatchTechnical(t *testing.T) {
	b, _ := newTestBot(t)
	reply := b.dispatch(context.Background(), "technical", "TCS", 1)
	if !strings.Contains(reply, "Technical Analysis: TCS") {
		t.Errorf("unexpected reply: %q", reply)
	}
	for _, want := range []string{"SMA20", "RSI(14)", "Pivot", "Golden Cross"} {
		if !strings.Contains(reply, want) {
			t.Errorf("technical reply missing %q", want)
		}
	}
}

func TestDispatchTechnicalShortHistory(t *testing.T) {
	b, provider := newTestBot(t)
	provider.history = stubHistory(30)

	reply := b.dispatch(context.Background(), "technical", "TCS", 1)
	if !strings.Contains(reply, "insufficient data") {
		t.Errorf("short history should report insufficient data, got %q", reply)
	}
}

func TestDispatchFundamental(t *testing.T) {
	b, _ := newTestBot(t)
	reply := b.dispatch(context.Background(), "fundamental", "RELIANCE", 1)
	if !strings.Contains(reply, fundamentals.RatingStrongBuy) {
		t.Errorf("canned metrics should rate STRONG BUY, got %q", reply)
	}
	if !strings.Contains(reply, "Market Cap") {
		t.Errorf("fundamental reply missing size section: %q", reply)
	}
}

func TestDispatchMarket(t *testing.T) {
	b, _ := newTestBot(t)
	reply := b.dispatch(context.Background(), "market", "", 1)
	for _, idx := range []string{"NIFTY50", "BANKNIFTY", "NIFTYIT", "SENSEX"} {
		if !strings.Contains(reply, idx) {
			t.Errorf("market overview missing %s: %q", idx, reply)
		}
	}
}

func TestDispatchNews(t *testing.T) {
	b, _ := newTestBot(t)
	reply := b.dispatch(context.Background(), "news", "RELIANCE", 1)
	if !strings.Contains(reply, "Stub Industries wins large order") {
		t.Errorf("news reply missing headline: %q", reply)
	}
}

func TestDispatchSectors(t *testing.T) {
	b, _ := newTestBot(t)

	reply := b.dispatch(context.Background(), "sectors", "", 1)
	if !strings.Contains(reply, "IT") {
		t.Errorf("sector list missing IT: %q", reply)
	}

	reply = b.dispatch(context.Background(), "sectors", "it", 1)
	if !strings.Contains(reply, "TCS") {
		t.Errorf("IT sector should list TCS: %q", reply)
	}

	reply = b.dispatch(context.Background(), "sectors", "PLASTICS", 1)
	if !strings.Contains(reply, "Unknown sector") {
		t.Errorf("unknown sector should be rejected: %q", reply)
	}
}

func TestDispatchUsageAndUnknown(t *testing.T) {
	b, _ := newTestBot(t)

	if reply := b.dispatch(context.Background(), "analyze", "", 1); !strings.Contains(reply, "Usage:") {
		t.Errorf("missing argument should print usage, got %q", reply)
	}
	if reply := b.dispatch(context.Background(), "frobnicate", "", 1); !strings.Contains(reply, "Unknown command") {
		t.Errorf("unknown command reply: %q", reply)
	}
	if reply := b.dispatch(context.Background(), "help", "", 1); !strings.Contains(reply, "/analyze") {
		t.Errorf("help should list commands: %q", reply)
	}
}

func TestDispatchDigestRequiresAdmin(t *testing.T) {
	b, _ := newTestBot(t)
	b.adminIDs = map[int64]bool{99: true}

	if reply := b.dispatch(context.Background(), "digest", "", 1); !strings.Contains(reply, "not authorized") {
		t.Errorf("non-admin should be rejected, got %q", reply)
	}
	if reply := b.dispatch(context.Background(), "digest", "", 99); !strings.Contains(reply, "Daily Digest") {
		t.Errorf("admin should receive the digest, got %q", reply)
	}
}

func TestFormatNilReadings(t *testing.T) {
	report := &indicators.Report{Symbol: "X"}
	reply := formatTechnical(report)
	if !strings.Contains(reply, "SMA200: N/A") {
		t.Errorf("nil SMA200 should render N/A: %q", reply)
	}
	if !strings.Contains(reply, "RSI(14): N/A") {
		t.Errorf("nil RSI should render N/A: %q", reply)
	}
	if !strings.Contains(reply, "Golden Cross: N/A") {
		t.Errorf("nil golden cross should render N/A: %q", reply)
	}
}
