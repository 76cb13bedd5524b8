package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches market data from the Yahoo Finance public API.
type YahooProvider struct {
	baseURL string
	suffix  string
	http    *httpClient
	logger  zerolog.Logger
}

// YahooOptions configures the provider.
type YahooOptions struct {
	BaseURL        string
	Exchange       string // NSE (default) or BSE
	Timeout        time.Duration
	RequestsPerMin int
	MaxRetries     int
	Logger         zerolog.Logger
}

// NewYahooProvider creates a Yahoo Finance backed provider.
func NewYahooProvider(opts YahooOptions) *YahooProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &YahooProvider{
		baseURL: baseURL,
		suffix:  ExchangeSuffix(opts.Exchange),
		http: newHTTPClient(httpClientOptions{
			Timeout:        opts.Timeout,
			RequestsPerMin: opts.RequestsPerMin,
			MaxRetries:     opts.MaxRetries,
		}),
		logger: opts.Logger,
	}
}

// ticker converts a bare symbol to the provider's Yahoo ticker.
func (p *YahooProvider) ticker(symbol string) string {
	return ExchangeSymbol(symbol, p.suffix)
}

// chartParams are the chart API query parameters.
type chartParams struct {
	Interval string `url:"interval"`
	Range    string `url:"range"`
}

// quoteSummaryParams are the quoteSummary API query parameters.
type quoteSummaryParams struct {
	Modules string `url:"modules"`
}

// yahooChart is the chart API response.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooValue is Yahoo's {"raw": n, "fmt": "..."} number wrapper.
type yahooValue struct {
	Raw float64 `json:"raw"`
}

// yahooQuoteSummary is the quoteSummary API response, limited to the
// modules the company profile needs.
type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName  string     `json:"longName"`
				ShortName string     `json:"shortName"`
				MarketCap yahooValue `json:"marketCap"`
			} `json:"price"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				TrailingPE    yahooValue `json:"trailingPE"`
				ForwardPE     yahooValue `json:"forwardPE"`
				DividendYield yahooValue `json:"dividendYield"`
				Beta          yahooValue `json:"beta"`
				High52W       yahooValue `json:"fiftyTwoWeekHigh"`
				Low52W        yahooValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook yahooValue `json:"priceToBook"`
				TrailingEps yahooValue `json:"trailingEps"`
				BookValue   yahooValue `json:"bookValue"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				ReturnOnEquity yahooValue `json:"returnOnEquity"`
				DebtToEquity   yahooValue `json:"debtToEquity"`
				CurrentRatio   yahooValue `json:"currentRatio"`
				EarningsGrowth yahooValue `json:"earningsGrowth"`
				RevenueGrowth  yahooValue `json:"revenueGrowth"`
				ProfitMargins  yahooValue `json:"profitMargins"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) fetchJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.http.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, ticker, rng string) (*yahooChart, error) {
	params, err := query.Values(chartParams{Interval: "1d", Range: rng})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(ticker), params.Encode())

	var chart yahooChart
	if err := p.fetchJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, apperrors.ErrNoData
	}
	return &chart, nil
}

// chartCandles converts a chart result to candles, skipping null bars
// (exchange holidays report timestamps with null quotes).
func chartCandles(chart *yahooChart) []models.Candle {
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || quote.Open[i] == nil ||
			quote.High[i] == nil || quote.Low[i] == nil {
			continue
		}
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles
}

// History fetches daily candles for the period.
func (p *YahooProvider) History(ctx context.Context, symbol, period string) ([]models.Candle, error) {
	period = NormalizePeriod(period)
	start := time.Now()

	chart, err := p.fetchChart(ctx, p.ticker(symbol), period)
	if err != nil {
		return nil, wrapUnavailable(symbol, "fetching history", err)
	}

	candles := chartCandles(chart)
	if len(candles) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no price data returned", nil)
	}

	if err := models.ValidateSeries(candles); err != nil {
		return nil, apperrors.NewDataUnavailableError(symbol, "provider returned malformed series", err)
	}

	p.logger.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("bars", len(candles)).
		Dur("duration", time.Since(start)).
		Msg("History fetched")

	return candles, nil
}

// Quote fetches the latest price against the previous close.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	chart, err := p.fetchChart(ctx, p.ticker(symbol), "5d")
	if err != nil {
		return nil, wrapUnavailable(symbol, "fetching quote", err)
	}

	candles := chartCandles(chart)
	if len(candles) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no price data returned", nil)
	}

	latest := candles[len(candles)-1]
	prevClose := latest.Close
	if len(candles) > 1 {
		prevClose = candles[len(candles)-2].Close
	}

	change := latest.Close - prevClose
	var changePct float64
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}

	return &models.Quote{
		Symbol:        symbol,
		LTP:           latest.Close,
		PrevClose:     prevClose,
		Open:          latest.Open,
		High:          latest.High,
		Low:           latest.Low,
		Volume:        latest.Volume,
		Change:        change,
		ChangePercent: changePct,
		Timestamp:     latest.Timestamp,
	}, nil
}

// CompanyInfo fetches the company profile and fundamental metrics.
func (p *YahooProvider) CompanyInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	params, err := query.Values(quoteSummaryParams{
		Modules: "price,assetProfile,summaryDetail,defaultKeyStatistics,financialData",
	})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s",
		p.baseURL, url.PathEscape(p.ticker(symbol)), params.Encode())

	var summary yahooQuoteSummary
	if err := p.fetchJSON(ctx, u, &summary); err != nil {
		return nil, wrapUnavailable(symbol, "fetching company info", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, apperrors.NewDataUnavailableError(symbol, summary.QuoteSummary.Error.Description, nil)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no company data returned", nil)
	}

	r := summary.QuoteSummary.Result[0]
	info := &models.CompanyInfo{Symbol: symbol}

	if r.Price != nil {
		info.Name = r.Price.LongName
		if info.Name == "" {
			info.Name = r.Price.ShortName
		}
		info.MarketCap = r.Price.MarketCap.Raw
	}
	if r.AssetProfile != nil {
		info.Sector = r.AssetProfile.Sector
		info.Industry = r.AssetProfile.Industry
	}
	if r.SummaryDetail != nil {
		info.PE = r.SummaryDetail.TrailingPE.Raw
		info.ForwardPE = r.SummaryDetail.ForwardPE.Raw
		info.DividendYield = r.SummaryDetail.DividendYield.Raw
		info.Beta = r.SummaryDetail.Beta.Raw
		info.High52W = r.SummaryDetail.High52W.Raw
		info.Low52W = r.SummaryDetail.Low52W.Raw
	}
	if r.DefaultKeyStatistics != nil {
		info.PB = r.DefaultKeyStatistics.PriceToBook.Raw
		info.EPS = r.DefaultKeyStatistics.TrailingEps.Raw
		info.BookValue = r.DefaultKeyStatistics.BookValue.Raw
	}
	if r.FinancialData != nil {
		info.ROE = r.FinancialData.ReturnOnEquity.Raw
		info.DebtToEquity = r.FinancialData.DebtToEquity.Raw
		info.CurrentRatio = r.FinancialData.CurrentRatio.Raw
		info.EarningsGrowth = r.FinancialData.EarningsGrowth.Raw
		info.RevenueGrowth = r.FinancialData.RevenueGrowth.Raw
		info.ProfitMargin = r.FinancialData.ProfitMargins.Raw
	}

	return info, nil
}

// Index fetches the current level of a market index by friendly name.
func (p *YahooProvider) Index(ctx context.Context, name string) (*models.IndexSnapshot, error) {
	ticker, ok := Indices[name]
	if !ok {
		return nil, apperrors.NewDataUnavailableError(name, "unknown index", nil)
	}

	chart, err := p.fetchChart(ctx, ticker, "1d")
	if err != nil {
		return nil, wrapUnavailable(name, "fetching index", err)
	}

	meta := chart.Chart.Result[0].Meta
	value := meta.RegularMarketPrice
	prevClose := meta.ChartPreviousClose

	var change, changePct float64
	if prevClose != 0 {
		change = value - prevClose
		changePct = change / prevClose * 100
	}

	snapshot := &models.IndexSnapshot{
		Name:          name,
		Value:         value,
		Change:        change,
		ChangePercent: changePct,
		Timestamp:     time.Now(),
	}

	if candles := chartCandles(chart); len(candles) > 0 {
		latest := candles[len(candles)-1]
		snapshot.Open = latest.Open
		snapshot.High = latest.High
		snapshot.Low = latest.Low
	}

	return snapshot, nil
}

// wrapUnavailable converts transport failures to DataUnavailableError so
// downstream consumers refuse to fabricate values. Context cancellation
// passes through untouched.
func wrapUnavailable(symbol, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewDataUnavailableError(symbol, op+" failed", err)
}
