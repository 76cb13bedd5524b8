// Package marketdata fetches quotes, history and company fundamentals
// for Indian equities.
package marketdata

import (
	"context"
	"strings"

	"stock-researcher/internal/models"
)

// Provider is the market data source. Implementations return
// DataUnavailableError for unknown symbols and empty responses; callers
// must not retry those or substitute invented values.
type Provider interface {
	History(ctx context.Context, symbol, period string) ([]models.Candle, error)
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	CompanyInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error)
	Index(ctx context.Context, name string) (*models.IndexSnapshot, error)
}

// Valid history periods, Yahoo range tokens.
var validPeriods = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
}

// NormalizePeriod returns period when valid, otherwise the 1y default.
func NormalizePeriod(period string) string {
	if validPeriods[period] {
		return period
	}
	return "1y"
}

// Indices maps friendly index names to Yahoo tickers.
var Indices = map[string]string{
	"NIFTY50":   "^NSEI",
	"BANKNIFTY": "^NSEBANK",
	"NIFTYIT":   "^CNXIT",
	"SENSEX":    "^BSESN",
}

// Yahoo ticker suffixes per exchange.
var exchangeSuffixes = map[string]string{
	"NSE": ".NS",
	"BSE": ".BO",
}

// ExchangeSuffix returns the Yahoo ticker suffix for an exchange,
// defaulting to NSE.
func ExchangeSuffix(exchange string) string {
	if suffix, ok := exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]; ok {
		return suffix
	}
	return ".NS"
}

// ExchangeSymbol converts a bare symbol to a Yahoo ticker with the given
// suffix. Symbols already carrying an exchange suffix pass through.
func ExchangeSymbol(symbol, suffix string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(symbol, ".NS") || strings.HasSuffix(symbol, ".BO") {
		return symbol
	}
	return symbol + suffix
}

// NSESymbol converts a bare symbol to the NSE Yahoo ticker format.
func NSESymbol(symbol string) string {
	return ExchangeSymbol(symbol, ".NS")
}
