// Package models provides domain models for the stock research application.
package models

import (
	"fmt"
	"time"
)

// Exchange represents a stock exchange.
type Exchange string

const (
	NSE Exchange = "NSE"
	BSE Exchange = "BSE"
)

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents a market quote.
type Quote struct {
	Symbol        string
	LTP           float64
	PrevClose     float64
	Open          float64
	High          float64
	Low           float64
	Volume        int64
	Change        float64
	ChangePercent float64
	Timestamp     time.Time
}

// IndexSnapshot represents the current level of a market index.
type IndexSnapshot struct {
	Name          string
	Value         float64
	Change        float64
	ChangePercent float64
	Open          float64
	High          float64
	Low           float64
	Timestamp     time.Time
}

// CompanyInfo holds static company metadata and fundamental metrics
// as reported by the data provider. Zero values mean "not reported".
type CompanyInfo struct {
	Symbol         string
	Name           string
	Sector         string
	Industry       string
	MarketCap      float64
	PE             float64
	ForwardPE      float64
	PB             float64
	EPS            float64
	BookValue      float64
	ROE            float64 // fraction, e.g. 0.18 for 18%
	DebtToEquity   float64 // percent, e.g. 45.2
	CurrentRatio   float64
	DividendYield  float64 // fraction
	EarningsGrowth float64 // fraction
	RevenueGrowth  float64 // fraction
	ProfitMargin   float64 // fraction
	Beta           float64
	High52W        float64
	Low52W         float64
}

// NewsItem represents a news article about a stock or the market.
type NewsItem struct {
	Title       string
	Source      string
	URL         string
	Summary     string
	Sentiment   float64 // -1 to 1
	PublishedAt time.Time
}

// ValidateSeries checks the price series invariants: strictly increasing
// timestamps, a high/low envelope around open and close, and non-negative
// volume. Data from the provider is validated once at the edge so the
// indicator engine can assume a well-formed series.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if i > 0 && !c.Timestamp.After(candles[i-1].Timestamp) {
			return fmt.Errorf("candle %d: timestamp %s not after previous %s",
				i, c.Timestamp.Format(time.RFC3339), candles[i-1].Timestamp.Format(time.RFC3339))
		}
		if c.High < c.Open || c.High < c.Close || c.High < c.Low {
			return fmt.Errorf("candle %d: high %.2f below open/close/low", i, c.High)
		}
		if c.Low > c.Open || c.Low > c.Close {
			return fmt.Errorf("candle %d: low %.2f above open/close", i, c.Low)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume %d", i, c.Volume)
		}
	}
	return nil
}

// MarketCapCategory buckets a market cap (INR) into Large/Mid/Small cap
// using thresholds in crores.
func MarketCapCategory(marketCap float64) string {
	if marketCap <= 0 {
		return "Unknown"
	}
	crores := marketCap / 1e7
	switch {
	case crores >= 20000:
		return "Large Cap"
	case crores >= 5000:
		return "Mid Cap"
	default:
		return "Small Cap"
	}
}
