// Package priceaction analyzes recent price behavior: short-horizon
// changes, swing points, distance from period extremes, and summary
// statistics over a history window.
package priceaction

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
)

// Trend labels for the 5-day vs 20-day change combination.
const (
	TrendStrongUptrend   = "Strong Uptrend"
	TrendStrongDowntrend = "Strong Downtrend"
	TrendRecovering      = "Recovering"
	TrendWeakening       = "Weakening"
)

// Report summarizes recent price action for one symbol.
type Report struct {
	Symbol       string      `json:"symbol"`
	CurrentPrice float64     `json:"current_price"`
	PriceChanges Changes     `json:"price_changes"`
	KeyLevels    KeyLevels   `json:"key_levels"`
	SwingPoints  SwingPoints `json:"swing_points"`
	AnalysisDate time.Time   `json:"analysis_date"`
}

// Changes holds short-horizon percentage moves and the trend verdict.
type Changes struct {
	FiveDayChange   string `json:"5_day_change"`
	TwentyDayChange string `json:"20_day_change"`
	Trend           string `json:"trend"`
}

// KeyLevels holds the period extremes and distances from them.
type KeyLevels struct {
	PeriodHigh       float64 `json:"period_high"`
	PeriodLow        float64 `json:"period_low"`
	DistanceFromHigh string  `json:"distance_from_high"`
	DistanceFromLow  string  `json:"distance_from_low"`
}

// SwingPoints holds the most recent local extremes.
type SwingPoints struct {
	RecentSwingHighs []float64 `json:"recent_swing_highs"`
	RecentSwingLows  []float64 `json:"recent_swing_lows"`
}

// Analyze inspects the candle series for recent price action. An empty
// series is a data failure, not an empty report.
func Analyze(symbol string, candles []models.Candle) (*Report, error) {
	if len(candles) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no price data returned", nil)
	}

	n := len(candles)
	current := candles[n-1].Close

	price5dAgo := candles[0].Close
	if n > 5 {
		price5dAgo = candles[n-6].Close
	}
	price20dAgo := candles[0].Close
	if n > 20 {
		price20dAgo = candles[n-21].Close
	}

	change5d := pctChange(current, price5dAgo)
	change20d := pctChange(current, price20dAgo)

	periodHigh := candles[0].High
	periodLow := candles[0].Low
	for _, c := range candles {
		if c.High > periodHigh {
			periodHigh = c.High
		}
		if c.Low < periodLow {
			periodLow = c.Low
		}
	}

	highs, lows := swingPoints(candles)

	return &Report{
		Symbol:       strings.ToUpper(symbol),
		CurrentPrice: round2(current),
		PriceChanges: Changes{
			FiveDayChange:   fmt.Sprintf("%.2f%%", change5d),
			TwentyDayChange: fmt.Sprintf("%.2f%%", change20d),
			Trend:           trendLabel(change5d, change20d),
		},
		KeyLevels: KeyLevels{
			PeriodHigh:       round2(periodHigh),
			PeriodLow:        round2(periodLow),
			DistanceFromHigh: fmt.Sprintf("%.2f%%", pctOf(periodHigh-current, current)),
			DistanceFromLow:  fmt.Sprintf("%.2f%%", pctOf(current-periodLow, periodLow)),
		},
		SwingPoints: SwingPoints{
			RecentSwingHighs: lastN(highs, 3),
			RecentSwingLows:  lastN(lows, 3),
		},
		AnalysisDate: time.Now(),
	}, nil
}

// trendLabel combines the two horizons: aligned moves make a strong
// trend, a positive short leg against a negative long leg is a recovery.
func trendLabel(change5d, change20d float64) string {
	switch {
	case change5d > 0 && change20d > 0:
		return TrendStrongUptrend
	case change5d < 0 && change20d < 0:
		return TrendStrongDowntrend
	case change5d > 0 && change20d < 0:
		return TrendRecovering
	default:
		return TrendWeakening
	}
}

// swingPoints finds bars whose high (low) exceeds (undercuts) the two
// bars on each side.
func swingPoints(candles []models.Candle) (highs, lows []float64) {
	for i := 2; i < len(candles)-2; i++ {
		h := candles[i].High
		if h > candles[i-1].High && h > candles[i-2].High &&
			h > candles[i+1].High && h > candles[i+2].High {
			highs = append(highs, round2(h))
		}
		l := candles[i].Low
		if l < candles[i-1].Low && l < candles[i-2].Low &&
			l < candles[i+1].Low && l < candles[i+2].Low {
			lows = append(lows, round2(l))
		}
	}
	return highs, lows
}

// Stats summarizes a history window.
type Stats struct {
	Symbol           string      `json:"symbol"`
	Period           string      `json:"period"`
	StartDate        string      `json:"start_date"`
	EndDate          string      `json:"end_date"`
	StartPrice       float64     `json:"start_price"`
	EndPrice         float64     `json:"end_price"`
	AbsoluteReturn   float64     `json:"absolute_return"`
	PercentageReturn float64     `json:"percentage_return"`
	HighestPrice     float64     `json:"highest_price"`
	HighestDate      string      `json:"highest_date"`
	LowestPrice      float64     `json:"lowest_price"`
	LowestDate       string      `json:"lowest_date"`
	AveragePrice     float64     `json:"average_price"`
	Volatility       float64     `json:"volatility"`
	AvgDailyVolume   int64       `json:"avg_daily_volume"`
	TotalTradingDays int         `json:"total_trading_days"`
	PositiveDays     int         `json:"positive_days"`
	NegativeDays     int         `json:"negative_days"`
	MaxDailyGain     float64     `json:"max_daily_gain"`
	MaxDailyLoss     float64     `json:"max_daily_loss"`
	Recent5Days      []RecentDay `json:"recent_5_days"`
}

// RecentDay is one of the latest closes shown alongside the stats.
type RecentDay struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Summarize computes return and volatility statistics over the series.
// Volatility is the standard deviation of daily returns annualized over
// 252 trading days, in percent.
func Summarize(symbol, period string, candles []models.Candle) (*Stats, error) {
	if len(candles) == 0 {
		return nil, apperrors.NewDataUnavailableError(symbol, "no historical data returned", nil)
	}

	n := len(candles)
	start := candles[0]
	end := candles[n-1]

	var returns []float64
	for i := 1; i < n; i++ {
		if candles[i-1].Close != 0 {
			returns = append(returns, candles[i].Close/candles[i-1].Close-1)
		}
	}

	highest := start
	lowest := start
	var closeSum, volSum float64
	for _, c := range candles {
		if c.High > highest.High {
			highest = c
		}
		if c.Low < lowest.Low {
			lowest = c
		}
		closeSum += c.Close
		volSum += float64(c.Volume)
	}

	var positive, negative int
	maxGain := math.Inf(-1)
	maxLoss := math.Inf(1)
	for _, r := range returns {
		if r > 0 {
			positive++
		} else if r < 0 {
			negative++
		}
		if r > maxGain {
			maxGain = r
		}
		if r < maxLoss {
			maxLoss = r
		}
	}
	if len(returns) == 0 {
		maxGain, maxLoss = 0, 0
	}

	recent := candles
	if n > 5 {
		recent = candles[n-5:]
	}
	recentDays := make([]RecentDay, 0, len(recent))
	for _, c := range recent {
		recentDays = append(recentDays, RecentDay{
			Date:   c.Timestamp.Format("2006-01-02"),
			Close:  round2(c.Close),
			Volume: c.Volume,
		})
	}

	return &Stats{
		Symbol:           strings.ToUpper(symbol),
		Period:           period,
		StartDate:        start.Timestamp.Format("2006-01-02"),
		EndDate:          end.Timestamp.Format("2006-01-02"),
		StartPrice:       round2(start.Close),
		EndPrice:         round2(end.Close),
		AbsoluteReturn:   round2(end.Close - start.Close),
		PercentageReturn: round2(pctChange(end.Close, start.Close)),
		HighestPrice:     round2(highest.High),
		HighestDate:      highest.Timestamp.Format("2006-01-02"),
		LowestPrice:      round2(lowest.Low),
		LowestDate:       lowest.Timestamp.Format("2006-01-02"),
		AveragePrice:     round2(closeSum / float64(n)),
		Volatility:       round2(stdDev(returns) * math.Sqrt(252) * 100),
		AvgDailyVolume:   int64(volSum / float64(n)),
		TotalTradingDays: n,
		PositiveDays:     positive,
		NegativeDays:     negative,
		MaxDailyGain:     round2(maxGain * 100),
		MaxDailyLoss:     round2(maxLoss * 100),
		Recent5Days:      recentDays,
	}, nil
}

func pctChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}

func pctOf(diff, base float64) float64 {
	if base == 0 {
		return 0
	}
	return diff / base * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func lastN(values []float64, n int) []float64 {
	if values == nil {
		return []float64{}
	}
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// stdDev is the sample standard deviation, matching the convention used
// for return series.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := 0.0
	for _, v := range values {
		m += v
	}
	m /= float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
