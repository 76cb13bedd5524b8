package indicators

import (
	"fmt"
	"strings"
)

// collectSignals evaluates the trading signal rules against the computed
// readings. Rules that depend on an undefined reading (nil RSI, nil
// volume ratio) simply do not fire.
func collectSignals(r *Report, closes []float64, p Params) []Signal {
	signals := []Signal{}

	if rsi := r.Momentum.RSI14; rsi != nil {
		switch {
		case *rsi < 30:
			signals = append(signals, Signal{"RSI", "OVERSOLD - Potential Buy", "Strong"})
		case *rsi > 70:
			signals = append(signals, Signal{"RSI", "OVERBOUGHT - Potential Sell", "Strong"})
		case *rsi < 40:
			signals = append(signals, Signal{"RSI", "Approaching Oversold", "Moderate"})
		case *rsi > 60:
			signals = append(signals, Signal{"RSI", "Approaching Overbought", "Moderate"})
		}
	}

	// Crossovers compare the latest bar against the one before it.
	line, signalLine := macdSeries(closes, p)
	n := len(line)
	if n > 1 {
		if line[n-1] > signalLine[n-1] && line[n-2] <= signalLine[n-2] {
			signals = append(signals, Signal{"MACD", "Bullish Crossover - Buy", "Strong"})
		} else if line[n-1] < signalLine[n-1] && line[n-2] >= signalLine[n-2] {
			signals = append(signals, Signal{"MACD", "Bearish Crossover - Sell", "Strong"})
		}
	}

	price := r.CurrentPrice
	if price <= r.Volatility.BollingerLower {
		signals = append(signals, Signal{"Bollinger Bands", "At Lower Band - Potential Reversal", "Moderate"})
	} else if price >= r.Volatility.BollingerUpper {
		signals = append(signals, Signal{"Bollinger Bands", "At Upper Band - Potential Pullback", "Moderate"})
	}

	if ratio := r.Volume.VolumeRatio; ratio != nil && *ratio > 2 {
		signals = append(signals, Signal{"Volume", "Unusually High Volume - Confirm Trend", "Strong"})
	}

	sma20 := r.MovingAverages.SMA20
	sma50 := r.MovingAverages.SMA50
	if price > sma20 && sma20 > sma50 {
		signals = append(signals, Signal{"Moving Averages", "Strong Uptrend", "Moderate"})
	} else if price < sma20 && sma20 < sma50 {
		signals = append(signals, Signal{"Moving Averages", "Strong Downtrend", "Moderate"})
	}

	return signals
}

// overallSignal tallies bullish against bearish signals. The verdict
// requires a margin of more than one signal, otherwise it stays NEUTRAL.
func overallSignal(signals []Signal) (overall, strength string) {
	var bulls, bears int
	for _, s := range signals {
		if strings.Contains(s.Signal, "Buy") || strings.Contains(s.Signal, "Bullish") || strings.Contains(s.Signal, "Uptrend") {
			bulls++
		}
		if strings.Contains(s.Signal, "Sell") || strings.Contains(s.Signal, "Bearish") || strings.Contains(s.Signal, "Downtrend") {
			bears++
		}
	}

	switch {
	case bulls > bears+1:
		overall = SignalBullish
	case bears > bulls+1:
		overall = SignalBearish
	default:
		overall = SignalNeutral
	}

	top := bulls
	if bears > top {
		top = bears
	}
	return overall, fmt.Sprintf("%d/%d", top, len(signals))
}
