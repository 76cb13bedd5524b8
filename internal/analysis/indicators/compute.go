package indicators

import (
	"fmt"
	"strings"
	"time"

	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/models"
)

// Compute runs the full indicator analysis over a daily candle series.
// The series must hold at least p.MinBars bars, otherwise an
// InsufficientDataError is returned and no partial report is produced.
func Compute(symbol string, candles []models.Candle, p Params) (*Report, error) {
	if len(candles) < p.MinBars {
		return nil, apperrors.NewInsufficientDataError(symbol, p.MinBars, len(candles))
	}

	closes := closePrices(candles)
	n := len(closes)
	currentPrice := closes[n-1]

	report := &Report{
		Symbol:       strings.ToUpper(symbol),
		CurrentPrice: round2(currentPrice),
		AnalysisDate: time.Now(),
	}

	report.MovingAverages = computeMovingAverages(closes, currentPrice, p)
	report.Momentum = computeMomentum(closes, p)
	report.Volatility = computeVolatility(candles, closes, currentPrice, p)
	report.Volume = computeVolume(candles, p)
	report.SupportResistance = computeLevels(candles, p)
	report.Trend = computeTrend(closes, currentPrice, p)

	report.Signals = collectSignals(report, closes, p)
	report.OverallSignal, report.SignalStrength = overallSignal(report.Signals)

	return report, nil
}

func computeMovingAverages(closes []float64, price float64, p Params) MovingAverages {
	ma := MovingAverages{
		SMA20: round2(smaLast(closes, p.SMAShort)),
		SMA50: round2(smaLast(closes, p.SMAMedium)),
		EMA12: round2(last(emaSeries(closes, p.MACDFast))),
		EMA26: round2(last(emaSeries(closes, p.MACDSlow))),
	}

	if len(closes) >= p.SMALong {
		v := round2(smaLast(closes, p.SMALong))
		ma.SMA200 = &v
	}

	ma.PriceVsSMA20 = pctVsString(price, ma.SMA20)
	ma.PriceVsSMA50 = pctVsString(price, ma.SMA50)
	return ma
}

func pctVsString(price, sma float64) string {
	if sma == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", (price/sma-1)*100)
}

func computeMomentum(closes []float64, p Params) Momentum {
	m := Momentum{}

	m.RSI14 = rsiLast(closes, p.RSIPeriod)
	m.RSIInterpretation = "Neutral"
	if m.RSI14 != nil {
		if *m.RSI14 < 30 {
			m.RSIInterpretation = "Oversold"
		} else if *m.RSI14 > 70 {
			m.RSIInterpretation = "Overbought"
		}
	}

	macdLine, signalLine := macdSeries(closes, p)
	m.MACDLine = round2(last(macdLine))
	m.MACDSignal = round2(last(signalLine))
	m.MACDHistogram = round2(last(macdLine) - last(signalLine))

	m.ROC10Day = rateOfChange(closes, 10)
	m.ROC20Day = rateOfChange(closes, 20)

	return m
}

// rsiLast computes the trailing RSI from rolling mean gain and mean loss.
// A series with zero losses in the window reads 100; a flat window has no
// defined RSI and returns nil.
func rsiLast(closes []float64, period int) *float64 {
	n := len(closes)
	if n < period+1 {
		return nil
	}

	var gain, loss float64
	for i := n - period; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if loss == 0 {
		if gain == 0 {
			return nil
		}
		v := 100.0
		return &v
	}

	rs := gain / loss
	return sanitize(100 - 100/(1+rs))
}

// macdSeries computes the MACD line and its signal line over the whole
// close series.
func macdSeries(closes []float64, p Params) (line, signal []float64) {
	fast := emaSeries(closes, p.MACDFast)
	slow := emaSeries(closes, p.MACDSlow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal = emaSeries(line, p.MACDSignal)
	return line, signal
}

// rateOfChange returns the n-day percent change, 0 when the series is too
// short for the lookback.
func rateOfChange(closes []float64, days int) float64 {
	n := len(closes)
	if n <= days {
		return 0
	}
	base := closes[n-1-days]
	if base == 0 {
		return 0
	}
	return round2((closes[n-1] - base) / base * 100)
}

func computeVolatility(candles []models.Candle, closes []float64, price float64, p Params) Volatility {
	window := closes[len(closes)-p.BBPeriod:]
	middle := mean(window)
	std := popStdDev(window)
	upper := middle + std*p.BBStdDev
	lower := middle - std*p.BBStdDev

	width := upper - lower
	position := 0.5
	if width != 0 {
		position = (price - lower) / width
	}

	trs := trueRanges(candles)
	atr := mean(trs[len(trs)-p.ATRPeriod:])

	atrPercent := "N/A"
	if price != 0 {
		atrPercent = fmt.Sprintf("%.2f%%", atr/price*100)
	}

	return Volatility{
		BollingerUpper:  round2(upper),
		BollingerMiddle: round2(middle),
		BollingerLower:  round2(lower),
		BBPosition:      fmt.Sprintf("%.1f%%", position*100),
		ATR14:           round2(atr),
		ATRPercent:      atrPercent,
	}
}

func computeVolume(candles []models.Candle, p Params) VolumeAnalysis {
	n := len(candles)
	window := candles[n-p.VolumePeriod:]
	var total float64
	for _, c := range window {
		total += float64(c.Volume)
	}
	avg := total / float64(len(window))
	current := candles[n-1].Volume

	va := VolumeAnalysis{
		CurrentVolume:        current,
		AvgVolume20:          int64(avg),
		VolumeInterpretation: "Normal",
	}

	if avg != 0 {
		ratio := round2(float64(current) / avg)
		va.VolumeRatio = &ratio
		if ratio > 1.5 {
			va.VolumeInterpretation = "High"
		} else if ratio < 0.5 {
			va.VolumeInterpretation = "Low"
		}
	}

	return va
}

// computeLevels derives standard daily pivots from the previous completed
// bar. A single-bar series falls back to that bar. Recent high/low scan
// the trailing window independently of the pivots.
func computeLevels(candles []models.Candle, p Params) SupportResistance {
	n := len(candles)
	ref := candles[n-1]
	if n > 1 {
		ref = candles[n-2]
	}

	pivot := (ref.High + ref.Low + ref.Close) / 3
	r1 := 2*pivot - ref.Low
	s1 := 2*pivot - ref.High
	r2 := pivot + (ref.High - ref.Low)
	s2 := pivot - (ref.High - ref.Low)

	start := n - p.VolumePeriod
	if start < 0 {
		start = 0
	}
	recentHigh := candles[start].High
	recentLow := candles[start].Low
	for _, c := range candles[start:] {
		if c.High > recentHigh {
			recentHigh = c.High
		}
		if c.Low < recentLow {
			recentLow = c.Low
		}
	}

	return SupportResistance{
		Pivot:       round2(pivot),
		Resistance1: round2(r1),
		Resistance2: round2(r2),
		Support1:    round2(s1),
		Support2:    round2(s2),
		RecentHigh:  round2(recentHigh),
		RecentLow:   round2(recentLow),
	}
}

func computeTrend(closes []float64, price float64, p Params) Trend {
	t := Trend{
		ShortTerm:  trendLabel(price > smaLast(closes, p.SMAShort)),
		MediumTerm: trendLabel(price > smaLast(closes, p.SMAMedium)),
		LongTerm:   "N/A",
	}

	if len(closes) >= p.SMALong {
		smaLong := smaLast(closes, p.SMALong)
		t.LongTerm = trendLabel(price > smaLong)
		gc := smaLast(closes, p.SMAMedium) > smaLong
		t.GoldenCross = &gc
	}

	return t
}

func trendLabel(bullish bool) string {
	if bullish {
		return "Bullish"
	}
	return "Bearish"
}

func last(values []float64) float64 {
	return values[len(values)-1]
}
