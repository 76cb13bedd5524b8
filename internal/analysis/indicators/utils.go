package indicators

import (
	"math"

	"stock-researcher/internal/models"
)

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sanitize replaces NaN and Inf with nil so reports never carry
// non-finite numbers.
func sanitize(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := round2(v)
	return &r
}

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// popStdDev calculates the population standard deviation.
func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// smaLast returns the trailing window mean of the last period values.
func smaLast(values []float64, period int) float64 {
	return mean(values[len(values)-period:])
}

// emaSeries computes an exponential moving average over the whole series,
// seeded with the first value (alpha = 2/(span+1)).
func emaSeries(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// trueRanges computes the true range series. The first bar has no prior
// close, so its true range is the high-low span.
func trueRanges(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		if i == 0 {
			out[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		tr := c.High - c.Low
		if hc := math.Abs(c.High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(c.Low - prevClose); lc > tr {
			tr = lc
		}
		out[i] = tr
	}
	return out
}

// closePrices extracts close prices from candles.
func closePrices(candles []models.Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, c := range candles {
		prices[i] = c.Close
	}
	return prices
}
