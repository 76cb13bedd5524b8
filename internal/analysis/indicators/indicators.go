// Package indicators computes technical indicators over daily OHLCV series.
//
// Compute is a pure function of the price series and its parameters. It
// never fetches data, never caches, and either returns a complete report
// or an InsufficientDataError. Partial reports are not produced.
package indicators

import (
	"time"
)

// Params holds indicator periods and thresholds.
type Params struct {
	SMAShort     int
	SMAMedium    int
	SMALong      int
	RSIPeriod    int
	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	BBPeriod     int
	BBStdDev     float64
	ATRPeriod    int
	VolumePeriod int
	MinBars      int
}

// DefaultParams returns the standard daily-chart parameters.
func DefaultParams() Params {
	return Params{
		SMAShort:     20,
		SMAMedium:    50,
		SMALong:      200,
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBPeriod:     20,
		BBStdDev:     2.0,
		ATRPeriod:    14,
		VolumePeriod: 20,
		MinBars:      50,
	}
}

// Report is the full indicator analysis for one symbol. Fields that can be
// undefined (long moving average on short histories, RSI on a flat series,
// volume ratio with zero average volume) are pointers and marshal as null.
type Report struct {
	Symbol            string            `json:"symbol"`
	CurrentPrice      float64           `json:"current_price"`
	AnalysisDate      time.Time         `json:"analysis_date"`
	MovingAverages    MovingAverages    `json:"moving_averages"`
	Momentum          Momentum          `json:"momentum"`
	Volatility        Volatility        `json:"volatility"`
	Volume            VolumeAnalysis    `json:"volume"`
	SupportResistance SupportResistance `json:"support_resistance"`
	Trend             Trend             `json:"trend"`
	Signals           []Signal          `json:"signals"`
	OverallSignal     string            `json:"overall_signal"`
	SignalStrength    string            `json:"signal_strength"`
}

// MovingAverages holds simple and exponential moving averages.
type MovingAverages struct {
	SMA20        float64  `json:"sma_20"`
	SMA50        float64  `json:"sma_50"`
	SMA200       *float64 `json:"sma_200"`
	EMA12        float64  `json:"ema_12"`
	EMA26        float64  `json:"ema_26"`
	PriceVsSMA20 string   `json:"price_vs_sma20"`
	PriceVsSMA50 string   `json:"price_vs_sma50"`
}

// Momentum holds RSI, MACD and rate-of-change readings.
type Momentum struct {
	RSI14             *float64 `json:"rsi_14"`
	RSIInterpretation string   `json:"rsi_interpretation"`
	MACDLine          float64  `json:"macd_line"`
	MACDSignal        float64  `json:"macd_signal"`
	MACDHistogram     float64  `json:"macd_histogram"`
	ROC10Day          float64  `json:"roc_10_day"`
	ROC20Day          float64  `json:"roc_20_day"`
}

// Volatility holds Bollinger Band and ATR readings.
type Volatility struct {
	BollingerUpper  float64 `json:"bollinger_upper"`
	BollingerMiddle float64 `json:"bollinger_middle"`
	BollingerLower  float64 `json:"bollinger_lower"`
	BBPosition      string  `json:"bb_position"`
	ATR14           float64 `json:"atr_14"`
	ATRPercent      string  `json:"atr_percent"`
}

// VolumeAnalysis compares current volume to its trailing average.
type VolumeAnalysis struct {
	CurrentVolume        int64    `json:"current_volume"`
	AvgVolume20          int64    `json:"avg_volume_20"`
	VolumeRatio          *float64 `json:"volume_ratio"`
	VolumeInterpretation string   `json:"volume_interpretation"`
}

// SupportResistance holds standard daily pivot levels plus recent extremes.
type SupportResistance struct {
	Pivot       float64 `json:"pivot"`
	Resistance1 float64 `json:"resistance_1"`
	Resistance2 float64 `json:"resistance_2"`
	Support1    float64 `json:"support_1"`
	Support2    float64 `json:"support_2"`
	RecentHigh  float64 `json:"recent_high"`
	RecentLow   float64 `json:"recent_low"`
}

// Trend summarizes price position relative to the moving averages.
type Trend struct {
	ShortTerm   string `json:"short_term"`
	MediumTerm  string `json:"medium_term"`
	LongTerm    string `json:"long_term"`
	GoldenCross *bool  `json:"golden_cross"`
}

// Signal is one actionable reading from a single indicator.
type Signal struct {
	Indicator string `json:"indicator"`
	Signal    string `json:"signal"`
	Strength  string `json:"strength"`
}

// Overall signal labels.
const (
	SignalBullish = "BULLISH"
	SignalBearish = "BEARISH"
	SignalNeutral = "NEUTRAL"
)
