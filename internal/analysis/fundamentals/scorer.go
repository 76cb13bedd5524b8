// Package fundamentals scores company fundamentals into an investment rating.
//
// Each metric contributes to the score only when the provider reported it,
// so a sparse profile degrades the maximum achievable score instead of
// dragging the rating down.
package fundamentals

import (
	"fmt"
	"strings"
	"time"

	"stock-researcher/internal/models"
)

// Thresholds holds the scoring cutoffs.
type Thresholds struct {
	PELow             float64 // below: undervalued
	PEHigh            float64 // above: overvalued
	PBLow             float64
	PBHigh            float64
	ROEMin            float64 // percent
	ROEAcceptable     float64 // percent
	DebtEquityMax     float64 // ratio, provider reports percent
	EarningsGrowthMin float64 // percent
}

// DefaultThresholds returns the standard cutoffs for Indian large caps.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PELow:             15,
		PEHigh:            30,
		PBLow:             1,
		PBHigh:            5,
		ROEMin:            15,
		ROEAcceptable:     10,
		DebtEquityMax:     1.5,
		EarningsGrowthMin: 10,
	}
}

// Assessment is one metric's verdict.
type Assessment struct {
	Metric     string `json:"metric"`
	Assessment string `json:"assessment"`
	Impact     string `json:"impact"`
}

// Rating labels.
const (
	RatingStrongBuy        = "STRONG BUY"
	RatingBuy              = "BUY"
	RatingHold             = "HOLD"
	RatingSell             = "SELL"
	RatingStrongSell       = "STRONG SELL"
	RatingInsufficientData = "INSUFFICIENT DATA"
)

// Rating is the scored outcome.
type Rating struct {
	Score         int          `json:"-"`
	MaxScore      int          `json:"-"`
	Assessments   []Assessment `json:"assessment"`
	OverallRating string       `json:"overall_rating"`
	ScoreDisplay  string       `json:"score"`
	RatingPct     float64      `json:"-"`
	RatingPctStr  string       `json:"rating_percentage"`
}

// Score rates company fundamentals against the thresholds. A metric enters
// the scoring only when reported as a positive value.
func Score(info models.CompanyInfo, t Thresholds) *Rating {
	r := &Rating{Assessments: []Assessment{}}

	// PE: low is undervalued, high is overvalued
	if info.PE > 0 {
		r.MaxScore += 10
		switch {
		case info.PE < t.PELow:
			r.add("PE Ratio", "Undervalued", "Positive")
			r.Score += 10
		case info.PE > t.PEHigh:
			r.add("PE Ratio", "Overvalued", "Negative")
		default:
			r.add("PE Ratio", "Fair Valued", "Neutral")
			r.Score += 5
		}
	}

	// PB
	if info.PB > 0 {
		r.MaxScore += 10
		switch {
		case info.PB < t.PBLow:
			r.add("PB Ratio", "Undervalued", "Positive")
			r.Score += 10
		case info.PB > t.PBHigh:
			r.add("PB Ratio", "Overvalued", "Negative")
		default:
			r.Score += 5
		}
	}

	// ROE arrives as a fraction
	if info.ROE > 0 {
		r.MaxScore += 10
		roePct := info.ROE * 100
		if roePct >= t.ROEMin {
			r.add("ROE", "Strong", "Positive")
			r.Score += 10
		} else if roePct >= t.ROEAcceptable {
			r.Score += 5
		}
	}

	// Debt/equity arrives as a percent
	if info.DebtToEquity > 0 {
		r.MaxScore += 10
		if info.DebtToEquity/100 <= t.DebtEquityMax {
			r.add("Debt/Equity", "Healthy", "Positive")
			r.Score += 10
		} else {
			r.add("Debt/Equity", "High Debt", "Negative")
		}
	}

	// Earnings growth arrives as a fraction
	if info.EarningsGrowth > 0 {
		r.MaxScore += 10
		egPct := info.EarningsGrowth * 100
		if egPct >= t.EarningsGrowthMin {
			r.add("Earnings Growth", "Strong Growth", "Positive")
			r.Score += 10
		} else if egPct > 0 {
			r.Score += 5
		}
	}

	if r.MaxScore > 0 {
		r.RatingPct = float64(r.Score) / float64(r.MaxScore) * 100
		switch {
		case r.RatingPct >= 70:
			r.OverallRating = RatingStrongBuy
		case r.RatingPct >= 55:
			r.OverallRating = RatingBuy
		case r.RatingPct >= 40:
			r.OverallRating = RatingHold
		case r.RatingPct >= 25:
			r.OverallRating = RatingSell
		default:
			r.OverallRating = RatingStrongSell
		}
	} else {
		r.OverallRating = RatingInsufficientData
		r.RatingPct = 0
	}

	r.ScoreDisplay = fmt.Sprintf("%d/%d", r.Score, r.MaxScore)
	r.RatingPctStr = fmt.Sprintf("%.0f%%", r.RatingPct)
	return r
}

func (r *Rating) add(metric, assessment, impact string) {
	r.Assessments = append(r.Assessments, Assessment{
		Metric:     metric,
		Assessment: assessment,
		Impact:     impact,
	})
}

// Report is the full fundamental profile with the scored rating.
type Report struct {
	Symbol       string    `json:"symbol"`
	CompanyName  string    `json:"company_name"`
	Sector       string    `json:"sector"`
	Industry     string    `json:"industry"`
	AnalysisDate time.Time `json:"analysis_date"`

	Valuation       ValuationMetrics     `json:"valuation"`
	Profitability   ProfitabilityMetrics `json:"profitability"`
	FinancialHealth HealthMetrics        `json:"financial_health"`
	PerShare        PerShareMetrics      `json:"per_share"`
	Dividends       DividendMetrics      `json:"dividends"`
	Growth          GrowthMetrics        `json:"growth"`
	Size            SizeMetrics          `json:"size"`

	Assessments   []Assessment `json:"assessment"`
	OverallRating string       `json:"overall_rating"`
	ScoreDisplay  string       `json:"score"`
	RatingPctStr  string       `json:"rating_percentage"`
}

// ValuationMetrics holds formatted valuation ratios.
type ValuationMetrics struct {
	PERatio   string `json:"pe_ratio"`
	ForwardPE string `json:"forward_pe"`
	PBRatio   string `json:"pb_ratio"`
}

// ProfitabilityMetrics holds formatted profitability ratios.
type ProfitabilityMetrics struct {
	ROE          string `json:"roe"`
	ProfitMargin string `json:"profit_margin"`
}

// HealthMetrics holds formatted balance sheet ratios.
type HealthMetrics struct {
	DebtToEquity string `json:"debt_to_equity"`
	CurrentRatio string `json:"current_ratio"`
	DebtStatus   string `json:"debt_status"`
}

// PerShareMetrics holds formatted per-share values.
type PerShareMetrics struct {
	EPS       string `json:"eps"`
	BookValue string `json:"book_value"`
}

// DividendMetrics holds formatted dividend values.
type DividendMetrics struct {
	DividendYield string `json:"dividend_yield"`
}

// GrowthMetrics holds formatted growth rates.
type GrowthMetrics struct {
	EarningsGrowth string `json:"earnings_growth"`
	RevenueGrowth  string `json:"revenue_growth"`
}

// SizeMetrics holds formatted company size values.
type SizeMetrics struct {
	MarketCap   string `json:"market_cap"`
	CapCategory string `json:"cap_category"`
}

// Analyze scores the company and assembles the display-ready report.
func Analyze(info models.CompanyInfo, t Thresholds) *Report {
	rating := Score(info, t)

	return &Report{
		Symbol:       strings.ToUpper(info.Symbol),
		CompanyName:  orNA(info.Name),
		Sector:       orNA(info.Sector),
		Industry:     orNA(info.Industry),
		AnalysisDate: time.Now(),

		Valuation: ValuationMetrics{
			PERatio:   fmtRatio(info.PE),
			ForwardPE: fmtRatio(info.ForwardPE),
			PBRatio:   fmtRatio(info.PB),
		},
		Profitability: ProfitabilityMetrics{
			ROE:          fmtPercent(info.ROE),
			ProfitMargin: fmtPercent(info.ProfitMargin),
		},
		FinancialHealth: HealthMetrics{
			DebtToEquity: fmtRatio(info.DebtToEquity),
			CurrentRatio: fmtRatio(info.CurrentRatio),
			DebtStatus:   debtStatus(info.DebtToEquity),
		},
		PerShare: PerShareMetrics{
			EPS:       fmtRatio(info.EPS),
			BookValue: fmtRatio(info.BookValue),
		},
		Dividends: DividendMetrics{
			DividendYield: fmtPercent(info.DividendYield),
		},
		Growth: GrowthMetrics{
			EarningsGrowth: fmtPercent(info.EarningsGrowth),
			RevenueGrowth:  fmtPercent(info.RevenueGrowth),
		},
		Size: SizeMetrics{
			MarketCap:   fmtCurrency(info.MarketCap),
			CapCategory: models.MarketCapCategory(info.MarketCap),
		},

		Assessments:   rating.Assessments,
		OverallRating: rating.OverallRating,
		ScoreDisplay:  rating.ScoreDisplay,
		RatingPctStr:  rating.RatingPctStr,
	}
}

// debtStatus buckets the provider's percent debt/equity reading.
func debtStatus(de float64) string {
	switch {
	case de <= 0:
		return "N/A"
	case de < 50:
		return "Low"
	case de <= 150:
		return "Moderate"
	default:
		return "High"
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func fmtRatio(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

// fmtPercent formats a fractional metric as a percent string.
func fmtPercent(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// fmtCurrency formats INR amounts, large values in crores.
func fmtCurrency(v float64) string {
	switch {
	case v == 0:
		return "N/A"
	case v >= 1e10:
		return fmt.Sprintf("₹%.0f Cr", v/1e7)
	case v >= 1e7:
		return fmt.Sprintf("₹%.2f Cr", v/1e7)
	default:
		return fmt.Sprintf("₹%.0f", v)
	}
}
