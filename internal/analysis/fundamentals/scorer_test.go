package fundamentals

import (
	"testing"

	"stock-researcher/internal/models"
)

func TestScoreAllStrong(t *testing.T) {
	info := models.CompanyInfo{
		Symbol:         "TCS",
		PE:             12,   // undervalued: +10
		PB:             0.8,  // undervalued: +10
		ROE:            0.22, // 22%: +10
		DebtToEquity:   40,   // 0.4 ratio: +10
		EarningsGrowth: 0.15, // 15%: +10
	}

	r := Score(info, DefaultThresholds())

	if r.Score != 50 || r.MaxScore != 50 {
		t.Errorf("score = %d/%d, want 50/50", r.Score, r.MaxScore)
	}
	if r.OverallRating != RatingStrongBuy {
		t.Errorf("rating = %q, want %q", r.OverallRating, RatingStrongBuy)
	}
	if r.ScoreDisplay != "50/50" {
		t.Errorf("score display = %q, want 50/50", r.ScoreDisplay)
	}
	if r.RatingPctStr != "100%" {
		t.Errorf("rating pct = %q, want 100%%", r.RatingPctStr)
	}
}

func TestScoreAllWeak(t *testing.T) {
	info := models.CompanyInfo{
		Symbol:       "XYZ",
		PE:           45,  // overvalued: +0
		PB:           8,   // overvalued: +0
		DebtToEquity: 250, // 2.5 ratio: high debt, +0
	}

	r := Score(info, DefaultThresholds())

	if r.Score != 0 || r.MaxScore != 30 {
		t.Errorf("score = %d/%d, want 0/30", r.Score, r.MaxScore)
	}
	if r.OverallRating != RatingStrongSell {
		t.Errorf("rating = %q, want %q", r.OverallRating, RatingStrongSell)
	}

	var highDebt bool
	for _, a := range r.Assessments {
		if a.Metric == "Debt/Equity" && a.Assessment == "High Debt" && a.Impact == "Negative" {
			highDebt = true
		}
	}
	if !highDebt {
		t.Error("expected a High Debt assessment with Negative impact")
	}
}

func TestScoreMissingMetrics(t *testing.T) {
	// Only PE reported: max score shrinks instead of penalizing
	info := models.CompanyInfo{Symbol: "ABC", PE: 10}

	r := Score(info, DefaultThresholds())

	if r.Score != 10 || r.MaxScore != 10 {
		t.Errorf("score = %d/%d, want 10/10", r.Score, r.MaxScore)
	}
	if r.OverallRating != RatingStrongBuy {
		t.Errorf("rating = %q, want %q", r.OverallRating, RatingStrongBuy)
	}
}

func TestScoreNoMetrics(t *testing.T) {
	r := Score(models.CompanyInfo{Symbol: "EMPTY"}, DefaultThresholds())

	if r.MaxScore != 0 {
		t.Errorf("max score = %d, want 0", r.MaxScore)
	}
	if r.OverallRating != RatingInsufficientData {
		t.Errorf("rating = %q, want %q", r.OverallRating, RatingInsufficientData)
	}
	if r.ScoreDisplay != "0/0" {
		t.Errorf("score display = %q, want 0/0", r.ScoreDisplay)
	}
	if r.RatingPctStr != "0%" {
		t.Errorf("rating pct = %q, want 0%%", r.RatingPctStr)
	}
}

func TestScoreRatingBands(t *testing.T) {
	// All five metrics present (max 50), vary the achieved score
	tests := []struct {
		name string
		info models.CompanyInfo
		want string
	}{
		{
			// 10+10+10+10+10 = 50/50 = 100%
			name: "strong buy at 100 percent",
			info: models.CompanyInfo{PE: 10, PB: 0.5, ROE: 0.20, DebtToEquity: 50, EarningsGrowth: 0.20},
			want: RatingStrongBuy,
		},
		{
			// 5+5+10+10+0... earnings growth always scores when >0;
			// use 5: growth 5% -> +5. 5+5+10+10+5 = 35/50 = 70% -> STRONG BUY boundary
			name: "strong buy at boundary 70 percent",
			info: models.CompanyInfo{PE: 20, PB: 3, ROE: 0.20, DebtToEquity: 50, EarningsGrowth: 0.05},
			want: RatingStrongBuy,
		},
		{
			// 5+5+10+0+10 = 30/50 = 60% -> BUY
			name: "buy at 60 percent",
			info: models.CompanyInfo{PE: 20, PB: 3, ROE: 0.20, DebtToEquity: 200, EarningsGrowth: 0.20},
			want: RatingBuy,
		},
		{
			// 5+5+0+0+10 = 20/50 = 40% -> HOLD boundary
			name: "hold at boundary 40 percent",
			info: models.CompanyInfo{PE: 20, PB: 3, ROE: 0.05, DebtToEquity: 200, EarningsGrowth: 0.20},
			want: RatingHold,
		},
		{
			// 5+5+0+0+5 = 15/50 = 30% -> SELL
			name: "sell at 30 percent",
			info: models.CompanyInfo{PE: 20, PB: 3, ROE: 0.05, DebtToEquity: 200, EarningsGrowth: 0.05},
			want: RatingSell,
		},
		{
			// 5+0+0+0+5 = 10/50 = 20% -> STRONG SELL
			name: "strong sell below 25 percent",
			info: models.CompanyInfo{PE: 20, PB: 8, ROE: 0.05, DebtToEquity: 200, EarningsGrowth: 0.05},
			want: RatingStrongSell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score(tt.info, DefaultThresholds())
			if r.OverallRating != tt.want {
				t.Errorf("rating = %q (%s), want %q", r.OverallRating, r.ScoreDisplay, tt.want)
			}
		})
	}
}

func TestScoreROEAcceptableBand(t *testing.T) {
	// 12% ROE scores half credit without an assessment entry
	info := models.CompanyInfo{ROE: 0.12}
	r := Score(info, DefaultThresholds())

	if r.Score != 5 || r.MaxScore != 10 {
		t.Errorf("score = %d/%d, want 5/10", r.Score, r.MaxScore)
	}
	for _, a := range r.Assessments {
		if a.Metric == "ROE" {
			t.Error("acceptable-band ROE should not emit an assessment")
		}
	}
}

func TestAnalyzeReport(t *testing.T) {
	info := models.CompanyInfo{
		Symbol:         "reliance",
		Name:           "Reliance Industries Limited",
		Sector:         "Energy",
		Industry:       "Oil & Gas Refining",
		MarketCap:      19.3e12,
		PE:             24.5,
		PB:             2.1,
		ROE:            0.092,
		DebtToEquity:   42.1,
		EarningsGrowth: 0.08,
		DividendYield:  0.0035,
	}

	rep := Analyze(info, DefaultThresholds())

	if rep.Symbol != "RELIANCE" {
		t.Errorf("symbol = %q, want RELIANCE", rep.Symbol)
	}
	if rep.Valuation.PERatio != "24.50" {
		t.Errorf("pe_ratio = %q, want 24.50", rep.Valuation.PERatio)
	}
	if rep.Profitability.ROE != "9.20%" {
		t.Errorf("roe = %q, want 9.20%%", rep.Profitability.ROE)
	}
	if rep.FinancialHealth.DebtStatus != "Low" {
		t.Errorf("debt_status = %q, want Low", rep.FinancialHealth.DebtStatus)
	}
	if rep.Size.CapCategory != "Large Cap" {
		t.Errorf("cap_category = %q, want Large Cap", rep.Size.CapCategory)
	}
	if rep.Dividends.DividendYield != "0.35%" {
		t.Errorf("dividend_yield = %q, want 0.35%%", rep.Dividends.DividendYield)
	}

	// Unreported fields render as N/A
	if rep.Valuation.ForwardPE != "N/A" {
		t.Errorf("forward_pe = %q, want N/A", rep.Valuation.ForwardPE)
	}
	if rep.Growth.RevenueGrowth != "N/A" {
		t.Errorf("revenue_growth = %q, want N/A", rep.Growth.RevenueGrowth)
	}
}
