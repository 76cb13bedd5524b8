package bot

import (
	"fmt"
	"strings"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/models"
)

// errorText renders any handler error as a user-facing reply. Structured
// data failures keep their message so the user sees exactly what failed.
func errorText(symbol string, err error) string {
	return fmt.Sprintf("❌ Error for %s: %v", symbol, err)
}

func changeEmoji(change float64) string {
	if change >= 0 {
		return "🟢"
	}
	return "🔴"
}

// naFloat renders a nullable reading, nil becomes N/A.
func naFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func naBool(v *bool) string {
	if v == nil {
		return "N/A"
	}
	if *v {
		return "Yes"
	}
	return "No"
}

func formatQuote(symbol string, q *models.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*\n\n", changeEmoji(q.Change), symbol)
	fmt.Fprintf(&b, "Price: ₹%.2f\n", q.LTP)
	fmt.Fprintf(&b, "Change: %+.2f (%+.2f%%)\n", q.Change, q.ChangePercent)
	fmt.Fprintf(&b, "Prev Close: ₹%.2f\n", q.PrevClose)
	if q.High > 0 {
		fmt.Fprintf(&b, "Day Range: ₹%.2f - ₹%.2f\n", q.Low, q.High)
	}
	if q.Volume > 0 {
		fmt.Fprintf(&b, "Volume: %d\n", q.Volume)
	}
	return b.String()
}

func formatIndex(s *models.IndexSnapshot) string {
	return fmt.Sprintf("%s *%s*: %.2f (%+.2f, %+.2f%%)",
		changeEmoji(s.Change), s.Name, s.Value, s.Change, s.ChangePercent)
}

func formatTechnical(r *indicators.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Technical Analysis: %s*\n\n", r.Symbol)
	fmt.Fprintf(&b, "Price: ₹%.2f\n", r.CurrentPrice)
	fmt.Fprintf(&b, "Overall: *%s* (strength %s)\n\n", r.OverallSignal, r.SignalStrength)

	fmt.Fprintf(&b, "*Moving Averages*\n")
	fmt.Fprintf(&b, "SMA20: %.2f (%s)\n", r.MovingAverages.SMA20, r.MovingAverages.PriceVsSMA20)
	fmt.Fprintf(&b, "SMA50: %.2f (%s)\n", r.MovingAverages.SMA50, r.MovingAverages.PriceVsSMA50)
	fmt.Fprintf(&b, "SMA200: %s\n\n", naFloat(r.MovingAverages.SMA200))

	fmt.Fprintf(&b, "*Momentum*\n")
	fmt.Fprintf(&b, "RSI(14): %s (%s)\n", naFloat(r.Momentum.RSI14), r.Momentum.RSIInterpretation)
	fmt.Fprintf(&b, "MACD: %.2f / signal %.2f\n\n", r.Momentum.MACDLine, r.Momentum.MACDSignal)

	fmt.Fprintf(&b, "*Volatility*\n")
	fmt.Fprintf(&b, "Bollinger: %.2f - %.2f (position %s)\n",
		r.Volatility.BollingerLower, r.Volatility.BollingerUpper, r.Volatility.BBPosition)
	fmt.Fprintf(&b, "ATR(14): %.2f (%s)\n\n", r.Volatility.ATR14, r.Volatility.ATRPercent)

	fmt.Fprintf(&b, "*Levels*\n")
	fmt.Fprintf(&b, "Pivot: %.2f | R1: %.2f | S1: %.2f\n\n",
		r.SupportResistance.Pivot, r.SupportResistance.Resistance1, r.SupportResistance.Support1)

	fmt.Fprintf(&b, "*Trend*\n")
	fmt.Fprintf(&b, "Short: %s | Medium: %s | Long: %s\n", r.Trend.ShortTerm, r.Trend.MediumTerm, r.Trend.LongTerm)
	fmt.Fprintf(&b, "Golden Cross: %s\n", naBool(r.Trend.GoldenCross))

	if len(r.Signals) > 0 {
		fmt.Fprintf(&b, "\n*Signals*\n")
		for _, s := range r.Signals {
			fmt.Fprintf(&b, "%s: %s (%s)\n", s.Indicator, s.Signal, s.Strength)
		}
	}
	return b.String()
}

func formatFundamental(r *fundamentals.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏛 *Fundamental Analysis: %s*\n", r.Symbol)
	fmt.Fprintf(&b, "%s | %s\n\n", r.CompanyName, r.Sector)
	fmt.Fprintf(&b, "Rating: *%s* (%s, %s)\n\n", r.OverallRating, r.ScoreDisplay, r.RatingPctStr)

	fmt.Fprintf(&b, "*Valuation*\n")
	fmt.Fprintf(&b, "PE: %s | PB: %s | Fwd PE: %s\n\n",
		r.Valuation.PERatio, r.Valuation.PBRatio, r.Valuation.ForwardPE)

	fmt.Fprintf(&b, "*Profitability*\n")
	fmt.Fprintf(&b, "ROE: %s | Margin: %s\n\n", r.Profitability.ROE, r.Profitability.ProfitMargin)

	fmt.Fprintf(&b, "*Financial Health*\n")
	fmt.Fprintf(&b, "D/E: %s (%s) | Current Ratio: %s\n\n",
		r.FinancialHealth.DebtToEquity, r.FinancialHealth.DebtStatus, r.FinancialHealth.CurrentRatio)

	fmt.Fprintf(&b, "*Growth*\n")
	fmt.Fprintf(&b, "Earnings: %s | Revenue: %s\n\n",
		r.Growth.EarningsGrowth, r.Growth.RevenueGrowth)

	fmt.Fprintf(&b, "*Size*\n")
	fmt.Fprintf(&b, "Market Cap: %s (%s)\n", r.Size.MarketCap, r.Size.CapCategory)

	if len(r.Assessments) > 0 {
		fmt.Fprintf(&b, "\n*Assessment*\n")
		for _, a := range r.Assessments {
			fmt.Fprintf(&b, "%s: %s (%s)\n", a.Metric, a.Assessment, a.Impact)
		}
	}
	return b.String()
}

func formatNews(symbol string, items []models.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 *News: %s*\n\n", symbol)
	for _, n := range items {
		fmt.Fprintf(&b, "• [%s](%s)\n  _%s, %s_\n",
			n.Title, n.URL, n.Source, n.PublishedAt.Format("02 Jan 2006"))
	}
	return b.String()
}
