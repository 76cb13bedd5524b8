package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/analysis/priceaction"
)

// addAnalysisCommands adds the per-symbol research commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newQuickCmd(app))
	rootCmd.AddCommand(newTechnicalCmd(app))
	rootCmd.AddCommand(newFundamentalCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run the full research pipeline for a stock",
		Long: `Runs the multi-stage research pipeline: market data, news,
fundamental scoring, technical analysis, strategy synthesis and the
final report. With an OpenAI key configured the synthesis stages use
the LLM; otherwise a rule-based fallback is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			if app.Researcher == nil {
				return fmt.Errorf("research pipeline unavailable")
			}

			state, err := app.Researcher.Research(cmd.Context(), symbol, app.Period(period))
			if err != nil {
				output.Error("Research failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":      state.Symbol,
					"period":      state.Period,
					"technical":   state.Technical,
					"fundamental": state.Fundamental,
					"strategy":    state.Strategy,
					"report":      state.Report,
					"data_issues": state.DataIssues,
				})
			}

			output.Println(state.Report)
			if len(state.DataIssues) > 0 {
				output.Println()
				output.Warning("Completed with %d data issue(s)", len(state.DataIssues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "history period (1mo, 3mo, 6mo, 1y, 2y, 5y; default from config)")
	return cmd
}

func newQuickCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quick SYMBOL",
		Short: "Quick price check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			quote, err := app.Provider.Quote(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch quote: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}

			output.Bold("%s", symbol)
			output.Printf("  Price:      %s\n", FormatIndianCurrency(quote.LTP))
			output.Printf("  Change:     %s\n", output.FormatChangeColored(quote.Change, quote.ChangePercent))
			output.Printf("  Prev Close: %s\n", FormatIndianCurrency(quote.PrevClose))
			if quote.High > 0 {
				output.Printf("  Day Range:  %.2f - %.2f\n", quote.Low, quote.High)
			}
			if quote.Volume > 0 {
				output.Printf("  Volume:     %s\n", FormatVolume(quote.Volume))
			}
			return nil
		},
	}
}

func newTechnicalCmd(app *App) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "technical SYMBOL",
		Short: "Technical indicator analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			candles, err := app.Provider.History(cmd.Context(), symbol, app.Period(period))
			if err != nil {
				output.Error("Failed to fetch history: %v", err)
				return err
			}

			report, err := indicators.Compute(symbol, candles, app.Params())
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			printTechnical(output, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "history period (default from config)")
	return cmd
}

func printTechnical(output *Output, r *indicators.Report) {
	output.Bold("Technical Analysis: %s", r.Symbol)
	output.Printf("Price: %s  Overall: %s (strength %s)\n\n",
		FormatIndianCurrency(r.CurrentPrice), output.Signal(r.OverallSignal), r.SignalStrength)

	output.Info("Moving Averages")
	output.Printf("  SMA20:  %10.2f  (%s)\n", r.MovingAverages.SMA20, r.MovingAverages.PriceVsSMA20)
	output.Printf("  SMA50:  %10.2f  (%s)\n", r.MovingAverages.SMA50, r.MovingAverages.PriceVsSMA50)
	output.Printf("  SMA200: %s\n", naFloat(r.MovingAverages.SMA200))
	output.Printf("  EMA12:  %10.2f   EMA26: %.2f\n\n", r.MovingAverages.EMA12, r.MovingAverages.EMA26)

	output.Info("Momentum")
	output.Printf("  RSI(14):  %s (%s)\n", naFloat(r.Momentum.RSI14), r.Momentum.RSIInterpretation)
	output.Printf("  MACD:     %.2f  Signal: %.2f  Histogram: %.2f\n", r.Momentum.MACDLine, r.Momentum.MACDSignal, r.Momentum.MACDHistogram)
	output.Printf("  ROC:      10d %s  20d %s\n\n", FormatPercent(r.Momentum.ROC10Day), FormatPercent(r.Momentum.ROC20Day))

	output.Info("Volatility")
	output.Printf("  Bollinger: %.2f / %.2f / %.2f  (position %s)\n",
		r.Volatility.BollingerLower, r.Volatility.BollingerMiddle, r.Volatility.BollingerUpper, r.Volatility.BBPosition)
	output.Printf("  ATR(14):   %.2f (%s)\n\n", r.Volatility.ATR14, r.Volatility.ATRPercent)

	output.Info("Volume")
	output.Printf("  Current: %s  Avg(20): %s  %s\n\n",
		FormatVolume(r.Volume.CurrentVolume), FormatVolume(r.Volume.AvgVolume20), r.Volume.VolumeInterpretation)

	output.Info("Support / Resistance")
	output.Printf("  Pivot: %.2f  R1: %.2f  R2: %.2f  S1: %.2f  S2: %.2f\n",
		r.SupportResistance.Pivot, r.SupportResistance.Resistance1, r.SupportResistance.Resistance2,
		r.SupportResistance.Support1, r.SupportResistance.Support2)
	output.Printf("  Recent High: %.2f  Recent Low: %.2f\n\n",
		r.SupportResistance.RecentHigh, r.SupportResistance.RecentLow)

	output.Info("Trend")
	output.Printf("  Short: %s  Medium: %s  Long: %s  Golden Cross: %s\n",
		r.Trend.ShortTerm, r.Trend.MediumTerm, r.Trend.LongTerm, naBool(r.Trend.GoldenCross))

	if len(r.Signals) > 0 {
		output.Println()
		output.Info("Signals")
		table := NewTable(output, "Indicator", "Signal", "Strength")
		for _, s := range r.Signals {
			table.AddRow(s.Indicator, s.Signal, s.Strength)
		}
		table.Render()
	}
}

func newFundamentalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fundamental SYMBOL",
		Short: "Fundamental analysis and rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			info, err := app.Provider.CompanyInfo(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch company info: %v", err)
				return err
			}

			report := fundamentals.Analyze(*info, app.Thresholds())
			if output.IsJSON() {
				return output.JSON(report)
			}

			printFundamental(output, report)
			return nil
		},
	}
}

func printFundamental(output *Output, r *fundamentals.Report) {
	output.Bold("Fundamental Analysis: %s", r.Symbol)
	output.Printf("%s | %s | %s\n", r.CompanyName, r.Sector, r.Industry)
	output.Printf("Rating: %s  (score %s, %s)\n\n", output.Rating(r.OverallRating), r.ScoreDisplay, r.RatingPctStr)

	output.Info("Valuation")
	output.Printf("  PE: %s  Forward PE: %s  PB: %s\n\n", r.Valuation.PERatio, r.Valuation.ForwardPE, r.Valuation.PBRatio)

	output.Info("Profitability")
	output.Printf("  ROE: %s  Profit Margin: %s\n\n", r.Profitability.ROE, r.Profitability.ProfitMargin)

	output.Info("Financial Health")
	output.Printf("  Debt/Equity: %s (%s)  Current Ratio: %s\n\n",
		r.FinancialHealth.DebtToEquity, r.FinancialHealth.DebtStatus, r.FinancialHealth.CurrentRatio)

	output.Info("Per Share")
	output.Printf("  EPS: %s  Book Value: %s\n\n", r.PerShare.EPS, r.PerShare.BookValue)

	output.Info("Growth")
	output.Printf("  Earnings: %s  Revenue: %s\n\n", r.Growth.EarningsGrowth, r.Growth.RevenueGrowth)

	output.Info("Size")
	output.Printf("  Market Cap: %s (%s)\n", r.Size.MarketCap, r.Size.CapCategory)

	if len(r.Assessments) > 0 {
		output.Println()
		output.Info("Assessment")
		table := NewTable(output, "Metric", "Assessment", "Impact")
		for _, a := range r.Assessments {
			table.AddRow(a.Metric, a.Assessment, a.Impact)
		}
		table.Render()
	}
}

func newNewsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Recent news headlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			items, err := app.News.News(cmd.Context(), symbol, limit)
			if err != nil {
				output.Error("Failed to fetch news: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}

			output.Bold("News: %s", symbol)
			for _, n := range items {
				output.Printf("  • %s\n", n.Title)
				output.Dim("    %s, %s", n.Source, FormatDate(n.PublishedAt))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of headlines")
	return cmd
}

// historySummary prints a history stats block shared by the market commands.
func historySummary(output *Output, stats *priceaction.Stats) {
	output.Bold("History: %s (%s)", stats.Symbol, stats.Period)
	output.Printf("  %s to %s, %d trading days\n", stats.StartDate, stats.EndDate, stats.TotalTradingDays)
	output.Printf("  Return: %s (%s)\n", FormatIndianCurrency(stats.AbsoluteReturn), FormatPercent(stats.PercentageReturn))
	output.Printf("  High: %.2f (%s)  Low: %.2f (%s)\n", stats.HighestPrice, stats.HighestDate, stats.LowestPrice, stats.LowestDate)
	output.Printf("  Avg Price: %.2f  Volatility: %.2f%% (annualized)\n", stats.AveragePrice, stats.Volatility)
	output.Printf("  Avg Volume: %s  Up Days: %d  Down Days: %d\n",
		FormatVolume(stats.AvgDailyVolume), stats.PositiveDays, stats.NegativeDays)

	if len(stats.Recent5Days) > 0 {
		output.Println()
		output.Info("Recent Sessions")
		table := NewTable(output, "Date", "Close", "Volume")
		for _, d := range stats.Recent5Days {
			table.AddRow(d.Date, fmt.Sprintf("%.2f", d.Close), FormatVolume(d.Volume))
		}
		table.Render()
	}
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
