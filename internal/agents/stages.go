package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/analysis/priceaction"
	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/logging"
	"stock-researcher/internal/marketdata"
)

// Stage names.
const (
	StageMarketData  = "market_data"
	StageNews        = "news"
	StageFundamental = "fundamental"
	StageTechnical   = "technical"
	StageStrategist  = "strategist"
	StageReport      = "report"
)

// MarketDataStage fetches the quote, price history and company profile.
// Quote or history failure aborts the run: nothing downstream can work
// without prices. A missing company profile only degrades fundamentals.
type MarketDataStage struct {
	Provider marketdata.Provider
}

func (s *MarketDataStage) Name() string        { return StageMarketData }
func (s *MarketDataStage) DependsOn() []string { return nil }

func (s *MarketDataStage) Run(ctx context.Context, state *ResearchState) error {
	quote, err := s.Provider.Quote(ctx, state.Symbol)
	if err != nil {
		return err
	}
	state.Quote = quote

	history, err := s.Provider.History(ctx, state.Symbol, state.Period)
	if err != nil {
		return err
	}
	state.History = history

	company, err := s.Provider.CompanyInfo(ctx, state.Symbol)
	if err != nil {
		if !apperrors.IsDataUnavailable(err) {
			return err
		}
		state.AddDataIssue(StageMarketData, err)
	} else {
		state.Company = company
	}

	return nil
}

// NewsStage fetches recent headlines. News is best effort: a failure is
// recorded for the report instead of aborting the run.
type NewsStage struct {
	Provider marketdata.NewsProvider
	Limit    int
}

func (s *NewsStage) Name() string        { return StageNews }
func (s *NewsStage) DependsOn() []string { return nil }

func (s *NewsStage) Run(ctx context.Context, state *ResearchState) error {
	limit := s.Limit
	if limit <= 0 {
		limit = 10
	}

	news, err := s.Provider.News(ctx, state.Symbol, limit)
	if err != nil {
		if apperrors.IsDataUnavailable(err) {
			state.AddDataIssue(StageNews, err)
			return nil
		}
		return err
	}
	state.News = news
	return nil
}

// FundamentalStage scores the company profile collected upstream.
type FundamentalStage struct {
	Thresholds fundamentals.Thresholds
}

func (s *FundamentalStage) Name() string        { return StageFundamental }
func (s *FundamentalStage) DependsOn() []string { return []string{StageMarketData} }

func (s *FundamentalStage) Run(ctx context.Context, state *ResearchState) error {
	if state.Company == nil {
		state.AddDataIssue(StageFundamental,
			apperrors.NewDataUnavailableError(state.Symbol, "no company profile to score", nil))
		return nil
	}
	state.Fundamental = fundamentals.Analyze(*state.Company, s.Thresholds)
	return nil
}

// TechnicalStage computes indicators and price action over the history.
// A series too short for indicators is recorded verbatim, never padded.
type TechnicalStage struct {
	Params indicators.Params
}

func (s *TechnicalStage) Name() string        { return StageTechnical }
func (s *TechnicalStage) DependsOn() []string { return []string{StageMarketData} }

func (s *TechnicalStage) Run(ctx context.Context, state *ResearchState) error {
	report, err := indicators.Compute(state.Symbol, state.History, s.Params)
	if err != nil {
		if apperrors.IsInsufficientData(err) {
			state.AddDataIssue(StageTechnical,
				apperrors.NewDataUnavailableError(state.Symbol, err.Error(), nil))
		} else {
			return err
		}
	} else {
		state.Technical = report
		logging.LogAnalysis(logging.FromContext(ctx), state.Symbol, report.OverallSignal, len(report.Signals))
	}

	pa, err := priceaction.Analyze(state.Symbol, state.History)
	if err != nil {
		state.AddDataIssue(StageTechnical, err)
	} else {
		state.PriceAction = pa
	}

	stats, err := priceaction.Summarize(state.Symbol, state.Period, state.History)
	if err != nil {
		state.AddDataIssue(StageTechnical, err)
	} else {
		state.HistoryStats = stats
	}

	return nil
}

// StrategistStage synthesizes the research into a recommendation. With
// an LLM configured it reasons over the collected data; without one it
// falls back to a deterministic rule-based synthesis.
type StrategistStage struct {
	LLM LLMClient
}

func (s *StrategistStage) Name() string { return StageStrategist }
func (s *StrategistStage) DependsOn() []string {
	return []string{StageNews, StageFundamental, StageTechnical}
}

const strategistSystemPrompt = `You are the chief investment strategist of an Indian equity research desk.
Synthesize the provided technical, fundamental and news research into a clear
recommendation (BUY / HOLD / SELL) with conviction level (High / Medium / Low)
for a retail investor with a 2-5 year horizon.

Rules you must follow:
- Use ONLY the figures provided. NEVER invent or estimate prices, ratios or levels.
- If a section is marked DATA_UNAVAILABLE, say so explicitly instead of guessing.
- Present both the bull case and the bear case before concluding.`

func (s *StrategistStage) Run(ctx context.Context, state *ResearchState) error {
	if s.LLM == nil {
		state.Strategy = ruleBasedStrategy(state)
		return nil
	}

	input, err := researchJSON(state)
	if err != nil {
		return err
	}

	strategy, err := s.LLM.CompleteWithSystem(ctx, strategistSystemPrompt,
		fmt.Sprintf("Research data for %s:\n\n%s", state.Symbol, input))
	if err != nil {
		// LLM outage must not kill a run that has all the data
		state.AddDataIssue(StageStrategist, err)
		state.Strategy = ruleBasedStrategy(state)
		return nil
	}
	state.Strategy = strategy
	return nil
}

// ruleBasedStrategy combines the technical verdict with the fundamental
// rating into a recommendation matrix.
func ruleBasedStrategy(state *ResearchState) string {
	technical := "N/A"
	if state.Technical != nil {
		technical = state.Technical.OverallSignal
	}
	rating := "N/A"
	if state.Fundamental != nil {
		rating = state.Fundamental.OverallRating
	}

	bullFund := rating == fundamentals.RatingStrongBuy || rating == fundamentals.RatingBuy
	bearFund := rating == fundamentals.RatingSell || rating == fundamentals.RatingStrongSell

	var action, conviction string
	switch {
	case technical == indicators.SignalBullish && bullFund:
		action, conviction = "BUY", "High"
	case technical == indicators.SignalBullish && !bearFund:
		action, conviction = "BUY", "Medium"
	case technical == indicators.SignalBearish && bearFund:
		action, conviction = "SELL", "High"
	case technical == indicators.SignalBearish && !bullFund:
		action, conviction = "SELL", "Medium"
	case bullFund:
		action, conviction = "BUY", "Low"
	case bearFund:
		action, conviction = "SELL", "Low"
	default:
		action, conviction = "HOLD", "Medium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recommendation: %s (conviction: %s)\n", action, conviction)
	fmt.Fprintf(&b, "Technical signal: %s\n", technical)
	fmt.Fprintf(&b, "Fundamental rating: %s\n", rating)
	if state.Technical != nil {
		fmt.Fprintf(&b, "Signal strength: %s\n", state.Technical.SignalStrength)
	}
	for _, issue := range state.DataIssues {
		fmt.Fprintf(&b, "Note: %s\n", issue)
	}
	return b.String()
}

// ReportStage renders the final research report. Data failures recorded
// along the way appear verbatim so the reader knows what is missing.
type ReportStage struct {
	LLM LLMClient
}

func (s *ReportStage) Name() string { return StageReport }
func (s *ReportStage) DependsOn() []string {
	return []string{StageMarketData, StageNews, StageFundamental, StageTechnical, StageStrategist}
}

const reportSystemPrompt = `You are an equity research report writer for Indian retail investors.
Write a well-structured markdown report from the provided research data.

Rules you must follow:
- Use ONLY the figures provided. NEVER invent or estimate any number.
- Reproduce every DATA_UNAVAILABLE note verbatim in a "Data Gaps" section.
- Structure: Summary, Market Data, Technical Analysis, Fundamental Analysis,
  News, Strategy, Data Gaps (if any), Disclaimer that this is not investment advice.`

func (s *ReportStage) Run(ctx context.Context, state *ResearchState) error {
	if s.LLM == nil {
		state.Report = renderReport(state)
		return nil
	}

	input, err := researchJSON(state)
	if err != nil {
		return err
	}

	report, err := s.LLM.CompleteWithSystem(ctx, reportSystemPrompt,
		fmt.Sprintf("Research data for %s:\n\n%s\n\nStrategist view:\n%s",
			state.Symbol, input, state.Strategy))
	if err != nil {
		state.AddDataIssue(StageReport, err)
		state.Report = renderReport(state)
		return nil
	}
	state.Report = report
	return nil
}

// renderReport is the deterministic markdown fallback.
func renderReport(state *ResearchState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report: %s\n\n", strings.ToUpper(state.Symbol))

	if q := state.Quote; q != nil {
		fmt.Fprintf(&b, "## Market Data\n\n")
		fmt.Fprintf(&b, "- Last price: %.2f (%+.2f, %+.2f%%)\n", q.LTP, q.Change, q.ChangePercent)
		fmt.Fprintf(&b, "- Day range: %.2f - %.2f, volume %d\n\n", q.Low, q.High, q.Volume)
	}

	if t := state.Technical; t != nil {
		fmt.Fprintf(&b, "## Technical Analysis\n\n")
		fmt.Fprintf(&b, "- Overall signal: %s (%s)\n", t.OverallSignal, t.SignalStrength)
		fmt.Fprintf(&b, "- Trend: short %s, medium %s, long %s\n",
			t.Trend.ShortTerm, t.Trend.MediumTerm, t.Trend.LongTerm)
		for _, sig := range t.Signals {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", sig.Indicator, sig.Signal, sig.Strength)
		}
		b.WriteString("\n")
	}

	if f := state.Fundamental; f != nil {
		fmt.Fprintf(&b, "## Fundamental Analysis\n\n")
		fmt.Fprintf(&b, "- Rating: %s (score %s, %s)\n", f.OverallRating, f.ScoreDisplay, f.RatingPctStr)
		for _, a := range f.Assessments {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", a.Metric, a.Assessment, a.Impact)
		}
		b.WriteString("\n")
	}

	if len(state.News) > 0 {
		fmt.Fprintf(&b, "## Recent News\n\n")
		for _, n := range state.News {
			fmt.Fprintf(&b, "- %s (%s)\n", n.Title, n.Source)
		}
		b.WriteString("\n")
	}

	if state.Strategy != "" {
		fmt.Fprintf(&b, "## Strategy\n\n%s\n", state.Strategy)
	}

	if len(state.DataIssues) > 0 {
		fmt.Fprintf(&b, "## Data Gaps\n\n")
		for _, issue := range state.DataIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n*This report is generated for research purposes only and is not investment advice.*\n")
	return b.String()
}

// researchJSON serializes the collected research for LLM prompts.
func researchJSON(state *ResearchState) (string, error) {
	payload := map[string]interface{}{
		"symbol": state.Symbol,
		"period": state.Period,
	}
	if state.Quote != nil {
		payload["quote"] = state.Quote
	}
	if state.Technical != nil {
		payload["technical"] = state.Technical
	}
	if state.PriceAction != nil {
		payload["price_action"] = state.PriceAction
	}
	if state.HistoryStats != nil {
		payload["history_stats"] = state.HistoryStats
	}
	if state.Fundamental != nil {
		payload["fundamental"] = state.Fundamental
	}
	if len(state.News) > 0 {
		payload["news"] = state.News
	}
	if len(state.DataIssues) > 0 {
		payload["data_issues"] = state.DataIssues
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing research state: %w", err)
	}
	return string(data), nil
}
