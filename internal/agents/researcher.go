package agents

import (
	"context"

	"github.com/rs/zerolog"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/marketdata"
)

// Researcher bundles the standard research pipeline.
type Researcher struct {
	pipeline *Pipeline
	logger   zerolog.Logger
}

// ResearcherOptions configures the standard pipeline.
type ResearcherOptions struct {
	Provider     marketdata.Provider
	NewsProvider marketdata.NewsProvider
	LLM          LLMClient // nil means rule-based synthesis
	Params       indicators.Params
	Thresholds   fundamentals.Thresholds
	NewsLimit    int
	Logger       zerolog.Logger
}

// NewResearcher wires the standard stage graph:
// market_data -> {news, fundamental, technical} -> strategist -> report.
func NewResearcher(opts ResearcherOptions) (*Researcher, error) {
	pipeline, err := NewPipeline(opts.Logger,
		&MarketDataStage{Provider: opts.Provider},
		&NewsStage{Provider: opts.NewsProvider, Limit: opts.NewsLimit},
		&FundamentalStage{Thresholds: opts.Thresholds},
		&TechnicalStage{Params: opts.Params},
		&StrategistStage{LLM: opts.LLM},
		&ReportStage{LLM: opts.LLM},
	)
	if err != nil {
		return nil, err
	}
	return &Researcher{pipeline: pipeline, logger: opts.Logger}, nil
}

// Research runs the full pipeline for one symbol.
func (r *Researcher) Research(ctx context.Context, symbol, period string) (*ResearchState, error) {
	state := NewResearchState(symbol, marketdata.NormalizePeriod(period))

	r.logger.Info().Str("symbol", symbol).Str("period", state.Period).Msg("Research started")
	if err := r.pipeline.Run(ctx, state); err != nil {
		return nil, err
	}
	r.logger.Info().
		Str("symbol", symbol).
		Int("data_issues", len(state.DataIssues)).
		Msg("Research completed")

	return state, nil
}
