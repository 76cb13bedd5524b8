package agents

import (
	"fmt"
	"time"

	"stock-researcher/internal/analysis/fundamentals"
	"stock-researcher/internal/analysis/indicators"
	"stock-researcher/internal/analysis/priceaction"
	"stock-researcher/internal/models"
)

// ResearchState is the typed record the pipeline stages read and write.
// Each stage fills its own fields; a nil field means the producing stage
// has not run or could not obtain data.
type ResearchState struct {
	Symbol    string
	Period    string
	StartedAt time.Time

	Quote   *models.Quote
	History []models.Candle
	Company *models.CompanyInfo
	News    []models.NewsItem

	Technical    *indicators.Report
	PriceAction  *priceaction.Report
	HistoryStats *priceaction.Stats
	Fundamental  *fundamentals.Report

	Strategy string
	Report   string

	// DataIssues carries DATA_UNAVAILABLE failures verbatim into the
	// final report. Stages append here instead of inventing values.
	DataIssues []string
}

// NewResearchState initializes the state for one research run.
func NewResearchState(symbol, period string) *ResearchState {
	return &ResearchState{
		Symbol:    symbol,
		Period:    period,
		StartedAt: time.Now(),
	}
}

// AddDataIssue records a data failure for the report stage.
func (s *ResearchState) AddDataIssue(stage string, err error) {
	s.DataIssues = append(s.DataIssues, fmt.Sprintf("[%s] DATA_UNAVAILABLE: %v", stage, err))
}
