package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-researcher/internal/errors"
	"stock-researcher/internal/logging"
)

// Stage is one unit of pipeline work. DependsOn names the stages whose
// output this stage reads; the pipeline guarantees they run first.
type Stage interface {
	Name() string
	DependsOn() []string
	Run(ctx context.Context, state *ResearchState) error
}

// Pipeline executes stages in dependency order. The graph is validated
// at construction: unknown dependencies and cycles are rejected.
type Pipeline struct {
	stages []Stage
	order  []Stage
	logger zerolog.Logger
}

// NewPipeline builds a pipeline from stages and validates the graph.
func NewPipeline(logger zerolog.Logger, stages ...Stage) (*Pipeline, error) {
	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		if _, dup := byName[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate stage %q", s.Name())
		}
		byName[s.Name()] = s
	}

	for _, s := range stages {
		for _, dep := range s.DependsOn() {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("stage %q: %w: %q", s.Name(), apperrors.ErrStageNotFound, dep)
			}
		}
	}

	order, err := topoSort(stages, byName)
	if err != nil {
		return nil, err
	}

	return &Pipeline{stages: stages, order: order, logger: logger}, nil
}

// topoSort orders stages so every stage follows its dependencies,
// preserving registration order among independent stages.
func topoSort(stages []Stage, byName map[string]Stage) ([]Stage, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(stages))
	order := make([]Stage, 0, len(stages))

	var visit func(s Stage) error
	visit = func(s Stage) error {
		switch state[s.Name()] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle through stage %q", s.Name())
		}
		state[s.Name()] = visiting
		for _, dep := range s.DependsOn() {
			if err := visit(byName[dep]); err != nil {
				return err
			}
		}
		state[s.Name()] = done
		order = append(order, s)
		return nil
	}

	for _, s := range stages {
		if err := visit(s); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Order returns the stage names in execution order.
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.order))
	for i, s := range p.order {
		names[i] = s.Name()
	}
	return names
}

// Run executes the pipeline over the state. A stage error aborts the run
// and is returned wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context, state *ResearchState) error {
	for _, stage := range p.order {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		logger := logging.WithStage(logging.WithSymbol(p.logger, state.Symbol), stage.Name())
		logger.Debug().Msg("Stage started")

		// Stages read the stage-scoped logger from the context
		if err := stage.Run(logging.WithLogger(ctx, logger), state); err != nil {
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Stage failed")
			return apperrors.NewAgentError(stage.Name(), "run", err)
		}

		logger.Debug().Dur("duration", time.Since(start)).Msg("Stage completed")
	}
	return nil
}
