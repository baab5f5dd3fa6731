package services

import (
	"context"

	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

// SolutionConfigurator turns plant requirements into a solution proposal
type SolutionConfigurator interface {
	ConfigureSolution(ctx context.Context, req models.SolutionRequest) (*models.AutomationSolution, error)
}

// SolutionStore persists generated solutions
type SolutionStore interface {
	SaveSolution(ctx context.Context, solution *models.AutomationSolution, req models.SolutionRequest) error
}

// ConfiguratorService generates automation solutions and keeps a record of them
type ConfiguratorService struct {
	configurator SolutionConfigurator
	store        SolutionStore // optional
	logger       *zap.Logger
}

func NewConfiguratorService(configurator SolutionConfigurator, store SolutionStore, logger *zap.Logger) *ConfiguratorService {
	return &ConfiguratorService{configurator: configurator, store: store, logger: logger}
}

// Configure generates a solution. A storage failure is logged only.
func (cs *ConfiguratorService) Configure(ctx context.Context, req models.SolutionRequest) (*models.AutomationSolution, error) {
	solution, err := cs.configurator.ConfigureSolution(ctx, req)
	if err != nil {
		return nil, err
	}

	cs.logger.Info("Solution generated",
		zap.String("solution_id", solution.ID),
		zap.String("title", solution.Title),
		zap.Int("components", len(solution.Components)))

	if cs.store != nil {
		if err := cs.store.SaveSolution(ctx, solution, req); err != nil {
			cs.logger.Error("Error saving solution", zap.String("solution_id", solution.ID), zap.Error(err))
		}
	}
	return solution, nil
}
