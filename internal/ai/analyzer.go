package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/models"
)

// AnalyzerConfig selects the model for each flow
type AnalyzerConfig struct {
	MaintenanceModel  string
	ConfiguratorModel string

	// StrictFields rejects replies that omit required fields
	StrictFields bool
}

// Analyzer runs the build → generate → parse pipeline for both AI views.
// Failures come back as *TransportError or *ParseError.
type Analyzer struct {
	transport Transport
	config    AnalyzerConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyzer creates an analyzer on top of transport
func NewAnalyzer(transport Transport, config AnalyzerConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		transport: transport,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// AnalyzeMaintenance asks the maintenance model for a report on readings
func (a *Analyzer) AnalyzeMaintenance(ctx context.Context, deviceID string, readings []models.SensorReading) (*models.MaintenanceReport, error) {
	req, err := BuildMaintenanceRequest(a.config.MaintenanceModel, readings)
	if err != nil {
		return nil, err
	}

	report, err := generate[models.MaintenanceReport](ctx, a, req)
	if err != nil {
		return nil, err
	}

	if report.Confidence < 0 || report.Confidence > 100 {
		a.logger.Warn("Confidence outside 0-100",
			zap.String("device_id", deviceID),
			zap.Float64("confidence", report.Confidence))
	}

	report.ID = uuid.NewString()
	report.DeviceID = deviceID
	report.Timestamp = a.now()
	report.Model = req.Model
	return report, nil
}

// ConfigureSolution asks the configurator model for a solution proposal.
// Blank requirements are rejected before anything is sent.
func (a *Analyzer) ConfigureSolution(ctx context.Context, sreq models.SolutionRequest) (*models.AutomationSolution, error) {
	req, err := BuildSolutionRequest(a.config.ConfiguratorModel, sreq)
	if err != nil {
		return nil, err
	}

	solution, err := generate[models.AutomationSolution](ctx, a, req)
	if err != nil {
		return nil, err
	}

	solution.ID = uuid.NewString()
	solution.Timestamp = a.now()
	solution.Model = req.Model
	return solution, nil
}

func generate[T any](ctx context.Context, a *Analyzer, req Request) (*T, error) {
	start := time.Now()

	text, err := a.transport.Generate(ctx, req)
	if err != nil {
		a.logger.Error("Generation failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, &TransportError{Model: req.Model, Err: err}
	}

	result, err := Parse[T](text)
	if err != nil {
		a.logger.Error("Failed to parse Gemini response",
			zap.String("model", req.Model),
			zap.Int("response_len", len(text)),
			zap.Error(err))
		return nil, err
	}

	if missing := MissingFields(text, req.RequiredFields()); len(missing) > 0 {
		if a.config.StrictFields {
			err := &ParseError{Raw: text, Err: fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))}
			a.logger.Error("Failed to parse Gemini response", zap.String("model", req.Model), zap.Error(err))
			return nil, err
		}
		a.logger.Warn("Response is missing required fields",
			zap.String("model", req.Model),
			zap.Strings("missing", missing))
	}

	a.logger.Info("Generation complete",
		zap.String("model", req.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return result, nil
}
