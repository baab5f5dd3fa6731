package ai

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"

	"industrial-ai-backend/internal/models"
)

// Request is everything the transport needs for one generation call
type Request struct {
	Model       string
	Instruction string
	Schema      *genai.Schema
}

var (
	maintenanceSchema = mustSchema[models.MaintenanceReport]()
	solutionSchema    = mustSchema[models.AutomationSolution]()
)

const maintenanceInstruction = `Analyze the following industrial sensor data for potential maintenance issues.
Data: %s
Provide a concise report including prediction, confidence level (0-100), and specific recommendations.`

const solutionInstruction = `As an industrial automation consultant, suggest a custom solution based on these client requirements: "%s".
%sProvide a solution name, detailed description, list of key hardware/software components, and estimated ROI analysis.`

// BuildMaintenanceRequest embeds the readings as JSON in the maintenance prompt
func BuildMaintenanceRequest(model string, readings []models.SensorReading) (Request, error) {
	if len(readings) == 0 {
		return Request{}, ErrNoReadings
	}
	for i, r := range readings {
		if r.Sensor == "" || !r.Status.Valid() {
			return Request{}, fmt.Errorf("%w: #%d (sensor=%q status=%q)", ErrInvalidReading, i, r.Sensor, r.Status)
		}
	}

	data, err := json.Marshal(readings)
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal sensor readings: %w", err)
	}

	return Request{
		Model:       model,
		Instruction: fmt.Sprintf(maintenanceInstruction, data),
		Schema:      maintenanceSchema,
	}, nil
}

// BuildSolutionRequest interpolates the client's requirements verbatim into
// the consultant prompt. Priority and timeframe are optional.
func BuildSolutionRequest(model string, req models.SolutionRequest) (Request, error) {
	if strings.TrimSpace(req.Requirements) == "" {
		return Request{}, ErrEmptyRequirements
	}

	var extra strings.Builder
	if req.Priority != "" {
		if !slices.Contains(models.Priorities, req.Priority) {
			return Request{}, fmt.Errorf("%w: priority %q", ErrInvalidOption, req.Priority)
		}
		fmt.Fprintf(&extra, "The client's top priority is %s.\n", req.Priority)
	}
	if req.Timeframe != "" {
		if !slices.Contains(models.Timeframes, req.Timeframe) {
			return Request{}, fmt.Errorf("%w: timeframe %q", ErrInvalidOption, req.Timeframe)
		}
		fmt.Fprintf(&extra, "The solution must be delivered within %s.\n", req.Timeframe)
	}

	return Request{
		Model:       model,
		Instruction: fmt.Sprintf(solutionInstruction, req.Requirements, extra.String()),
		Schema:      solutionSchema,
	}, nil
}

// RequiredFields lists the properties the request's schema marks as required
func (r Request) RequiredFields() []string {
	if r.Schema == nil {
		return nil
	}
	return r.Schema.Required
}
