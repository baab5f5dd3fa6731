package models

import "time"

// SolutionRequest holds the client's free-text requirements for the configurator
type SolutionRequest struct {
	Requirements string `json:"requirements"`
	Priority     string `json:"priority,omitempty"`  // e.g. "Energy Efficiency"
	Timeframe    string `json:"timeframe,omitempty"` // e.g. "6-12 Months"
}

// Priorities offered by the configurator form
var Priorities = []string{
	"High Throughput",
	"Energy Efficiency",
	"Maximum Safety",
	"Cost Reduction",
}

// Timeframes offered by the configurator form
var Timeframes = []string{
	"3-6 Months",
	"6-12 Months",
	"1-2 Years",
}

// AutomationSolution is the configurator's proposal
type AutomationSolution struct {
	ID        string    `json:"id,omitempty" schema:"-"`
	Timestamp time.Time `json:"timestamp,omitempty" schema:"-"`
	Model     string    `json:"model,omitempty" schema:"-"`

	Title        string   `json:"title" schema:"Solution name."`
	Description  string   `json:"description" schema:"Detailed description of the solution."`
	Components   []string `json:"components" schema:"Key hardware and software components."`
	EstimatedROI string   `json:"estimatedROI" schema:"Estimated return on investment analysis."`
}
