// internal/stages/implementation/config.go
package implementation

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	Feasibility tables.FeasibilityTables

	ComplexityWeight float64
	TeamWeight       float64
	TimeframeWeight  float64
	ResourceWeight   float64

	// ApproveThreshold also flags individual weak sub-scores in feedback.
	ApproveThreshold float64
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Feasibility:      t.Feasibility,
		ComplexityWeight: 0.3,
		TeamWeight:       0.25,
		TimeframeWeight:  0.25,
		ResourceWeight:   0.2,
		ApproveThreshold: 0.6,
	}
}
