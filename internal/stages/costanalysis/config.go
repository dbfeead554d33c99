// internal/stages/costanalysis/config.go
package costanalysis

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	Cost        tables.CostTables
	Feasibility tables.FeasibilityTables

	// TeamSizeAdjustment multiplies development cost when the team is
	// larger than TeamSizeCutoff.
	TeamSizeAdjustment float64
	TeamSizeCutoff     int

	// FeasibleRatio: a budget covering this fraction of the estimate passes.
	FeasibleRatio float64

	// NoBudgetScore is returned when no budget was given.
	NoBudgetScore float64
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Cost:               t.Cost,
		Feasibility:        t.Feasibility,
		TeamSizeAdjustment: 1.2,
		TeamSizeCutoff:     3,
		FeasibleRatio:      0.8,
		NoBudgetScore:      0.5,
	}
}
