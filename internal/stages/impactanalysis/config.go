// internal/stages/impactanalysis/config.go
package impactanalysis

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	Impact tables.ImpactTables

	SeverityWeight  float64
	MarketWeight    float64
	NoveltyWeight   float64
	ViabilityWeight float64
	UXWeight        float64

	ApproveThreshold float64
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Impact:           t.Impact,
		SeverityWeight:   0.25,
		MarketWeight:     0.2,
		NoveltyWeight:    0.2,
		ViabilityWeight:  0.2,
		UXWeight:         0.15,
		ApproveThreshold: 0.6,
	}
}
