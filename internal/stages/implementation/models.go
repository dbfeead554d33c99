// internal/stages/implementation/models.go
package implementation

// ScoreBreakdown holds the four weighted feasibility sub-scores.
type ScoreBreakdown struct {
	TechnicalComplexity  float64 `json:"technicalComplexity"`
	TeamCapability       float64 `json:"teamCapability"`
	Timeframe            float64 `json:"timeframe"`
	ResourceRequirements float64 `json:"resourceRequirements"`
}
