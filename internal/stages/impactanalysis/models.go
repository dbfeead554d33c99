// internal/stages/impactanalysis/models.go
package impactanalysis

// ScoreBreakdown holds the five weighted impact sub-scores.
type ScoreBreakdown struct {
	ProblemSeverity   float64 `json:"problemSeverity"`
	MarketSize        float64 `json:"marketSize"`
	SolutionNovelty   float64 `json:"solutionNovelty"`
	BusinessViability float64 `json:"businessViability"`
	UserExperience    float64 `json:"userExperience"`
}
