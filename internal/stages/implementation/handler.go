// internal/stages/implementation/handler.go
package implementation

import (
	"context"
	"fmt"
	"strings"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
)

const StageName = "IMPLEMENTATION"

// Handler scores whether the proposed team can plausibly build the proposed
// system: technical complexity, team capability, timeframe, and resource
// requirements, each a clamped keyword heuristic.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

func (h *Handler) Evaluate(_ context.Context, app *models.Application) (*models.Evaluation, error) {
	text := app.CombinedText() + " " + strings.Join(app.TechStack, " ")

	breakdown := ScoreBreakdown{
		TechnicalComplexity:  h.technicalComplexity(text),
		TeamCapability:       h.teamCapability(app, text),
		Timeframe:            h.timeframe(text),
		ResourceRequirements: h.resourceRequirements(text),
	}

	total := h.config.ComplexityWeight*breakdown.TechnicalComplexity +
		h.config.TeamWeight*breakdown.TeamCapability +
		h.config.TimeframeWeight*breakdown.Timeframe +
		h.config.ResourceWeight*breakdown.ResourceRequirements

	h.logger.Info("implementation feasibility scored", map[string]interface{}{
		"applicationId": app.ID,
		"score":         total,
		"breakdown":     breakdown,
	})

	metadata := map[string]interface{}{"breakdown": breakdown}

	if total < h.config.ApproveThreshold {
		return &models.Evaluation{
			Decision: models.DecisionReject,
			Score:    total,
			Feedback: fmt.Sprintf("Implementation feasibility %.2f below threshold; weak areas: %s",
				total, strings.Join(h.weakAreas(breakdown), ", ")),
			Metadata: metadata,
		}, nil
	}

	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    total,
		Feedback: fmt.Sprintf("Implementation looks feasible (score %.2f)", total),
		Metadata: metadata,
	}, nil
}

// technicalComplexity starts at 1.0 and pays for every complex or moderate
// technology mention, earning a little back for simple ones.
func (h *Handler) technicalComplexity(text string) float64 {
	complex := similarity.CountAny(text, h.config.Feasibility.ComplexTech)
	moderate := similarity.CountAny(text, h.config.Feasibility.ModerateTech)
	simple := similarity.CountAny(text, h.config.Feasibility.SimpleTech)
	return clamp01(1.0 - 0.2*float64(complex) - 0.1*float64(moderate) + 0.05*float64(simple))
}

func (h *Handler) teamCapability(app *models.Application, text string) float64 {
	var base float64
	switch {
	case app.TeamSize >= 5:
		base = 1.0
	case app.TeamSize >= 3:
		base = 0.8
	case app.TeamSize >= 2:
		base = 0.6
	default:
		base = 0.3
	}
	if similarity.ContainsAny(text, h.config.Feasibility.Experience) {
		base += 0.2
	}
	return clamp01(base)
}

func (h *Handler) timeframe(text string) float64 {
	complexFeatures := similarity.CountAny(text, h.config.Feasibility.ComplexFeatures)
	quick := similarity.CountAny(text, h.config.Feasibility.QuickFeatures)
	return clamp01(0.8 - 0.1*float64(complexFeatures) + 0.05*float64(quick))
}

func (h *Handler) resourceRequirements(text string) float64 {
	intensive := similarity.CountAny(text, h.config.Feasibility.ResourceIntensive)
	low := similarity.CountAny(text, h.config.Feasibility.LowResource)
	return clamp01(0.8 - 0.15*float64(intensive) + 0.1*float64(low))
}

func (h *Handler) weakAreas(b ScoreBreakdown) []string {
	var weak []string
	if b.TechnicalComplexity < h.config.ApproveThreshold {
		weak = append(weak, "technical complexity")
	}
	if b.TeamCapability < h.config.ApproveThreshold {
		weak = append(weak, "team capability")
	}
	if b.Timeframe < h.config.ApproveThreshold {
		weak = append(weak, "timeframe")
	}
	if b.ResourceRequirements < h.config.ApproveThreshold {
		weak = append(weak, "resource requirements")
	}
	if len(weak) == 0 {
		weak = append(weak, "overall balance")
	}
	return weak
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
