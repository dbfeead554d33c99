// internal/stages/costanalysis/handler.go
package costanalysis

import (
	"context"
	"fmt"
	"strings"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
)

const StageName = "COST_ANALYSIS"

// Handler estimates what the project would actually cost and compares that
// against the requested budget.
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
	estimate := h.estimate(text, app.TeamSize)

	h.logger.Info("cost estimated", map[string]interface{}{
		"applicationId": app.ID,
		"complexity":    estimate.Complexity,
		"total":         estimate.Total,
	})

	metadata := map[string]interface{}{"estimate": estimate}

	if app.EstimatedCost == nil {
		return &models.Evaluation{
			Decision: models.DecisionApprove,
			Score:    h.config.NoBudgetScore,
			Feedback: fmt.Sprintf("No budget provided; estimated total cost $%.0f", estimate.Total),
			Metadata: metadata,
		}, nil
	}

	budget := *app.EstimatedCost
	metadata["requestedBudget"] = budget

	score := 0.0
	if estimate.Total > 0 {
		score = clamp01(budget / estimate.Total)
	} else {
		score = h.config.NoBudgetScore
	}

	if budget < h.config.FeasibleRatio*estimate.Total {
		variance := 0.0
		if estimate.Total > 0 {
			variance = (estimate.Total - budget) / estimate.Total * 100
		}
		return &models.Evaluation{
			Decision: models.DecisionReject,
			Score:    score,
			Feedback: fmt.Sprintf("Requested budget $%.0f covers too little of the estimated $%.0f cost (%.0f%% short)",
				budget, estimate.Total, variance),
			Metadata: metadata,
		}, nil
	}

	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    score,
		Feedback: fmt.Sprintf("Requested budget $%.0f covers the estimated $%.0f cost", budget, estimate.Total),
		Metadata: metadata,
	}, nil
}

func (h *Handler) estimate(text string, teamSize int) CostEstimate {
	complexity := h.classifyComplexity(text)

	hours := h.config.Cost.ComplexityHours[complexity]
	development := hours * h.config.Cost.HourlyRate
	if teamSize > h.config.TeamSizeCutoff {
		development *= h.config.TeamSizeAdjustment
	}

	infrastructure := 0.0
	for keyword, monthly := range h.config.Cost.InfrastructureMonthly {
		if similarity.ContainsKeyword(text, keyword) {
			infrastructure += monthly * float64(h.config.Cost.InfrastructureMonths)
		}
	}

	thirdParty := 0.0
	for keyword, fee := range h.config.Cost.ThirdPartyFees {
		if similarity.ContainsKeyword(text, keyword) {
			thirdParty += fee
		}
	}

	operational := h.config.Cost.OperationalBase
	switch complexity {
	case "high":
		operational += 100
	case "medium":
		operational += 50
	}
	if teamSize > h.config.TeamSizeCutoff {
		operational += 50
	}

	return CostEstimate{
		Complexity:     complexity,
		Development:    development,
		Infrastructure: infrastructure,
		ThirdParty:     thirdParty,
		Operational:    operational,
		Total:          development + infrastructure + thirdParty + operational,
	}
}

// classifyComplexity buckets the project by complex/moderate technology
// mentions: two complex hits make it high, one complex hit or two moderate
// hits make it medium, anything else is low.
func (h *Handler) classifyComplexity(text string) string {
	complex := similarity.CountAny(text, h.config.Feasibility.ComplexTech)
	moderate := similarity.CountAny(text, h.config.Feasibility.ModerateTech)
	switch {
	case complex >= 2:
		return "high"
	case complex == 1 || moderate >= 2:
		return "medium"
	default:
		return "low"
	}
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
