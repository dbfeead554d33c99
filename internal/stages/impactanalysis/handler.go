// internal/stages/impactanalysis/handler.go
package impactanalysis

import (
	"context"
	"fmt"
	"regexp"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
)

const StageName = "IMPACT_ANALYSIS"

// quantifiedFigure matches a number paired with a unit, e.g. "40% cheaper"
// or "2 million users"; such figures earn a severity bonus.
var quantifiedFigure = regexp.MustCompile(`(?i)(\$\s?\d[\d,]*|\d[\d,]*(\.\d+)?\s*(%|percent|million|billion|thousand|hours?|minutes?|days?|users?|customers?|dollars?))`)

// Handler is the last automated gate: does solving this problem matter to
// enough customers to be worth human review time.
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
	text := app.CombinedText()

	breakdown := ScoreBreakdown{
		ProblemSeverity:   h.problemSeverity(text),
		MarketSize:        h.marketSize(text),
		SolutionNovelty:   h.solutionNovelty(text),
		BusinessViability: h.businessViability(app, text),
		UserExperience:    h.userExperience(text),
	}

	total := h.config.SeverityWeight*breakdown.ProblemSeverity +
		h.config.MarketWeight*breakdown.MarketSize +
		h.config.NoveltyWeight*breakdown.SolutionNovelty +
		h.config.ViabilityWeight*breakdown.BusinessViability +
		h.config.UXWeight*breakdown.UserExperience

	h.logger.Info("customer impact scored", map[string]interface{}{
		"applicationId": app.ID,
		"score":         total,
		"breakdown":     breakdown,
	})

	metadata := map[string]interface{}{"breakdown": breakdown}

	if total < h.config.ApproveThreshold {
		return &models.Evaluation{
			Decision: models.DecisionReject,
			Score:    total,
			Feedback: fmt.Sprintf("Customer impact %.2f below threshold: severity %.2f, market %.2f, novelty %.2f, viability %.2f, experience %.2f",
				total, breakdown.ProblemSeverity, breakdown.MarketSize, breakdown.SolutionNovelty,
				breakdown.BusinessViability, breakdown.UserExperience),
			Metadata: metadata,
		}, nil
	}

	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    total,
		Feedback: fmt.Sprintf("Customer impact looks sufficient (score %.2f)", total),
		Metadata: metadata,
	}, nil
}

func (h *Handler) problemSeverity(text string) float64 {
	score := 0.6 + 0.1*float64(similarity.CountAny(text, h.config.Impact.Severity))
	if quantifiedFigure.MatchString(text) {
		score += 0.2
	}
	return clamp01(score)
}

func (h *Handler) marketSize(text string) float64 {
	large := similarity.CountAny(text, h.config.Impact.LargeMarket)
	specific := similarity.CountAny(text, h.config.Impact.SpecificMarket)
	niche := similarity.CountAny(text, h.config.Impact.NicheMarket)
	return clamp01(0.6 + 0.15*float64(large) + 0.05*float64(specific) - 0.15*float64(niche))
}

func (h *Handler) solutionNovelty(text string) float64 {
	innovation := similarity.CountAny(text, h.config.Impact.Innovation)
	improvement := similarity.CountAny(text, h.config.Impact.Improvement)
	existing := similarity.CountAny(text, h.config.Impact.Existing)
	return clamp01(0.6 + 0.15*float64(innovation) + 0.05*float64(improvement) - 0.1*float64(existing))
}

func (h *Handler) businessViability(app *models.Application, text string) float64 {
	revenue := similarity.CountAny(text, h.config.Impact.Revenue)
	scalability := similarity.CountAny(text, h.config.Impact.Scalability)
	sustainability := similarity.CountAny(text, h.config.Impact.Sustainability)
	score := 0.55 + 0.1*float64(revenue) + 0.05*float64(scalability) + 0.05*float64(sustainability)
	if app.EstimatedCost != nil {
		score += 0.1
	}
	return clamp01(score)
}

func (h *Handler) userExperience(text string) float64 {
	positive := similarity.CountAny(text, h.config.Impact.PositiveUX)
	negative := similarity.CountAny(text, h.config.Impact.NegativeUX)
	design := similarity.CountAny(text, h.config.Impact.DesignMention)
	return clamp01(0.7 + 0.1*float64(positive) - 0.1*float64(negative) + 0.05*float64(design))
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
