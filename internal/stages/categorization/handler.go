// internal/stages/categorization/handler.go
package categorization

import (
	"context"
	"fmt"
	"strings"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
)

const StageName = "CATEGORIZATION"

// Handler assigns a product category by counting whole-word keyword hits
// against an ordered category table. It never rejects.
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
	if len(h.config.Categories) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}
	text := app.CombinedText()

	scores := make([]CategoryScore, 0, len(h.config.Categories))
	best := h.config.Categories[0]
	bestHits := -1
	for _, cat := range h.config.Categories {
		hits := similarity.CountAny(text, cat.Keywords)
		scores = append(scores, CategoryScore{Category: cat.Name, Hits: hits})
		// Strict greater-than keeps the earliest category on ties.
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}

	confidence := h.confidence(text, app.Title, best.Keywords)

	h.logger.Info("application categorized", map[string]interface{}{
		"applicationId": app.ID,
		"category":      best.Name,
		"keywordHits":   bestHits,
		"confidence":    confidence,
	})

	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    confidence,
		Feedback: fmt.Sprintf("Categorized as %s (%d keyword matches, confidence %.2f)", best.Name, bestHits, confidence),
		Metadata: map[string]interface{}{
			"category":       best.Name,
			"confidence":     confidence,
			"categoryScores": scores,
		},
	}, nil
}

// confidence is min(matchingTokenRatio*5, 1) plus a 0.2 bonus when any
// category keyword appears in the title, clamped to [0,1]. A token matches
// when it contains, or is contained by, any keyword of the winning category.
func (h *Handler) confidence(text, title string, keywords []string) float64 {
	tokens := similarity.Tokenize(text, 3, h.config.Stopwords)
	if len(tokens) == 0 {
		return 0
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	matching := 0
	for _, tok := range tokens {
		for _, kw := range lowered {
			if strings.Contains(tok, kw) || strings.Contains(kw, tok) {
				matching++
				break
			}
		}
	}

	ratio := float64(matching) / float64(len(tokens))
	confidence := ratio * 5
	if confidence > 1 {
		confidence = 1
	}
	if similarity.ContainsAny(title, keywords) {
		confidence += 0.2
	}
	return clamp01(confidence)
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
