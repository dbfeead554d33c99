// internal/stages/internalsimilarity/handler.go
package internalsimilarity

import (
	"context"
	"fmt"
	"sort"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
	"review-pipeline/internal/store"
)

const StageName = "INTERNAL_IDEA"

// Handler compares the candidate against every other active, non-draft
// application already in the system and rejects near-duplicates.
type Handler struct {
	config *Config
	store  store.RecordStore
	logger logger.Logger
}

func NewHandler(config *Config, recordStore store.RecordStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  recordStore,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

func (h *Handler) Evaluate(ctx context.Context, app *models.Application) (*models.Evaluation, error) {
	others, err := h.store.ListActiveApplications(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list comparison set: %w", err)
	}

	var matches []Match
	for _, other := range others {
		if other.Status == models.StatusDraft {
			continue
		}
		sim := h.pairSimilarity(app, other)
		if sim > h.config.KeepThreshold {
			matches = append(matches, Match{
				ApplicationID: other.ID,
				Title:         other.Title,
				SubmitterID:   other.SubmitterID,
				Similarity:    sim,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })

	h.logger.Info("internal comparison finished", map[string]interface{}{
		"applicationId": app.ID,
		"compared":      len(others),
		"matches":       len(matches),
	})

	if len(matches) == 0 {
		return &models.Evaluation{
			Decision: models.DecisionApprove,
			Score:    1.0,
			Feedback: "No similar applications found",
			Metadata: map[string]interface{}{"comparedCount": len(others)},
		}, nil
	}

	best := matches[0]
	metadata := map[string]interface{}{
		"comparedCount": len(others),
		"matches":       matches,
	}

	if best.Similarity > h.config.RejectThreshold {
		return &models.Evaluation{
			Decision: models.DecisionReject,
			Score:    best.Similarity,
			Feedback: fmt.Sprintf("Too similar to application %q (%s) submitted by %s: similarity %.2f",
				best.Title, best.ApplicationID, best.SubmitterID, best.Similarity),
			Metadata: metadata,
		}, nil
	}

	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    1.0 - best.Similarity,
		Feedback: fmt.Sprintf("%d similar application(s) found, closest %q at %.2f", len(matches), best.Title, best.Similarity),
		Metadata: metadata,
	}, nil
}

// pairSimilarity blends full-text Jaccard with title edit similarity.
func (h *Handler) pairSimilarity(a, b *models.Application) float64 {
	text := similarity.TokenJaccard(a.CombinedText(), b.CombinedText(), h.config.MinWordLen, h.config.Stopwords)
	title := similarity.EditSimilarity(a.Title, b.Title)
	return h.config.TextWeight*text + h.config.TitleWeight*title
}
