// internal/stages/externalsimilarity/handler.go
package externalsimilarity

import (
	"context"
	"fmt"
	"strings"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/metrics"
	"review-pipeline/internal/corpus"
	"review-pipeline/internal/judge"
	"review-pipeline/internal/models"
	"review-pipeline/internal/similarity"
)

const StageName = "EXTERNAL_IDEA"

// Judge is the optional remote similarity service. A failing or malformed
// judge response never approves by default; the deterministic algorithm
// below always runs instead.
type Judge interface {
	Evaluate(ctx context.Context, app *models.Application, entries []models.CorpusEntry) (*judge.Response, error)
}

// Handler checks the application against the prior-art corpus in two phases:
// a name match followed by concept comparison, then a corpus-wide weighted
// concept scan.
type Handler struct {
	config   *Config
	provider corpus.Provider
	judge    Judge
	logger   logger.Logger
}

func NewHandler(config *Config, provider corpus.Provider, remoteJudge Judge, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		provider: provider,
		judge:    remoteJudge,
		logger:   log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

func (h *Handler) Evaluate(ctx context.Context, app *models.Application) (*models.Evaluation, error) {
	entries, err := h.provider.FetchCorpus(ctx, corpus.FetchOptions{Exhaustive: true})
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w", err)
	}

	if h.judge != nil {
		resp, judgeErr := h.judge.Evaluate(ctx, app, entries)
		if judgeErr == nil {
			return h.fromJudgeResponse(app, resp), nil
		}
		metrics.JudgeFallbacks.Inc()
		h.logger.Warn("remote judge unavailable, using deterministic comparison", map[string]interface{}{
			"applicationId": app.ID,
			"error":         judgeErr.Error(),
		})
	}

	return h.evaluateDeterministic(app, entries), nil
}

func (h *Handler) fromJudgeResponse(app *models.Application, resp *judge.Response) *models.Evaluation {
	metadata := map[string]interface{}{
		"source":          "judge",
		"isSimilar":       resp.IsSimilar,
		"similarityScore": resp.SimilarityScore,
	}
	if resp.MostSimilarEntry != nil {
		metadata["mostSimilarEntry"] = resp.MostSimilarEntry
	}
	if len(resp.Suggestions) > 0 {
		metadata["suggestions"] = resp.Suggestions
	}

	h.logger.Info("judge verdict accepted", map[string]interface{}{
		"applicationId":  app.ID,
		"recommendation": resp.Recommendation,
		"score":          resp.SimilarityScore,
	})

	return &models.Evaluation{
		Decision: models.Decision(resp.Recommendation),
		Score:    resp.SimilarityScore,
		Feedback: resp.Feedback,
		Metadata: metadata,
	}
}

func (h *Handler) evaluateDeterministic(app *models.Application, entries []models.CorpusEntry) *models.Evaluation {
	if len(entries) == 0 {
		return &models.Evaluation{
			Decision: models.DecisionApprove,
			Score:    1.0,
			Feedback: "No comparison corpus available",
			Metadata: map[string]interface{}{"source": "deterministic", "corpusSize": 0},
		}
	}

	// Phase 1: name match, then concept comparison against the matched entry.
	if eval := h.namePhase(app, entries); eval != nil {
		return eval
	}

	// Phase 2: weighted concept scan over the whole corpus.
	return h.conceptPhase(app, entries)
}

func (h *Handler) namePhase(app *models.Application, entries []models.CorpusEntry) *models.Evaluation {
	appText := app.Description + " " + app.ProblemStatement

	for i := range entries {
		entry := &entries[i]
		match, ok := h.matchName(app.Title, entry)
		if !ok {
			continue
		}

		entryText := entry.OneLiner + " " + entry.Description
		concept := h.businessConceptSimilarity(appText, entryText)

		threshold := h.config.FuzzyRejectConcept
		if match.Exact {
			threshold = h.config.ExactRejectConcept
		}

		h.logger.Info("corpus name match", map[string]interface{}{
			"applicationId": app.ID,
			"entry":         entry.Name,
			"nameSim":       match.Similarity,
			"conceptSim":    concept,
			"exact":         match.Exact,
		})

		if concept > threshold {
			score := concept
			if match.Exact {
				score = h.config.ExactRejectScore
			}
			return &models.Evaluation{
				Decision: models.DecisionReject,
				Score:    score,
				Feedback: fmt.Sprintf("Name and problem both match existing company %q (name similarity %.2f, concept similarity %.2f)",
					entry.Name, match.Similarity, concept),
				Metadata: map[string]interface{}{
					"source":            "deterministic",
					"phase":             "name",
					"mostSimilarEntry":  entry,
					"nameMatch":         match,
					"conceptSimilarity": concept,
				},
			}
		}
	}
	return nil
}

// matchName compares the title against the entry's canonical and former
// names. A match triggers on fuzzy edit similarity, identical normalized
// forms, or one normalized form containing the other.
func (h *Handler) matchName(title string, entry *models.CorpusEntry) (NameMatch, bool) {
	names := append([]string{entry.Name}, entry.FormerNames...)
	normTitle := similarity.NormalizeName(title)

	for _, name := range names {
		sim := similarity.EditSimilarity(title, name)
		normName := similarity.NormalizeName(name)

		identical := normTitle != "" && normTitle == normName
		contained := h.normalizedContains(normTitle, normName)

		if sim > h.config.NameMatchThreshold || identical || contained {
			return NameMatch{
				EntryName:   entry.Name,
				MatchedName: name,
				Similarity:  sim,
				Exact:       sim > h.config.ExactNameThreshold || identical,
			}, true
		}
	}
	return NameMatch{}, false
}

func (h *Handler) normalizedContains(a, b string) bool {
	shorter := a
	if len(b) < len(a) {
		shorter = b
	}
	if len(shorter) <= h.config.MinContainmentChars {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// businessConceptSimilarity blends general word overlap with a business
// concept keyword boost; used after a name match to confirm the two
// companies solve the same problem.
func (h *Handler) businessConceptSimilarity(appText, entryText string) float64 {
	words := similarity.TokenJaccard(appText, entryText, 4, h.config.Stopwords)
	keywords := similarity.KeywordOverlap(appText, entryText, h.config.BusinessConcept)
	return 0.5*words + 0.5*keywords
}

func (h *Handler) conceptPhase(app *models.Application, entries []models.CorpusEntry) *models.Evaluation {
	problemText := app.ProblemStatement + " " + app.Description
	solutionText := app.Solution + " " + app.Description
	fullText := app.CombinedText() + " " + strings.Join(app.TechStack, " ")

	var best *models.CorpusEntry
	var bestBreakdown ConceptBreakdown
	maxCombined := 0.0

	for i := range entries {
		entry := &entries[i]
		entryText := entry.OneLiner + " " + entry.Description
		entryFull := entryText + " " + strings.Join(entry.Tags, " ") + " " + entry.Industry + " " + entry.Subindustry

		breakdown := ConceptBreakdown{
			Problem:       similarity.KeywordOverlap(problemText, entryText, h.config.BusinessConcept),
			Industry:      similarity.KeywordOverlap(fullText, entryFull, h.config.Industry),
			Solution:      similarity.KeywordOverlap(solutionText, entryText, h.config.Solution),
			Technology:    similarity.KeywordOverlap(fullText, entryFull, h.config.Technology),
			BusinessModel: similarity.KeywordOverlap(fullText, entryFull, h.config.BusinessModel),
		}
		breakdown.Combined = h.config.ProblemWeight*breakdown.Problem +
			h.config.IndustryWeight*breakdown.Industry +
			h.config.SolutionWeight*breakdown.Solution +
			h.config.TechnologyWeight*breakdown.Technology +
			h.config.BusinessModelWeight*breakdown.BusinessModel

		if breakdown.Combined > maxCombined {
			maxCombined = breakdown.Combined
			best = entry
			bestBreakdown = breakdown
		}
	}

	h.logger.Info("corpus concept scan finished", map[string]interface{}{
		"applicationId": app.ID,
		"corpusSize":    len(entries),
		"maxSimilarity": maxCombined,
	})

	if maxCombined > h.config.ConceptRejectThreshold {
		return &models.Evaluation{
			Decision: models.DecisionReject,
			Score:    maxCombined,
			Feedback: fmt.Sprintf("Concept too close to %q: problem %.2f, industry %.2f, solution %.2f, technology %.2f, business model %.2f (combined %.2f)",
				best.Name, bestBreakdown.Problem, bestBreakdown.Industry, bestBreakdown.Solution,
				bestBreakdown.Technology, bestBreakdown.BusinessModel, bestBreakdown.Combined),
			Metadata: map[string]interface{}{
				"source":           "deterministic",
				"phase":            "concept",
				"mostSimilarEntry": best,
				"breakdown":        bestBreakdown,
			},
		}
	}

	metadata := map[string]interface{}{
		"source":        "deterministic",
		"phase":         "concept",
		"corpusSize":    len(entries),
		"maxSimilarity": maxCombined,
	}
	if best != nil {
		metadata["closestEntry"] = best.Name
	}
	return &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    1.0 - maxCombined,
		Feedback: fmt.Sprintf("No disqualifying similarity found across %d corpus entries (max %.2f)", len(entries), maxCombined),
		Metadata: metadata,
	}
}
