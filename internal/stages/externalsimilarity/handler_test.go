// internal/stages/externalsimilarity/handler_test.go
package externalsimilarity

import (
	"context"
	"errors"
	"testing"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/corpus"
	"review-pipeline/internal/judge"
	"review-pipeline/internal/models"
	"review-pipeline/internal/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeJudge struct {
	resp *judge.Response
	err  error
}

func (f *fakeJudge) Evaluate(_ context.Context, _ *models.Application, _ []models.CorpusEntry) (*judge.Response, error) {
	return f.resp, f.err
}

func createTestHandler(t *testing.T, entries []models.CorpusEntry, remoteJudge Judge) *Handler {
	return NewHandler(LoadConfig(tables.Defaults()),
		&corpus.StaticProvider{Entries: entries}, remoteJudge, logger.NewTestLogger(t))
}

func circuitHubEntry() models.CorpusEntry {
	return models.CorpusEntry{
		Name:        "CircuitHub",
		OneLiner:    "On-Demand Electronics Manufacturing",
		Description: "On-Demand Electronics Manufacturing",
		Industry:    "manufacturing",
	}
}

func circuitHubApplication() *models.Application {
	return &models.Application{
		ID:          "app-001",
		Title:       "CircuitHub",
		Description: "On-Demand Electronics Manufacturing",
		Status:      models.StatusExternalIdeaReview,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestConfig_WeightsSumToOne(t *testing.T) {
	config := LoadConfig(tables.Defaults())
	sum := config.ProblemWeight + config.IndustryWeight + config.SolutionWeight +
		config.TechnologyWeight + config.BusinessModelWeight
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// ==========================
// Name Phase Tests
// ==========================

func TestHandler_Evaluate_ExactNameAndConceptMatchRejected(t *testing.T) {
	handler := createTestHandler(t, []models.CorpusEntry{circuitHubEntry()}, nil)

	eval, err := handler.Evaluate(context.Background(), circuitHubApplication())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, eval.Decision)
	assert.GreaterOrEqual(t, eval.Score, 0.9)

	entry, ok := eval.Metadata["mostSimilarEntry"].(*models.CorpusEntry)
	require.True(t, ok)
	assert.Equal(t, "CircuitHub", entry.Name)
	assert.Contains(t, eval.Feedback, "CircuitHub")
}

func TestHandler_Evaluate_FormerNameMatches(t *testing.T) {
	entry := circuitHubEntry()
	entry.Name = "Carbide Robotics"
	entry.FormerNames = []string{"CircuitHub"}
	handler := createTestHandler(t, []models.CorpusEntry{entry}, nil)

	eval, err := handler.Evaluate(context.Background(), circuitHubApplication())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, eval.Decision)
	assert.Contains(t, eval.Feedback, "Carbide Robotics")
}

func TestHandler_Evaluate_NameMatchWithDifferentConceptApproved(t *testing.T) {
	entry := models.CorpusEntry{
		Name:        "CircuitHub",
		OneLiner:    "Subscription meal kits for climbers",
		Description: "Weekly nutrition boxes tailored to alpine training plans",
	}
	app := &models.Application{
		ID:          "app-001",
		Title:       "CircuitHub",
		Description: "On-Demand Electronics Manufacturing for hardware startups",
	}
	handler := createTestHandler(t, []models.CorpusEntry{entry}, nil)

	eval, err := handler.Evaluate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, eval.Decision)
}

func TestHandler_MatchName_NormalizedContainment(t *testing.T) {
	handler := createTestHandler(t, nil, nil)
	entry := models.CorpusEntry{Name: "Circuit-Hub Inc"}

	match, ok := handler.matchName("CircuitHub", &entry)

	require.True(t, ok)
	assert.Equal(t, "Circuit-Hub Inc", match.EntryName)
}

func TestHandler_MatchName_ShortNamesDoNotContainMatch(t *testing.T) {
	handler := createTestHandler(t, nil, nil)
	entry := models.CorpusEntry{Name: "Abc"}

	_, ok := handler.matchName("Abc Global Logistics Network", &entry)

	assert.False(t, ok)
}

// ==========================
// Concept Phase Tests
// ==========================

func TestHandler_Evaluate_NoOverlapApproved(t *testing.T) {
	handler := createTestHandler(t, []models.CorpusEntry{circuitHubEntry()}, nil)
	app := &models.Application{
		ID:          "app-002",
		Title:       "Underwater Basket Weaving Tutorial Platform",
		Description: "Handcrafted weaving lessons filmed beneath coral reefs",
	}

	eval, err := handler.Evaluate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, eval.Decision)
	assert.Greater(t, eval.Score, 0.5)
}

func TestHandler_Evaluate_ConceptPhaseRejectsCloseIdea(t *testing.T) {
	entry := models.CorpusEntry{
		Name:        "ShopRocket",
		OneLiner:    "Marketplace platform for retail commerce",
		Description: "A marketplace connecting retail merchants with buyers, monetized by commission and subscription",
		Industry:    "retail",
	}
	app := &models.Application{
		ID:          "app-003",
		Title:       "MerchantLink",
		Description: "A marketplace platform for retail commerce connecting merchants with buyers",
		ProblemStatement: "Retail merchants lack an affordable marketplace; " +
			"existing platforms charge opaque commission",
		Solution: "A marketplace platform with transparent subscription pricing for retail",
	}
	handler := createTestHandler(t, []models.CorpusEntry{entry}, nil)

	eval, err := handler.Evaluate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, eval.Decision)
	assert.Greater(t, eval.Score, 0.4)

	entryOut, ok := eval.Metadata["mostSimilarEntry"].(*models.CorpusEntry)
	require.True(t, ok)
	assert.Equal(t, "ShopRocket", entryOut.Name)
}

func TestHandler_Evaluate_EmptyCorpusApproves(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	eval, err := handler.Evaluate(context.Background(), circuitHubApplication())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, eval.Decision)
	assert.Equal(t, 1.0, eval.Score)
}

// ==========================
// Judge Integration Tests
// ==========================

func TestHandler_Evaluate_JudgeVerdictUsedWhenAvailable(t *testing.T) {
	remoteJudge := &fakeJudge{resp: &judge.Response{
		IsSimilar:       true,
		SimilarityScore: 0.92,
		Recommendation:  "REJECT",
		Feedback:        "Existing company covers this idea",
	}}
	handler := createTestHandler(t, []models.CorpusEntry{circuitHubEntry()}, remoteJudge)

	// An application the deterministic algorithm would approve.
	app := &models.Application{ID: "app-004", Title: "Basket Weaving Lessons", Description: "Fiber art courses"}
	eval, err := handler.Evaluate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, eval.Decision)
	assert.Equal(t, 0.92, eval.Score)
	assert.Equal(t, "judge", eval.Metadata["source"])
}

func TestHandler_Evaluate_JudgeFailureFallsBackDeterministic(t *testing.T) {
	remoteJudge := &fakeJudge{err: errors.New("judge unreachable")}
	handler := createTestHandler(t, []models.CorpusEntry{circuitHubEntry()}, remoteJudge)

	eval, err := handler.Evaluate(context.Background(), circuitHubApplication())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, eval.Decision)
	assert.Equal(t, "deterministic", eval.Metadata["source"])
}
