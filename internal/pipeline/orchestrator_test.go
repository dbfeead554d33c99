// internal/pipeline/orchestrator_test.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "review-pipeline/internal/common/errors"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
	"review-pipeline/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type memStore struct {
	apps    map[string]*models.Application
	reviews []*models.ReviewRecord
	nextID  int
}

func newMemStore(apps ...*models.Application) *memStore {
	s := &memStore{apps: make(map[string]*models.Application)}
	for _, app := range apps {
		s.apps[app.ID] = app
	}
	return s
}

func (s *memStore) GetApplication(_ context.Context, id string) (*models.Application, error) {
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.NewApplicationNotFoundError(id)
	}
	copied := *app
	return &copied, nil
}

func (s *memStore) CreateApplication(_ context.Context, app *models.Application) (string, error) {
	s.apps[app.ID] = app
	return app.ID, nil
}

func (s *memStore) UpdateApplication(_ context.Context, id string, update store.ApplicationUpdate) error {
	app, ok := s.apps[id]
	if !ok {
		return apperrors.NewApplicationNotFoundError(id)
	}
	if update.Status != nil {
		app.Status = *update.Status
	}
	if update.Category != nil {
		app.Category = *update.Category
	}
	if update.RejectionReason != nil {
		app.RejectionReason = *update.RejectionReason
	}
	return nil
}

func (s *memStore) ListActiveApplications(_ context.Context, excludeID string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range s.apps {
		if app.ID != excludeID && app.IsActive {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *memStore) CreateReview(_ context.Context, applicationID string, stage models.StageType) (string, error) {
	s.nextID++
	record := &models.ReviewRecord{
		ID:            fmt.Sprintf("rev-%d", s.nextID),
		ApplicationID: applicationID,
		StageType:     stage,
		Result:        models.ResultPending,
		CreatedAt:     time.Now().UTC(),
	}
	s.reviews = append(s.reviews, record)
	return record.ID, nil
}

func (s *memStore) UpdateReview(_ context.Context, reviewID string, update store.ReviewUpdate) error {
	for _, record := range s.reviews {
		if record.ID == reviewID {
			record.Result = update.Result
			record.Score = update.Score
			record.Feedback = update.Feedback
			record.Metadata = update.Metadata
			record.ErrorMessage = update.ErrorMessage
			record.ProcessedAt = update.ProcessedAt
			return nil
		}
	}
	return apperrors.NewReviewNotFoundError("", reviewID)
}

func (s *memStore) DeleteReviews(_ context.Context, applicationID string, stage models.StageType) error {
	kept := s.reviews[:0]
	for _, record := range s.reviews {
		if record.ApplicationID != applicationID || record.StageType != stage {
			kept = append(kept, record)
		}
	}
	s.reviews = kept
	return nil
}

func (s *memStore) ListReviews(_ context.Context, applicationID string) ([]*models.ReviewRecord, error) {
	var out []*models.ReviewRecord
	for _, record := range s.reviews {
		if record.ApplicationID == applicationID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *memStore) recordsForStage(stage models.StageType) []*models.ReviewRecord {
	var out []*models.ReviewRecord
	for _, record := range s.reviews {
		if record.StageType == stage {
			out = append(out, record)
		}
	}
	return out
}

type stubEvaluator struct {
	eval     *models.Evaluation
	err      error
	panicMsg string
	calls    int
}

func (e *stubEvaluator) Evaluate(_ context.Context, _ *models.Application) (*models.Evaluation, error) {
	e.calls++
	if e.panicMsg != "" {
		panic(e.panicMsg)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.eval, nil
}

func approve(score float64) *stubEvaluator {
	return &stubEvaluator{eval: &models.Evaluation{Decision: models.DecisionApprove, Score: score, Feedback: "ok"}}
}

func allApprove() map[models.StageType]Evaluator {
	evaluators := make(map[models.StageType]Evaluator)
	for _, stage := range models.StageOrder {
		evaluators[stage] = approve(0.9)
	}
	evaluators[models.StageCategorization] = &stubEvaluator{eval: &models.Evaluation{
		Decision: models.DecisionApprove,
		Score:    0.8,
		Feedback: "categorized",
		Metadata: map[string]interface{}{"category": "fintech"},
	}}
	return evaluators
}

type capturingSink struct {
	events []Event
	err    error
}

func (c *capturingSink) Publish(_ context.Context, event Event) error {
	c.events = append(c.events, event)
	return c.err
}

func submittedApp(id string) *models.Application {
	return &models.Application{
		ID:          id,
		SubmitterID: "user-1",
		Title:       "Test Application",
		Status:      models.StatusSubmitted,
		IsActive:    true,
	}
}

func createOrchestrator(t *testing.T, s *memStore, evaluators map[models.StageType]Evaluator, sink EventSink) *Orchestrator {
	return NewOrchestrator(s, evaluators, sink, logger.NewTestLogger(t))
}

// ==========================
// Run Tests
// ==========================

func TestOrchestrator_Run_AllStagesApprove(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	sink := &capturingSink{}
	orch := createOrchestrator(t, s, allApprove(), sink)

	err := orch.Run(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, s.apps["app-1"].Status)
	assert.Equal(t, "fintech", s.apps["app-1"].Category)
	require.Len(t, s.reviews, len(models.StageOrder))
	for _, record := range s.reviews {
		assert.Equal(t, models.ResultApproved, record.Result)
		assert.NotNil(t, record.ProcessedAt)
	}
	assert.Len(t, sink.events, len(models.StageOrder))
	assert.Equal(t, EventStageCompleted, sink.events[0].Type)
}

func TestOrchestrator_Run_StageOrderIsFixed(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{})

	require.NoError(t, orch.Run(context.Background(), "app-1"))

	for i, record := range s.reviews {
		assert.Equal(t, models.StageOrder[i], record.StageType)
	}
}

func TestOrchestrator_Run_RejectionShortCircuits(t *testing.T) {
	evaluators := allApprove()
	evaluators[models.StageInternalIdea] = &stubEvaluator{eval: &models.Evaluation{
		Decision: models.DecisionReject,
		Score:    0.92,
		Feedback: "duplicate of another application",
	}}
	s := newMemStore(submittedApp("app-1"))
	sink := &capturingSink{}
	orch := createOrchestrator(t, s, evaluators, sink)

	err := orch.Run(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, s.apps["app-1"].Status)
	assert.Equal(t, "duplicate of another application", s.apps["app-1"].RejectionReason)

	// Only the two executed stages have records.
	require.Len(t, s.reviews, 2)
	assert.Equal(t, models.StageExternalIdea, s.reviews[0].StageType)
	assert.Equal(t, models.StageInternalIdea, s.reviews[1].StageType)
	assert.Equal(t, models.ResultRejected, s.reviews[1].Result)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, EventApplicationRejected, last.Type)
}

func TestOrchestrator_Run_NonSubmittedIsNoOp(t *testing.T) {
	app := submittedApp("app-1")
	app.Status = models.StatusUnderReview
	s := newMemStore(app)
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{})

	err := orch.Run(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Empty(t, s.reviews)
	assert.Equal(t, models.StatusUnderReview, s.apps["app-1"].Status)
}

func TestOrchestrator_Run_UnknownApplication(t *testing.T) {
	orch := createOrchestrator(t, newMemStore(), allApprove(), &capturingSink{})

	err := orch.Run(context.Background(), "missing")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestOrchestrator_Run_EvaluatorErrorFailsClosed(t *testing.T) {
	evaluators := allApprove()
	evaluators[models.StageImplementation] = &stubEvaluator{err: errors.New("keyword table unreadable")}
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, evaluators, &capturingSink{})

	err := orch.Run(context.Background(), "app-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEvaluatorFailed, apperrors.CodeOf(err))

	records := s.recordsForStage(models.StageImplementation)
	require.Len(t, records, 1)
	assert.Equal(t, models.ResultRejected, records[0].Result)
	assert.Contains(t, records[0].ErrorMessage, "keyword table unreadable")

	// The application stays parked at the failing stage's status.
	assert.Equal(t, models.StatusImplementationReview, s.apps["app-1"].Status)
}

func TestOrchestrator_Run_PanicForcesRejection(t *testing.T) {
	evaluators := allApprove()
	evaluators[models.StageCostAnalysis] = &stubEvaluator{panicMsg: "nil dereference"}
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, evaluators, &capturingSink{})

	err := orch.Run(context.Background(), "app-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePipelineFailed, apperrors.CodeOf(err))
	assert.Equal(t, models.StatusRejected, s.apps["app-1"].Status)
	assert.Contains(t, s.apps["app-1"].RejectionReason, "System error")
}

func TestOrchestrator_Run_SinkFailureDoesNotAffectOutcome(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{err: errors.New("topic gone")})

	err := orch.Run(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, s.apps["app-1"].Status)
}

// ==========================
// RetryStage Tests
// ==========================

func seedCompletedRun(t *testing.T, s *memStore, orch *Orchestrator, appID string) {
	require.NoError(t, orch.Run(context.Background(), appID))
	require.Len(t, s.reviews, len(models.StageOrder))
}

func TestOrchestrator_RetryStage_RecomputesOnlyTargetStage(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	evaluators := allApprove()
	orch := createOrchestrator(t, s, evaluators, &capturingSink{})
	seedCompletedRun(t, s, orch, "app-1")

	before := make(map[models.StageType]string)
	for _, record := range s.reviews {
		before[record.StageType] = record.ID
	}

	err := orch.RetryStage(context.Background(), "app-1", models.StageCategorization)

	require.NoError(t, err)
	// Status lands on the stage after categorization, not on UNDER_REVIEW.
	assert.Equal(t, models.StatusImplementationReview, s.apps["app-1"].Status)

	records := s.recordsForStage(models.StageCategorization)
	require.Len(t, records, 1)
	assert.NotEqual(t, before[models.StageCategorization], records[0].ID)
	assert.Equal(t, models.ResultApproved, records[0].Result)

	// Every other stage keeps its original record.
	for _, stage := range models.StageOrder {
		if stage == models.StageCategorization {
			continue
		}
		kept := s.recordsForStage(stage)
		require.Len(t, kept, 1)
		assert.Equal(t, before[stage], kept[0].ID)
	}
}

func TestOrchestrator_RetryStage_ClearsRejectionReason(t *testing.T) {
	evaluators := allApprove()
	rejecting := &stubEvaluator{eval: &models.Evaluation{
		Decision: models.DecisionReject,
		Score:    0.3,
		Feedback: "budget too small",
	}}
	evaluators[models.StageCostAnalysis] = rejecting
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, evaluators, &capturingSink{})

	require.NoError(t, orch.Run(context.Background(), "app-1"))
	require.Equal(t, models.StatusRejected, s.apps["app-1"].Status)

	rejecting.eval = &models.Evaluation{Decision: models.DecisionApprove, Score: 0.9, Feedback: "ok"}
	err := orch.RetryStage(context.Background(), "app-1", models.StageCostAnalysis)

	require.NoError(t, err)
	assert.Equal(t, models.StatusImpactReview, s.apps["app-1"].Status)
	assert.Empty(t, s.apps["app-1"].RejectionReason)

	// The retry does not resume the remaining stage.
	assert.Empty(t, s.recordsForStage(models.StageImpactAnalysis))
}

func TestOrchestrator_RetryStage_UnknownStage(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{})

	err := orch.RetryStage(context.Background(), "app-1", models.StageType("NOT_A_STAGE"))

	assert.Equal(t, apperrors.ErrCodeInvalidStage, apperrors.CodeOf(err))
}

// ==========================
// Status / Report Tests
// ==========================

func TestOrchestrator_GetStatus_DefaultsToPending(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{})

	status, err := orch.GetStatus(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, 0.0, status.Progress)
	require.Len(t, status.Stages, 6)
	for _, stage := range status.Stages {
		assert.Equal(t, models.ResultPending, stage.Result)
	}
}

func TestOrchestrator_GetStatus_ProgressAfterPartialRun(t *testing.T) {
	evaluators := allApprove()
	evaluators[models.StageCategorization] = &stubEvaluator{eval: &models.Evaluation{
		Decision: models.DecisionReject,
		Score:    0.2,
		Feedback: "stopped here",
	}}
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, evaluators, &capturingSink{})
	require.NoError(t, orch.Run(context.Background(), "app-1"))

	status, err := orch.GetStatus(context.Background(), "app-1")

	require.NoError(t, err)
	assert.InDelta(t, 50.0, status.Progress, 1e-9)
	assert.Equal(t, models.ResultRejected, status.Stages[2].Result)
	assert.Equal(t, models.ResultPending, status.Stages[3].Result)
}

func TestOrchestrator_GetDetailedReport(t *testing.T) {
	s := newMemStore(submittedApp("app-1"))
	orch := createOrchestrator(t, s, allApprove(), &capturingSink{})
	seedCompletedRun(t, s, orch, "app-1")

	report, err := orch.GetDetailedReport(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, "app-1", report.ApplicationID)
	assert.Equal(t, "fintech", report.Category)
	assert.Equal(t, models.StatusUnderReview, report.Status)
	assert.InDelta(t, 100.0, report.Progress, 1e-9)
	require.Len(t, report.Stages, 6)
	assert.Equal(t, "categorized", report.Stages[2].Feedback)
}
