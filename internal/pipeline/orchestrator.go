// internal/pipeline/orchestrator.go

// Package pipeline sequences the six review stages over an application,
// persists every stage outcome, and drives the application status state
// machine. Stages run strictly in order; the first rejection aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	apperrors "review-pipeline/internal/common/errors"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/metrics"
	"review-pipeline/internal/models"
	"review-pipeline/internal/store"
)

// Evaluator is the common contract all six stage handlers implement.
type Evaluator interface {
	Evaluate(ctx context.Context, app *models.Application) (*models.Evaluation, error)
}

type Orchestrator struct {
	store      store.RecordStore
	evaluators map[models.StageType]Evaluator
	sink       EventSink
	logger     logger.Logger
}

func NewOrchestrator(recordStore store.RecordStore, evaluators map[models.StageType]Evaluator, sink EventSink, log logger.Logger) *Orchestrator {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Orchestrator{
		store:      recordStore,
		evaluators: evaluators,
		sink:       sink,
		logger:     log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Run drives a SUBMITTED application through all six stages. Calling it on
// an application in any other status is a no-op. A panic escaping a stage
// forces the application to REJECTED with a system-error reason.
func (o *Orchestrator) Run(ctx context.Context, applicationID string) (err error) {
	metrics.PipelineRunsStarted.Inc()

	app, err := o.store.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != models.StatusSubmitted {
		o.logger.Warn("run skipped: application not in SUBMITTED status", map[string]interface{}{
			"applicationId": applicationID,
			"status":        app.Status,
		})
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			rejected := models.StatusRejected
			reason := fmt.Sprintf("System error during review: %v", r)
			if updateErr := o.store.UpdateApplication(ctx, applicationID, store.ApplicationUpdate{
				Status:          &rejected,
				RejectionReason: &reason,
			}); updateErr != nil {
				o.logger.Error("failed to mark application rejected after panic", map[string]interface{}{
					"applicationId": applicationID,
					"error":         updateErr.Error(),
				})
			}
			metrics.PipelineRunsCompleted.WithLabelValues("error").Inc()
			err = apperrors.NewPipelineFailedError(fmt.Errorf("panic: %v", r))
		}
	}()

	o.logger.Info("pipeline run started", map[string]interface{}{"applicationId": applicationID})

	for _, stage := range models.StageOrder {
		eval, stageErr := o.runStage(ctx, app, stage)
		if stageErr != nil {
			metrics.PipelineRunsCompleted.WithLabelValues("failed").Inc()
			return stageErr
		}
		if eval.Decision == models.DecisionReject {
			o.logger.Info("pipeline run stopped on rejection", map[string]interface{}{
				"applicationId": applicationID,
				"stage":         stage,
				"score":         eval.Score,
			})
			metrics.PipelineRunsCompleted.WithLabelValues("rejected").Inc()
			return nil
		}

		// Re-read before the next stage so an out-of-band rejection stops
		// the run.
		app, stageErr = o.store.GetApplication(ctx, applicationID)
		if stageErr != nil {
			metrics.PipelineRunsCompleted.WithLabelValues("failed").Inc()
			return stageErr
		}
		if app.Status == models.StatusRejected {
			metrics.PipelineRunsCompleted.WithLabelValues("rejected").Inc()
			return nil
		}
	}

	o.logger.Info("pipeline run finished, application awaiting human review", map[string]interface{}{
		"applicationId": applicationID,
	})
	metrics.PipelineRunsCompleted.WithLabelValues("approved").Inc()
	return nil
}

// RetryStage recomputes exactly one stage: the stage's prior records are
// deleted, the application resets to the stage's precondition status, and
// only that evaluator runs. Later stages are left untouched and are not
// resumed automatically.
func (o *Orchestrator) RetryStage(ctx context.Context, applicationID string, stage models.StageType) error {
	if _, ok := o.evaluators[stage]; !ok {
		return apperrors.NewInvalidStageError(string(stage))
	}

	app, err := o.store.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	if err := o.store.DeleteReviews(ctx, applicationID, stage); err != nil {
		return err
	}

	precondition := models.StagePrecondition[stage]
	clearReason := ""
	if err := o.store.UpdateApplication(ctx, applicationID, store.ApplicationUpdate{
		Status:          &precondition,
		RejectionReason: &clearReason,
	}); err != nil {
		return err
	}
	app.Status = precondition
	app.RejectionReason = ""

	o.logger.Info("stage retry started", map[string]interface{}{
		"applicationId": applicationID,
		"stage":         stage,
	})

	_, err = o.runStage(ctx, app, stage)
	return err
}

// runStage creates the PENDING record, evaluates, persists the terminal
// result, and applies the application status transition. An evaluator error
// marks the record REJECTED with the error message but leaves the
// application status untouched.
func (o *Orchestrator) runStage(ctx context.Context, app *models.Application, stage models.StageType) (*models.Evaluation, error) {
	evaluator, ok := o.evaluators[stage]
	if !ok {
		return nil, apperrors.NewInvalidStageError(string(stage))
	}

	precondition := models.StagePrecondition[stage]
	if app.Status != precondition {
		if err := o.store.UpdateApplication(ctx, app.ID, store.ApplicationUpdate{Status: &precondition}); err != nil {
			return nil, err
		}
		app.Status = precondition
	}

	reviewID, err := o.store.CreateReview(ctx, app.ID, stage)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	eval, evalErr := evaluator.Evaluate(ctx, app)
	metrics.StageEvaluationDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	processedAt := time.Now().UTC()

	if evalErr != nil {
		metrics.StageEvaluationsFailed.WithLabelValues(string(stage)).Inc()
		if updateErr := o.store.UpdateReview(ctx, reviewID, store.ReviewUpdate{
			Result:       models.ResultRejected,
			ErrorMessage: evalErr.Error(),
			ProcessedAt:  &processedAt,
		}); updateErr != nil {
			o.logger.Error("failed to persist evaluator failure", map[string]interface{}{
				"applicationId": app.ID,
				"stage":         stage,
				"error":         updateErr.Error(),
			})
		}
		return nil, apperrors.NewEvaluatorFailedError(string(stage), evalErr)
	}

	result := models.ResultApproved
	if eval.Decision == models.DecisionReject {
		result = models.ResultRejected
	}
	score := eval.Score
	if err := o.store.UpdateReview(ctx, reviewID, store.ReviewUpdate{
		Result:      result,
		Score:       &score,
		Feedback:    eval.Feedback,
		Metadata:    eval.Metadata,
		ProcessedAt: &processedAt,
	}); err != nil {
		return nil, err
	}
	metrics.StageEvaluationsCompleted.WithLabelValues(string(stage), string(eval.Decision)).Inc()

	newStatus, err := o.applyTransition(ctx, app, stage, eval)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, stage, app.ID, result, eval, newStatus)
	return eval, nil
}

func (o *Orchestrator) applyTransition(ctx context.Context, app *models.Application, stage models.StageType, eval *models.Evaluation) (models.ApplicationStatus, error) {
	if eval.Decision == models.DecisionReject {
		rejected := models.StatusRejected
		reason := eval.Feedback
		if err := o.store.UpdateApplication(ctx, app.ID, store.ApplicationUpdate{
			Status:          &rejected,
			RejectionReason: &reason,
		}); err != nil {
			return "", err
		}
		return rejected, nil
	}

	next := models.NextStatus(stage)
	update := store.ApplicationUpdate{Status: &next}
	if stage == models.StageCategorization {
		if category, ok := eval.Metadata["category"].(string); ok && category != "" {
			update.Category = &category
		}
	}
	if err := o.store.UpdateApplication(ctx, app.ID, update); err != nil {
		return "", err
	}
	return next, nil
}

func (o *Orchestrator) publish(ctx context.Context, stage models.StageType, applicationID string, result models.ReviewResult, eval *models.Evaluation, status models.ApplicationStatus) {
	eventType := EventStageCompleted
	if result == models.ResultRejected {
		eventType = EventApplicationRejected
	}
	event := Event{
		Type:          eventType,
		ApplicationID: applicationID,
		Stage:         stage,
		Result:        result,
		Score:         eval.Score,
		Status:        status,
		Feedback:      eval.Feedback,
		Timestamp:     time.Now().UTC(),
	}
	if err := o.sink.Publish(ctx, event); err != nil {
		o.logger.Warn("event publish failed", map[string]interface{}{
			"applicationId": applicationID,
			"stage":         stage,
			"error":         err.Error(),
		})
	}
}

// GetStatus joins the six-stage sequence against existing review records.
// Stages with no record report PENDING.
func (o *Orchestrator) GetStatus(ctx context.Context, applicationID string) (*PipelineStatus, error) {
	app, err := o.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	reviews, err := o.store.ListReviews(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	byStage := indexByStage(reviews)
	stages := make([]StageStatus, 0, len(models.StageOrder))
	completed := 0
	for _, stage := range models.StageOrder {
		status := StageStatus{Stage: stage, Result: models.ResultPending}
		if record, ok := byStage[stage]; ok {
			status.Result = record.Result
			status.Score = record.Score
			status.ProcessedAt = record.ProcessedAt
			if record.Result != models.ResultPending {
				completed++
			}
		}
		stages = append(stages, status)
	}

	return &PipelineStatus{
		ApplicationID: applicationID,
		Status:        app.Status,
		Stages:        stages,
		Progress:      float64(completed) / float64(len(models.StageOrder)) * 100,
	}, nil
}

// GetDetailedReport returns the full per-stage outcomes with feedback and
// metadata, plus the application summary.
func (o *Orchestrator) GetDetailedReport(ctx context.Context, applicationID string) (*DetailedReport, error) {
	app, err := o.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	reviews, err := o.store.ListReviews(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	byStage := indexByStage(reviews)
	stages := make([]ReportEntry, 0, len(models.StageOrder))
	completed := 0
	for _, stage := range models.StageOrder {
		entry := ReportEntry{Stage: stage, Result: models.ResultPending}
		if record, ok := byStage[stage]; ok {
			entry.Result = record.Result
			entry.Score = record.Score
			entry.Feedback = record.Feedback
			entry.Metadata = record.Metadata
			entry.ErrorMessage = record.ErrorMessage
			entry.ProcessedAt = record.ProcessedAt
			if record.Result != models.ResultPending {
				completed++
			}
		}
		stages = append(stages, entry)
	}

	return &DetailedReport{
		ApplicationID:   app.ID,
		Title:           app.Title,
		SubmitterID:     app.SubmitterID,
		Category:        app.Category,
		Status:          app.Status,
		RejectionReason: app.RejectionReason,
		Stages:          stages,
		Progress:        float64(completed) / float64(len(models.StageOrder)) * 100,
	}, nil
}

func indexByStage(reviews []*models.ReviewRecord) map[models.StageType]*models.ReviewRecord {
	byStage := make(map[models.StageType]*models.ReviewRecord, len(reviews))
	for _, record := range reviews {
		byStage[record.StageType] = record
	}
	return byStage
}
