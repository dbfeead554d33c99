// Package errors provides standardized error handling for the review pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeReviewNotFound      ErrorCode = "REVIEW_NOT_FOUND"
	ErrCodeInvalidStage        ErrorCode = "INVALID_STAGE"

	ErrCodeInvalidPrecondition ErrorCode = "INVALID_PRECONDITION"
	ErrCodeEvaluatorFailed     ErrorCode = "EVALUATOR_FAILED"
	ErrCodePipelineFailed      ErrorCode = "PIPELINE_FAILED"

	ErrCodeDatabaseQueryFailed ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeCorpusFetchFailed   ErrorCode = "CORPUS_FETCH_FAILED"

	ErrCodeJudgeTimeout       ErrorCode = "JUDGE_TIMEOUT"
	ErrCodeJudgeCallFailed    ErrorCode = "JUDGE_CALL_FAILED"
	ErrCodeJudgeMalformed     ErrorCode = "JUDGE_MALFORMED_RESPONSE"
	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"
)

// StandardError represents a structured pipeline error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets callers match by code with errors.Is against a bare *StandardError.
func (e *StandardError) Is(target error) bool {
	var t *StandardError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the error code, falling back to PIPELINE_FAILED.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodePipelineFailed
}

// IsNotFound reports whether err is any of the not-found codes.
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeApplicationNotFound || code == ErrCodeReviewNotFound
}

// ==========================
// 2. Error Constructors
// ==========================

// NewApplicationNotFoundError indicates the application row does not exist.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   applicationID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReviewNotFoundError indicates no review record exists for the stage.
func NewReviewNotFoundError(applicationID string, stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewNotFound,
		Message:   "Review record not found",
		Details:   fmt.Sprintf("application %s stage %s", applicationID, stage),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStageError indicates an unknown stage name was supplied.
func NewInvalidStageError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStage,
		Message:   "Unknown stage type",
		Details:   stage,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluatorFailedError wraps an exception inside a stage's scoring logic.
func NewEvaluatorFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluatorFailed,
		Message:   fmt.Sprintf("Stage %s evaluation failed", stage),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable store error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Record store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCorpusFetchFailedError creates a retryable corpus provider error.
func NewCorpusFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCorpusFetchFailed,
		Message:   "Corpus fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgeTimeoutError indicates the remote judge exceeded its deadline; the
// deterministic fallback must run.
func NewJudgeTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgeTimeout,
		Message:   "Remote judge timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgeCallFailedError indicates a transport or server-side judge error.
func NewJudgeCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgeCallFailed,
		Message:   "Remote judge call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgeMalformedError indicates an unusable judge response. Never treated
// as an approval.
func NewJudgeMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJudgeMalformed,
		Message:   "Remote judge returned a malformed response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPipelineFailedError wraps an error that escaped per-stage handling.
func NewPipelineFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePipelineFailed,
		Message:   "Pipeline run failed with a system error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
