// internal/store/store.go

// Package store gives the pipeline CRUD access to application and review
// rows. The orchestrator and evaluators depend on the RecordStore interface
// only; Postgres is the production implementation.
package store

import (
	"context"
	"time"

	"review-pipeline/internal/models"
)

// ApplicationUpdate carries the only application fields the pipeline is
// allowed to write. Nil fields are left untouched.
type ApplicationUpdate struct {
	Status          *models.ApplicationStatus
	Category        *string
	RejectionReason *string
}

// ReviewUpdate mutates a PENDING review record to its terminal result.
type ReviewUpdate struct {
	Result       models.ReviewResult
	Score        *float64
	Feedback     string
	Metadata     map[string]interface{}
	ErrorMessage string
	ProcessedAt  *time.Time
}

type RecordStore interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	CreateApplication(ctx context.Context, app *models.Application) (string, error)
	UpdateApplication(ctx context.Context, id string, update ApplicationUpdate) error
	// ListActiveApplications returns every active application except the
	// excluded one; used as the internal similarity comparison set.
	ListActiveApplications(ctx context.Context, excludeID string) ([]*models.Application, error)

	CreateReview(ctx context.Context, applicationID string, stage models.StageType) (string, error)
	UpdateReview(ctx context.Context, reviewID string, update ReviewUpdate) error
	DeleteReviews(ctx context.Context, applicationID string, stage models.StageType) error
	ListReviews(ctx context.Context, applicationID string) ([]*models.ReviewRecord, error)
}
