// internal/pipeline/models.go
package pipeline

import (
	"time"

	"review-pipeline/internal/models"
)

// StageStatus is one row of the six-stage progress view.
type StageStatus struct {
	Stage       models.StageType    `json:"stage"`
	Result      models.ReviewResult `json:"result"`
	Score       *float64            `json:"score,omitempty"`
	ProcessedAt *time.Time          `json:"processedAt,omitempty"`
}

// PipelineStatus is the read-only summary returned by GetStatus.
type PipelineStatus struct {
	ApplicationID string                   `json:"applicationId"`
	Status        models.ApplicationStatus `json:"status"`
	Stages        []StageStatus            `json:"stages"`
	Progress      float64                  `json:"progress"`
}

// ReportEntry is one stage's full outcome in the detailed report.
type ReportEntry struct {
	Stage        models.StageType       `json:"stage"`
	Result       models.ReviewResult    `json:"result"`
	Score        *float64               `json:"score,omitempty"`
	Feedback     string                 `json:"feedback,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	ProcessedAt  *time.Time             `json:"processedAt,omitempty"`
}

// DetailedReport joins the application summary with every stage outcome.
type DetailedReport struct {
	ApplicationID   string                   `json:"applicationId"`
	Title           string                   `json:"title"`
	SubmitterID     string                   `json:"submitterId"`
	Category        string                   `json:"category,omitempty"`
	Status          models.ApplicationStatus `json:"status"`
	RejectionReason string                   `json:"rejectionReason,omitempty"`
	Stages          []ReportEntry            `json:"stages"`
	Progress        float64                  `json:"progress"`
}
