// internal/models/application.go
package models

import (
	"strings"
	"time"
)

// ApplicationStatus tracks where an application sits in the review pipeline.
type ApplicationStatus string

const (
	StatusDraft                ApplicationStatus = "DRAFT"
	StatusSubmitted            ApplicationStatus = "SUBMITTED"
	StatusExternalIdeaReview   ApplicationStatus = "EXTERNAL_IDEA_REVIEW"
	StatusInternalIdeaReview   ApplicationStatus = "INTERNAL_IDEA_REVIEW"
	StatusCategorization       ApplicationStatus = "CATEGORIZATION"
	StatusImplementationReview ApplicationStatus = "IMPLEMENTATION_REVIEW"
	StatusCostReview           ApplicationStatus = "COST_REVIEW"
	StatusImpactReview         ApplicationStatus = "IMPACT_REVIEW"
	StatusUnderReview          ApplicationStatus = "UNDER_REVIEW"
	StatusRejected             ApplicationStatus = "REJECTED"
)

type Application struct {
	ID               string            `json:"id"`
	SubmitterID      string            `json:"submitterId"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ProblemStatement string            `json:"problemStatement"`
	Solution         string            `json:"solution"`
	TechStack        []string          `json:"techStack"`
	TeamSize         int               `json:"teamSize"`
	TeamMembers      []string          `json:"teamMembers"`
	EstimatedCost    *float64          `json:"estimatedCost,omitempty"`
	Category         string            `json:"category,omitempty"`
	Status           ApplicationStatus `json:"status"`
	RejectionReason  string            `json:"rejectionReason,omitempty"`
	IsActive         bool              `json:"isActive"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// CombinedText joins all free-text fields; evaluators score against this.
func (a *Application) CombinedText() string {
	return strings.Join([]string{a.Title, a.Description, a.ProblemStatement, a.Solution}, " ")
}
