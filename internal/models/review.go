// internal/models/review.go
package models

import "time"

// StageType identifies one of the six ordered evaluation stages.
type StageType string

const (
	StageExternalIdea   StageType = "EXTERNAL_IDEA"
	StageInternalIdea   StageType = "INTERNAL_IDEA"
	StageCategorization StageType = "CATEGORIZATION"
	StageImplementation StageType = "IMPLEMENTATION"
	StageCostAnalysis   StageType = "COST_ANALYSIS"
	StageImpactAnalysis StageType = "IMPACT_ANALYSIS"
)

// StageOrder is the fixed execution sequence. Ordering is part of the
// contract: ties and progress reporting depend on it.
var StageOrder = []StageType{
	StageExternalIdea,
	StageInternalIdea,
	StageCategorization,
	StageImplementation,
	StageCostAnalysis,
	StageImpactAnalysis,
}

// StagePrecondition maps each stage to the application status it requires.
// RetryStage resets an application to this status before recomputing.
var StagePrecondition = map[StageType]ApplicationStatus{
	StageExternalIdea:   StatusExternalIdeaReview,
	StageInternalIdea:   StatusInternalIdeaReview,
	StageCategorization: StatusCategorization,
	StageImplementation: StatusImplementationReview,
	StageCostAnalysis:   StatusCostReview,
	StageImpactAnalysis: StatusImpactReview,
}

// NextStatus returns the status an application advances to when the given
// stage approves. The last stage hands off to human review.
func NextStatus(stage StageType) ApplicationStatus {
	for i, s := range StageOrder {
		if s == stage {
			if i+1 < len(StageOrder) {
				return StagePrecondition[StageOrder[i+1]]
			}
			return StatusUnderReview
		}
	}
	return StatusUnderReview
}

// ParseStageType validates a stage name from an API path or config key.
func ParseStageType(s string) (StageType, bool) {
	for _, st := range StageOrder {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ReviewResult is the persisted outcome of one stage run.
type ReviewResult string

const (
	ResultPending  ReviewResult = "PENDING"
	ResultApproved ReviewResult = "APPROVED"
	ResultRejected ReviewResult = "REJECTED"
)

type ReviewRecord struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"applicationId"`
	StageType     StageType              `json:"stageType"`
	Result        ReviewResult           `json:"result"`
	Score         *float64               `json:"score,omitempty"`
	Feedback      string                 `json:"feedback,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	ErrorMessage  string                 `json:"errorMessage,omitempty"`
	ProcessedAt   *time.Time             `json:"processedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// Decision is a stage evaluator's verdict.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Evaluation is the common output contract every stage evaluator produces.
type Evaluation struct {
	Decision Decision               `json:"decision"`
	Score    float64                `json:"score"`
	Feedback string                 `json:"feedback"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
