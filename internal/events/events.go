// Package events defines the domain events published by the loan
// pipeline. Observers (email delivery, logging, dashboards) subscribe via
// the platform event bus and never call back into the pipeline.
package events

import (
	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/platform/events"
)

// Event names.
const (
	ApplicationStartedName  = "loans.application.started"
	StageCompletedName      = "loans.stage.completed"
	ApplicationRejectedName = "loans.application.rejected"
	ManualReviewName        = "loans.application.manual_review"
	SanctionIssuedName      = "loans.sanction.issued"
)

// ApplicationStarted fires when a new session begins.
type ApplicationStarted struct {
	events.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	Phone     string    `json:"phone"`
}

func (e ApplicationStarted) EventName() string { return ApplicationStartedName }

// StageCompleted fires after each pipeline stage finishes its turn.
type StageCompleted struct {
	events.BaseEvent
	SessionID uuid.UUID         `json:"session_id"`
	Stage     domain.Stage      `json:"stage"`
	Status    domain.LoanStatus `json:"status"`
}

func (e StageCompleted) EventName() string { return StageCompletedName }

// ApplicationRejected fires once when an application reaches the rejected
// status. The rejection ledger is updated by its subscriber exactly once.
type ApplicationRejected struct {
	events.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason"`
	RiskScore float64   `json:"risk_score"`
}

func (e ApplicationRejected) EventName() string { return ApplicationRejectedName }

// ManualReviewRequired fires when fraud scoring routes an application to
// manual review.
type ManualReviewRequired struct {
	events.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	RiskScore float64   `json:"risk_score"`
}

func (e ManualReviewRequired) EventName() string { return ManualReviewName }

// SanctionIssued fires when the sanction letter has been generated and
// stored.
type SanctionIssued struct {
	events.BaseEvent
	SessionID uuid.UUID `json:"session_id"`
	Phone     string    `json:"phone"`
	ObjectKey string    `json:"object_key"`
}

func (e SanctionIssued) EventName() string { return SanctionIssuedName }
