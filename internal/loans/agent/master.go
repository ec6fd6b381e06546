package agent

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/platform/logger"
)

// MasterAgent opens and closes the conversation. As the entry stage it
// greets the applicant and moves a fresh application into negotiation; as
// the closing stage it summarizes the outcome and marks the workflow
// complete. The same implementation serves both stage identities.
type MasterAgent struct {
	log   *logger.Logger
	final bool
}

func NewMasterAgent(log *logger.Logger) *MasterAgent {
	return &MasterAgent{log: log}
}

func NewMasterFinalAgent(log *logger.Logger) *MasterAgent {
	return &MasterAgent{log: log, final: true}
}

func (a *MasterAgent) Stage() domain.Stage {
	if a.final {
		return domain.StageMasterFinal
	}
	return domain.StageMaster
}

func (a *MasterAgent) Run(_ context.Context, state *domain.ApplicationState) error {
	if a.final {
		a.close(state)
		return nil
	}

	if state.LoanStatus == domain.StatusInitial {
		// Intake details double as verified KYC fields until a CRM lookup
		// replaces them.
		if state.VerifiedPhone == "" {
			state.VerifiedPhone = state.Phone
		}
		if !hasAssistantMessage(state) {
			state.AppendAgentMessage(domain.StageMaster, fallbackText("master_greeting"))
		}
		state.SetStatus(domain.StatusNegotiating)
	}

	state.CurrentAgent = domain.StageMaster
	return nil
}

func (a *MasterAgent) close(state *domain.ApplicationState) {
	var closing string
	switch state.LoanStatus {
	case domain.StatusApproved:
		closing = fallbackText("closing_approved")
	case domain.StatusManualReviewFraud:
		closing = fallbackText("closing_manual_review")
	case domain.StatusAwaitingSalarySlip:
		closing = fallbackText("closing_awaiting_slip")
	default:
		closing = fallbackText("closing_other")
	}

	state.AppendAgentMessage(domain.StageMasterFinal, closing)
	state.CurrentAgent = domain.StageMasterFinal

	// Waiting on a salary slip is a pause, not an outcome. The session
	// must stay open so the upload can resume underwriting.
	if state.LoanStatus != domain.StatusAwaitingSalarySlip {
		state.WorkflowComplete = true
	}
}

func hasAssistantMessage(state *domain.ApplicationState) bool {
	for _, m := range state.Messages {
		if m.Role == domain.RoleAssistant {
			return true
		}
	}
	return false
}
