package agent

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

// SanctionAgent produces the formal approval artifact for an approved
// application. Letter generation is best-effort: a failure is logged and
// retried out of band, never shown as an error to the applicant.
type SanctionAgent struct {
	issuer ports.SanctionIssuer
	log    *logger.Logger
}

func NewSanctionAgent(issuer ports.SanctionIssuer, log *logger.Logger) *SanctionAgent {
	return &SanctionAgent{issuer: issuer, log: log}
}

func (a *SanctionAgent) Stage() domain.Stage { return domain.StageSanction }

func (a *SanctionAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	if state.LoanStatus != domain.StatusApproved {
		state.CurrentAgent = domain.StageSanction
		return nil
	}

	if a.issuer == nil {
		state.AppendAgentMessage(domain.StageSanction, fallbackText("sanction_unavailable"))
		state.CurrentAgent = domain.StageSanction
		return nil
	}

	objectKey, err := a.issuer.Issue(ctx, state)
	if err != nil {
		a.log.ExternalCallFailure("sanction-issuer", "issue letter", err)
		state.AppendAgentMessage(domain.StageSanction, fallbackText("sanction_unavailable"))
		state.CurrentAgent = domain.StageSanction
		return nil
	}

	state.SanctionLetterObjectKey = objectKey
	state.AppendAgentMessage(domain.StageSanction, fallbackText("sanction_issued"))
	state.CurrentAgent = domain.StageSanction
	return nil
}
