package agent

import (
	"context"
	"fmt"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/emi"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

// minApprovalCreditScore is the credit floor for approval.
const minApprovalCreditScore = 650

// UnderwritingAgent runs the deterministic credit decision: fetch the
// bureau score, hold for a salary slip when one is required, then approve
// or reject on score and EMI affordability.
type UnderwritingAgent struct {
	bureau ports.CreditBureau
	log    *logger.Logger
}

func NewUnderwritingAgent(bureau ports.CreditBureau, log *logger.Logger) *UnderwritingAgent {
	return &UnderwritingAgent{bureau: bureau, log: log}
}

func (a *UnderwritingAgent) Stage() domain.Stage { return domain.StageUnderwriting }

func (a *UnderwritingAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	if state.CreditScore == nil && a.bureau != nil && state.Phone != "" {
		score, err := a.bureau.Score(ctx, state.Phone)
		if err != nil {
			// The fraud check still runs; the application simply stays in
			// underwriting until the bureau answers on a later turn.
			a.log.ExternalCallFailure("credit-bureau", "score lookup", err)
			state.AppendAgentMessage(domain.StageUnderwriting, fallbackText("underwriting_pending"))
			state.CurrentAgent = domain.StageUnderwriting
			return nil
		}
		state.CreditScore = &score
	}

	if state.SalarySlipRequired && !state.SalarySlipUploaded {
		state.AppendAgentMessage(domain.StageUnderwriting, fallbackText("underwriting_awaiting_slip"))
		state.SetStatus(domain.StatusAwaitingSalarySlip)
		state.CurrentAgent = domain.StageUnderwriting
		return nil
	}

	a.decide(state)
	state.CurrentAgent = domain.StageUnderwriting
	return nil
}

func (a *UnderwritingAgent) decide(state *domain.ApplicationState) {
	if state.CreditScore == nil {
		state.AppendAgentMessage(domain.StageUnderwriting, fallbackText("underwriting_pending"))
		return
	}

	score := *state.CreditScore
	if score < minApprovalCreditScore {
		reason := fmt.Sprintf("Credit score %d is below the minimum of %d required for approval.", score, minApprovalCreditScore)
		state.SetRejected(reason)
		state.AppendAgentMessage(domain.StageUnderwriting,
			fmt.Sprintf("We are sorry, your application could not be approved. %s", reason))
		return
	}

	if state.MonthlySalary != nil && state.CalculatedEMI != nil {
		affordable, ratio, err := emi.IsAffordable(*state.CalculatedEMI, *state.MonthlySalary, emi.DefaultMaxRatio)
		if err != nil {
			a.log.Warn("affordability check failed", "error", err.Error())
		} else if !affordable {
			reason := fmt.Sprintf("EMI is %.1f%% of monthly salary, above the allowed %.0f%%.", ratio, emi.DefaultMaxRatio*100)
			state.SetRejected(reason)
			state.AppendAgentMessage(domain.StageUnderwriting,
				fmt.Sprintf("We are sorry, your application could not be approved. %s", reason))
			return
		}
	}

	state.SetStatus(domain.StatusApproved)
	state.AppendAgentMessage(domain.StageUnderwriting,
		fmt.Sprintf("Good news! Your credit check is complete (score %d) and your application is approved, pending our final compliance check.", score))
}
