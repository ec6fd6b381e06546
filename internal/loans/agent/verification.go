package agent

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

// Salary-slip band: a request above the pre-approved limit but within
// twice of it needs salary proof before underwriting can conclude.
const (
	slipRequiredRatioFloor   = 1.0
	slipRequiredRatioCeiling = 2.0
)

const verificationTemperature = 0.7

// VerificationAgent confirms KYC from the verified intake fields and
// decides whether the requested amount needs a salary slip.
type VerificationAgent struct {
	llm ports.TextGenerator
	log *logger.Logger
}

func NewVerificationAgent(llm ports.TextGenerator, log *logger.Logger) *VerificationAgent {
	return &VerificationAgent{llm: llm, log: log}
}

func (a *VerificationAgent) Stage() domain.Stage { return domain.StageVerification }

func (a *VerificationAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	if state.VerifiedPhone != "" && state.VerifiedAddress != "" {
		state.KYCVerified = true
	}

	if state.RequestedLoanAmount != nil && state.PreApprovedLimit != nil && *state.PreApprovedLimit > 0 {
		ratio := *state.RequestedLoanAmount / *state.PreApprovedLimit
		state.SalarySlipRequired = ratio > slipRequiredRatioFloor && ratio <= slipRequiredRatioCeiling
	}

	fallbackKey := "verification_no_slip"
	if state.SalarySlipRequired {
		fallbackKey = "verification_with_slip"
	}
	message := generateOrFallback(ctx, a.llm, a.log, "verification message",
		"You are a professional bank verification agent.", buildVerificationPrompt(state),
		verificationTemperature, fallbackText(fallbackKey))
	state.AppendAgentMessage(domain.StageVerification, message)

	state.SetStatus(domain.StatusUnderwriting)
	state.CurrentAgent = domain.StageVerification
	return nil
}
