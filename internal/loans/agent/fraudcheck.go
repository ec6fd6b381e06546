package agent

import (
	"context"
	"fmt"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/fraud"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

const fraudAlertTemperature = 0.3

// FraudCheckAgent runs the rule engine over the application and applies
// the assessment: score and findings onto the state, rejection at high
// risk, manual review at medium risk.
type FraudCheckAgent struct {
	engine *fraud.Engine
	llm    ports.TextGenerator
	log    *logger.Logger
}

func NewFraudCheckAgent(engine *fraud.Engine, llm ports.TextGenerator, log *logger.Logger) *FraudCheckAgent {
	return &FraudCheckAgent{engine: engine, llm: llm, log: log}
}

func (a *FraudCheckAgent) Stage() domain.Stage { return domain.StageFraud }

func (a *FraudCheckAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	assessment, err := a.engine.Evaluate(ctx, state)
	if err != nil {
		return err
	}

	state.FraudRiskScore = assessment.RiskScore
	state.FraudFlags = assessment.Findings
	state.FraudDetected = len(assessment.Findings) > 0

	if state.FraudDetected {
		if ledgerErr := a.engine.Ledger().RecordFlagged(ctx, state.SessionID.String()); ledgerErr != nil {
			a.log.Warn("recording flagged application failed", "error", ledgerErr.Error())
		}

		fallbackAlert := fmt.Sprintf("Fraud alert: Risk score %.0f/100. Manual review recommended.", assessment.RiskScore)
		alert := generateOrFallback(ctx, a.llm, a.log, "fraud alert",
			"You are a professional BFSI fraud detection analyst.",
			buildFraudAlertPrompt(state, assessment.Findings, assessment.RiskScore),
			fraudAlertTemperature, fallbackAlert)
		state.AppendAgentMessage(domain.StageFraud, alert)
	} else {
		state.AppendAgentMessage(domain.StageFraud, fallbackText("fraud_clean"))
	}

	switch assessment.Tier {
	case fraud.TierHigh:
		state.SetRejected(fmt.Sprintf("Application rejected due to fraud detection. Risk score: %.0f/100", assessment.RiskScore))
	case fraud.TierMedium:
		state.SetStatus(domain.StatusManualReviewFraud)
	}

	state.CurrentAgent = domain.StageFraud
	return nil
}
