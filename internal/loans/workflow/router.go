// Package workflow drives the staged loan pipeline. The router decides
// which stage runs next from the application state alone, and the runner
// executes stages sequentially until the route reaches END.
package workflow

import (
	"credsaathi_backend/internal/loans/domain"
)

// Risk score bands that steer post-fraud routing. Scores at or above
// advisorRiskFloor end the journey with advisory guidance, scores in the
// manual band close out with a human follow-up promise.
const (
	manualReviewRiskFloor = 40.0
	advisorRiskFloor      = 70.0
)

// Next returns the stage that should run after the given stage completed
// against the given state. It never mutates the state. Routing is a pure
// function so the same state always produces the same path.
func Next(after domain.Stage, state *domain.ApplicationState) domain.Stage {
	switch after {
	case domain.StageMaster:
		if state.LoanStatus == domain.StatusNegotiating {
			return domain.StageSales
		}
		return domain.StageEnd

	case domain.StageSales:
		if state.HasLoanTerms() {
			return domain.StageVerification
		}
		return domain.StageEnd

	case domain.StageVerification:
		return domain.StageUnderwriting

	case domain.StageUnderwriting:
		// Fraud screening always runs, including on rejected and
		// slip-pending applications.
		return domain.StageFraud

	case domain.StageFraud:
		switch {
		case state.FraudRiskScore >= advisorRiskFloor || state.LoanStatus == domain.StatusRejected:
			return domain.StageAdvisor
		case state.FraudRiskScore >= manualReviewRiskFloor:
			return domain.StageMasterFinal
		case state.LoanStatus == domain.StatusApproved:
			return domain.StageSanction
		default:
			return domain.StageMasterFinal
		}

	case domain.StageSanction:
		return domain.StageMasterFinal

	case domain.StageAdvisor, domain.StageMasterFinal:
		return domain.StageEnd
	}

	return domain.StageEnd
}
