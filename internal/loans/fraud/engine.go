package fraud

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
)

// Risk tier boundaries over the aggregated score.
const (
	mediumRiskFloor = 40.0
	highRiskFloor   = 70.0
)

// Per-category score weights.
const (
	salaryFindingWeight   = 20.0
	documentFindingWeight = 10.0
	repeatApplicantWeight = 20.0
	patternFindingWeight  = 10.0

	maxRiskScore = 100.0
)

// Tier buckets the aggregated risk score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Assessment is the aggregate result of one fraud evaluation.
type Assessment struct {
	Findings  []domain.Finding
	RiskScore float64
	Tier      Tier
}

// Engine runs every rule over an application snapshot and aggregates the
// findings into a bounded risk score.
type Engine struct {
	ledger Ledger
}

// NewEngine creates a fraud engine over the given ledger.
func NewEngine(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// Ledger exposes the engine's ledger for rejection recording and stats.
func (e *Engine) Ledger() Ledger {
	return e.ledger
}

// Evaluate runs all rules in the fixed order salary, document, duplicate,
// pattern and returns the findings together with the clamped risk score.
// It does not touch the state; the fraud stage applies the assessment.
func (e *Engine) Evaluate(ctx context.Context, state *domain.ApplicationState) (Assessment, error) {
	salary := salaryAnomalies(state)
	document := documentMismatches(state)

	duplicate, err := duplicateApplication(ctx, e.ledger, state.Phone)
	if err != nil {
		return Assessment{}, err
	}

	pattern, err := suspiciousPatterns(ctx, e.ledger, state)
	if err != nil {
		return Assessment{}, err
	}

	findings := make([]domain.Finding, 0, len(salary)+len(document)+len(duplicate)+len(pattern))
	findings = append(findings, salary...)
	findings = append(findings, document...)
	findings = append(findings, duplicate...)
	findings = append(findings, pattern...)

	score := salaryFindingWeight*float64(len(salary)) +
		documentFindingWeight*float64(len(document)) +
		patternFindingWeight*float64(len(pattern))
	if len(duplicate) > 0 {
		score += repeatApplicantWeight
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}

	return Assessment{
		Findings:  findings,
		RiskScore: score,
		Tier:      TierForScore(score),
	}, nil
}

// TierForScore buckets a risk score: below 40 low, 40 to below 70 medium,
// 70 and above high.
func TierForScore(score float64) Tier {
	switch {
	case score >= highRiskFloor:
		return TierHigh
	case score >= mediumRiskFloor:
		return TierMedium
	default:
		return TierLow
	}
}
