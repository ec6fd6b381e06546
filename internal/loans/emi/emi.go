// Package emi provides the pure numeric core of the loan pipeline:
// installment computation, repayment totals, affordability checks and
// tenure suggestions.
package emi

import (
	"fmt"
	"math"

	"credsaathi_backend/platform/apperr"
)

// DefaultMaxRatio is the affordability ceiling: EMI may consume at most
// half of declared monthly salary.
const DefaultMaxRatio = 0.5

// ComputeEMI returns the equated monthly installment for an amortizing
// loan, rounded to 2 decimals. A zero annual rate degrades to straight
// principal division.
func ComputeEMI(principal, annualRatePercent float64, tenureMonths int) (float64, error) {
	if principal <= 0 {
		return 0, apperr.InvalidInput("principal must be positive")
	}
	if tenureMonths <= 0 {
		return 0, apperr.InvalidInput("tenure must be positive")
	}
	if annualRatePercent < 0 {
		return 0, apperr.InvalidInput("annual rate must not be negative")
	}

	monthlyRate := annualRatePercent / 12 / 100
	n := float64(tenureMonths)

	if monthlyRate == 0 {
		return round2(principal / n), nil
	}

	factor := math.Pow(1+monthlyRate, n)
	installment := principal * monthlyRate * factor / (factor - 1)
	return round2(installment), nil
}

// TotalRepayment is the sum of all installments over the tenure.
func TotalRepayment(installment float64, tenureMonths int) float64 {
	return round2(installment * float64(tenureMonths))
}

// TotalInterest is the cost of the loan above the principal.
func TotalInterest(principal, totalRepayment float64) float64 {
	return round2(totalRepayment - principal)
}

// IsAffordable reports whether the installment fits within maxRatio of
// monthly salary, along with the installment-to-salary ratio in percent.
func IsAffordable(installment, monthlySalary, maxRatio float64) (bool, float64, error) {
	if monthlySalary <= 0 {
		return false, 0, apperr.InvalidInput("invalid salary")
	}
	ratioPercent := round2(installment / monthlySalary * 100)
	return installment/monthlySalary <= maxRatio, ratioPercent, nil
}

// TenureSuggestion is the result of scanning candidate tenures for an
// affordable installment.
type TenureSuggestion struct {
	TenureMonths int
	EMI          float64
	Affordable   bool
	Note         string
}

const (
	minCandidateTenure  = 12
	maxCandidateTenure  = 120
	candidateTenureStep = 12
)

// SuggestAffordableTenure scans tenures 12, 24, ... 120 months in order and
// returns the first whose installment stays within maxRatio of salary. When
// none qualifies it returns the 120-month result flagged not affordable.
func SuggestAffordableTenure(principal, annualRatePercent, monthlySalary, maxRatio float64) (TenureSuggestion, error) {
	if monthlySalary <= 0 {
		return TenureSuggestion{}, apperr.InvalidInput("invalid salary")
	}

	ceiling := monthlySalary * maxRatio
	var last TenureSuggestion

	for tenure := minCandidateTenure; tenure <= maxCandidateTenure; tenure += candidateTenureStep {
		installment, err := ComputeEMI(principal, annualRatePercent, tenure)
		if err != nil {
			return TenureSuggestion{}, err
		}
		last = TenureSuggestion{
			TenureMonths: tenure,
			EMI:          installment,
			Affordable:   installment <= ceiling,
		}
		if last.Affordable {
			return last, nil
		}
	}

	last.Note = fmt.Sprintf("no affordable tenure found within %d months", maxCandidateTenure)
	return last, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
