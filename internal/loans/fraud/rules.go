package fraud

import (
	"context"
	"fmt"

	"credsaathi_backend/internal/loans/domain"
)

const (
	minAcceptableSalary = 10000

	// A salary more than doubling or halving against the figure on record
	// for an existing loan is treated as an impossible jump.
	maxSalaryJumpRatio = 2.0
	minSalaryJumpRatio = 0.5

	riskyCreditScoreCeiling = 600
	riskyEMIRatioPercent    = 40.0
)

// salaryAnomalies flags salaries below the lending floor, required slips
// that were never uploaded, and implausible jumps against the salary on
// record for an existing loan.
func salaryAnomalies(state *domain.ApplicationState) []domain.Finding {
	var findings []domain.Finding

	if state.MonthlySalary != nil && *state.MonthlySalary < minAcceptableSalary {
		findings = append(findings, domain.Finding{
			Type:     domain.FindingLowSalary,
			Message:  fmt.Sprintf("Salary %.0f is below minimum threshold of %d", *state.MonthlySalary, minAcceptableSalary),
			Severity: domain.SeverityHigh,
			Action:   domain.ActionReject,
		})
	}

	if state.SalarySlipRequired && !state.SalarySlipUploaded {
		findings = append(findings, domain.Finding{
			Type:     domain.FindingMissingSalary,
			Message:  "Salary slip required but not uploaded. Manual review needed.",
			Severity: domain.SeverityMedium,
			Action:   domain.ActionManualReview,
		})
	}

	if state.MonthlySalary != nil && state.CurrentLoanDetails != nil && state.CurrentLoanDetails.MonthlySalary > 0 {
		previous := state.CurrentLoanDetails.MonthlySalary
		ratio := *state.MonthlySalary / previous
		if ratio > maxSalaryJumpRatio || ratio < minSalaryJumpRatio {
			findings = append(findings, domain.Finding{
				Type:     domain.FindingSalaryJump,
				Message:  fmt.Sprintf("Suspicious salary change: %.0f to %.0f (%.1fx)", previous, *state.MonthlySalary, ratio),
				Severity: domain.SeverityHigh,
				Action:   domain.ActionManualReview,
			})
		}
	}

	return findings
}

// documentMismatches compares KYC fields against document-extracted data.
// No extracted comparison data exists yet, so this returns nothing; the
// hook stays so OCR-derived name/address comparison can plug in.
func documentMismatches(_ *domain.ApplicationState) []domain.Finding {
	return nil
}

// duplicateApplication flags phones with repeatThreshold or more prior
// rejections in the ledger.
func duplicateApplication(ctx context.Context, ledger Ledger, phoneNumber string) ([]domain.Finding, error) {
	if phoneNumber == "" {
		return nil, nil
	}

	count, err := ledger.RejectionCount(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if !IsRepeat(count) {
		return nil, nil
	}

	return []domain.Finding{{
		Type:     domain.FindingDuplicateApplication,
		Message:  fmt.Sprintf("Phone %s has %d previous rejections. Repeat applicant detected.", phoneNumber, count),
		Severity: domain.SeverityHigh,
		Action:   domain.ActionManualReview,
	}}, nil
}

// suspiciousPatterns flags addresses known to the ledger and the
// low-credit high-EMI profile combination.
func suspiciousPatterns(ctx context.Context, ledger Ledger, state *domain.ApplicationState) ([]domain.Finding, error) {
	var findings []domain.Finding

	if state.VerifiedAddress != "" {
		flagged, err := ledger.IsSuspiciousAddress(ctx, state.VerifiedAddress)
		if err != nil {
			return nil, err
		}
		if flagged {
			findings = append(findings, domain.Finding{
				Type:     domain.FindingSuspiciousAddress,
				Message:  "Address flagged as suspicious in fraud database.",
				Severity: domain.SeverityHigh,
				Action:   domain.ActionManualReview,
			})
		}
	}

	if state.CreditScore != nil && state.CalculatedEMI != nil &&
		state.MonthlySalary != nil && *state.MonthlySalary > 0 {
		emiRatio := *state.CalculatedEMI / *state.MonthlySalary * 100
		if *state.CreditScore < riskyCreditScoreCeiling && emiRatio > riskyEMIRatioPercent {
			findings = append(findings, domain.Finding{
				Type:     domain.FindingRiskyProfile,
				Message:  fmt.Sprintf("Low credit score (%d) with high EMI ratio (%.1f%%). Risky profile.", *state.CreditScore, emiRatio),
				Severity: domain.SeverityMedium,
				Action:   domain.ActionManualReview,
			})
		}
	}

	return findings, nil
}
