package agent

import (
	"fmt"
	"strings"

	"credsaathi_backend/internal/loans/domain"
)

func orUnknown(v any) string {
	switch t := v.(type) {
	case *float64:
		if t == nil {
			return "unknown"
		}
		return fmt.Sprintf("%.0f", *t)
	case *int:
		if t == nil {
			return "unknown"
		}
		return fmt.Sprintf("%d", *t)
	case *string:
		if t == nil {
			return "unknown"
		}
		return *t
	case string:
		if t == "" {
			return "unknown"
		}
		return t
	default:
		return "unknown"
	}
}

// buildExtractionPrompt asks the model to turn the latest utterance into a
// structured JSON record of loan details. The contract with the model is
// strict JSON so the decode failure path is the only fallback we need.
func buildExtractionPrompt(state *domain.ApplicationState, userMessage string) string {
	recentHistory := strings.Join(state.RecentUserInputs, "\n")

	return fmt.Sprintf(`You are a BFSI Sales Agent for CredSaathi.

CURRENT_KNOWN_DATA:
- loan_amount: %s
- tenure_months: %s
- loan_purpose: %s

RECENT_USER_MESSAGES:
%s

TASKS:
1. Extract loan details from the latest user message (and earlier context if needed).
2. Detect user sentiment (positive / neutral / confused / stressed).
3. Suggest next question ONLY for fields that are still unknown.
4. Return ONLY valid JSON (no markdown, no explanation).

CONSTRAINTS:
- loan_purpose must be a legitimate financial purpose (e.g. education, medical, home renovation, travel, wedding, debt consolidation, business).
- If the user mentions illegal or harmful activity (robbery, scams, drugs, etc.), do NOT accept that as loan_purpose. In that case set "loan_purpose": null and "next_question": "We cannot provide loans for illegal purposes. Could you please share a valid purpose for your loan?"
- If loan_amount, tenure_months, and loan_purpose are all known, keep "next_question" as "".
- Infer numbers from phrases like "10 lakh" (= 1000000) or "5L" (= 500000).

LATEST_USER_MESSAGE:
"%s"

JSON FORMAT:
{
  "loan_amount": null,
  "tenure_months": null,
  "loan_purpose": null,
  "sentiment": "neutral",
  "next_question": ""
}`,
		orUnknown(state.RequestedLoanAmount),
		orUnknown(state.RequestedTenure),
		orUnknown(state.LoanPurpose),
		recentHistory,
		userMessage)
}

// buildPitchPrompt asks for the persuasive confirmation pitch once all loan
// terms are known.
func buildPitchPrompt(state *domain.ApplicationState) string {
	return fmt.Sprintf(`You are a persuasive BFSI sales officer for CredSaathi.

Customer Profile:
- Name: %s
- City: %s
- Current sentiment: %s

Loan Offer:
- Amount: %.0f
- Tenure: %d months
- Interest Rate: %.2f%% p.a.
- Monthly EMI: %.0f

Task: Generate a CONCISE, persuasive pitch (3-4 sentences) that:
1. Confirms the loan offer with clear numbers
2. Highlights EMI affordability
3. Shows enthusiasm about their financial goals
4. Asks for permission to proceed with verification

Tone adjustments:
- If sentiment is 'stressed': be empathetic and reassuring
- If sentiment is 'positive': be enthusiastic
- If sentiment is 'confused': be clear and educational

Keep it conversational and professional.`,
		orUnknown(state.CustomerName),
		orUnknown(state.City),
		orUnknown(state.UserSentiment),
		*state.RequestedLoanAmount,
		*state.RequestedTenure,
		*state.NegotiatedInterestRate,
		*state.CalculatedEMI)
}

// buildVerificationPrompt asks for the KYC confirmation message.
func buildVerificationPrompt(state *domain.ApplicationState) string {
	kycStatus := "Failed"
	if state.KYCVerified {
		kycStatus = "Verified"
	}
	slipLine := "Say you are proceeding with the credit check."
	if state.SalarySlipRequired {
		slipLine = "Say you need a salary slip for final verification."
	}

	return fmt.Sprintf(`You are a verification agent at a bank.

Customer: %s
Phone: %s
Address: %s

KYC Status: %s
Loan Requested: %s
Salary Slip Required: %t

Generate a brief verification message (2-3 sentences):
1. Confirm that KYC verification is complete
2. Mention that details are verified from our records
3. %s

Keep it professional and reassuring.`,
		orUnknown(state.CustomerName),
		orUnknown(state.VerifiedPhone),
		orUnknown(state.VerifiedAddress),
		kycStatus,
		orUnknown(state.RequestedLoanAmount),
		state.SalarySlipRequired,
		slipLine)
}

// buildFraudAlertPrompt asks for a professional alert summarizing findings.
func buildFraudAlertPrompt(state *domain.ApplicationState, findings []domain.Finding, riskScore float64) string {
	var summary strings.Builder
	for _, f := range findings {
		summary.WriteString("- ")
		summary.WriteString(f.Message)
		summary.WriteString("\n")
	}

	return fmt.Sprintf(`You are a BFSI fraud detection analyst. Review the following fraud flags detected in a loan application and provide a professional fraud alert summary.

Customer: %s
Phone: %s
Fraud Risk Score: %.0f/100
Requested Loan: %s
Credit Score: %s

Detected Fraud Flags:
%s
Provide a brief professional summary (3-4 sentences) with:
1. Risk assessment
2. Recommended action (REJECT / MANUAL_REVIEW / APPROVE_WITH_CONDITIONS)
3. Key factors for investigation`,
		orUnknown(state.CustomerName),
		orUnknown(state.Phone),
		riskScore,
		orUnknown(state.RequestedLoanAmount),
		orUnknown(state.CreditScore),
		summary.String())
}

// Advisor prompt builders, one per guidance section.

func buildCreditPlanPrompt(state *domain.ApplicationState) string {
	return fmt.Sprintf(`You are a friendly financial advisor helping someone improve their financial health.

Customer: %s
Current Credit Score: %s
Requested Loan: %s
Rejection Reason: %s

Create a personalized, encouraging 3-step credit improvement roadmap for the next 6-12 months. Focus on:
1. Immediate actions (this month)
2. Medium-term goals (3-6 months)
3. Long-term objectives (6-12 months)

Be empathetic, practical, and specific. Include estimated credit score improvement at each stage.`,
		orUnknown(state.CustomerName),
		orUnknown(state.CreditScore),
		orUnknown(state.RequestedLoanAmount),
		orUnknown(state.RejectionReason))
}

func buildDebtAdvicePrompt(state *domain.ApplicationState) string {
	loan := state.CurrentLoanDetails
	return fmt.Sprintf(`You are a financial advisor specializing in debt management.

Customer: %s
Monthly Salary: %s
Current Loan: lender %s, outstanding %.0f, monthly EMI %.0f

Provide specific, actionable debt consolidation strategies. Explain:
1. Benefits of consolidating their debt
2. Expected reduction in monthly EMI
3. Recommended consolidation timeline
4. How to approach their current lenders

Be encouraging but realistic about the process.`,
		orUnknown(state.CustomerName),
		orUnknown(state.MonthlySalary),
		orUnknown(loan.Lender),
		loan.OutstandingAmount,
		loan.MonthlyEMI)
}

func buildAlternativesPrompt(state *domain.ApplicationState) string {
	return fmt.Sprintf(`You are a financial product advisor at CredSaathi.

Customer: %s
Requested Loan Amount: %s
Credit Score: %s
Monthly Salary: %s

Suggest 2-3 alternative financial products or solutions they might qualify for:
1. Smaller personal loan with lower amount
2. Secured loan options (gold, property-backed)
3. Group lending or peer-to-peer options
4. Government schemes they might be eligible for

For each option, explain why they might qualify, expected interest rates, timeline to approval, and how to apply.`,
		orUnknown(state.CustomerName),
		orUnknown(state.RequestedLoanAmount),
		orUnknown(state.CreditScore),
		orUnknown(state.MonthlySalary))
}
