// Package transport defines the request and response DTOs for the loan
// pipeline API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

// StartSessionRequest opens a new application session.
type StartSessionRequest struct {
	CustomerName  string             `json:"customer_name" validate:"required,min=2,max=120"`
	Email         string             `json:"email" validate:"omitempty,email"`
	Phone         string             `json:"phone" validate:"required"`
	Address       string             `json:"address" validate:"max=300"`
	City          string             `json:"city" validate:"max=100"`
	MonthlySalary *float64           `json:"monthly_salary" validate:"omitempty,gt=0"`
	CreditScore   *int               `json:"credit_score" validate:"omitempty,gte=300,lte=900"`
	CurrentLoan   *CurrentLoanDetail `json:"current_loan"`
}

// CurrentLoanDetail describes an existing loan the applicant carries.
type CurrentLoanDetail struct {
	Lender            string  `json:"lender"`
	OutstandingAmount float64 `json:"outstanding_amount" validate:"gte=0"`
	MonthlyEMI        float64 `json:"monthly_emi" validate:"gte=0"`
	MonthlySalary     float64 `json:"monthly_salary" validate:"gt=0"`
}

// SendMessageRequest carries one user utterance.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// MessageView is one transcript entry.
type MessageView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is the API view of an application session after a turn.
type SessionResponse struct {
	SessionID        uuid.UUID     `json:"session_id"`
	LoanStatus       string        `json:"loan_status"`
	CurrentAgent     string        `json:"current_agent,omitempty"`
	WorkflowComplete bool          `json:"workflow_complete"`
	Replies          []string      `json:"replies,omitempty"`
	LoanAmount       *float64      `json:"loan_amount,omitempty"`
	TenureMonths     *int          `json:"tenure_months,omitempty"`
	LoanPurpose      *string       `json:"loan_purpose,omitempty"`
	InterestRate     *float64      `json:"interest_rate,omitempty"`
	MonthlyEMI       *float64      `json:"monthly_emi,omitempty"`
	FraudRiskScore   float64       `json:"fraud_risk_score"`
	SalarySlipNeeded bool          `json:"salary_slip_needed"`
	RejectionReason  string        `json:"rejection_reason,omitempty"`
	SanctionLetter   string        `json:"sanction_letter,omitempty"`
	Messages         []MessageView `json:"messages,omitempty"`
}

// SlipUploadResponse reports the outcome of a salary slip upload.
type SlipUploadResponse struct {
	SessionID     uuid.UUID `json:"session_id"`
	SalaryFound   bool      `json:"salary_found"`
	MonthlySalary float64   `json:"monthly_salary,omitempty"`
	ObjectKey     string    `json:"object_key,omitempty"`
	LoanStatus    string    `json:"loan_status"`
	Replies       []string  `json:"replies,omitempty"`
}

// FromState maps an application state to its API view. Replies holds the
// assistant messages produced by the turn that just ran.
func FromState(state *domain.ApplicationState, replies []string, includeTranscript bool) SessionResponse {
	resp := SessionResponse{
		SessionID:        state.SessionID,
		LoanStatus:       string(state.LoanStatus),
		CurrentAgent:     string(state.CurrentAgent),
		WorkflowComplete: state.WorkflowComplete,
		Replies:          replies,
		LoanAmount:       state.RequestedLoanAmount,
		TenureMonths:     state.RequestedTenure,
		LoanPurpose:      state.LoanPurpose,
		InterestRate:     state.NegotiatedInterestRate,
		MonthlyEMI:       state.CalculatedEMI,
		FraudRiskScore:   state.FraudRiskScore,
		SalarySlipNeeded: state.SalarySlipRequired && !state.SalarySlipUploaded,
		RejectionReason:  state.RejectionReason,
		SanctionLetter:   state.SanctionLetterObjectKey,
	}

	if includeTranscript {
		resp.Messages = make([]MessageView, 0, len(state.Messages))
		for _, m := range state.Messages {
			resp.Messages = append(resp.Messages, MessageView{
				Role:      m.Role,
				Content:   m.Content,
				Agent:     string(m.Agent),
				CreatedAt: m.CreatedAt,
			})
		}
	}

	return resp
}
