package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message roles in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in the append-only conversation transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Agent     Stage     `json:"agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PriorLoan is a snapshot of an existing loan the applicant carries,
// including the salary declared when that loan was taken.
type PriorLoan struct {
	Lender            string  `json:"lender,omitempty"`
	OutstandingAmount float64 `json:"outstanding_amount,omitempty"`
	MonthlyEMI        float64 `json:"monthly_emi,omitempty"`
	MonthlySalary     float64 `json:"monthly_salary"`
}

// ApplicationState is the single mutable record threaded through every
// pipeline stage. Exactly one stage holds write access at a time; the
// session registry serializes turns per session.
type ApplicationState struct {
	SessionID uuid.UUID `json:"session_id"`

	// Identity
	CustomerName    string `json:"customer_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	VerifiedPhone   string `json:"verified_phone,omitempty"`
	VerifiedAddress string `json:"verified_address,omitempty"`
	City            string `json:"city,omitempty"`

	// Request
	RequestedLoanAmount *float64 `json:"requested_loan_amount,omitempty"`
	RequestedTenure     *int     `json:"requested_tenure,omitempty"`
	LoanPurpose         *string  `json:"loan_purpose,omitempty"`

	// Offer / pricing
	PreApprovedLimit       *float64 `json:"pre_approved_limit,omitempty"`
	NegotiatedInterestRate *float64 `json:"negotiated_interest_rate,omitempty"`
	CalculatedEMI          *float64 `json:"calculated_emi,omitempty"`

	// Credit
	CreditScore        *int       `json:"credit_score,omitempty"`
	MonthlySalary      *float64   `json:"monthly_salary,omitempty"`
	CurrentLoanDetails *PriorLoan `json:"current_loan_details,omitempty"`

	// Verification
	KYCVerified         bool   `json:"kyc_verified"`
	SalarySlipRequired  bool   `json:"salary_slip_required"`
	SalarySlipUploaded  bool   `json:"salary_slip_uploaded"`
	SalarySlipObjectKey string `json:"salary_slip_object_key,omitempty"`

	// Fraud
	FraudRiskScore float64   `json:"fraud_risk_score"`
	FraudFlags     []Finding `json:"fraud_flags,omitempty"`
	FraudDetected  bool      `json:"fraud_detected"`

	// Routing / status
	LoanStatus       LoanStatus `json:"loan_status"`
	CurrentAgent     Stage      `json:"current_agent,omitempty"`
	WorkflowComplete bool       `json:"workflow_complete"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`

	// RejectionRecorded marks that the fraud ledger already counted this
	// session's rejection, so repeated turns never double-count.
	RejectionRecorded bool `json:"rejection_recorded"`

	// Conversation. Append-only; prior entries are never rewritten.
	Messages []Message `json:"messages"`

	// Rolling window of recent user utterances kept for extraction context.
	RecentUserInputs []string `json:"recent_user_inputs,omitempty"`

	// Last detected user sentiment, used to tune the tone of responses.
	UserSentiment string `json:"user_sentiment,omitempty"`

	// Advisory (rejection path only)
	AdvisorGuidanceProvided bool              `json:"advisor_guidance_provided"`
	AdvisorRecommendations  map[string]string `json:"advisor_recommendations,omitempty"`

	// Sanction artifact
	SanctionLetterObjectKey string `json:"sanction_letter_object_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApplicationState creates a fresh session state at the greeting status.
func NewApplicationState(sessionID uuid.UUID) *ApplicationState {
	now := time.Now()
	return &ApplicationState{
		SessionID:  sessionID,
		LoanStatus: StatusInitial,
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

const recentInputWindow = 3

// AppendUserMessage records a user turn and keeps the rolling utterance
// window at most three entries deep.
func (s *ApplicationState) AppendUserMessage(content string) {
	s.Messages = append(s.Messages, Message{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	})
	s.RecentUserInputs = append(s.RecentUserInputs, content)
	if len(s.RecentUserInputs) > recentInputWindow {
		s.RecentUserInputs = s.RecentUserInputs[len(s.RecentUserInputs)-recentInputWindow:]
	}
	s.UpdatedAt = time.Now()
}

// AppendAgentMessage records an assistant turn authored by the given stage.
func (s *ApplicationState) AppendAgentMessage(stage Stage, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      RoleAssistant,
		Content:   content,
		Agent:     stage,
		CreatedAt: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// LatestUserMessage returns the most recent user turn, or "" when the user
// has not spoken yet.
func (s *ApplicationState) LatestUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// SetRejected marks the application rejected. Rejection is sticky: once set
// it never transitions to another status.
func (s *ApplicationState) SetRejected(reason string) {
	s.LoanStatus = StatusRejected
	if reason != "" {
		s.RejectionReason = reason
	}
	s.UpdatedAt = time.Now()
}

// SetStatus applies a status transition unless the state is already
// terminal.
func (s *ApplicationState) SetStatus(status LoanStatus) {
	if IsTerminalStatus(s.LoanStatus) {
		return
	}
	s.LoanStatus = status
	s.UpdatedAt = time.Now()
}

// HasLoanTerms reports whether both amount and tenure have been collected.
func (s *ApplicationState) HasLoanTerms() bool {
	return s.RequestedLoanAmount != nil && s.RequestedTenure != nil
}
