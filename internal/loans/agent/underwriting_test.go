package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

type fakeBureau struct {
	score int
	err   error
}

func (f *fakeBureau) Score(_ context.Context, _ string) (int, error) {
	return f.score, f.err
}

func underwritingState() *domain.ApplicationState {
	state := domain.NewApplicationState(uuid.New())
	state.Phone = "+919876543210"
	amount := 500000.0
	tenure := 60
	rate := 10.5
	installment := 10746.95
	state.RequestedLoanAmount = &amount
	state.RequestedTenure = &tenure
	state.NegotiatedInterestRate = &rate
	state.CalculatedEMI = &installment
	return state
}

func TestUnderwritingApproves(t *testing.T) {
	agent := NewUnderwritingAgent(&fakeBureau{score: 720}, testLogger())

	state := underwritingState()
	salary := 50000.0
	state.MonthlySalary = &salary

	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.LoanStatus != domain.StatusApproved {
		t.Errorf("LoanStatus = %v, want approved", state.LoanStatus)
	}
	if state.CreditScore == nil || *state.CreditScore != 720 {
		t.Errorf("CreditScore = %v, want 720", state.CreditScore)
	}
}

func TestUnderwritingRejectsLowScore(t *testing.T) {
	agent := NewUnderwritingAgent(&fakeBureau{score: 580}, testLogger())

	state := underwritingState()
	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.LoanStatus != domain.StatusRejected {
		t.Errorf("LoanStatus = %v, want rejected", state.LoanStatus)
	}
	if state.RejectionReason == "" {
		t.Error("RejectionReason is empty, want populated")
	}
}

func TestUnderwritingRejectsUnaffordableEMI(t *testing.T) {
	agent := NewUnderwritingAgent(&fakeBureau{score: 760}, testLogger())

	state := underwritingState()
	salary := 15000.0 // EMI of 10746.95 is over 70% of this
	state.MonthlySalary = &salary

	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.LoanStatus != domain.StatusRejected {
		t.Errorf("LoanStatus = %v, want rejected", state.LoanStatus)
	}
}

func TestUnderwritingAwaitsSalarySlip(t *testing.T) {
	agent := NewUnderwritingAgent(&fakeBureau{score: 720}, testLogger())

	state := underwritingState()
	state.SalarySlipRequired = true

	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.LoanStatus != domain.StatusAwaitingSalarySlip {
		t.Errorf("LoanStatus = %v, want awaiting_salary_slip", state.LoanStatus)
	}
}

func TestUnderwritingSurvivesBureauFailure(t *testing.T) {
	agent := NewUnderwritingAgent(&fakeBureau{err: errors.New("bureau timeout")}, testLogger())

	state := underwritingState()
	before := state.LoanStatus

	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.LoanStatus != before {
		t.Errorf("LoanStatus = %v, want unchanged %v after bureau failure", state.LoanStatus, before)
	}
	if len(state.Messages) == 0 {
		t.Error("expected a user-facing message even on bureau failure")
	}
}
