package agent

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

func TestVerificationAgentSalarySlipBand(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		limit    float64
		required bool
	}{
		{name: "within limit", amount: 400000, limit: 500000, required: false},
		{name: "exactly at limit", amount: 500000, limit: 500000, required: false},
		{name: "just above limit", amount: 600000, limit: 500000, required: true},
		{name: "exactly double", amount: 1000000, limit: 500000, required: true},
		{name: "beyond double", amount: 1100000, limit: 500000, required: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewVerificationAgent(nil, testLogger())

			state := domain.NewApplicationState(uuid.New())
			state.VerifiedPhone = "+919876543210"
			state.VerifiedAddress = "12 MG Road, Pune"
			state.RequestedLoanAmount = &tt.amount
			state.PreApprovedLimit = &tt.limit

			if err := agent.Run(context.Background(), state); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if state.SalarySlipRequired != tt.required {
				t.Errorf("SalarySlipRequired = %v, want %v", state.SalarySlipRequired, tt.required)
			}
			if !state.KYCVerified {
				t.Error("KYCVerified = false, want true with verified phone and address")
			}
			if state.LoanStatus != domain.StatusUnderwriting {
				t.Errorf("LoanStatus = %v, want underwriting", state.LoanStatus)
			}
		})
	}
}

func TestVerificationAgentWithoutVerifiedFields(t *testing.T) {
	agent := NewVerificationAgent(nil, testLogger())

	state := domain.NewApplicationState(uuid.New())
	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.KYCVerified {
		t.Error("KYCVerified = true, want false without verified phone/address")
	}
}
