package agent

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

func TestMasterFinalClosesDecidedApplications(t *testing.T) {
	tests := []struct {
		name   string
		status domain.LoanStatus
	}{
		{name: "approved", status: domain.StatusApproved},
		{name: "rejected", status: domain.StatusRejected},
		{name: "manual review", status: domain.StatusManualReviewFraud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewMasterFinalAgent(testLogger())

			state := domain.NewApplicationState(uuid.New())
			state.LoanStatus = tt.status
			if err := agent.Run(context.Background(), state); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !state.WorkflowComplete {
				t.Errorf("workflow not complete for %s", tt.status)
			}
			if len(state.Messages) != 1 {
				t.Errorf("messages = %d, want one closing message", len(state.Messages))
			}
		})
	}
}

func TestMasterFinalKeepsAwaitingSlipSessionOpen(t *testing.T) {
	agent := NewMasterFinalAgent(testLogger())

	state := domain.NewApplicationState(uuid.New())
	state.SalarySlipRequired = true
	state.SetStatus(domain.StatusAwaitingSalarySlip)

	if err := agent.Run(context.Background(), state); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.WorkflowComplete {
		t.Fatal("awaiting a salary slip must leave the session open for the upload")
	}
	if len(state.Messages) != 1 {
		t.Errorf("messages = %d, want the awaiting-slip closing message", len(state.Messages))
	}
	if state.CurrentAgent != domain.StageMasterFinal {
		t.Errorf("current agent = %s, want master_final", state.CurrentAgent)
	}
}
