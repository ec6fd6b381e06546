package workflow

import (
	"testing"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

func routedState(mutate func(*domain.ApplicationState)) *domain.ApplicationState {
	state := domain.NewApplicationState(uuid.New())
	if mutate != nil {
		mutate(state)
	}
	return state
}

func TestNext(t *testing.T) {
	amount := 500000.0
	tenure := 36

	tests := []struct {
		name  string
		after domain.Stage
		state *domain.ApplicationState
		want  domain.Stage
	}{
		{
			name:  "master routes to sales while negotiating",
			after: domain.StageMaster,
			state: routedState(func(s *domain.ApplicationState) { s.LoanStatus = domain.StatusNegotiating }),
			want:  domain.StageSales,
		},
		{
			name:  "master ends when not negotiating",
			after: domain.StageMaster,
			state: routedState(func(s *domain.ApplicationState) { s.LoanStatus = domain.StatusRejected }),
			want:  domain.StageEnd,
		},
		{
			name:  "sales advances once terms are complete",
			after: domain.StageSales,
			state: routedState(func(s *domain.ApplicationState) {
				s.RequestedLoanAmount = &amount
				s.RequestedTenure = &tenure
			}),
			want: domain.StageVerification,
		},
		{
			name:  "sales ends the turn while terms are missing",
			after: domain.StageSales,
			state: routedState(func(s *domain.ApplicationState) { s.RequestedLoanAmount = &amount }),
			want:  domain.StageEnd,
		},
		{
			name:  "verification always proceeds to underwriting",
			after: domain.StageVerification,
			state: routedState(nil),
			want:  domain.StageUnderwriting,
		},
		{
			name:  "underwriting always proceeds to fraud",
			after: domain.StageUnderwriting,
			state: routedState(func(s *domain.ApplicationState) { s.SetRejected("low score") }),
			want:  domain.StageFraud,
		},
		{
			name:  "high risk routes to advisor",
			after: domain.StageFraud,
			state: routedState(func(s *domain.ApplicationState) { s.FraudRiskScore = 75 }),
			want:  domain.StageAdvisor,
		},
		{
			name:  "rejection routes to advisor regardless of score",
			after: domain.StageFraud,
			state: routedState(func(s *domain.ApplicationState) {
				s.FraudRiskScore = 10
				s.SetRejected("credit score below threshold")
			}),
			want: domain.StageAdvisor,
		},
		{
			name:  "manual review band closes via master final",
			after: domain.StageFraud,
			state: routedState(func(s *domain.ApplicationState) {
				s.FraudRiskScore = 45
				s.LoanStatus = domain.StatusApproved
			}),
			want: domain.StageMasterFinal,
		},
		{
			name:  "clean approval routes to sanction",
			after: domain.StageFraud,
			state: routedState(func(s *domain.ApplicationState) {
				s.FraudRiskScore = 10
				s.LoanStatus = domain.StatusApproved
			}),
			want: domain.StageSanction,
		},
		{
			name:  "clean but undecided closes via master final",
			after: domain.StageFraud,
			state: routedState(func(s *domain.ApplicationState) {
				s.FraudRiskScore = 0
				s.LoanStatus = domain.StatusAwaitingSalarySlip
			}),
			want: domain.StageMasterFinal,
		},
		{
			name:  "sanction closes via master final",
			after: domain.StageSanction,
			state: routedState(nil),
			want:  domain.StageMasterFinal,
		},
		{
			name:  "advisor ends the workflow",
			after: domain.StageAdvisor,
			state: routedState(nil),
			want:  domain.StageEnd,
		},
		{
			name:  "master final ends the workflow",
			after: domain.StageMasterFinal,
			state: routedState(nil),
			want:  domain.StageEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.after, tt.state); got != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.after, got, tt.want)
			}
		})
	}
}

func TestNextBandBoundaries(t *testing.T) {
	// 40 is the first manual review score, 70 the first advisor score.
	tests := []struct {
		score float64
		want  domain.Stage
	}{
		{score: 39.9, want: domain.StageSanction},
		{score: 40, want: domain.StageMasterFinal},
		{score: 69.9, want: domain.StageMasterFinal},
		{score: 70, want: domain.StageAdvisor},
	}

	for _, tt := range tests {
		state := routedState(func(s *domain.ApplicationState) {
			s.FraudRiskScore = tt.score
			s.LoanStatus = domain.StatusApproved
		})
		if got := Next(domain.StageFraud, state); got != tt.want {
			t.Errorf("Next(fraud) with score %.1f = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEveryPathTerminates(t *testing.T) {
	// Walk the router from master across a grid of states and make sure no
	// combination can loop past the transition cap.
	statuses := []domain.LoanStatus{
		domain.StatusInitial, domain.StatusNegotiating, domain.StatusUnderwriting,
		domain.StatusManualReviewFraud, domain.StatusApproved, domain.StatusRejected,
		domain.StatusAwaitingSalarySlip,
	}
	scores := []float64{0, 40, 70, 100}
	amount := 300000.0
	tenure := 24

	for _, status := range statuses {
		for _, score := range scores {
			for _, withTerms := range []bool{true, false} {
				state := routedState(func(s *domain.ApplicationState) {
					s.LoanStatus = status
					s.FraudRiskScore = score
					if withTerms {
						s.RequestedLoanAmount = &amount
						s.RequestedTenure = &tenure
					}
				})

				stage := domain.StageMaster
				for hops := 0; stage != domain.StageEnd; hops++ {
					if hops > maxTransitions {
						t.Fatalf("path did not terminate for status=%s score=%.0f terms=%v", status, score, withTerms)
					}
					stage = Next(stage, state)
				}
			}
		}
	}
}
