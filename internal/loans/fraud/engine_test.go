package fraud

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func newState() *domain.ApplicationState {
	return domain.NewApplicationState(uuid.New())
}

func findingTypes(findings []domain.Finding) map[domain.FindingType]bool {
	types := make(map[domain.FindingType]bool, len(findings))
	for _, f := range findings {
		types[f.Type] = true
	}
	return types
}

func TestSalaryAnomalies(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.ApplicationState)
		expected []domain.FindingType
	}{
		{
			name: "salary below floor",
			mutate: func(s *domain.ApplicationState) {
				s.MonthlySalary = fptr(9000)
			},
			expected: []domain.FindingType{domain.FindingLowSalary},
		},
		{
			name: "required slip never uploaded",
			mutate: func(s *domain.ApplicationState) {
				s.SalarySlipRequired = true
			},
			expected: []domain.FindingType{domain.FindingMissingSalary},
		},
		{
			name: "impossible salary jump",
			mutate: func(s *domain.ApplicationState) {
				s.MonthlySalary = fptr(1500000)
				s.CurrentLoanDetails = &domain.PriorLoan{MonthlySalary: 200000}
			},
			expected: []domain.FindingType{domain.FindingSalaryJump},
		},
		{
			name: "plausible raise is clean",
			mutate: func(s *domain.ApplicationState) {
				s.MonthlySalary = fptr(60000)
				s.CurrentLoanDetails = &domain.PriorLoan{MonthlySalary: 50000}
			},
			expected: nil,
		},
		{
			name: "salary halved",
			mutate: func(s *domain.ApplicationState) {
				s.MonthlySalary = fptr(20000)
				s.CurrentLoanDetails = &domain.PriorLoan{MonthlySalary: 50000}
			},
			expected: []domain.FindingType{domain.FindingSalaryJump},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newState()
			tt.mutate(state)

			got := salaryAnomalies(state)
			if len(got) != len(tt.expected) {
				t.Fatalf("salaryAnomalies() = %d findings, want %d: %+v", len(got), len(tt.expected), got)
			}
			types := findingTypes(got)
			for _, want := range tt.expected {
				if !types[want] {
					t.Errorf("salaryAnomalies() missing finding %s", want)
				}
			}
		})
	}
}

func TestDuplicateApplication(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	const phone = "+919876543210"

	check := func(wantFlagged bool) {
		t.Helper()
		findings, err := duplicateApplication(ctx, ledger, phone)
		if err != nil {
			t.Fatalf("duplicateApplication() error = %v", err)
		}
		if (len(findings) > 0) != wantFlagged {
			t.Errorf("duplicateApplication() flagged = %v, want %v", len(findings) > 0, wantFlagged)
		}
	}

	check(false)

	if err := ledger.RecordRejection(ctx, phone); err != nil {
		t.Fatalf("RecordRejection() error = %v", err)
	}
	check(false)

	// Same number written locally must hit the same ledger entry.
	if err := ledger.RecordRejection(ctx, "09876543210"); err != nil {
		t.Fatalf("RecordRejection() error = %v", err)
	}
	check(true)

	count, err := ledger.RejectionCount(ctx, phone)
	if err != nil {
		t.Fatalf("RejectionCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("RejectionCount() = %d, want 2", count)
	}
}

func TestSuspiciousPatterns(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	if err := ledger.AddSuspiciousAddress(ctx, "221B Fake Street, Mumbai"); err != nil {
		t.Fatalf("AddSuspiciousAddress() error = %v", err)
	}

	state := newState()
	state.VerifiedAddress = "221b fake street, mumbai"
	state.CreditScore = iptr(550)
	state.CalculatedEMI = fptr(15000)
	state.MonthlySalary = fptr(30000)

	findings, err := suspiciousPatterns(ctx, ledger, state)
	if err != nil {
		t.Fatalf("suspiciousPatterns() error = %v", err)
	}

	types := findingTypes(findings)
	if !types[domain.FindingSuspiciousAddress] {
		t.Error("suspiciousPatterns() missing suspicious_address for case-insensitive match")
	}
	if !types[domain.FindingRiskyProfile] {
		t.Error("suspiciousPatterns() missing risky_profile for credit 550 at 50% EMI ratio")
	}

	// Healthy profile produces nothing.
	clean := newState()
	clean.VerifiedAddress = "12 MG Road, Pune"
	clean.CreditScore = iptr(780)
	clean.CalculatedEMI = fptr(8000)
	clean.MonthlySalary = fptr(60000)

	findings, err = suspiciousPatterns(ctx, ledger, clean)
	if err != nil {
		t.Fatalf("suspiciousPatterns() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("suspiciousPatterns() = %+v, want none", findings)
	}
}

func TestEvaluateScoreAndTiers(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	engine := NewEngine(ledger)

	// Clean application.
	clean := newState()
	clean.MonthlySalary = fptr(50000)
	assessment, err := engine.Evaluate(ctx, clean)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if assessment.RiskScore != 0 || assessment.Tier != TierLow || len(assessment.Findings) != 0 {
		t.Errorf("Evaluate(clean) = %+v, want zero score, low tier", assessment)
	}

	// Every category firing at once must still clamp to 100.
	const phone = "+919812345678"
	if err := ledger.RecordRejection(ctx, phone); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordRejection(ctx, phone); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddSuspiciousAddress(ctx, "1 scam lane"); err != nil {
		t.Fatal(err)
	}

	worst := newState()
	worst.Phone = phone
	worst.VerifiedAddress = "1 Scam Lane"
	worst.MonthlySalary = fptr(9000)
	worst.CurrentLoanDetails = &domain.PriorLoan{MonthlySalary: 100000}
	worst.SalarySlipRequired = true
	worst.CreditScore = iptr(500)
	worst.CalculatedEMI = fptr(5000)

	assessment, err = engine.Evaluate(ctx, worst)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if assessment.RiskScore < 0 || assessment.RiskScore > 100 {
		t.Errorf("Evaluate() score = %v, out of [0,100]", assessment.RiskScore)
	}
	if assessment.RiskScore != 100 {
		t.Errorf("Evaluate() score = %v, want clamped 100", assessment.RiskScore)
	}
	if assessment.Tier != TierHigh {
		t.Errorf("Evaluate() tier = %v, want high", assessment.Tier)
	}

	// Findings arrive in rule order: salary first, then duplicate, then
	// pattern.
	if len(assessment.Findings) == 0 || assessment.Findings[0].Type == domain.FindingDuplicateApplication {
		t.Errorf("Evaluate() findings not in fixed rule order: %+v", assessment.Findings)
	}
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierLow},
		{39.9, TierLow},
		{40, TierMedium},
		{69.9, TierMedium},
		{70, TierHigh},
		{100, TierHigh},
	}

	for _, tt := range tests {
		if got := TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestLedgerStatistics(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	// One rejection is not yet a repeat applicant; two are.
	if err := ledger.RecordRejection(ctx, "+919876543210"); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordRejection(ctx, "+919812345678"); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordRejection(ctx, "+919812345678"); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddSuspiciousAddress(ctx, "1 scam lane"); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordFlagged(ctx, "session-1"); err != nil {
		t.Fatal(err)
	}

	stats, err := ledger.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.RepeatApplicants != 1 {
		t.Errorf("Statistics() repeat applicants = %d, want only the twice-rejected phone", stats.RepeatApplicants)
	}
	if stats.KnownSuspiciousAddresses != 1 || stats.TotalFlaggedApplications != 1 {
		t.Errorf("Statistics() = %+v", stats)
	}
	if stats.RejectionCounts["+919876543210"] != 1 {
		t.Errorf("Statistics() rejection count = %d, want 1", stats.RejectionCounts["+919876543210"])
	}
}
