package agent

import (
	"context"
	"fmt"
	"strings"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

const advisorTemperature = 0.7

// Advisor recommendation map keys.
const (
	RecommendationCreditPlan   = "credit_improvement_plan"
	RecommendationDebtAdvice   = "debt_consolidation_advice"
	RecommendationAlternatives = "alternative_products"
)

// AdvisorAgent coaches rejected applicants: a credit improvement roadmap,
// debt consolidation advice when an existing loan is on file, and
// alternative products. It only ever acts on rejected applications.
type AdvisorAgent struct {
	llm ports.TextGenerator
	log *logger.Logger
}

func NewAdvisorAgent(llm ports.TextGenerator, log *logger.Logger) *AdvisorAgent {
	return &AdvisorAgent{llm: llm, log: log}
}

func (a *AdvisorAgent) Stage() domain.Stage { return domain.StageAdvisor }

func (a *AdvisorAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	if state.LoanStatus != domain.StatusRejected {
		return nil
	}

	creditPlan := generateOrFallback(ctx, a.llm, a.log, "advisor credit plan",
		"You are a compassionate and knowledgeable financial advisor. Provide practical, actionable advice to help customers improve their financial health.",
		buildCreditPlanPrompt(state), advisorTemperature, fallbackText("advisor_credit_plan"))

	debtAdvice := ""
	if state.CurrentLoanDetails != nil {
		debtAdvice = generateOrFallback(ctx, a.llm, a.log, "advisor debt advice",
			"You are an expert debt consolidation advisor. Provide practical strategies to reduce financial burden.",
			buildDebtAdvicePrompt(state), advisorTemperature, "")
	}

	alternatives := generateOrFallback(ctx, a.llm, a.log, "advisor alternatives",
		"You are a knowledgeable financial product advisor. Help customers find alternative solutions that match their profile.",
		buildAlternativesPrompt(state), advisorTemperature, fallbackText("advisor_alternatives"))

	state.AdvisorRecommendations = map[string]string{
		RecommendationCreditPlan:   creditPlan,
		RecommendationAlternatives: alternatives,
	}
	if debtAdvice != "" {
		state.AdvisorRecommendations[RecommendationDebtAdvice] = debtAdvice
	}

	state.AppendAgentMessage(domain.StageAdvisor, a.composeGuidance(state, creditPlan, debtAdvice, alternatives))
	state.AdvisorGuidanceProvided = true
	state.CurrentAgent = domain.StageAdvisor
	state.WorkflowComplete = true
	return nil
}

func (a *AdvisorAgent) composeGuidance(state *domain.ApplicationState, creditPlan, debtAdvice, alternatives string) string {
	name := state.CustomerName
	if name == "" {
		name = "there"
	}
	reason := state.RejectionReason
	if reason == "" {
		reason = "Your application did not meet our current lending criteria"
	}

	divider := strings.Repeat("=", 50)
	var parts []string

	parts = append(parts, fmt.Sprintf(`Hello %s,

Thank you for applying with CredSaathi. While we couldn't approve your current application (Reason: %s), we believe in your financial potential and want to help you succeed.

Below is a personalized action plan to strengthen your financial profile and make you eligible for credit in the future.`, name, reason))

	parts = append(parts, "YOUR CREDIT IMPROVEMENT ROADMAP\n"+divider, creditPlan)

	if debtAdvice != "" {
		parts = append(parts, "DEBT CONSOLIDATION OPTIONS\n"+divider, debtAdvice)
	}

	if alternatives != "" {
		parts = append(parts, "ALTERNATIVE LOAN PRODUCTS YOU MAY QUALIFY FOR\n"+divider, alternatives)
	}

	parts = append(parts, `NEXT STEPS
1. Start implementing the credit improvement plan this month
2. Monitor your credit score regularly
3. Revisit your application in 3-6 months
4. Contact our team if you have questions: support@credsaathi.com

We're here to support your financial journey.`)

	return strings.Join(parts, "\n\n")
}
