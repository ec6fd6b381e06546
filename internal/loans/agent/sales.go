package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/emi"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

// defaultInterestRate seeds negotiation when the applicant has no
// pre-approved offer on file.
const defaultInterestRate = 10.5

const (
	extractionTemperature = 0.3
	pitchTemperature      = 0.7
)

// SalesAgent collects the loan request (amount, tenure, purpose) from the
// conversation, seeds pricing from the applicant's pre-approved offer and
// computes the EMI once terms are complete.
type SalesAgent struct {
	llm    ports.TextGenerator
	offers ports.OfferProvider
	log    *logger.Logger
}

func NewSalesAgent(llm ports.TextGenerator, offers ports.OfferProvider, log *logger.Logger) *SalesAgent {
	return &SalesAgent{llm: llm, offers: offers, log: log}
}

func (a *SalesAgent) Stage() domain.Stage { return domain.StageSales }

// salesExtraction is the structured record the model returns for one
// utterance. Amount and tenure arrive as JSON numbers or strings, so they
// stay untyped until normalized.
type salesExtraction struct {
	LoanAmount   any     `json:"loan_amount"`
	TenureMonths any     `json:"tenure_months"`
	LoanPurpose  *string `json:"loan_purpose"`
	Sentiment    string  `json:"sentiment"`
	NextQuestion string  `json:"next_question"`
}

func (a *SalesAgent) Run(ctx context.Context, state *domain.ApplicationState) error {
	userMessage := state.LatestUserMessage()
	if userMessage == "" {
		state.AppendAgentMessage(domain.StageSales, fallbackText("sales_first_question"))
		state.SetStatus(domain.StatusNegotiating)
		state.CurrentAgent = domain.StageSales
		return nil
	}

	extraction := a.extract(ctx, state, userMessage)

	// A prohibited purpose is refused regardless of what the extraction
	// layer returned; it is never recorded silently.
	prohibited := isProhibitedPurpose(userMessage)
	if extraction.LoanPurpose != nil && isProhibitedPurpose(*extraction.LoanPurpose) {
		prohibited = true
		extraction.LoanPurpose = nil
	}

	if amount, ok := normalizeAmount(extraction.LoanAmount); ok {
		state.RequestedLoanAmount = &amount
	}
	if tenure, ok := normalizeTenure(extraction.TenureMonths); ok {
		state.RequestedTenure = &tenure
	}
	if !prohibited && extraction.LoanPurpose != nil && strings.TrimSpace(*extraction.LoanPurpose) != "" {
		purpose := strings.TrimSpace(*extraction.LoanPurpose)
		state.LoanPurpose = &purpose
	}
	if extraction.Sentiment != "" {
		state.UserSentiment = extraction.Sentiment
	}

	a.seedOffer(ctx, state)
	a.computeEMI(state)

	state.AppendAgentMessage(domain.StageSales, a.respond(ctx, state, extraction, prohibited))
	state.SetStatus(domain.StatusNegotiating)
	state.CurrentAgent = domain.StageSales
	return nil
}

// extract runs the model extraction and falls back to the deterministic
// scanner when the model is unavailable or returns something that is not
// the agreed JSON.
func (a *SalesAgent) extract(ctx context.Context, state *domain.ApplicationState, userMessage string) salesExtraction {
	if a.llm != nil {
		raw, err := a.llm.Complete(ctx, []ports.ChatMessage{
			{Role: ports.ChatRoleSystem, Content: "You are a professional BFSI sales AI."},
			{Role: ports.ChatRoleUser, Content: buildExtractionPrompt(state, userMessage)},
		}, extractionTemperature)
		if err == nil {
			var extraction salesExtraction
			if jsonErr := json.Unmarshal([]byte(stripCodeFences(raw)), &extraction); jsonErr == nil {
				return extraction
			}
			a.log.ExternalCallFailure("text-generation", "sales extraction decode", fmt.Errorf("unparsable model output"))
		} else {
			a.log.ExternalCallFailure("text-generation", "sales extraction", err)
		}
	}

	amount, tenure, purpose, prohibited := extractLoanDetails(userMessage)
	extraction := salesExtraction{Sentiment: "neutral"}
	if amount != nil {
		extraction.LoanAmount = *amount
	}
	if tenure != nil {
		extraction.TenureMonths = *tenure
	}
	extraction.LoanPurpose = purpose
	if prohibited {
		extraction.NextQuestion = fallbackText("sales_reask_purpose_policy")
	}
	return extraction
}

func (a *SalesAgent) seedOffer(ctx context.Context, state *domain.ApplicationState) {
	if a.offers != nil && state.Phone != "" {
		offer, err := a.offers.OfferByPhone(ctx, state.Phone)
		if err != nil {
			a.log.ExternalCallFailure("offer-lookup", "offer by phone", err)
		} else if offer != nil {
			state.NegotiatedInterestRate = &offer.InterestRate
			limit := offer.OfferAmount
			if offer.PreApprovedLimit > 0 {
				limit = offer.PreApprovedLimit
			}
			state.PreApprovedLimit = &limit
		}
	}

	if state.NegotiatedInterestRate == nil {
		rate := defaultInterestRate
		state.NegotiatedInterestRate = &rate
	}
}

func (a *SalesAgent) computeEMI(state *domain.ApplicationState) {
	if !state.HasLoanTerms() || state.NegotiatedInterestRate == nil {
		return
	}
	installment, err := emi.ComputeEMI(*state.RequestedLoanAmount, *state.NegotiatedInterestRate, *state.RequestedTenure)
	if err != nil {
		a.log.Warn("emi computation failed", "error", err.Error())
		state.CalculatedEMI = nil
		return
	}
	state.CalculatedEMI = &installment
}

// respond produces either the final pitch (all terms known) or the next
// question for the field still missing.
func (a *SalesAgent) respond(ctx context.Context, state *domain.ApplicationState, extraction salesExtraction, prohibited bool) string {
	if state.HasLoanTerms() && state.CalculatedEMI != nil && state.LoanPurpose != nil {
		fallbackPitch := fmt.Sprintf(
			"Perfect! So you need ₹%.0f for %d months. That means an EMI of ₹%.0f/month at %.2f%% per annum. This looks great! Shall I proceed with verification of your details?",
			*state.RequestedLoanAmount, *state.RequestedTenure, *state.CalculatedEMI, *state.NegotiatedInterestRate)
		return generateOrFallback(ctx, a.llm, a.log, "sales pitch",
			"You are a professional BFSI sales agent.", buildPitchPrompt(state),
			pitchTemperature, fallbackPitch)
	}

	switch {
	case prohibited:
		return fallbackText("sales_reask_purpose_policy")
	case extraction.NextQuestion != "":
		return extraction.NextQuestion
	case state.LoanPurpose == nil:
		return fallbackText("sales_reask_purpose")
	case state.RequestedLoanAmount == nil:
		return fallbackText("sales_reask_amount")
	case state.RequestedTenure == nil:
		return fallbackText("sales_reask_tenure")
	default:
		return fallbackText("sales_reask_generic")
	}
}

// stripCodeFences removes a surrounding markdown code fence if the model
// wrapped its JSON in one.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
