// Package ports defines the collaborator contracts the loan pipeline
// depends on. Concrete adapters live outside the module; stages only see
// these interfaces, which keeps the pipeline testable with fakes.
package ports

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
)

// ChatMessage is one role-tagged turn sent to the text generator.
type ChatMessage struct {
	Role    string
	Content string
}

// Chat roles understood by the text generator.
const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// TextGenerator produces text from role-tagged prompt turns. Calls are
// synchronous and may fail; every caller must carry a deterministic
// fallback because no stage may surface a raw generation error to the
// user.
type TextGenerator interface {
	Complete(ctx context.Context, messages []ChatMessage, temperature float64) (string, error)
}

// Offer is a pre-approved lending offer keyed by phone number.
type Offer struct {
	Phone            string
	InterestRate     float64
	OfferAmount      float64
	PreApprovedLimit float64
}

// OfferProvider looks up the pre-approved offer used to seed negotiation.
// A nil offer with nil error means the applicant has none.
type OfferProvider interface {
	OfferByPhone(ctx context.Context, phone string) (*Offer, error)
}

// CreditBureau supplies the applicant's credit score for underwriting.
type CreditBureau interface {
	Score(ctx context.Context, phone string) (int, error)
}

// SanctionIssuer produces and stores the formal approval artifact for an
// approved application, returning the storage key of the letter.
type SanctionIssuer interface {
	Issue(ctx context.Context, state *domain.ApplicationState) (objectKey string, err error)
}
