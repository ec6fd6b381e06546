package adapters

import (
	"context"
	"hash/fnv"
	"sync"

	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/phone"
)

// Deterministic score band produced for phones without an override.
const (
	bureauScoreFloor = 550
	bureauScoreSpan  = 300
)

// StubCreditBureau produces deterministic credit scores keyed by phone.
// The score for a given phone never changes between calls, so repeated
// underwriting runs are stable. Overrides allow operators to pin scores
// for test numbers.
type StubCreditBureau struct {
	mu        sync.RWMutex
	overrides map[string]int
}

func NewStubCreditBureau() *StubCreditBureau {
	return &StubCreditBureau{overrides: make(map[string]int)}
}

var _ ports.CreditBureau = (*StubCreditBureau)(nil)

// SetScore pins the score for a phone number.
func (b *StubCreditBureau) SetScore(phoneNumber string, score int) {
	key := phone.NormalizeE164(phoneNumber)
	if key == "" {
		key = phoneNumber
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[key] = score
}

func (b *StubCreditBureau) Score(_ context.Context, phoneNumber string) (int, error) {
	key := phone.NormalizeE164(phoneNumber)
	if key == "" {
		key = phoneNumber
	}

	b.mu.RLock()
	score, ok := b.overrides[key]
	b.mu.RUnlock()
	if ok {
		return score, nil
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	return bureauScoreFloor + int(h.Sum32()%bureauScoreSpan), nil
}
