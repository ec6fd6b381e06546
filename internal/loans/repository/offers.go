package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/phone"
)

// OfferStore serves pre-approved offers loaded into the loan_offers
// table. A missing row means the applicant simply has no offer.
type OfferStore struct {
	pool *pgxpool.Pool
}

func NewOfferStore(pool *pgxpool.Pool) *OfferStore {
	return &OfferStore{pool: pool}
}

var _ ports.OfferProvider = (*OfferStore)(nil)

func (s *OfferStore) OfferByPhone(ctx context.Context, phoneNumber string) (*ports.Offer, error) {
	key := phone.NormalizeE164(phoneNumber)
	if key == "" {
		return nil, nil
	}

	var offer ports.Offer
	err := s.pool.QueryRow(ctx, `
		SELECT phone, interest_rate, offer_amount, pre_approved_limit
		FROM loan_offers
		WHERE phone = $1
	`, key).Scan(&offer.Phone, &offer.InterestRate, &offer.OfferAmount, &offer.PreApprovedLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Upsert loads or refreshes an offer, keyed by normalized phone.
func (s *OfferStore) Upsert(ctx context.Context, offer ports.Offer) error {
	key := phone.NormalizeE164(offer.Phone)
	if key == "" {
		return errors.New("offer phone does not normalize to E.164")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO loan_offers (phone, interest_rate, offer_amount, pre_approved_limit, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (phone) DO UPDATE SET
			interest_rate = EXCLUDED.interest_rate,
			offer_amount = EXCLUDED.offer_amount,
			pre_approved_limit = EXCLUDED.pre_approved_limit,
			updated_at = now()
	`, key, offer.InterestRate, offer.OfferAmount, offer.PreApprovedLimit)
	return err
}
