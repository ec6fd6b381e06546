package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"credsaathi_backend/internal/loans/fraud"
	"credsaathi_backend/platform/phone"
)

// Ledger is the Postgres-backed fraud ledger. Phones are keyed by their
// E.164 form and addresses are stored lowercased, matching the in-memory
// ledger's normalization so both implementations agree on duplicates.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

var _ fraud.Ledger = (*Ledger)(nil)

func (l *Ledger) RecordRejection(ctx context.Context, phoneNumber string) error {
	key := phone.NormalizeE164(phoneNumber)
	if key == "" {
		return nil
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO loan_rejections (phone, rejection_count, last_rejected_at)
		VALUES ($1, 1, now())
		ON CONFLICT (phone) DO UPDATE SET
			rejection_count = loan_rejections.rejection_count + 1,
			last_rejected_at = now()
	`, key)
	return err
}

func (l *Ledger) RejectionCount(ctx context.Context, phoneNumber string) (int, error) {
	key := phone.NormalizeE164(phoneNumber)
	var count int
	err := l.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(rejection_count), 0) FROM loan_rejections WHERE phone = $1
	`, key).Scan(&count)
	return count, err
}

func (l *Ledger) AddSuspiciousAddress(ctx context.Context, address string) error {
	normalized := normalizeAddress(address)
	if normalized == "" {
		return nil
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO suspicious_addresses (address) VALUES ($1)
		ON CONFLICT (address) DO NOTHING
	`, normalized)
	return err
}

func (l *Ledger) IsSuspiciousAddress(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM suspicious_addresses WHERE address = $1)
	`, normalizeAddress(address)).Scan(&exists)
	return exists, err
}

func (l *Ledger) RecordFlagged(ctx context.Context, sessionID string) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO flagged_sessions (session_id, flagged_at) VALUES ($1, now())
		ON CONFLICT (session_id) DO NOTHING
	`, sessionID)
	return err
}

func (l *Ledger) Statistics(ctx context.Context) (fraud.Statistics, error) {
	stats := fraud.Statistics{
		RejectionCounts: make(map[string]int),
		Timestamp:       time.Now(),
	}

	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM flagged_sessions`).Scan(&stats.TotalFlaggedApplications); err != nil {
		return fraud.Statistics{}, err
	}
	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suspicious_addresses`).Scan(&stats.KnownSuspiciousAddresses); err != nil {
		return fraud.Statistics{}, err
	}

	rows, err := l.pool.Query(ctx, `SELECT phone, rejection_count FROM loan_rejections`)
	if err != nil {
		return fraud.Statistics{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var phoneKey string
		var count int
		if err := rows.Scan(&phoneKey, &count); err != nil {
			return fraud.Statistics{}, err
		}
		stats.RejectionCounts[phoneKey] = count
	}
	if err := rows.Err(); err != nil {
		return fraud.Statistics{}, err
	}

	for _, count := range stats.RejectionCounts {
		if fraud.IsRepeat(count) {
			stats.RepeatApplicants++
		}
	}
	return stats, nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
