// Package repository provides Postgres persistence for loan sessions, the
// fraud ledger, and pre-approved offers.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"credsaathi_backend/internal/loans/domain"
)

var ErrSessionNotFound = errors.New("loan session not found")

// SessionRepository stores application state snapshots. The full state is
// kept as a jsonb document; a handful of columns are lifted out for
// queries and dashboards.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Save upserts the state snapshot for its session.
func (r *SessionRepository) Save(ctx context.Context, state *domain.ApplicationState) error {
	snapshot, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO loan_sessions (session_id, phone, loan_status, current_agent, fraud_risk_score, workflow_complete, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO UPDATE SET
			phone = EXCLUDED.phone,
			loan_status = EXCLUDED.loan_status,
			current_agent = EXCLUDED.current_agent,
			fraud_risk_score = EXCLUDED.fraud_risk_score,
			workflow_complete = EXCLUDED.workflow_complete,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
	`, state.SessionID, state.Phone, string(state.LoanStatus), string(state.CurrentAgent),
		state.FraudRiskScore, state.WorkflowComplete, snapshot, state.CreatedAt, state.UpdatedAt)
	return err
}

// Get loads the state snapshot for a session.
func (r *SessionRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error) {
	var snapshot []byte
	err := r.pool.QueryRow(ctx, `
		SELECT state FROM loan_sessions WHERE session_id = $1
	`, sessionID).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var state domain.ApplicationState
	if err := json.Unmarshal(snapshot, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// DeleteIdleBefore removes sessions not updated since the cutoff and
// returns how many were dropped. The scheduler calls this on a timer.
func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM loan_sessions WHERE updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
