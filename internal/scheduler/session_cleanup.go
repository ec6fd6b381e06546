package scheduler

import (
	"context"
	"time"

	"credsaathi_backend/internal/loans/repository"
	"credsaathi_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultSessionCleanupInterval = time.Hour
	defaultSessionRetention       = 30 * 24 * time.Hour
)

// SessionCleanup periodically removes loan sessions that have been idle
// past the retention window.
type SessionCleanup struct {
	sessions  *repository.SessionRepository
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewSessionCleanup(pool *pgxpool.Pool, log *logger.Logger, interval, retention time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = defaultSessionCleanupInterval
	}
	if retention <= 0 {
		retention = defaultSessionRetention
	}

	return &SessionCleanup{
		sessions:  repository.NewSessionRepository(pool),
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *SessionCleanup) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *SessionCleanup) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)

	deleted, err := c.sessions.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		c.log.Warn("session cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("session cleanup deleted idle sessions", "deleted", deleted)
	}
}
