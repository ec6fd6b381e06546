// Package fraud implements the compliance layer of the pipeline: a ledger
// of prior rejections, stateless rule evaluators over an application
// snapshot, and a bounded risk-score aggregator.
package fraud

import (
	"context"
	"strings"
	"sync"
	"time"

	"credsaathi_backend/platform/phone"
)

// Ledger tracks phones seen on prior rejections and the set of addresses
// flagged as suspicious. Implementations must be safe for concurrent use;
// they are the only cross-session shared mutable state in the pipeline.
type Ledger interface {
	// RecordRejection increments the rejection count for a phone, creating
	// the entry at 1 when absent. Counts only ever increase.
	RecordRejection(ctx context.Context, phoneNumber string) error

	// RejectionCount returns how many rejections are recorded for a phone.
	RejectionCount(ctx context.Context, phoneNumber string) (int, error)

	// AddSuspiciousAddress registers an address, matched case-insensitively.
	AddSuspiciousAddress(ctx context.Context, address string) error

	// IsSuspiciousAddress reports whether the address is registered.
	IsSuspiciousAddress(ctx context.Context, address string) (bool, error)

	// RecordFlagged notes that an application carried fraud findings.
	RecordFlagged(ctx context.Context, sessionID string) error

	// Statistics returns a monitoring snapshot of the ledger.
	Statistics(ctx context.Context) (Statistics, error)
}

// repeatThreshold is the rejection count at which a phone counts as a
// repeat applicant.
const repeatThreshold = 2

// IsRepeat reports whether a rejection count marks a repeat applicant.
func IsRepeat(count int) bool {
	return count >= repeatThreshold
}

// Statistics is a monitoring snapshot of the ledger contents.
type Statistics struct {
	TotalFlaggedApplications int            `json:"total_flagged_applications"`
	RepeatApplicants         int            `json:"repeat_applicants"`
	KnownSuspiciousAddresses int            `json:"known_suspicious_addresses"`
	RejectionCounts          map[string]int `json:"rejection_counts"`
	Timestamp                time.Time      `json:"timestamp"`
}

// MemoryLedger is the process-local Ledger. It lives for the process
// lifetime; the Postgres-backed ledger in the repository package offers the
// same contract for multi-process deployments.
type MemoryLedger struct {
	mu                  sync.Mutex
	rejectedPhones      map[string]int
	suspiciousAddresses map[string]struct{}
	flaggedSessions     map[string]struct{}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		rejectedPhones:      make(map[string]int),
		suspiciousAddresses: make(map[string]struct{}),
		flaggedSessions:     make(map[string]struct{}),
	}
}

func (l *MemoryLedger) RecordRejection(_ context.Context, phoneNumber string) error {
	key := phone.NormalizeE164(phoneNumber)
	if key == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejectedPhones[key]++
	return nil
}

func (l *MemoryLedger) RejectionCount(_ context.Context, phoneNumber string) (int, error) {
	key := phone.NormalizeE164(phoneNumber)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rejectedPhones[key], nil
}

func (l *MemoryLedger) AddSuspiciousAddress(_ context.Context, address string) error {
	normalized := normalizeAddress(address)
	if normalized == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suspiciousAddresses[normalized] = struct{}{}
	return nil
}

func (l *MemoryLedger) IsSuspiciousAddress(_ context.Context, address string) (bool, error) {
	normalized := normalizeAddress(address)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.suspiciousAddresses[normalized]
	return ok, nil
}

func (l *MemoryLedger) RecordFlagged(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flaggedSessions[sessionID] = struct{}{}
	return nil
}

func (l *MemoryLedger) Statistics(_ context.Context) (Statistics, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[string]int, len(l.rejectedPhones))
	repeats := 0
	for k, v := range l.rejectedPhones {
		counts[k] = v
		if IsRepeat(v) {
			repeats++
		}
	}

	return Statistics{
		TotalFlaggedApplications: len(l.flaggedSessions),
		RepeatApplicants:         repeats,
		KnownSuspiciousAddresses: len(l.suspiciousAddresses),
		RejectionCounts:          counts,
		Timestamp:                time.Now(),
	}, nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
