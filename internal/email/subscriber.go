package email

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"credsaathi_backend/internal/adapters/storage"
	domainevents "credsaathi_backend/internal/events"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
)

// stateLoader is the slice of the session repository the subscriber needs.
type stateLoader interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error)
}

// Subscriber delivers mail in reaction to pipeline events. Delivery
// failures are logged, never propagated; the pipeline does not depend on
// mail going out.
type Subscriber struct {
	sender   Sender
	sessions stateLoader
	storage  storage.StorageService
	bucket   string
	opsEmail string
	log      *logger.Logger
}

func NewSubscriber(sender Sender, sessions stateLoader, store storage.StorageService, bucket, opsEmail string, log *logger.Logger) *Subscriber {
	return &Subscriber{
		sender:   sender,
		sessions: sessions,
		storage:  store,
		bucket:   bucket,
		opsEmail: opsEmail,
		log:      log,
	}
}

// Register subscribes the mail handlers on the bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(domainevents.SanctionIssuedName, events.HandlerFunc(s.onSanctionIssued))
	bus.Subscribe(domainevents.ManualReviewName, events.HandlerFunc(s.onManualReview))
}

func (s *Subscriber) onSanctionIssued(ctx context.Context, event events.Event) error {
	issued, ok := event.(domainevents.SanctionIssued)
	if !ok {
		return nil
	}

	state, err := s.sessions.Get(ctx, issued.SessionID)
	if err != nil {
		s.log.Error("sanction mail: load session failed", "error", err, "session_id", issued.SessionID.String())
		return nil
	}
	if state.Email == "" {
		return nil
	}

	var downloadURL string
	if s.storage != nil {
		if presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, issued.ObjectKey); err != nil {
			s.log.ExternalCallFailure("minio", "presign_sanction_letter", err)
		} else {
			downloadURL = presigned.URL
		}
	}

	letterNumber := letterNumberFromKey(issued.ObjectKey)
	if err := s.sender.SendSanctionLetterEmail(ctx, state.Email, state.CustomerName, letterNumber, downloadURL); err != nil {
		s.log.ExternalCallFailure("smtp", "send_sanction_letter", err)
	}
	return nil
}

func (s *Subscriber) onManualReview(ctx context.Context, event events.Event) error {
	review, ok := event.(domainevents.ManualReviewRequired)
	if !ok {
		return nil
	}
	if s.opsEmail == "" {
		return nil
	}
	if err := s.sender.SendManualReviewAlertEmail(ctx, s.opsEmail, review.SessionID.String(), review.RiskScore); err != nil {
		s.log.ExternalCallFailure("smtp", "send_manual_review_alert", err)
	}
	return nil
}

// letterNumberFromKey recovers the letter number from an object key like
// "<session>/sanction_CS-2026-AB12CD34_1a2b3c4d.pdf".
func letterNumberFromKey(key string) string {
	base := key
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".pdf")
	base = strings.TrimPrefix(base, "sanction_")
	// Drop the uniqueness suffix added by storage.
	if idx := strings.LastIndexByte(base, '_'); idx >= 0 {
		base = base[:idx]
	}
	return base
}
