// Package email delivers transactional mail for the loan pipeline:
// sanction letters to applicants and review alerts to the operations
// inbox.
package email

import (
	"context"

	"credsaathi_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes
	FileName string // e.g. "sanction_CS-2026-AB12CD34.pdf"
	MIMEType string // e.g. "application/pdf"
}

type Sender interface {
	SendSanctionLetterEmail(ctx context.Context, toEmail, customerName, letterNumber, downloadURL string, attachments ...Attachment) error
	SendManualReviewAlertEmail(ctx context.Context, toEmail, sessionID string, riskScore float64) error
}

type NoopSender struct{}

func (NoopSender) SendSanctionLetterEmail(_ context.Context, _, _, _, _ string, _ ...Attachment) error {
	return nil
}

func (NoopSender) SendManualReviewAlertEmail(_ context.Context, _, _ string, _ float64) error {
	return nil
}

// NewSender returns the configured sender, or a no-op when SMTP is not
// set up so the pipeline never depends on mail going out.
func NewSender(cfg config.SMTPConfig) (Sender, error) {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
