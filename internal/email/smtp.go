package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendSanctionLetterEmail(ctx context.Context, toEmail, customerName, letterNumber, downloadURL string, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectSanctionLetterFmt, letterNumber)
	content, err := renderEmailTemplate("sanction_letter.html", sanctionLetterEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your loan is approved",
			Heading:  "Your loan is approved",
			CTALabel: "Download sanction letter",
			CTAURL:   downloadURL,
		},
		CustomerName:  customerName,
		LetterNumber:  letterNumber,
		HasAttachment: len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendManualReviewAlertEmail(ctx context.Context, toEmail, sessionID string, riskScore float64) error {
	subject := fmt.Sprintf(subjectManualReviewFmt, sessionID)
	content, err := renderEmailTemplate("manual_review.html", manualReviewEmailData{
		baseEmailData: baseEmailData{
			Title:   "Manual review required",
			Heading: "Manual review required",
		},
		SessionID: sessionID,
		RiskScore: fmt.Sprintf("%.0f", riskScore),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
