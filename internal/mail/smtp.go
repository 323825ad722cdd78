package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/storeops/faxbridge/internal/config"
)

// SMTPSender submits gateway emails over authenticated SMTP.
type SMTPSender struct {
	cfg  config.SMTPConfig
	from string
}

// NewSMTPSender creates a sender using the given SMTP account. from is the
// envelope and header From address.
func NewSMTPSender(cfg config.SMTPConfig, from string) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST must be set")
	}
	if from == "" {
		return nil, fmt.Errorf("sender address must be set")
	}
	return &SMTPSender{cfg: cfg, from: from}, nil
}

// Send dispatches one message with its PDF attachment. A fresh connection is
// used per send; function invocations are short-lived so there is nothing to
// pool.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid from address %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if len(msg.Attachment) > 0 {
		err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment),
			gomail.WithFileContentType(gomail.ContentType("application/pdf")))
		if err != nil {
			return fmt.Errorf("failed to attach %q: %w", msg.AttachmentName, err)
		}
	}

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}
