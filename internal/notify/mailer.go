// Package notify delivers reservation notification mail. Delivery is
// best-effort: the dispatcher decouples senders from SMTP latency and
// failures are logged, never surfaced to the reservation flow.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a single message.
type Mailer interface {
	Deliver(to, subject, htmlBody string) error
}

// SMTPConfig carries the connection settings for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends HTML mail through an SMTP server.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from the given settings.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// Deliver sends one message, dialing per call. Reservation traffic is low
// enough that connection reuse is not worth the bookkeeping.
func (m *SMTPMailer) Deliver(to, subject, htmlBody string) error {
	if m == nil || m.dialer == nil {
		return fmt.Errorf("notify: mailer not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: send to %s failed: %w", to, err)
	}
	return nil
}
