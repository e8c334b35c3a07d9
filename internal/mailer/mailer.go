// Package mailer notifies sellers by email.
package mailer

import (
	"fmt"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

// SMTPMailer sends transactional email through an SMTP relay.
type SMTPMailer struct {
	from   string
	sender gomail.Sender
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.From, cfg.Password),
	}
}

// newWithSender bypasses SMTP; used in tests.
func newWithSender(from string, s gomail.Sender) *SMTPMailer {
	return &SMTPMailer{from: from, sender: s}
}

// SendListingPublished tells the seller their listing is live.
func (m *SMTPMailer) SendListingPublished(to string, l *domain.Listing) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Tu publicación ya está activa")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Tu publicación \"%s\" fue publicada con éxito.\n\nPrecio: %s\nUbicación: %s\n",
		l.Title, l.FormattedPrice(), l.Location))

	if m.sender != nil {
		return gomail.Send(m.sender, msg)
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send listing published email: %w", err)
	}
	return nil
}
