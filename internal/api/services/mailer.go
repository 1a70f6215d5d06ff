package services

import (
	"fmt"
	"log"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/rohits-web03/foodlink/internal/config"
)

// Mailer delivers transactional mail (verification OTPs, password resets).
// Delivery is delegated to the configured SMTP provider.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Mail is the process-wide mailer. Without SMTP settings it degrades to
// logging the message, which keeps local development working.
var Mail Mailer = newMailer()

func newMailer() Mailer {
	c := config.Envs.SMTP
	if c.Host == "" {
		log.Println("SMTP_HOST not set, emails will be logged instead of sent")
		return logMailer{}
	}
	return &smtpMailer{cfg: c}
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	return smtp.SendMail(addr, auth, envelopeFrom(m.cfg.From), []string{to}, []byte(msg.String()))
}

// envelopeFrom extracts the bare address from the configured From header so
// the SMTP envelope sender matches what the header advertises.
func envelopeFrom(from string) string {
	if parsed, err := mail.ParseAddress(from); err == nil {
		return parsed.Address
	}
	return from
}

type logMailer struct{}

func (logMailer) Send(to, subject, htmlBody string) error {
	log.Printf("MAIL to=%s subject=%q body=%s", to, subject, htmlBody)
	return nil
}
