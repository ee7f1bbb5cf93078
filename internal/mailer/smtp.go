// Package mailer sends verification and password-reset emails over SMTP.
// It is invoked by the queue consumer, never directly from a request path.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/iliyamo/user-account-service/internal/config"
)

// Mailer holds SMTP coordinates and the public base URL used to build
// links embedded in outgoing messages.
type Mailer struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	baseURL string
}

func New(cfg config.Config) *Mailer {
	return &Mailer{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPass,
		from:    cfg.SMTPFrom,
		baseURL: cfg.AppBaseURL,
	}
}

// SendVerification mails an email-verification link carrying the token.
func (m *Mailer) SendVerification(to, displayName, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Welcome! Please confirm your email address by opening the link below:\r\n\r\n"+
			"%s\r\n\r\n"+
			"The link is valid for 24 hours. If you did not create an account, you can ignore this message.\r\n",
		nameOr(displayName, to), link)
	return m.send(to, "Verify your email address", body)
}

// SendPasswordReset mails a password-reset link carrying the token.
func (m *Mailer) SendPasswordReset(to, displayName, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"We received a request to reset your password. Open the link below to choose a new one:\r\n\r\n"+
			"%s\r\n\r\n"+
			"The link is valid for 1 hour. If you did not request a reset, your password is unchanged and you can ignore this message.\r\n",
		nameOr(displayName, to), link)
	return m.send(to, "Reset your password", body)
}

// send assembles an RFC 5322 message and hands it to the SMTP server.
// smtp.SendMail upgrades to STARTTLS when the server offers it.
func (m *Mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.from, to, subject, body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
