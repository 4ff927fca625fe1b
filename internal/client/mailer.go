// Outbound email delivery for magic-link logins.
//
// The delivery channel is a collaborator, not part of the protocol: the
// verification step is identical whether the secret arrived by email or
// was surfaced on the console.

package client

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"net/url"

	"github.com/gnosis-auth/backend/internal/config"
	"github.com/gnosis-auth/backend/internal/template"
)

type Mailer interface {
	SendLoginLink(ctx context.Context, email, link, token string) error
}

// NewMailer selects the delivery backend from configuration.
func NewMailer(cfg config.EmailConfig) Mailer {
	if cfg.Provider == "smtp" {
		return &SMTPMailer{cfg: cfg}
	}
	return &ConsoleMailer{}
}

// ConsoleMailer logs the message instead of sending it. Used outside
// production.
type ConsoleMailer struct{}

func (m *ConsoleMailer) SendLoginLink(_ context.Context, email, link, token string) error {
	log.Printf("[Mailer] (console) login link for %s: %s (token %s)", email, link, token)
	return nil
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.EmailConfig
}

func (m *SMTPMailer) SendLoginLink(_ context.Context, email, link, token string) error {
	body := template.LoginEmail(link, token)
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: Your Gnosis Login Link\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromEmail, email, body)

	addr := net.JoinHostPort(m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{email}, []byte(msg))
}

// LoginLink builds the clickable verification URL embedded in the
// delivery email.
func LoginLink(domain, email, token, returnURL string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	q.Set("return_url", returnURL)
	return fmt.Sprintf("http://%s/api/auth/token?%s", domain, q.Encode())
}
