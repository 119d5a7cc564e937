package infra

import (
	"fmt"
	"net/smtp"

	"cobranzas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notifications through the configured SMTP relay.
type Mailer struct {
	from string
	addr string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from: cfg.SMTPUser,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// Configurado is false when no SMTP host is set; callers skip sending in that case.
func (m *Mailer) Configurado() bool {
	return m != nil && m.addr != "" && m.addr[0] != ':'
}

// Enviar delivers one message. html may be empty.
func (m *Mailer) Enviar(to, subject, text, html string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	if html != "" {
		e.HTML = []byte(html)
	}
	if err := e.Send(m.addr, m.auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
