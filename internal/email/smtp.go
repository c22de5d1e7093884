package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled reports whether enough settings exist to attempt delivery.
func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

// SendText delivers one plain-text mail. Callers treat failures as
// best-effort: a lost welcome mail never blocks the capture flow.
func SendText(cfg SMTPConfig, to, subject, body string) error {
	if !cfg.Enabled() {
		return fmt.Errorf("email: smtp is not configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var a smtp.Auth
	if cfg.User != "" {
		a = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return smtp.SendMail(addr, a, cfg.From, []string{to}, []byte(b.String()))
}
