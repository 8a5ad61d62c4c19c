package jobs

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

// Attachment is a file sent along with an e-mail.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sender delivers a single e-mail.
type Sender interface {
	Send(to, subject, body string, attachment *Attachment) error
}

// Mailer sends e-mail through an SMTP server.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	return &Mailer{
		host:     host,
		user:     user,
		password: password,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", host, port),
	}
}

func (m *Mailer) Send(to, subject, body string, attachment *Attachment) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if attachment != nil {
		if _, err := e.Attach(bytes.NewReader(attachment.Data), attachment.Name, attachment.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", attachment.Name, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

// LogSender only logs outgoing e-mail. Used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string, attachment *Attachment) error {
	ev := log.Info().Str("to", to).Str("subject", subject)
	if attachment != nil {
		ev = ev.Str("attachment", attachment.Name).Int("bytes", len(attachment.Data))
	}
	ev.Msg("📧 E-mail not sent (SMTP disabled)")
	return nil
}
