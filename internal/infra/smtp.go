package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/badkluster/taller-backend-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Adjunto is an in-memory email attachment.
type Adjunto struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

// Mensaje is a single outbound email.
type Mensaje struct {
	To       string
	BCC      []string
	Subject  string
	Text     string
	HTML     string
	Adjuntos []Adjunto
}

// Mailer sends emails. Services and sweeps depend on the interface so tests
// assert on sent messages without a live SMTP server; failures are plain
// errors, caught per call site.
type Mailer interface {
	Send(msg Mensaje) error
}

type smtpMailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     cfg.SMTPUser,
	}
}

func (m *smtpMailer) Send(msg Mensaje) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{msg.To}
	e.Bcc = msg.BCC
	e.Subject = msg.Subject
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	for _, adj := range msg.Adjuntos {
		ct := adj.ContentType
		if ct == "" {
			ct = "application/pdf"
		}
		if _, err := e.Attach(bytes.NewReader(adj.Datos), adj.Nombre, ct); err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", adj.Nombre, err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
