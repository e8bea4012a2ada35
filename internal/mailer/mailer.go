package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is an outbound email handed to the Mailer collaborator.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("email recipient is empty")
	}
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %v", msg.To, err)
	}
	return nil
}

// LogMailer records the message instead of sending it; used when no SMTP
// relay is configured so the outbox worker still completes its tasks.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(msg Message) error {
	m.Logger.Info("email (log only)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// FromConfig picks the SMTP mailer when a host is configured, otherwise the
// log-only fallback.
func FromConfig(host, port, username, password, from string, logger *slog.Logger) Mailer {
	if host == "" {
		return &LogMailer{Logger: logger}
	}
	return NewSMTPMailer(host, port, username, password, from)
}
