package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/codebaseshow/codebaseshow/pkg/config"
	"github.com/codebaseshow/codebaseshow/pkg/logger"
)

// EmailMessage is an outbound notification intent. Lifecycle transitions
// build these after their state change has been persisted; delivery is
// always best-effort.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message. The lifecycle service depends on this
// interface; tests substitute a recorder.
type Mailer interface {
	Send(message EmailMessage) error
}

type EmailService struct {
	mailer Mailer
}

func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{
		mailer: mailer,
	}
}

// SendBestEffort attempts to deliver each message, logging failures.
// Notification errors never affect the outcome of the operation that
// produced them.
func (s *EmailService) SendBestEffort(messages ...EmailMessage) {
	for _, message := range messages {
		if err := s.mailer.Send(message); err != nil {
			logger.WithError(err).Errorf("Failed to send email %q to %s", message.Subject, message.To)
		}
	}
}

// SMTPMailer delivers mail through a plain SMTP endpoint. From and To
// default to the configured service address, which is where admin
// notifications go.
type SMTPMailer struct {
	addr     string
	username string
	password string
	address  string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		addr:     config.AppConfig.Email.SMTPAddr,
		username: config.AppConfig.Email.SMTPUsername,
		password: config.AppConfig.Email.SMTPPassword,
		address:  config.AppConfig.Email.Address,
	}
}

func (m *SMTPMailer) Send(message EmailMessage) error {
	if message.From == "" {
		message.From = m.address
	}
	if message.To == "" {
		message.To = m.address
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: %s\r\n", message.From))
	body.WriteString(fmt.Sprintf("To: %s\r\n", message.To))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", message.Subject))
	body.WriteString("MIME-Version: 1.0\r\n")

	if message.HTML != "" {
		body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		body.WriteString(message.HTML)
	} else {
		body.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		body.WriteString(message.Text)
	}

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if i := strings.Index(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}

	return smtp.SendMail(m.addr, auth, message.From, []string{message.To}, []byte(body.String()))
}
