package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/ruthwik162/appointment-server/internal/config"
)

// Sender delivers transactional mail. Registration treats delivery as
// best-effort: a failed send is logged by the caller and swallowed.
type Sender interface {
	SendWelcome(to, username string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay
type SMTPMailer struct {
	config config.EmailConfig
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg}
}

// SendWelcome sends the post-registration welcome mail
func (m *SMTPMailer) SendWelcome(to, username string) error {
	subject := "Welcome to the Platform!"
	body := fmt.Sprintf(`Hi %s,

Your account has been successfully registered.

Thank you for joining us!

Start our service to make it easy to connect to department faculty.
`, username)

	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.config.SMTPUsername == "" || m.config.SMTPPassword == "" {
		return fmt.Errorf("email credentials not configured")
	}

	auth := smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)

	fromEmail := m.config.FromEmail
	if fromEmail == "" {
		fromEmail = m.config.SMTPUsername
	}

	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		m.config.FromName, fromEmail, to, subject, body))

	addr := m.config.SMTPHost + ":" + m.config.SMTPPort
	if err := smtp.SendMail(addr, auth, fromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
