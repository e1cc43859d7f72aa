package utils

import (
	"errors"

	"gopkg.in/gomail.v2"
)

// ErrMailDisabled is returned when no SMTP host is configured.
var ErrMailDisabled = errors.New("smtp is not configured")

// SMTPMailer sends plain-text notification emails through one SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (m *SMTPMailer) Enabled() bool {
	return m != nil && m.Host != ""
}

// Send delivers one plain-text email.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return ErrMailDisabled
	}
	from := m.From
	if from == "" {
		from = m.User
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
	return d.DialAndSend(msg)
}
