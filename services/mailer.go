// services/mailer.go - outbound email for verification codes
package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer sends the 6-digit verification and reset codes over SMTP.
// With no SMTP_HOST configured it logs the code instead, which keeps
// local development working without a relay.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     getEnvOr("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOr("SMTP_FROM", "noreply@bowlingmanager.local"),
	}
}

func getEnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// SendVerificationCode delivers a registration confirmation code.
func (m *Mailer) SendVerificationCode(to, code string) error {
	subject := "Verify your email"
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	return m.send(to, subject, body)
}

// SendPasswordResetCode delivers a password reset code.
func (m *Mailer) SendPasswordResetCode(to, code string) error {
	subject := "Password reset code"
	body := fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Enabled() {
		log.Printf("SMTP not configured; code for %s: %s", to, body)
		return nil
	}

	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}
