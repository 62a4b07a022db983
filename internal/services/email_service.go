package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"

	"github.com/taonaire/catalog-backend/internal/config"
)

var ErrMailerNotConfigured = errors.New("smtp is not configured")

// Mailer delivers one-time codes. Delivery is best-effort: callers log the
// error and carry on.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: from,
		send: smtp.SendMail,
	}
}

var otpEmail = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>Hello <strong>{{.Name}}</strong>,</p>
  <p>You requested a password reset. Use the code below to reset your password:</p>
  <div style="background: #f4f4f4; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #2196F3;">{{.Code}}</span>
  </div>
  <p>This code is valid for <strong>{{.Minutes}} minutes</strong>.</p>
  <p>If you did not request this, please ignore this email.</p>
</div>`))

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	if m.host == "" || m.from == "" {
		return ErrMailerNotConfigured
	}

	msg, err := m.buildMessage(to, name, code)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	// net/smtp has no context support; abandon the send on cancellation.
	done := make(chan error, 1)
	go func() {
		done <- m.send(net.JoinHostPort(m.host, m.port), auth, m.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send otp email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) buildMessage(to, name, code string) ([]byte, error) {
	var body bytes.Buffer
	err := otpEmail.Execute(&body, struct {
		Name    string
		Code    string
		Minutes int
	}{name, code, int(OtpTTL.Minutes())})
	if err != nil {
		return nil, fmt.Errorf("failed to render otp email: %w", err)
	}

	var msg strings.Builder
	msg.WriteString("From: \"Taonaire App\" <" + m.from + ">\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: Password Reset OTP\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.Write(body.Bytes())
	return []byte(msg.String()), nil
}
