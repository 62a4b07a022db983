package services

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taonaire/catalog-backend/internal/config"
)

func TestSMTPMailerNotConfigured(t *testing.T) {
	m := NewSMTPMailer(&config.Config{})
	assert.ErrorIs(t, m.SendOTP(context.Background(), "a@x.com", "A", "123456"), ErrMailerNotConfigured)
}

func TestSMTPMailerSendsRenderedMessage(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: "2525", SMTPUser: "bot@x.com"})

	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "bot@x.com", from)
		assert.Equal(t, []string{"a@x.com"}, to)
		return nil
	}

	require.NoError(t, m.SendOTP(context.Background(), "a@x.com", "<Alice>", "042917"))
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Password Reset OTP")
	assert.Contains(t, string(gotMsg), "042917")
	assert.Contains(t, string(gotMsg), "&lt;Alice&gt;")
	assert.Contains(t, string(gotMsg), "valid for <strong>5 minutes</strong>")
}

func TestSMTPMailerHonoursContext(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: "25", SMTPFrom: "bot@x.com"})
	release := make(chan struct{})
	defer close(release)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return errors.New("late")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.SendOTP(ctx, "a@x.com", "A", "123456"), context.DeadlineExceeded)
}
