package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestEmailTransport(t *testing.T) {
	tr, err := NewEmailTransport(EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, FromEmail: "noreply@motrilog.app"})
	require.NoError(t, err)

	var sent *gomail.Message
	tr.send = func(m *gomail.Message) error {
		sent = m
		return nil
	}

	require.NoError(t, tr.Deliver(context.Background(), "driver@example.com", LoginCodeMessage("123456")))
	require.NotNil(t, sent)
	require.Equal(t, []string{"driver@example.com"}, sent.GetHeader("To"))
	require.Equal(t, []string{"noreply@motrilog.app"}, sent.GetHeader("From"))
	require.Equal(t, []string{"[MotriLog] 🔐 MotriLog Login"}, sent.GetHeader("Subject"))

	tr.send = func(*gomail.Message) error { return errors.New("connection refused") }
	require.ErrorContains(t, tr.Deliver(context.Background(), "driver@example.com", "x"), "connection refused")

	require.Error(t, tr.Deliver(context.Background(), "12345", "x"))
}

func TestEmailTransportConfig(t *testing.T) {
	_, err := NewEmailTransport(EmailConfig{})
	require.Error(t, err)
}

func TestSubjectFor(t *testing.T) {
	require.Equal(t, "MotriLog", subjectFor("\nbody"))
	require.Equal(t, "[MotriLog] ⛔ Account Suspended", subjectFor(SuspensionMessage()))
}
