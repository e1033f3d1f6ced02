package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// EmailTransport delivers messages over SMTP. The handle is the recipient
// address.
type EmailTransport struct {
	cfg  EmailConfig
	send func(*gomail.Message) error
}

func NewEmailTransport(cfg EmailConfig) (*EmailTransport, error) {
	if cfg.SMTPHost == "" || cfg.FromEmail == "" {
		return nil, errors.New("email: smtp host and from address are required")
	}
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &EmailTransport{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}, nil
}

func (t *EmailTransport) Name() string { return "email" }

func (t *EmailTransport) Deliver(ctx context.Context, to, text string) error {
	if !strings.Contains(to, "@") {
		return fmt.Errorf("email: invalid recipient %q", to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", t.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subjectFor(text))
	m.SetBody("text/plain", stripMarkdown(text))

	if err := t.send(m); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

// subjectFor uses the first line of the message as the subject.
func subjectFor(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(stripMarkdown(first))
	if first == "" {
		return "MotriLog"
	}
	return "[MotriLog] " + first
}

func stripMarkdown(s string) string {
	return strings.NewReplacer("*", "", "`", "", "_", "").Replace(s)
}
