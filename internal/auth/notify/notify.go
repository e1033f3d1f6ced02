package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// ErrDisabled is returned by the "none" transport.
var ErrDisabled = errors.New("notify: delivery disabled")

// Transport delivers a text message to a handle (a Telegram chat id or an
// e-mail address, depending on the driver).
type Transport interface {
	Name() string
	Deliver(ctx context.Context, handle, text string) error
}

// Gateway wraps a Transport with the best-effort contract callers rely on:
// Send reports success as a bool, logs failures and never panics.
type Gateway struct {
	transport Transport
	logger    *slog.Logger
	timeout   time.Duration
}

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

func NewGateway(t Transport, logger *slog.Logger) *Gateway {
	if t == nil {
		t = Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{transport: t, logger: logger, timeout: DefaultTimeout}
}

// Send makes exactly one delivery attempt. It returns false for an empty
// handle, a transport error or a transport panic.
func (g *Gateway) Send(ctx context.Context, handle, text string) (ok bool) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return false
	}

	log := slogx.FromContextOr(ctx, g.logger).With("transport", g.transport.Name())
	defer func() {
		if r := recover(); r != nil {
			log.Error("notification transport panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.transport.Deliver(ctx, handle, text); err != nil {
		log.Warn("notification delivery failed", "err", err)
		return false
	}
	log.Debug("notification delivered")
	return true
}

// Disabled is the "none" transport. Every delivery fails, so logins with a
// linked handle fall back to single-factor.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Deliver(context.Context, string, string) error { return ErrDisabled }

// LogTransport writes messages to the logger instead of sending them. Only
// meant for local development.
type LogTransport struct {
	Logger *slog.Logger
}

func (LogTransport) Name() string { return "log" }

func (t LogTransport) Deliver(ctx context.Context, handle, text string) error {
	l := t.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification (log transport)", "handle", handle, "text", text)
	return nil
}
