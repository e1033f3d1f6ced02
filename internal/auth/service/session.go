package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
	"github.com/Ma16q/MotriLog/pkg/idx"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

const (
	// DefaultSessionTTL is the lifetime of an authenticated session.
	DefaultSessionTTL = 24 * time.Hour
	// PendingSessionTTL matches the OTP window.
	PendingSessionTTL = OTPTTL
	// MaxOTPAttempts is how many wrong codes a pending session tolerates.
	MaxOTPAttempts = 5
)

// IssuedSession pairs the stored record with the raw token handed to the
// client. The token is never persisted.
type IssuedSession struct {
	Token   string
	Session domain.Session
}

// SessionManager owns the session state machine:
// pending_2fa -> authenticated -> (destroyed).
type SessionManager struct {
	Sessions store.Sessions
	Clock    Clock
	TTL      time.Duration
}

func NewSessionManager(sessions store.Sessions, ttl time.Duration, clock Clock) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{Sessions: sessions, Clock: clock, TTL: ttl}
}

func (m *SessionManager) OpenAuthenticated(ctx context.Context, userID string, meta domain.SessionMeta) (IssuedSession, error) {
	return m.open(ctx, userID, domain.SessionAuthenticated, m.TTL, meta)
}

func (m *SessionManager) OpenPending(ctx context.Context, userID string, meta domain.SessionMeta) (IssuedSession, error) {
	return m.open(ctx, userID, domain.SessionPending2FA, PendingSessionTTL, meta)
}

func (m *SessionManager) open(
	ctx context.Context,
	userID string,
	state domain.SessionState,
	ttl time.Duration,
	meta domain.SessionMeta,
) (IssuedSession, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssuedSession{}, err
	}

	now := m.Clock.now()
	sess := domain.Session{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    userID,
		State:     state,
		UserAgent: truncate(meta.UserAgent, 256),
		IPAddress: truncate(meta.IPAddress, 64),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.Sessions.CreateSession(ctx, sess); err != nil {
		return IssuedSession{}, fmt.Errorf("create session: %w", err)
	}

	slogx.FromContext(ctx).Debug("session opened", "session_id", sess.ID, "state", state)
	return IssuedSession{Token: token, Session: sess}, nil
}

// Resolve returns the live session for token. Unknown, malformed and expired
// tokens all yield ErrUnauthorized; expired records are removed.
func (m *SessionManager) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrUnauthorized
	}

	hash := cryptox.FingerprintToken(token)
	sess, err := m.Sessions.GetSessionByHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidRecord) {
		return domain.Session{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	if sess.Expired(m.Clock.now()) {
		_ = m.Sessions.DeleteSession(ctx, hash)
		return domain.Session{}, ErrUnauthorized
	}
	return sess, nil
}

// Promote turns a pending session into an authenticated one under a fresh
// token. The pending token stops working.
func (m *SessionManager) Promote(ctx context.Context, token string) (IssuedSession, error) {
	sess, err := m.Resolve(ctx, token)
	if err != nil {
		return IssuedSession{}, err
	}
	if sess.State != domain.SessionPending2FA {
		return IssuedSession{}, ErrNotPending
	}

	if err := m.Sessions.DeleteSession(ctx, sess.TokenHash); err != nil {
		return IssuedSession{}, fmt.Errorf("delete pending session: %w", err)
	}
	return m.OpenAuthenticated(ctx, sess.UserID, domain.SessionMeta{
		UserAgent: sess.UserAgent,
		IPAddress: sess.IPAddress,
	})
}

// RecordFailedAttempt increments the failed code counter and returns it.
func (m *SessionManager) RecordFailedAttempt(ctx context.Context, token string) (int, error) {
	n, err := m.Sessions.IncrementSessionAttempts(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrUnauthorized
	}
	return n, err
}

// Destroy removes the session. Unknown tokens are not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.Sessions.DeleteSession(ctx, cryptox.FingerprintToken(token))
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
