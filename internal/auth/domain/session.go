package domain

import "time"

type SessionState string

const (
	SessionPending2FA    SessionState = "pending_2fa"
	SessionAuthenticated SessionState = "authenticated"
)

func (s SessionState) Valid() bool {
	return s == SessionPending2FA || s == SessionAuthenticated
}

// Session is the server-side record behind an opaque session token. Only the
// token fingerprint is stored.
type Session struct {
	ID        string
	TokenHash string
	UserID    string
	State     SessionState
	Attempts  int // failed second-factor attempts
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionMeta is the request metadata recorded on a new session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}
