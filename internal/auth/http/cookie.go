package http

import (
	"net/http"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/service"
)

// DefaultCookieName carries the session token.
const DefaultCookieName = "motrilog_session"

type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{Name: DefaultCookieName, TTL: service.DefaultSessionTTL}
}

func (c CookieConfig) set(w http.ResponseWriter, issued service.IssuedSession) {
	maxAge := int(time.Until(issued.Session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(c.TTL.Seconds())
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    issued.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
