package service

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrNotFound           = errors.New("not found")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrNotPending         = errors.New("no second factor pending")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNoHandle           = errors.New("no notification handle linked")
	ErrDeliveryFailed     = errors.New("notification delivery failed")
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Notifier is the best-effort delivery contract of notify.Gateway.
type Notifier interface {
	Send(ctx context.Context, handle, text string) bool
}
