package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/notify"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// LoginStatus tells the caller which session state a login produced.
type LoginStatus string

const (
	LoginAuthenticated LoginStatus = "success"
	LoginPending2FA    LoginStatus = "2fa_required"
)

type LoginResult struct {
	Status  LoginStatus
	User    domain.User
	Session IssuedSession
}

// AuthService runs the login flow: password, optional second factor and
// session issuance.
type AuthService struct {
	Store    store.Store
	OTP      *OTPService
	Sessions *SessionManager
	Notifier Notifier
}

// Login verifies the password and opens a session. Users with a linked
// handle get a pending session and a code; if the code cannot be delivered
// the login falls back to a fully authenticated session.
func (s *AuthService) Login(ctx context.Context, email, password string, meta domain.SessionMeta) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		cryptox.BurnPasswordCheck(password)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if !u.IsActive {
		log.Info("login refused for suspended account", "user_id", u.ID)
		return LoginResult{}, ErrAccountSuspended
	}
	if !cryptox.CheckPassword(password, u.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.HasNotificationHandle() {
		res, sent, err := s.startSecondFactor(ctx, u, meta)
		if err != nil {
			return LoginResult{}, err
		}
		if sent {
			return res, nil
		}
	}

	sess, err := s.Sessions.OpenAuthenticated(ctx, u.ID, meta)
	if err != nil {
		return LoginResult{}, err
	}
	log.Info("user logged in", "user_id", u.ID)
	return LoginResult{Status: LoginAuthenticated, User: u, Session: sess}, nil
}

func (s *AuthService) startSecondFactor(ctx context.Context, u domain.User, meta domain.SessionMeta) (LoginResult, bool, error) {
	log := slogx.FromContext(ctx)

	code, err := s.OTP.Issue(ctx, u.ID)
	if err != nil {
		return LoginResult{}, false, err
	}

	if !s.Notifier.Send(ctx, u.TelegramChatID, notify.LoginCodeMessage(code)) {
		log.Warn("login code delivery failed, continuing without second factor", "user_id", u.ID)
		if err := s.OTP.Discard(ctx, u.ID); err != nil {
			log.Error("failed to discard undelivered login code", "user_id", u.ID, "error", err)
		}
		return LoginResult{}, false, nil
	}

	sess, err := s.Sessions.OpenPending(ctx, u.ID, meta)
	if err != nil {
		return LoginResult{}, false, err
	}
	log.Info("login code sent", "user_id", u.ID)
	return LoginResult{Status: LoginPending2FA, User: u, Session: sess}, true, nil
}

// VerifySecondFactor completes a pending login. A wrong code counts against
// the session; once MaxOTPAttempts is reached the session is destroyed.
func (s *AuthService) VerifySecondFactor(ctx context.Context, token, code string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	sess, err := s.Sessions.Resolve(ctx, token)
	if err != nil {
		return LoginResult{}, err
	}
	if sess.State != domain.SessionPending2FA {
		return LoginResult{}, ErrNotPending
	}
	if sess.Attempts >= MaxOTPAttempts {
		_ = s.Sessions.Destroy(ctx, token)
		return LoginResult{}, ErrTooManyAttempts
	}

	ok, err := s.OTP.Verify(ctx, sess.UserID, code)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		n, err := s.Sessions.RecordFailedAttempt(ctx, token)
		if err != nil {
			return LoginResult{}, err
		}
		if n >= MaxOTPAttempts {
			log.Warn("second factor attempts exhausted", "user_id", sess.UserID)
			_ = s.Sessions.Destroy(ctx, token)
			return LoginResult{}, ErrTooManyAttempts
		}
		return LoginResult{}, ErrInvalidOTP
	}

	// The account may have been suspended while the code was in flight.
	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Sessions.Destroy(ctx, token)
		return LoginResult{}, ErrUnauthorized
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		_ = s.Sessions.Destroy(ctx, token)
		return LoginResult{}, ErrAccountSuspended
	}

	issued, err := s.Sessions.Promote(ctx, token)
	if err != nil {
		return LoginResult{}, err
	}
	log.Info("user logged in with second factor", "user_id", u.ID)
	return LoginResult{Status: LoginAuthenticated, User: u, Session: issued}, nil
}

// Logout destroys the session behind token, pending or authenticated.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}

// AuthStatus is the answer to "who is this session?" for page gating.
type AuthStatus struct {
	LoggedIn   bool
	Pending2FA bool
	Role       domain.Role
}

// CheckAuth never fails on a bad token; it reports a logged-out status
// instead. Only store errors are returned.
func (s *AuthService) CheckAuth(ctx context.Context, token string) (AuthStatus, error) {
	sess, err := s.Sessions.Resolve(ctx, token)
	if errors.Is(err, ErrUnauthorized) {
		return AuthStatus{}, nil
	}
	if err != nil {
		return AuthStatus{}, err
	}
	if sess.State == domain.SessionPending2FA {
		return AuthStatus{Pending2FA: true}, nil
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return AuthStatus{}, nil
	}
	if err != nil {
		return AuthStatus{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return AuthStatus{}, nil
	}
	return AuthStatus{LoggedIn: true, Role: u.Role}, nil
}
