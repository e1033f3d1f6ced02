package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/notify"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
	"github.com/Ma16q/MotriLog/pkg/idx"
)

// MaxHandleLength bounds a stored notification handle.
const MaxHandleLength = 128

type UserService struct {
	Store    store.Store
	Notifier Notifier
	Clock    Clock
}

type CreateUserParams struct {
	Email    string
	Password string
	Role     domain.Role
	Handle   string
}

// CreateUser registers an account. It is used by the operator CLI; the HTTP
// surface has no sign-up.
func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	email := domain.NormalizeEmail(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(p.Password) < 8 {
		return domain.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if p.Role == "" {
		p.Role = domain.RoleUser
	}
	if !p.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrUnknownRole)
	}
	handle, err := normalizeHandle(p.Handle, true)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Clock.now()
	u := domain.User{
		ID:             idx.NewAt(now).String(),
		Email:          email,
		PasswordHash:   hash,
		Role:           p.Role,
		IsActive:       true,
		TelegramChatID: handle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAlreadyExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// SetRole changes the role of the user with the given e-mail.
func (s *UserService) SetRole(ctx context.Context, email string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrUnknownRole)
	}
	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().UpdateRole(ctx, u.ID, role); err != nil {
		return domain.User{}, fmt.Errorf("update role: %w", err)
	}
	u.Role = role
	return u, nil
}

// LinkHandle attaches a notification handle, enabling the second factor.
func (s *UserService) LinkHandle(ctx context.Context, userID, handle string) error {
	h, err := normalizeHandle(handle, false)
	if err != nil {
		return err
	}
	return s.setHandle(ctx, userID, h)
}

// UnlinkHandle removes the handle, disabling the second factor.
func (s *UserService) UnlinkHandle(ctx context.Context, userID string) error {
	return s.setHandle(ctx, userID, "")
}

func (s *UserService) setHandle(ctx context.Context, userID, handle string) error {
	err := s.Store.Users().SetNotificationHandle(ctx, userID, handle)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// SendTestAlert delivers a test message to the user's linked handle.
func (s *UserService) SendTestAlert(ctx context.Context, u domain.User) error {
	if !u.HasNotificationHandle() {
		return ErrNoHandle
	}
	if !s.Notifier.Send(ctx, u.TelegramChatID, notify.TestAlertMessage()) {
		return ErrDeliveryFailed
	}
	return nil
}

func normalizeHandle(handle string, allowEmpty bool) (string, error) {
	h := strings.TrimSpace(handle)
	if h == "" {
		if allowEmpty {
			return "", nil
		}
		return "", fmt.Errorf("%w: handle is required", ErrInvalidInput)
	}
	if len(h) > MaxHandleLength || strings.IndexFunc(h, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: malformed handle", ErrInvalidInput)
	}
	return h, nil
}
