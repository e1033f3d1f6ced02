package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
)

// Guard authorizes requests. The user and role are re-read from the store
// on every call, so role changes and bans apply to live sessions.
type Guard struct {
	Store    store.Store
	Sessions *SessionManager
}

// Authenticate resolves an authenticated session to its active user.
func (g *Guard) Authenticate(ctx context.Context, token string) (domain.User, error) {
	sess, err := g.Sessions.Resolve(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if sess.State != domain.SessionAuthenticated {
		return domain.User{}, ErrUnauthorized
	}

	u, err := g.Store.Users().GetUserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	if !u.IsActive {
		return domain.User{}, ErrAccountSuspended
	}
	return u, nil
}

// RequireRole is Authenticate plus a role check.
func (g *Guard) RequireRole(ctx context.Context, token string, role domain.Role) (domain.User, error) {
	u, err := g.Authenticate(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if u.Role != role {
		return domain.User{}, ErrForbidden
	}
	return u, nil
}

// CheckBanTarget rejects an actor banning their own account.
func (g *Guard) CheckBanTarget(actor domain.User, targetID string) error {
	if actor.ID == targetID {
		return ErrInvalidOperation
	}
	return nil
}
