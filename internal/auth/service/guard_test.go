package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
)

func TestGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("role checks", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		admin := h.createUser(t, "admin@motrilog.app", "password-123", domain.RoleAdmin, "")
		user := h.createUser(t, "user@motrilog.app", "password-123", domain.RoleUser, "")

		adminSess, err := h.sessions.OpenAuthenticated(ctx, admin.ID, testMeta)
		require.NoError(t, err)
		userSess, err := h.sessions.OpenAuthenticated(ctx, user.ID, testMeta)
		require.NoError(t, err)

		got, err := h.guard.RequireRole(ctx, adminSess.Token, domain.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, admin.ID, got.ID)

		_, err = h.guard.RequireRole(ctx, userSess.Token, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrForbidden)

		_, err = h.guard.RequireRole(ctx, "", domain.RoleAdmin)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("role is re-read on every call", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		admin := h.createUser(t, "demoted@motrilog.app", "password-123", domain.RoleAdmin, "")

		sess, err := h.sessions.OpenAuthenticated(ctx, admin.ID, testMeta)
		require.NoError(t, err)
		_, err = h.guard.RequireRole(ctx, sess.Token, domain.RoleAdmin)
		require.NoError(t, err)

		_, err = h.users.SetRole(ctx, admin.Email, domain.RoleUser)
		require.NoError(t, err)

		_, err = h.guard.RequireRole(ctx, sess.Token, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("pending session is not authenticated", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "half@motrilog.app", "password-123", domain.RoleAdmin, "")

		pending, err := h.sessions.OpenPending(ctx, u.ID, testMeta)
		require.NoError(t, err)

		_, err = h.guard.Authenticate(ctx, pending.Token)
		require.ErrorIs(t, err, ErrUnauthorized)
		_, err = h.guard.RequireRole(ctx, pending.Token, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("suspended caller", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "banned-admin@motrilog.app", "password-123", domain.RoleAdmin, "")

		sess, err := h.sessions.OpenAuthenticated(ctx, u.ID, testMeta)
		require.NoError(t, err)

		_, err = h.store.Users().ToggleActive(ctx, u.ID)
		require.NoError(t, err)

		_, err = h.guard.RequireRole(ctx, sess.Token, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrAccountSuspended)
	})

	t.Run("ban target", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		actor := domain.User{ID: "01HZZZZZZZZZZZZZZZZZZZZZZZ"}

		require.ErrorIs(t, h.guard.CheckBanTarget(actor, actor.ID), ErrInvalidOperation)
		require.NoError(t, h.guard.CheckBanTarget(actor, "01HYYYYYYYYYYYYYYYYYYYYYYY"))
	})
}
