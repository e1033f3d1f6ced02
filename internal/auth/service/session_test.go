package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
)

func TestSessionManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("authenticated session resolves until expiry", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "s1@motrilog.app", "password-123", domain.RoleUser, "")

		issued, err := h.sessions.OpenAuthenticated(ctx, u.ID, testMeta)
		require.NoError(t, err)
		require.NotEmpty(t, issued.Token)
		require.Equal(t, domain.SessionAuthenticated, issued.Session.State)
		require.Equal(t, cryptox.FingerprintToken(issued.Token), issued.Session.TokenHash)
		require.NotEqual(t, issued.Token, issued.Session.TokenHash)

		sess, err := h.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		require.Equal(t, u.ID, sess.UserID)
		require.Equal(t, "go-test", sess.UserAgent)

		h.clock.Advance(DefaultSessionTTL)
		_, err = h.sessions.Resolve(ctx, issued.Token)
		require.ErrorIs(t, err, ErrUnauthorized)

		_, err = h.store.Sessions().GetSessionByHash(ctx, issued.Session.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound, "expired session is purged on access")
	})

	t.Run("pending session lives for the code window", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "s2@motrilog.app", "password-123", domain.RoleUser, "")

		issued, err := h.sessions.OpenPending(ctx, u.ID, testMeta)
		require.NoError(t, err)
		require.Equal(t, domain.SessionPending2FA, issued.Session.State)
		require.True(t, h.clock.Now().Add(PendingSessionTTL).Equal(issued.Session.ExpiresAt))

		h.clock.Advance(PendingSessionTTL - time.Second)
		_, err = h.sessions.Resolve(ctx, issued.Token)
		require.NoError(t, err)

		h.clock.Advance(time.Second)
		_, err = h.sessions.Resolve(ctx, issued.Token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("promote rotates the token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "s3@motrilog.app", "password-123", domain.RoleUser, "")

		pending, err := h.sessions.OpenPending(ctx, u.ID, testMeta)
		require.NoError(t, err)

		promoted, err := h.sessions.Promote(ctx, pending.Token)
		require.NoError(t, err)
		require.NotEqual(t, pending.Token, promoted.Token)
		require.Equal(t, domain.SessionAuthenticated, promoted.Session.State)
		require.Equal(t, testMeta.IPAddress, promoted.Session.IPAddress)

		_, err = h.sessions.Resolve(ctx, pending.Token)
		require.ErrorIs(t, err, ErrUnauthorized)

		_, err = h.sessions.Promote(ctx, promoted.Token)
		require.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("failed attempts and destroy", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "s4@motrilog.app", "password-123", domain.RoleUser, "")

		pending, err := h.sessions.OpenPending(ctx, u.ID, testMeta)
		require.NoError(t, err)

		for want := 1; want <= 3; want++ {
			n, err := h.sessions.RecordFailedAttempt(ctx, pending.Token)
			require.NoError(t, err)
			require.Equal(t, want, n)
		}

		require.NoError(t, h.sessions.Destroy(ctx, pending.Token))
		require.NoError(t, h.sessions.Destroy(ctx, pending.Token))
		require.NoError(t, h.sessions.Destroy(ctx, ""))

		_, err = h.sessions.RecordFailedAttempt(ctx, pending.Token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown tokens", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		for _, tok := range []string{"", "nope", "a.b.c"} {
			_, err := h.sessions.Resolve(ctx, tok)
			require.ErrorIs(t, err, ErrUnauthorized)
		}
	})
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abc", truncate("abcdef", 3))

	// "é" is two bytes; cutting at 2 would split it.
	require.Equal(t, "a", truncate("aébc", 2))
	require.Equal(t, "aé", truncate("aébc", 3))

	long := strings.Repeat("ж", 200)
	got := truncate(long, 255)
	require.True(t, utf8.ValidString(got))
	require.Len(t, got, 254)
}

func TestSessionMetaStaysValidUTF8(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	u := h.createUser(t, "ua@motrilog.app", "password-123", domain.RoleUser, "")

	meta := domain.SessionMeta{UserAgent: "x" + strings.Repeat("ü", 200), IPAddress: "203.0.113.9"}
	issued, err := h.sessions.OpenAuthenticated(ctx, u.ID, meta)
	require.NoError(t, err)

	sess, err := h.sessions.Resolve(ctx, issued.Token)
	require.NoError(t, err)
	require.True(t, utf8.ValidString(sess.UserAgent))
	require.Len(t, sess.UserAgent, 255)
	require.Equal(t, "203.0.113.9", sess.IPAddress)
}
