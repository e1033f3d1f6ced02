package domain_test

import (
	"testing"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Admin ")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, r)

	r, err = domain.ParseRole("user")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, r)

	for _, bad := range []string{"", "root", "superadmin", "administrator"} {
		_, err := domain.ParseRole(bad)
		require.ErrorIs(t, err, domain.ErrUnknownRole, bad)
	}
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "driver@motrilog.app", domain.NormalizeEmail("  Driver@MotriLog.App\n"))
}

func TestUserHelpers(t *testing.T) {
	u := domain.User{}
	require.False(t, u.HasNotificationHandle())
	require.False(t, u.HasOTPChallenge())

	u.TelegramChatID = "  "
	require.False(t, u.HasNotificationHandle())

	exp := time.Now()
	u.TelegramChatID = "12345"
	u.OTPCode = "123456"
	u.OTPExpiresAt = &exp
	require.True(t, u.HasNotificationHandle())
	require.True(t, u.HasOTPChallenge())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := domain.Session{ExpiresAt: now}

	require.True(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(time.Second)))
	require.False(t, s.Expired(now.Add(-time.Second)))
	require.True(t, domain.SessionPending2FA.Valid())
	require.False(t, domain.SessionState("gone").Valid())
}
