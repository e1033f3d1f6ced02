package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
)

func TestOTPService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issued code verifies once", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "otp@motrilog.app", "password-123", domain.RoleUser, "")

		code, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, code, OTPDigits)

		stored := h.reload(t, u.ID)
		require.True(t, stored.HasOTPChallenge())
		require.True(t, h.clock.Now().Add(OTPTTL).Equal(*stored.OTPExpiresAt))

		ok, err := h.otp.Verify(ctx, u.ID, code)
		require.NoError(t, err)
		require.True(t, ok)
		require.False(t, h.reload(t, u.ID).HasOTPChallenge())

		ok, err = h.otp.Verify(ctx, u.ID, code)
		require.NoError(t, err)
		require.False(t, ok, "a consumed code must not verify again")
	})

	t.Run("wrong code keeps the challenge", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "wrong@motrilog.app", "password-123", domain.RoleUser, "")

		code, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)

		for _, guess := range []string{"", "000000", code + "0", code[:5]} {
			ok, err := h.otp.Verify(ctx, u.ID, guess)
			require.NoError(t, err)
			require.False(t, ok, "guess %q", guess)
		}
		require.True(t, h.reload(t, u.ID).HasOTPChallenge())
	})

	t.Run("code is valid up to and including expiry", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "edge@motrilog.app", "password-123", domain.RoleUser, "")

		code, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)

		h.clock.Advance(OTPTTL)
		ok, err := h.otp.Verify(ctx, u.ID, code)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("expired code fails", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "late@motrilog.app", "password-123", domain.RoleUser, "")

		code, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)

		h.clock.Advance(OTPTTL + time.Millisecond)
		ok, err := h.otp.Verify(ctx, u.ID, code)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("reissue replaces the previous code", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "again@motrilog.app", "password-123", domain.RoleUser, "")

		first, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)
		second, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)

		if first != second {
			ok, err := h.otp.Verify(ctx, u.ID, first)
			require.NoError(t, err)
			require.False(t, ok)
		}
		ok, err := h.otp.Verify(ctx, u.ID, second)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("discard and unknown user", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "gone@motrilog.app", "password-123", domain.RoleUser, "")

		code, err := h.otp.Issue(ctx, u.ID)
		require.NoError(t, err)
		require.NoError(t, h.otp.Discard(ctx, u.ID))

		ok, err := h.otp.Verify(ctx, u.ID, code)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = h.otp.Verify(ctx, "01J00000000000000000000000", code)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, h.otp.Discard(ctx, "01J00000000000000000000000"))
	})
}
