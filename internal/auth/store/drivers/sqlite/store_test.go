package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/internal/auth/store/drivers/sqlite"
	"github.com/Ma16q/MotriLog/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st store.Store, email string, role domain.Role) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	got, err := st.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motrilog.db")
	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	seedUser(t, st, "file@motrilog.app", domain.RoleUser)
	require.NoError(t, st.Close())

	st, err = sqlite.NewStore(path)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.ApplyMigrations())

	u, err := st.Users().GetUserByEmail(context.Background(), "FILE@motrilog.app")
	require.NoError(t, err)
	require.Equal(t, "file@motrilog.app", u.Email)
}

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := seedUser(t, st, "  Driver@Example.com ", domain.RoleUser)
	require.Equal(t, "driver@example.com", u.Email)
	require.True(t, u.IsActive)
	require.Equal(t, domain.RoleUser, u.Role)
	require.Empty(t, u.TelegramChatID)
	require.False(t, u.HasOTPChallenge())

	byEmail, err := st.Users().GetUserByEmail(ctx, "DRIVER@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Users().UpdateRole(ctx, u.ID, domain.RoleAdmin))
	require.ErrorIs(t, st.Users().UpdateRole(ctx, u.ID, domain.Role("root")), store.ErrInvalidRecord)
	require.ErrorIs(t, st.Users().UpdateRole(ctx, "missing", domain.RoleAdmin), store.ErrNotFound)

	require.NoError(t, st.Users().SetNotificationHandle(ctx, u.ID, "424242"))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, "424242", got.TelegramChatID)

	require.NoError(t, st.Users().SetNotificationHandle(ctx, u.ID, ""))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.HasNotificationHandle())
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "dup@example.com", domain.RoleUser)

	err := st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "DUP@example.com", Role: domain.RoleUser})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "x@example.com", Role: "superuser"})
	require.ErrorIs(t, err, store.ErrInvalidRecord)

	err = st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "  ", Role: domain.RoleUser})
	require.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestListUsersOrdered(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := seedUser(t, st, "a@example.com", domain.RoleAdmin)
	b := seedUser(t, st, "b@example.com", domain.RoleUser)
	c := seedUser(t, st, "c@example.com", domain.RoleUser)

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, []string{a.ID, b.ID, c.ID}, []string{users[0].ID, users[1].ID, users[2].ID})
}

func TestOTPChallenge(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "otp@example.com", domain.RoleUser)
	exp := time.Date(2030, 1, 1, 0, 5, 0, 0, time.UTC)

	require.NoError(t, st.Users().SetOTPChallenge(ctx, u.ID, "123456", exp))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "123456", got.OTPCode)
	require.NotNil(t, got.OTPExpiresAt)
	require.True(t, exp.Equal(*got.OTPExpiresAt))

	// A newer challenge replaces the old one; the stale code no longer consumes.
	require.NoError(t, st.Users().SetOTPChallenge(ctx, u.ID, "654321", exp))
	ok, err := st.Users().ConsumeOTPChallenge(ctx, u.ID, "123456")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Users().ConsumeOTPChallenge(ctx, u.ID, "654321")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Users().ConsumeOTPChallenge(ctx, u.ID, "654321")
	require.NoError(t, err)
	require.False(t, ok)

	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.HasOTPChallenge())
	require.Nil(t, got.OTPExpiresAt)

	require.ErrorIs(t, st.Users().SetOTPChallenge(ctx, u.ID, "", exp), store.ErrInvalidRecord)
	require.ErrorIs(t, st.Users().SetOTPChallenge(ctx, "missing", "111111", exp), store.ErrNotFound)
}

func TestDeleteExpiredOTPChallenges(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	stale := seedUser(t, st, "stale@example.com", domain.RoleUser)
	fresh := seedUser(t, st, "fresh@example.com", domain.RoleUser)
	require.NoError(t, st.Users().SetOTPChallenge(ctx, stale.ID, "111111", now.Add(-time.Minute)))
	require.NoError(t, st.Users().SetOTPChallenge(ctx, fresh.ID, "222222", now.Add(time.Minute)))

	n, err := st.Users().DeleteExpiredOTPChallenges(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := st.Users().GetUserByID(ctx, stale.ID)
	require.NoError(t, err)
	require.False(t, got.HasOTPChallenge())

	got, err = st.Users().GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, "222222", got.OTPCode)
}

func TestToggleActive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "ban@example.com", domain.RoleUser)

	active, err := st.Users().ToggleActive(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, active)

	active, err = st.Users().ToggleActive(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, active)

	_, err = st.Users().ToggleActive(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestVehicles(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	owner := seedUser(t, st, "owner@example.com", domain.RoleUser)
	other := seedUser(t, st, "other@example.com", domain.RoleUser)

	first := domain.Vehicle{
		ID: idx.New().String(), UserID: owner.ID, Manufacturer: "Toyota", Model: "Corolla",
		Year: 2018, VIN: "JT2BG22K1Y0123456", LicensePlate: "ABC-123", Color: "White",
		InitialMileage: 10000, CurrentMileage: 54000,
	}
	second := domain.Vehicle{ID: idx.New().String(), UserID: owner.ID, Manufacturer: "Kia", Model: "Rio"}
	require.NoError(t, st.Vehicles().CreateVehicle(ctx, first))
	require.NoError(t, st.Vehicles().CreateVehicle(ctx, second))

	vs, err := st.Vehicles().ListVehiclesByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, first.ID, vs[0].ID)
	require.Equal(t, "JT2BG22K1Y0123456", vs[0].VIN)
	require.Equal(t, 54000, vs[0].CurrentMileage)

	vs, err = st.Vehicles().ListVehiclesByOwner(ctx, other.ID)
	require.NoError(t, err)
	require.NotNil(t, vs)
	require.Empty(t, vs)

	err = st.Vehicles().CreateVehicle(ctx, domain.Vehicle{ID: idx.New().String(), UserID: "ghost", Manufacturer: "X", Model: "Y"})
	require.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "sess@example.com", domain.RoleUser)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	s := domain.Session{
		ID: idx.New().String(), TokenHash: "hash-1", UserID: u.ID,
		State: domain.SessionPending2FA, UserAgent: "ua", IPAddress: "10.0.0.1",
		CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, s))

	got, err := st.Sessions().GetSessionByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, s, got)

	n, err := st.Sessions().IncrementSessionAttempts(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = st.Sessions().IncrementSessionAttempts(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = st.Sessions().IncrementSessionAttempts(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	bad := s
	bad.ID, bad.TokenHash, bad.State = idx.New().String(), "hash-2", "half"
	require.ErrorIs(t, st.Sessions().CreateSession(ctx, bad), store.ErrInvalidRecord)

	dup := s
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Sessions().CreateSession(ctx, dup), store.ErrAlreadyExists)

	deleted, err := st.Sessions().DeleteExpiredSessions(ctx, now.Add(5*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = st.Sessions().GetSessionByHash(ctx, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, st.Sessions().DeleteSession(ctx, "hash-1"))
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "rolled@example.com", Role: domain.RoleUser, IsActive: true,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByEmail(ctx, "rolled@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "kept@example.com", Role: domain.RoleUser, IsActive: true,
		})
	})
	require.NoError(t, err)

	_, err = st.Users().GetUserByEmail(ctx, "kept@example.com")
	require.NoError(t, err)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		return err
	})
	require.Error(t, err)
}
