package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/internal/auth/store/drivers/sqlite"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	err := createUser(ctx, st, &out, service.CreateUserParams{
		Email:    "Owner@Example.com",
		Password: "long-enough",
		Handle:   "123456789",
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "owner@example.com")

	u, err := st.Users().GetUserByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)
	require.Equal(t, "123456789", u.TelegramChatID)
	require.True(t, u.IsActive)

	err = createUser(ctx, st, &out, service.CreateUserParams{Email: "owner@example.com", Password: "long-enough"})
	require.ErrorIs(t, err, service.ErrAlreadyExists)

	err = createUser(ctx, st, &out, service.CreateUserParams{Email: "x@example.com", Password: "short"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSetRole(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, createUser(ctx, st, &out, service.CreateUserParams{Email: "a@example.com", Password: "long-enough"}))

	out.Reset()
	require.NoError(t, setRole(ctx, st, &out, "a@example.com", domain.RoleAdmin))
	require.Equal(t, "a@example.com is now admin\n", out.String())

	u, err := st.Users().GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	require.ErrorIs(t, setRole(ctx, st, &out, "a@example.com", "owner"), service.ErrInvalidInput)
	require.ErrorIs(t, setRole(ctx, st, &out, "missing@example.com", domain.RoleAdmin), service.ErrNotFound)
}

func TestUsersCommands_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MOTRILOG_DATABASE_FILE", filepath.Join(dir, "motrilog.db"))
	t.Setenv("MOTRILOG_PEPPER_FILE", filepath.Join(dir, "pepper"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"users", "create", "--email", "cli@example.com", "--password", "long-enough", "--role", "admin"})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "role=admin")

	out.Reset()
	rootCmd.SetArgs([]string{"users", "set-role", "--email", "cli@example.com", "--role", "user"})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "cli@example.com is now user")
}
