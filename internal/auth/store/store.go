package store

import (
	"context"
	"errors"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrInvalidRecord = errors.New("store: invalid record")
)

// Store is the root data access interface implemented by the sqlite driver.
// It exposes sub-repositories; a Tx exposes the same repositories bound to a
// single transaction.
type Store interface {
	Users() Users
	Vehicles() Vehicles
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalised e-mail.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns every user in creation order.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user. ErrAlreadyExists on duplicate e-mail,
	// ErrInvalidRecord on an unknown role.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateRole(ctx context.Context, userID string, role domain.Role) error

	// SetNotificationHandle links (or with "" unlinks) the chat handle.
	SetNotificationHandle(ctx context.Context, userID, handle string) error

	// SetOTPChallenge writes code and expiry in one update, replacing any
	// outstanding challenge.
	SetOTPChallenge(ctx context.Context, userID, code string, expiresAt time.Time) error

	// ClearOTPChallenge removes any outstanding challenge.
	ClearOTPChallenge(ctx context.Context, userID string) error

	// ConsumeOTPChallenge clears the challenge only if the stored code still
	// equals code. It reports whether a row was updated.
	ConsumeOTPChallenge(ctx context.Context, userID, code string) (bool, error)

	// DeleteExpiredOTPChallenges clears challenges that expired before now.
	DeleteExpiredOTPChallenges(ctx context.Context, now time.Time) (int64, error)

	// ToggleActive flips is_active atomically and returns the new value.
	ToggleActive(ctx context.Context, userID string) (bool, error)
}

type Vehicles interface {
	// ListVehiclesByOwner returns a user's vehicles in creation order.
	ListVehiclesByOwner(ctx context.Context, userID string) ([]domain.Vehicle, error)

	CreateVehicle(ctx context.Context, v domain.Vehicle) error
}

// Sessions persists session records keyed by token fingerprint. The sqlite
// store and the redis driver both implement it.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByHash returns ErrNotFound for unknown hashes. Expiry is left
	// to the caller.
	GetSessionByHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// IncrementSessionAttempts bumps the failed attempt counter and returns
	// the new count.
	IncrementSessionAttempts(ctx context.Context, tokenHash string) (int, error)

	// DeleteSession is idempotent.
	DeleteSession(ctx context.Context, tokenHash string) error

	// DeleteExpiredSessions purges sessions that expired before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
