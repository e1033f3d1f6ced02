package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if !s.State.Valid() {
		return fmt.Errorf("%w: session state %q", store.ErrInvalidRecord, s.State)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, state, attempts, user_agent, ip_address,
		                      created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.UserID, string(s.State), s.Attempts, s.UserAgent, s.IPAddress,
		toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	var (
		s                domain.Session
		state            string
		created, expires int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, state, attempts, user_agent, ip_address, created_at, expires_at
		FROM sessions WHERE token_hash = ?`, tokenHash).
		Scan(&s.ID, &s.TokenHash, &s.UserID, &state, &s.Attempts, &s.UserAgent, &s.IPAddress,
			&created, &expires)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.State = domain.SessionState(state)
	s.CreatedAt = fromMillis(created)
	s.ExpiresAt = fromMillis(expires)
	return s, nil
}

func (r *sessionsRepo) IncrementSessionAttempts(ctx context.Context, tokenHash string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET attempts = attempts + 1 WHERE token_hash = ? RETURNING attempts`,
		tokenHash).Scan(&n)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return n, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
