package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
)

// DefaultKeyPrefix namespaces session hashes: <prefix><token hash>.
const DefaultKeyPrefix = "motrilog:session:"

// createScript writes the hash and its absolute expiry only when the key is
// free. Returns 0 when the key already exists.
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('PEXPIREAT', KEYS[1], ARGV[1])
return 1
`)

// incrScript bumps attempts on an existing session. Returns -1 when the
// session is gone so a stale token never recreates a half-empty hash.
var incrScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SessionStore keeps sessions in Redis hashes with a PEXPIREAT matching the
// session expiry, so Redis purges them without housekeeping.
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
}

var _ store.Sessions = (*SessionStore)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*SessionStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix uses DefaultKeyPrefix.
func NewWithClient(client goredis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(tokenHash string) string { return s.prefix + tokenHash }

func (s *SessionStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *SessionStore) Close() error { return s.client.Close() }

func (s *SessionStore) CreateSession(ctx context.Context, sess domain.Session) error {
	if !sess.State.Valid() {
		return fmt.Errorf("%w: session state %q", store.ErrInvalidRecord, sess.State)
	}
	if sess.TokenHash == "" || sess.UserID == "" {
		return fmt.Errorf("%w: session needs token hash and user", store.ErrInvalidRecord)
	}

	res, err := createScript.Run(ctx, s.client, []string{s.key(sess.TokenHash)},
		sess.ExpiresAt.UnixMilli(),
		"id", sess.ID,
		"user_id", sess.UserID,
		"state", string(sess.State),
		"attempts", sess.Attempts,
		"user_agent", sess.UserAgent,
		"ip_address", sess.IPAddress,
		"created_at", sess.CreatedAt.UnixMilli(),
		"expires_at", sess.ExpiresAt.UnixMilli(),
	).Int()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if res == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *SessionStore) GetSessionByHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(tokenHash)).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return domain.Session{}, store.ErrNotFound
	}
	return decodeSession(tokenHash, fields)
}

func (s *SessionStore) IncrementSessionAttempts(ctx context.Context, tokenHash string) (int, error) {
	n, err := incrScript.Run(ctx, s.client, []string{s.key(tokenHash)}).Int()
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	if n < 0 {
		return 0, store.ErrNotFound
	}
	return n, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, s.key(tokenHash)).Err()
}

// DeleteExpiredSessions is a no-op: key expiry does the purging.
func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func decodeSession(tokenHash string, f map[string]string) (domain.Session, error) {
	attempts, err1 := strconv.Atoi(f["attempts"])
	created, err2 := strconv.ParseInt(f["created_at"], 10, 64)
	expires, err3 := strconv.ParseInt(f["expires_at"], 10, 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		return domain.Session{}, fmt.Errorf("%w: session %s: %v", store.ErrInvalidRecord, tokenHash, err)
	}

	sess := domain.Session{
		ID:        f["id"],
		TokenHash: tokenHash,
		UserID:    f["user_id"],
		State:     domain.SessionState(f["state"]),
		Attempts:  attempts,
		UserAgent: f["user_agent"],
		IPAddress: f["ip_address"],
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}
	if !sess.State.Valid() || sess.UserID == "" {
		return domain.Session{}, fmt.Errorf("%w: session %s", store.ErrInvalidRecord, tokenHash)
	}
	return sess, nil
}
