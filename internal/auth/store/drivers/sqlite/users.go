package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
)

const userColumns = `id, email, password_hash, role, is_active, telegram_chat_id,
	otp_code, otp_expires_at, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                domain.User
		role             string
		isActive         int64
		chatID, otpCode  sql.NullString
		otpExp           sql.NullInt64
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &isActive, &chatID,
		&otpCode, &otpExp, &created, &updated); err != nil {
		return domain.User{}, err
	}

	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: user %s has role %q", store.ErrInvalidRecord, u.ID, role)
	}

	u.Role = r
	u.IsActive = isActive != 0
	u.TelegramChatID = mapNullString(chatID)
	u.OTPCode = mapNullString(otpCode)
	u.OTPExpiresAt = mapNullMillisPtr(otpExp)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if !u.Role.Valid() {
		return fmt.Errorf("%w: role %q", store.ErrInvalidRecord, u.Role)
	}
	email := domain.NormalizeEmail(u.Email)
	if email == "" {
		return fmt.Errorf("%w: empty email", store.ErrInvalidRecord)
	}

	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := u.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	isActive := 0
	if u.IsActive {
		isActive = 1
	}

	var otpExp sql.NullInt64
	if u.OTPExpiresAt != nil {
		otpExp = sql.NullInt64{Int64: toMillis(*u.OTPExpiresAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, email, u.PasswordHash, string(u.Role), isActive, mapStringNull(u.TelegramChatID),
		mapStringNull(u.OTPCode), otpExp, toMillis(created), toMillis(updated),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: role %q", store.ErrInvalidRecord, role)
	}
	return requireOneRow(r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), toMillis(time.Now()), userID))
}

func (r *usersRepo) SetNotificationHandle(ctx context.Context, userID, handle string) error {
	return requireOneRow(r.db.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(handle), toMillis(time.Now()), userID))
}

func (r *usersRepo) SetOTPChallenge(ctx context.Context, userID, code string, expiresAt time.Time) error {
	if code == "" {
		return fmt.Errorf("%w: empty otp code", store.ErrInvalidRecord)
	}
	return requireOneRow(r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = ?, otp_expires_at = ?, updated_at = ? WHERE id = ?`,
		code, toMillis(expiresAt), toMillis(time.Now()), userID))
}

func (r *usersRepo) ClearOTPChallenge(ctx context.Context, userID string) error {
	return requireOneRow(r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), userID))
}

func (r *usersRepo) ConsumeOTPChallenge(ctx context.Context, userID, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = ?
		 WHERE id = ? AND otp_code = ?`,
		toMillis(time.Now()), userID, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *usersRepo) DeleteExpiredOTPChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = NULL, otp_expires_at = NULL
		 WHERE otp_expires_at IS NOT NULL AND otp_expires_at < ?`,
		toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) ToggleActive(ctx context.Context, userID string) (bool, error) {
	var active int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET is_active = 1 - is_active, updated_at = ?
		 WHERE id = ? RETURNING is_active`,
		toMillis(time.Now()), userID).Scan(&active)
	if err != nil {
		return false, mapNotFound(err)
	}
	return active != 0, nil
}
