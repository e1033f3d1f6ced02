package domain

import (
	"strings"
	"time"
)

type User struct {
	ID             string
	Email          string // lower-cased, trimmed
	PasswordHash   string // argon2id PHC or legacy bcrypt
	Role           Role
	IsActive       bool
	TelegramChatID string     // notification handle, empty when not linked
	OTPCode        string     // set together with OTPExpiresAt
	OTPExpiresAt   *time.Time // nil when no challenge is outstanding
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasNotificationHandle reports whether codes can be delivered to the user.
func (u User) HasNotificationHandle() bool {
	return strings.TrimSpace(u.TelegramChatID) != ""
}

// HasOTPChallenge reports whether an OTP is outstanding, expired or not.
func (u User) HasOTPChallenge() bool {
	return u.OTPCode != "" && u.OTPExpiresAt != nil
}

// NormalizeEmail is applied to every e-mail before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
