package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
)

const (
	// OTPDigits is the length of a login code.
	OTPDigits = 6
	// OTPTTL is how long an issued code stays valid.
	OTPTTL = 5 * time.Minute
)

// OTPService manages the single outstanding login code stored on a user.
type OTPService struct {
	Store store.Store
	Clock Clock
}

// Issue generates a new code and stores it with its expiry, replacing any
// earlier code. The code is returned for delivery.
func (s *OTPService) Issue(ctx context.Context, userID string) (string, error) {
	code, err := cryptox.GenerateNumericCode(OTPDigits)
	if err != nil {
		return "", err
	}

	expiresAt := s.Clock.now().Add(OTPTTL)
	if err := s.Store.Users().SetOTPChallenge(ctx, userID, code, expiresAt); err != nil {
		return "", fmt.Errorf("store otp challenge: %w", err)
	}
	return code, nil
}

// Verify reports whether code matches the user's outstanding, unexpired
// challenge. A match consumes the challenge with a conditional update on the
// stored code, so a code replaced by a concurrent login never verifies.
func (s *OTPService) Verify(ctx context.Context, userID, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}

	if !u.HasOTPChallenge() {
		return false, nil
	}
	if s.Clock.now().After(*u.OTPExpiresAt) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(u.OTPCode), []byte(code)) != 1 {
		return false, nil
	}

	ok, err := s.Store.Users().ConsumeOTPChallenge(ctx, userID, u.OTPCode)
	if err != nil {
		return false, fmt.Errorf("consume otp challenge: %w", err)
	}
	return ok, nil
}

// Discard removes any outstanding challenge for the user.
func (s *OTPService) Discard(ctx context.Context, userID string) error {
	err := s.Store.Users().ClearOTPChallenge(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("clear otp challenge: %w", err)
	}
	return nil
}
