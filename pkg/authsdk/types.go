package authsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LoginStatus2FA is the status of a login waiting for its second factor.
const LoginStatus2FA = "2fa_required"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by endpoints with nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Login
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse covers both outcomes of POST /login: 200 with the user, or
// 202 with Status set to LoginStatus2FA.
type LoginResponse struct {
	Status  string        `json:"status,omitempty"`
	Message string        `json:"message"`
	User    *UserResponse `json:"user,omitempty"`
}

// Pending2FA reports whether the login still needs a code.
func (r *LoginResponse) Pending2FA() bool {
	return r != nil && r.Status == LoginStatus2FA
}

type VerifyRequest struct {
	Code string `json:"code"`
}

// CheckAuthResponse is returned by GET /check-auth. Role is only set for
// authenticated sessions.
type CheckAuthResponse struct {
	LoggedIn   bool   `json:"logged_in"`
	Role       string `json:"role,omitempty"`
	Pending2FA bool   `json:"pending_2fa,omitempty"`
}

// ============================================================================
// Users
// ============================================================================

// UserResponse is the public view of a user. Secrets never leave the server.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	TelegramLinked bool      `json:"telegram_linked"`
	TelegramChatID string    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type VehicleResponse struct {
	ID             string    `json:"id"`
	Manufacturer   string    `json:"manufacturer"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	VIN            string    `json:"vin,omitempty"`
	LicensePlate   string    `json:"license_plate,omitempty"`
	Color          string    `json:"color,omitempty"`
	InitialMileage int       `json:"initial_mileage"`
	CurrentMileage int       `json:"current_mileage"`
	ImageFilename  string    `json:"image_filename,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AdminUserResponse is one entry of GET /admin/users.
type AdminUserResponse struct {
	UserResponse
	Vehicles []VehicleResponse `json:"vehicles"`
}

type BanResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"is_active"`
}

// ============================================================================
// Telegram
// ============================================================================

// LinkTelegramRequest is the body of POST /telegram/link.
type LinkTelegramRequest struct {
	ChatID ChatID `json:"chat_id"`
}

// ChatID accepts a Telegram chat id sent either as a JSON string or a JSON
// number. Browsers tend to send whatever the input field held.
type ChatID string

func (c *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChatID(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("chat_id must be a string or an integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("chat_id must be an integer: %w", err)
	}
	*c = ChatID(n.String())
	return nil
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}
