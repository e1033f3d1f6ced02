package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Ma16q/MotriLog/pkg/httpx"
)

// APIError is an error response from the service. Handlers write it with
// WriteError; the client returns it for every non-success status.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Is matches another APIError with the same status and message, so the
// predefined values below work with errors.Is on the client side.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

// WriteError writes e as a JSON error body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message)
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

var (
	ErrInvalidRequest     = NewAPIError(http.StatusBadRequest, "Invalid request body")
	ErrMissingCredentials = NewAPIError(http.StatusBadRequest, "Email and password are required")
	ErrMissingCode        = NewAPIError(http.StatusBadRequest, "Verification code is required")
	ErrInvalidChatID      = NewAPIError(http.StatusBadRequest, "A valid chat_id is required")
	ErrNoTelegramLinked   = NewAPIError(http.StatusBadRequest, "No Telegram account linked")
	ErrNotPending         = NewAPIError(http.StatusBadRequest, "No verification is pending for this session")
	ErrCannotBanSelf      = NewAPIError(http.StatusBadRequest, "Cannot ban yourself")

	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, "Invalid email or password")
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, "Unauthorized")
	ErrInvalidCode        = NewAPIError(http.StatusUnauthorized, "Invalid or expired code")

	ErrAccountSuspended = NewAPIError(http.StatusForbidden, "Your account has been suspended by an administrator.")
	ErrForbidden        = NewAPIError(http.StatusForbidden, "Forbidden")

	ErrUserNotFound = NewAPIError(http.StatusNotFound, "User not found")
	ErrConflict     = NewAPIError(http.StatusConflict, "Already exists")

	ErrTooManyAttempts = NewAPIError(http.StatusTooManyRequests, "Too many attempts. Please log in again.")

	ErrServerError    = NewAPIError(http.StatusInternalServerError, "Internal server error")
	ErrDeliveryFailed = NewAPIError(http.StatusBadGateway, "Failed to send Telegram message")
)

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
