package http

import (
	"errors"
	"net/http"

	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/pkg/authsdk"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrAccountSuspended, authsdk.ErrAccountSuspended},
	{service.ErrUnauthorized, authsdk.ErrUnauthorized},
	{service.ErrForbidden, authsdk.ErrForbidden},
	{service.ErrInvalidOperation, authsdk.ErrCannotBanSelf},
	{service.ErrNotFound, authsdk.ErrUserNotFound},
	{service.ErrInvalidOTP, authsdk.ErrInvalidCode},
	{service.ErrTooManyAttempts, authsdk.ErrTooManyAttempts},
	{service.ErrNotPending, authsdk.ErrNotPending},
	{service.ErrInvalidInput, authsdk.ErrInvalidRequest},
	{service.ErrAlreadyExists, authsdk.ErrConflict},
	{service.ErrNoHandle, authsdk.ErrNoTelegramLinked},
	{service.ErrDeliveryFailed, authsdk.ErrDeliveryFailed},
}

// writeServiceError maps service errors to responses. Anything unmapped is
// logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	authsdk.ErrServerError.WriteError(w)
}
