package httpx

import (
	"net/http"

	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// Authenticator resolves the caller of a request or returns an error.
type Authenticator func(r *http.Request) (Principal, error)

// ErrorResponder writes the response for a failed authentication.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware resolves the caller with authn and stores the Principal in
// the request context. On failure onError writes the response and the
// wrapped handler is not called.
func AuthnMiddleware(authn Authenticator, onError ErrorResponder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authn(r)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := contextWithPrincipal(r.Context(), p)
			ctx = slogx.WithUserID(ctx, p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
