package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ma16q/MotriLog/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mk("a"), mk("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecover(t *testing.T) {
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), httpx.Recover())

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, "", httpx.SessionToken(req, "sid"))

	req.Header.Set("Authorization", "bearer abc")
	require.Equal(t, "abc", httpx.SessionToken(req, "sid"))

	req.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	require.Equal(t, "from-cookie", httpx.SessionToken(req, "sid"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	require.Equal(t, "", httpx.SessionToken(req, "sid"))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x@y.z"}`))
		require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
		require.Equal(t, "x@y.z", b.Email)
	})

	t.Run("empty body is zero value", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
		require.Empty(t, b.Email)
	})

	t.Run("malformed", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
	})

	t.Run("trailing data", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{} {}`))
		require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
	})
}

func TestAuthnMiddleware(t *testing.T) {
	errNope := errors.New("nope")
	authn := func(r *http.Request) (httpx.Principal, error) {
		if r.Header.Get("X-Ok") == "" {
			return httpx.Principal{}, errNope
		}
		return httpx.Principal{UserID: "u1", Role: "admin"}, nil
	}
	onErr := func(w http.ResponseWriter, r *http.Request, err error) {
		require.ErrorIs(t, err, errNope)
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	}

	var got httpx.Principal
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = httpx.PrincipalFromContext(r.Context())
	}), httpx.AuthnMiddleware(authn, onErr))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Unauthorized", body["error"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Ok", "1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, httpx.Principal{UserID: "u1", Role: "admin"}, got)

	_, ok := httpx.PrincipalFromContext(context.Background())
	require.False(t, ok)
}
