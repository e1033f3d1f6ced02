package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatIDUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    ChatID
		wantErr bool
	}{
		{"string", `{"chat_id":"123456"}`, "123456", false},
		{"number", `{"chat_id":123456}`, "123456", false},
		{"negative group id", `{"chat_id":-1001234567890}`, "-1001234567890", false},
		{"null", `{"chat_id":null}`, "", false},
		{"missing", `{}`, "", false},
		{"float", `{"chat_id":1.5}`, "", true},
		{"object", `{"chat_id":{}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req LinkTelegramRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, req.ChatID)
		})
	}
}

func TestAPIErrorWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ErrAccountSuspended.WriteError(rec)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Your account has been suspended by an administrator.", body.Error)
}

func TestClientLoginOutcomes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")

		switch req.Email {
		case "plain@example.com":
			http.SetCookie(w, &http.Cookie{Name: "motrilog_session", Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(LoginResponse{Message: "Login successful", User: &UserResponse{ID: "u1"}})
		case "2fa@example.com":
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(LoginResponse{Status: LoginStatus2FA, Message: "Verification code sent to Telegram"})
		default:
			ErrInvalidCredentials.WriteError(w)
		}
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer manual" {
			_ = json.NewEncoder(w).Encode(UserResponse{ID: "bearer"})
			return
		}
		if ck, err := r.Cookie("motrilog_session"); err == nil && ck.Value == "tok" {
			_ = json.NewEncoder(w).Encode(UserResponse{ID: "u1"})
			return
		}
		ErrUnauthorized.WriteError(w)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	t.Run("direct success keeps the cookie", func(t *testing.T) {
		c := NewClient(srv.URL + "/")
		resp, err := c.Login(ctx, "plain@example.com", "x")
		require.NoError(t, err)
		require.False(t, resp.Pending2FA())
		require.Equal(t, "u1", resp.User.ID)
		require.Equal(t, "tok", c.Cookie("motrilog_session"))

		me, err := c.Profile(ctx)
		require.NoError(t, err)
		require.Equal(t, "u1", me.ID)
	})

	t.Run("pending second factor", func(t *testing.T) {
		c := NewClient(srv.URL)
		resp, err := c.Login(ctx, "2fa@example.com", "x")
		require.NoError(t, err)
		require.True(t, resp.Pending2FA())
		require.Nil(t, resp.User)
	})

	t.Run("error body becomes APIError", func(t *testing.T) {
		c := NewClient(srv.URL)
		_, err := c.Login(ctx, "nobody@example.com", "x")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, http.StatusUnauthorized, StatusCode(err))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "Invalid email or password", apiErr.Message)

		_, err = c.Profile(ctx)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("bearer token", func(t *testing.T) {
		c := NewClient(srv.URL)
		c.SessionToken = "manual"
		me, err := c.Profile(ctx)
		require.NoError(t, err)
		require.Equal(t, "bearer", me.ID)
	})
}

func TestParseErrorResponseFallback(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("<html>bad gateway</html>"))
	require.Equal(t, http.StatusBadGateway, StatusCode(err))
	require.Contains(t, err.Error(), "Bad Gateway")

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
	require.Equal(t, 0, StatusCode(errors.New("plain")))
}
