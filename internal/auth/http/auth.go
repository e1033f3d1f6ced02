package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/pkg/authsdk"
	"github.com/Ma16q/MotriLog/pkg/httpx"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// AuthHandler serves the login flow.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      CookieConfig
	ClientIP    httpx.KeyExtractor
}

// HandleLogin handles POST /login
//
//	@Summary		Log in
//	@Description	Verifies e-mail and password. Users with a linked Telegram chat receive a 6-digit code and get a pending session (202); complete it with /verify-2fa.
//	@Description	If the code cannot be delivered the login completes without it (200).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"message, user; session cookie set"
//	@Success		202		{object}	authsdk.LoginResponse	"status=2fa_required; pending session cookie set"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid email or password"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account suspended"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		slogx.FromContext(ctx).Debug("invalid login body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		authsdk.ErrMissingCredentials.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(ctx, req.Email, req.Password, h.sessionMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, res.Session)
	if res.Status == service.LoginPending2FA {
		httpx.WriteJSON(w, http.StatusAccepted, authsdk.LoginResponse{
			Status:  authsdk.LoginStatus2FA,
			Message: "Verification code sent to Telegram",
		})
		return
	}

	user := toUserResponse(res.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message: "Login successful",
		User:    &user,
	})
}

// HandleVerify handles POST /verify-2fa
//
//	@Summary		Submit the login code
//	@Description	Completes a pending login. The session token is rotated on success. After 5 wrong codes the pending session is destroyed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		SessionCookie
//	@Param			request	body		authsdk.VerifyRequest	true	"Code"
//	@Success		200		{object}	authsdk.LoginResponse	"message, user; session cookie rotated"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing code or no verification pending"
//	@Failure		401		{object}	authsdk.ErrorResponse	"No pending session, or invalid or expired code"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account suspended"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many attempts"
//	@Router			/verify-2fa [post].
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		authsdk.ErrMissingCode.WriteError(w)
		return
	}

	token := httpx.SessionToken(r, h.Cookie.Name)
	res, err := h.AuthService.VerifySecondFactor(ctx, token, code)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) ||
			errors.Is(err, service.ErrTooManyAttempts) ||
			errors.Is(err, service.ErrAccountSuspended) {
			h.Cookie.clear(w)
		}
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, res.Session)
	user := toUserResponse(res.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message: "Login successful",
		User:    &user,
	})
}

// HandleLogout handles POST /logout
//
//	@Summary		Log out
//	@Description	Destroys the current session, pending or authenticated. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := httpx.SessionToken(r, h.Cookie.Name)
	if err := h.AuthService.Logout(ctx, token); err != nil {
		slogx.FromContext(ctx).Warn("failed to delete session on logout", "err", err)
	}

	h.Cookie.clear(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out successfully"})
}

// HandleCheckAuth handles GET /check-auth
//
//	@Summary		Session status
//	@Description	Reports whether the caller is logged in and, if so, their current role.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.CheckAuthResponse
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Router			/check-auth [get].
func (h *AuthHandler) HandleCheckAuth(w http.ResponseWriter, r *http.Request) {
	st, err := h.AuthService.CheckAuth(r.Context(), httpx.SessionToken(r, h.Cookie.Name))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.CheckAuthResponse{LoggedIn: st.LoggedIn, Pending2FA: st.Pending2FA}
	if st.LoggedIn {
		resp.Role = st.Role.String()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) sessionMeta(r *http.Request) domain.SessionMeta {
	ip := httpx.GetRemoteIP(r)
	if h.ClientIP != nil {
		ip = h.ClientIP(r)
	}
	return domain.SessionMeta{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}
