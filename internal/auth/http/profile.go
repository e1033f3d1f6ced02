package http

import (
	"net/http"

	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/pkg/authsdk"
	"github.com/Ma16q/MotriLog/pkg/httpx"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

// ProfileHandler serves the logged-in user's own account.
type ProfileHandler struct {
	UserService *service.UserService
}

// HandleProfile handles GET /profile
//
//	@Summary		Current user
//	@Tags			Profile
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Account suspended"
//	@Router			/profile [get].
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	u, err := h.UserService.GetUserByID(ctx, p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleLink handles POST /telegram/link
//
//	@Summary		Link a Telegram chat
//	@Description	Stores the chat id that receives login codes. Once linked, every login requires a code.
//	@Tags			Profile
//	@Security		SessionCookie
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LinkTelegramRequest	true	"Chat id (string or integer)"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing or malformed chat_id"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Not logged in"
//	@Router			/telegram/link [post].
func (h *ProfileHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.LinkTelegramRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.ChatID == "" {
		authsdk.ErrInvalidChatID.WriteError(w)
		return
	}

	if err := h.UserService.LinkHandle(ctx, p.UserID, string(req.ChatID)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("telegram linked")
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Telegram linked successfully"})
}

// HandleUnlink handles POST /telegram/unlink
//
//	@Summary		Unlink Telegram
//	@Description	Removes the chat id; later logins no longer require a code.
//	@Tags			Profile
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Router			/telegram/unlink [post].
func (h *ProfileHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	if err := h.UserService.UnlinkHandle(ctx, p.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("telegram unlinked")
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Telegram unlinked"})
}

// HandleTestAlert handles POST /telegram/test-alert
//
//	@Summary		Send a test message
//	@Tags			Profile
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		400	{object}	authsdk.ErrorResponse	"No Telegram account linked"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		502	{object}	authsdk.ErrorResponse	"Delivery failed"
//	@Router			/telegram/test-alert [post].
func (h *ProfileHandler) HandleTestAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	u, err := h.UserService.GetUserByID(ctx, p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.UserService.SendTestAlert(ctx, u); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Test alert sent"})
}
