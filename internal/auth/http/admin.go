package http

import (
	"net/http"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/pkg/authsdk"
	"github.com/Ma16q/MotriLog/pkg/httpx"
)

// AdminHandler serves the admin-only user management endpoints. The router
// has already required the admin role.
type AdminHandler struct {
	AdminService *service.AdminService
}

// HandleListUsers handles GET /admin/users
//
//	@Summary		List users
//	@Description	Every user in creation order, each with their vehicles.
//	@Tags			Admin
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{array}		authsdk.AdminUserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Not an admin, or suspended"
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Router			/admin/users [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.AdminService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.AdminUserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAdminUserResponse(row))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleToggleBan handles POST /admin/users/{id}/ban
//
//	@Summary		Ban or unban a user
//	@Description	Flips the user's active flag. Banned users with a linked Telegram chat are notified.
//	@Tags			Admin
//	@Security		SessionCookie
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	authsdk.BanResponse
//	@Failure		400	{object}	authsdk.ErrorResponse	"Cannot ban yourself"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Not an admin, or suspended"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User not found"
//	@Router			/admin/users/{id}/ban [post].
func (h *AdminHandler) HandleToggleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}
	actor := domain.User{ID: p.UserID, Role: domain.Role(p.Role)}

	active, err := h.AdminService.ToggleBan(ctx, actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BanResponse{
		Message:  "User status updated",
		IsActive: active,
	})
}
