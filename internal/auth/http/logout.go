package http

import (
	"net/http"

	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
	Cookies     cookieConfig
}

// ServeHTTP handles logout.
//
//	@Summary		Log out
//	@Description	Deletes the session behind the presented refresh token. Idempotent:
//	@Description	logging out an already-dead session still succeeds.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.LogoutRequest	false	"Refresh token (omitted under the cookie strategy)"
//	@Success		204		"Session deleted"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Refresh token belongs to another user"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authsdk.ErrTokenNotValid.WriteError(w)
		return
	}

	token := refreshTokenFromRequest(r)

	if err := h.AuthService.Logout(ctx, userID, token); err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("logout failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	h.Cookies.clear(w)
	w.WriteHeader(http.StatusNoContent)
}
