package http

import (
	"encoding/json"
	"net/http"

	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

type RefreshHandler struct {
	AuthService *service.AuthService
	Cookies     cookieConfig
}

// ServeHTTP handles refresh token rotation.
//
//	@Summary		Refresh tokens
//	@Description	Rotates a refresh token: returns a fresh token pair and invalidates
//	@Description	the presented refresh token. Each refresh token is single-use.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh token (omitted under the cookie strategy)"
//	@Success		200		{object}	authsdk.TokenResponse	"Fresh token pair"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid, expired or already-consumed refresh token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := refreshTokenFromRequest(r)
	if token == "" {
		authsdk.ErrTokenNotValid.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(ctx, token)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("refresh failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	h.Cookies.set(w, pair)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// refreshTokenFromRequest reads the refresh token from the JSON body,
// falling back to the refresh cookie. An unreadable body is treated the
// same as an empty one.
func refreshTokenFromRequest(r *http.Request) string {
	var req authsdk.RefreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}

	token, err := httpx.CookieTokenSource{Name: RefreshTokenCookie}.Extract(r)
	if err != nil {
		return ""
	}
	return token
}
