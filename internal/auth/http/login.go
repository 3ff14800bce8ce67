package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Cookies     cookieConfig
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Exchanges an email/password pair for an access token and a refresh token.
//	@Description	Logging in past the per-user session cap silently evicts the oldest session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"Fresh token pair"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid email or password"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("login failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	h.Cookies.set(w, pair)
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

func toTokenResponse(pair *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
