package http

import (
	"encoding/json"
	"net/http"

	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP returns the authenticated user's profile.
//
//	@Summary		Get current user
//	@Description	Returns the profile of the user behind the access token.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"The authenticated user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid, missing or expired access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User no longer exists"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/users/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authsdk.ErrTokenNotValid.WriteError(w)
		return
	}

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("failed to load user", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

type ChangePasswordHandler struct {
	UserService *service.UserService
}

// ServeHTTP replaces the authenticated user's password.
//
//	@Summary		Change password
//	@Description	Replaces the caller's password after verifying the current one.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong current password or bad token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/users/me/password [put].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authsdk.ErrTokenNotValid.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.UserService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("password change failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type DeleteUserHandler struct {
	UserService *service.UserService
	Cookies     cookieConfig
}

// ServeHTTP deletes the authenticated user's account.
//
//	@Summary		Delete account
//	@Description	Removes the caller's account. Every active session dies with it.
//	@Tags			Users
//	@Security		BearerAuth
//	@Success		204	"Account deleted"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/users/me [delete].
func (h *DeleteUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authsdk.ErrTokenNotValid.WriteError(w)
		return
	}

	if err := h.UserService.DeleteUser(ctx, userID); err != nil {
		apiErr := mapServiceError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("account deletion failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	h.Cookies.clear(w)
	w.WriteHeader(http.StatusNoContent)
}
