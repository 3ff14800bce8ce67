package http

import (
	"errors"
	"net/http"

	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
)

// RequireAuth resolves the request's access token to a user and stores the
// user id in the request context. Requests without a valid token never
// reach the wrapped handler.
func RequireAuth(auth *service.AuthService, src httpx.TokenSource) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := src.Extract(r)
			if err != nil {
				authsdk.ErrTokenNotValid.WriteError(w)
				return
			}

			user, err := auth.CurrentUser(r.Context(), token)
			if err != nil {
				mapServiceError(err).WriteError(w)
				return
			}

			r = r.WithContext(httpx.ContextWithUserID(r.Context(), user.ID))
			next.ServeHTTP(w, r)
		})
	}
}

// mapServiceError translates service sentinel errors into API errors.
// Anything unrecognised is an internal error.
func mapServiceError(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrUserAlreadyExists):
		return authsdk.ErrUserAlreadyExists
	case errors.Is(err, service.ErrNotValidToken):
		return authsdk.ErrTokenNotValid
	case errors.Is(err, service.ErrExpiredSignatureToken):
		return authsdk.ErrTokenExpired
	case errors.Is(err, service.ErrNotFoundToken):
		return authsdk.ErrTokenNotFound
	case errors.Is(err, service.ErrNotFoundUser):
		return authsdk.ErrUserNotFound
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrForbidden
	default:
		return authsdk.ErrServerError
	}
}
