package service

import "errors"

// Sentinel errors returned by the auth and user services. Handlers map
// these onto HTTP statuses; anything else is treated as an internal error.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so responses never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrUserAlreadyExists is returned when registering a taken email.
	ErrUserAlreadyExists = errors.New("user_already_exists")

	// ErrNotValidToken covers malformed tokens, bad signatures and the
	// wrong token kind.
	ErrNotValidToken = errors.New("token_not_valid")

	// ErrExpiredSignatureToken is returned for a structurally valid token
	// whose exp claim is in the past.
	ErrExpiredSignatureToken = errors.New("token_expired")

	// ErrNotFoundToken is returned when a well-signed token lacks a
	// required claim (exp, sub), or on refresh when the presented token
	// has no persisted row: already rotated, logged out, or evicted.
	ErrNotFoundToken = errors.New("token_not_found")

	// ErrNotFoundUser is returned when a token's subject no longer exists.
	ErrNotFoundUser = errors.New("user_not_found")

	// ErrForbidden is returned when a caller presents a token that belongs
	// to a different user.
	ErrForbidden = errors.New("forbidden")
)
