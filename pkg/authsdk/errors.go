package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opentasklabs/taskauth/pkg/httpx"
)

// Error codes returned by the auth service. These appear verbatim in the
// "error" field of error response bodies.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeUserAlreadyExists  = "user_already_exists"
	ErrorCodeTokenNotValid      = "token_not_valid"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeTokenNotFound      = "token_not_found"
	ErrorCodeUserNotFound       = "user_not_found"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error shape shared by the server (to write HTTP error
// responses) and the SDK client (to surface them). It implements error.
type APIError struct {
	// Status is the HTTP status code for this error.
	Status int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   e.Code,
		"message": e.Message,
	})
}

// Predefined errors covering the service's failure taxonomy.
var (
	// ErrInvalidRequest is returned when the request body is malformed or
	// missing required fields.
	ErrInvalidRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    ErrorCodeInvalidRequest,
		Message: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    ErrorCodeInvalidCredentials,
		Message: "invalid email or password",
	}

	// ErrUserAlreadyExists is returned when registering a taken email.
	ErrUserAlreadyExists = &APIError{
		Status:  http.StatusConflict,
		Code:    ErrorCodeUserAlreadyExists,
		Message: "a user with this email already exists",
	}

	// ErrTokenNotValid is returned for a missing, malformed, wrong-kind or
	// badly-signed token.
	ErrTokenNotValid = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    ErrorCodeTokenNotValid,
		Message: "the token is missing or not valid",
	}

	// ErrTokenExpired is returned for a valid token past its expiry.
	ErrTokenExpired = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    ErrorCodeTokenExpired,
		Message: "the token has expired",
	}

	// ErrTokenNotFound is returned on refresh when the token has no active
	// session: already rotated, logged out, or evicted.
	ErrTokenNotFound = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    ErrorCodeTokenNotFound,
		Message: "no active session for this token",
	}

	// ErrUserNotFound is returned when the token's user no longer exists.
	ErrUserNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    ErrorCodeUserNotFound,
		Message: "user not found",
	}

	// ErrForbidden is returned when the token belongs to a different user.
	ErrForbidden = &APIError{
		Status:  http.StatusForbidden,
		Code:    ErrorCodeForbidden,
		Message: "access denied",
	}

	// ErrServerError is the catch-all for unexpected failures.
	ErrServerError = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    ErrorCodeServerError,
		Message: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom status, code and message.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// parseErrorResponse turns a non-2xx HTTP response into a typed *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    errResp.Error,
			Message: errResp.Message,
		}
	}

	return &APIError{
		Status:  resp.StatusCode,
		Code:    ErrorCodeServerError,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
