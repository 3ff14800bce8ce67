package httpx

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNoToken reports that a request carried no bearer credential.
var ErrNoToken = errors.New("httpx: no bearer token in request")

// TokenSource extracts a bearer access token from a request. The concrete
// source is a deployment-wide decision made once at startup, not a
// per-request branch: a service either reads the Authorization header or an
// HTTP-only cookie, never both.
type TokenSource interface {
	Extract(r *http.Request) (string, error)
}

// HeaderTokenSource reads the token from "Authorization: Bearer <token>".
type HeaderTokenSource struct{}

func (HeaderTokenSource) Extract(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", ErrNoToken
	}

	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// CookieTokenSource reads the token from a named HTTP-only cookie.
type CookieTokenSource struct {
	Name string
}

func (s CookieTokenSource) Extract(r *http.Request) (string, error) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return "", ErrNoToken
	}
	return c.Value, nil
}
