package http

import (
	"net/http"
	"time"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
)

// cookieConfig writes or clears the token cookies for the cookie strategy.
// Under the header strategy every method is a no-op: tokens only appear in
// response bodies.
type cookieConfig struct {
	strategy   TokenStrategy
	secure     bool
	refreshTTL time.Duration
}

func (c cookieConfig) set(w http.ResponseWriter, pair *domain.TokenPair) {
	if c.strategy != StrategyCookie {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(c.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieConfig) clear(w http.ResponseWriter) {
	if c.strategy != StrategyCookie {
		return
	}

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
