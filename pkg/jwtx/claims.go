package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opentasklabs/taskauth/pkg/idx"
)

// Default token TTL constants for the login flow. These provide sensible
// security defaults but can be overridden per-service via configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Longer-lived for user convenience.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenKind distinguishes access tokens from refresh tokens via the "type"
// claim. Both kinds share the same codec and secret.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims are the claims carried by every token we mint. We keep changes
// additive to preserve compatibility for tokens already in the wild.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is either "access" or "refresh".
	TokenType string `json:"type,omitempty"`
}

// NewClaims builds minimally-correct claims for a subject. The "exp" claim
// is a Unix timestamp in seconds (UTC); comparisons against it are
// wall-clock and therefore tolerate no clock skew. The "jti" claim is a
// fresh ULID so two tokens minted for the same subject within the same
// second still serialize to distinct strings.
func NewClaims(subject string, kind TokenKind, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: string(kind),
	}
}

// Kind returns the token kind from the "type" claim.
func (c *Claims) Kind() TokenKind { return TokenKind(c.TokenType) }

// Expiry returns the "exp" claim and whether it was present.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}
