package domain

import "time"

// TokenPair is what a successful login or refresh returns: the short-lived
// access token and the persisted refresh token. Never stored.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"` // always "bearer"
	ExpiresIn    time.Duration `json:"expires_in"` // access-token lifetime
}

// RefreshToken models the stored refresh token record. The row keeps a
// deterministic fingerprint (base64url SHA-256) of the token rather than
// the token itself. A row is "active" while expires_at is in the future;
// expired rows are ignored by queries and swept lazily by housekeeping.
//
// CreatedAt orders rows for oldest-first cap eviction and survives
// rotation: rotating overwrites token_hash and expires_at in place so the
// session keeps its original position in the eviction order.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
