package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	// ErrUnsupportedAlg is returned at construction time for algorithms
	// outside the HMAC family this codec supports.
	ErrUnsupportedAlg = errors.New("jwtx: unsupported signing algorithm")
)

// Codec mints and decodes HMAC-signed JWTs with a process-wide secret and
// algorithm, both fixed at construction. It is safe for concurrent use;
// signing is CPU-only and needs no external synchronisation.
//
// Decode deliberately does NOT enforce expiry: it verifies signature and
// structure and hands back the raw claims so callers can apply their own
// expiry semantics (missing exp and expired exp are distinct failures at
// the service layer).
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	parser *jwt.Parser
}

// NewCodec builds a Codec from a secret and an algorithm name
// (HS256, HS384 or HS512). The secret must be non-empty.
func NewCodec(secret, algorithm string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwtx: empty signing secret")
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, algorithm)
	}

	return &Codec{
		secret: []byte(secret),
		method: method,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			// Expiry is a business rule, not a codec rule.
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Alg returns the configured signing algorithm name.
func (c *Codec) Alg() string { return c.method.Alg() }

// Mint builds a signed token for subject with claims {sub, type, exp, iat}.
func (c *Codec) Mint(subject string, kind TokenKind, ttl time.Duration) (string, error) {
	claims := NewClaims(subject, kind, ttl, time.Now().UTC())
	token := jwt.NewWithClaims(c.method, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and structural validity of a token and
// returns its claims. Expired tokens decode successfully.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSig
		}
	}
	return claims, nil
}

// ExpiryOf decodes a token and returns its "exp" claim. The boolean is
// false if the token fails to decode or carries no expiry.
func (c *Codec) ExpiryOf(tokenString string) (time.Time, bool) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return time.Time{}, false
	}
	return claims.Expiry()
}
