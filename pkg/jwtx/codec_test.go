package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewCodecAlgorithms(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		c, err := NewCodec("test-secret", alg)
		require.NoError(t, err)
		require.Equal(t, alg, c.Alg())
	}

	_, err := NewCodec("test-secret", "RS256")
	require.ErrorIs(t, err, ErrUnsupportedAlg)

	_, err = NewCodec("", "HS256")
	require.Error(t, err)
}

func TestMintDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	before := time.Now().UTC()
	token, err := c.Mint("user-123", KindAccess, 30*time.Minute)
	require.NoError(t, err)

	claims, err := c.Decode(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, KindAccess, claims.Kind())

	exp, ok := claims.Expiry()
	require.True(t, ok)
	require.WithinDuration(t, before.Add(30*time.Minute), exp, time.Second)
}

func TestDecodeDoesNotEnforceExpiry(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	// Already expired at mint time.
	token, err := c.Mint("user-123", KindRefresh, -time.Hour)
	require.NoError(t, err)

	claims, err := c.Decode(token)
	require.NoError(t, err)

	exp, ok := claims.Expiry()
	require.True(t, ok)
	require.True(t, exp.Before(time.Now().UTC()))
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	a, err := NewCodec("secret-a", "HS256")
	require.NoError(t, err)
	b, err := NewCodec("secret-b", "HS256")
	require.NoError(t, err)

	token, err := a.Mint("user-123", KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = b.Decode(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestDecodeRejectsAlgorithmMismatch(t *testing.T) {
	t.Parallel()

	hs512, err := NewCodec("test-secret", "HS512")
	require.NoError(t, err)
	hs256, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	token, err := hs512.Mint("user-123", KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = hs256.Decode(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	_, err = c.Decode("not.a.token")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = c.Decode("")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestExpiryOf(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	token, err := c.Mint("user-123", KindRefresh, time.Hour)
	require.NoError(t, err)

	exp, ok := c.ExpiryOf(token)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().UTC().Add(time.Hour), exp, time.Second)

	_, ok = c.ExpiryOf("garbage")
	require.False(t, ok)
}

func TestDecodeTokenWithoutExpiry(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	// Hand-roll a token with no exp claim; Decode must surface it so the
	// caller can treat the missing claim as its own failure mode.
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-123",
		"type": "access",
	})
	token, err := raw.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := c.Decode(token)
	require.NoError(t, err)
	_, ok := claims.Expiry()
	require.False(t, ok)
}
