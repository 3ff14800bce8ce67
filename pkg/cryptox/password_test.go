package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secure_password")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("secure_password", hash))
	require.Error(t, VerifyPassword("wrong", hash))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifyPassword("same-input", a))
	require.NoError(t, VerifyPassword("same-input", b))
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"plainly-not-a-hash",
		"$argon2id$v=19$m=65536,t=3,p=2$salt-only",
		"$bcrypt$v=19$m=65536,t=3,p=2$AAAA$BBBB",
		"$argon2id$v=18$m=65536,t=3,p=2$AAAA$BBBB",
		"$argon2id$v=19$m=?,t=?,p=?$AAAA$BBBB",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!!$BBBB",
	} {
		require.Error(t, VerifyPassword("pw", bad), "digest %q", bad)
	}
}

func TestFingerprintTokenDeterministic(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-token")
	require.Equal(t, fp, FingerprintToken("some-token"))
	require.NotEqual(t, fp, FingerprintToken("other-token"))
	require.Len(t, fp, 43)
}
