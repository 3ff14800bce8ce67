package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opentasklabs/taskauth/internal/auth/store"
	"github.com/opentasklabs/taskauth/internal/auth/store/drivers/sqlite"
	"github.com/opentasklabs/taskauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec("test-secret", "HS256")
	require.NoError(t, err)
	return codec
}

func newAuthService(t *testing.T, st store.Store) *AuthService {
	t.Helper()

	return &AuthService{
		Store: st,
		Codec: newTestCodec(t),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "alice@example.com", u.Email)

	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)

	got, err := svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "Alice", got.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice@example.com", "different")
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	// Email comparison is case-insensitive via normalization.
	_, err = svc.Register(ctx, "Shouty Alice", "ALICE@EXAMPLE.COM", "different")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	// Unknown email and wrong password yield the same error.
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUserRejectsBadTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.CurrentUser(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrNotValidToken)

	// A token signed with a different secret fails.
	other, err := jwtx.NewCodec("other-secret", "HS256")
	require.NoError(t, err)
	forged, err := other.Mint("someone", jwtx.KindAccess, time.Minute)
	require.NoError(t, err)
	_, err = svc.CurrentUser(ctx, forged)
	require.ErrorIs(t, err, ErrNotValidToken)

	// A refresh token is not an access token.
	_, err = svc.CurrentUser(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrNotValidToken)
}

func TestCurrentUserExpiredAccessToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	svc.AccessTTL = -time.Minute // mint already-expired access tokens

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.CurrentUser(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrExpiredSignatureToken)
}

func TestCurrentUserDeletedUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, st.Users().DeleteUser(ctx, u.ID))

	_, err = svc.CurrentUser(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrNotFoundUser)
}

func TestRefreshRotatesAndOldTokenDies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The new access token works.
	_, err = svc.CurrentUser(ctx, rotated.AccessToken)
	require.NoError(t, err)

	// The consumed refresh token is single-use.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrNotFoundToken)

	// The rotated token keeps working.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrNotValidToken)

	// An access token cannot be used to refresh.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrNotValidToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))
	svc.RefreshTTL = -time.Minute

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrExpiredSignatureToken)
}

func TestLoginEvictsOldestSessionPastCap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))
	svc.MaxActiveSessions = 2

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	third, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	// The first session was evicted; the two newest survive.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrNotFoundToken)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, third.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshKeepsEvictionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))
	svc.MaxActiveSessions = 2

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	// Refreshing the first session does not make it newer: its row keeps
	// its original created_at, so it is still the eviction victim.
	firstRotated, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, firstRotated.RefreshToken)
	require.ErrorIs(t, err, ErrNotFoundToken)
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID, pair.RefreshToken))

	// The session is gone; the refresh token no longer works.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrNotFoundToken)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, u.ID, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, u.ID, ""))
}

func TestLogoutForeignToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "Bob", "bob@example.com", "hunter2")
	require.NoError(t, err)

	alicePair, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	err = svc.Logout(ctx, bob.ID, alicePair.RefreshToken)
	require.ErrorIs(t, err, ErrForbidden)

	// Alice's session is untouched.
	_, err = svc.Refresh(ctx, alicePair.RefreshToken)
	require.NoError(t, err)
}

// signTestClaims signs arbitrary claims with the test secret, bypassing
// the codec so tokens can lack claims the codec always sets.
func signTestClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestCurrentUserMissingClaims(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	// Well signed and the right kind, but no exp claim. Distinct from a
	// signature failure: the token is authentic, its claims are lacking.
	noExp := signTestClaims(t, jwt.MapClaims{"sub": "user-123", "type": "access"})
	_, err := svc.CurrentUser(ctx, noExp)
	require.ErrorIs(t, err, ErrNotFoundToken)

	// Well signed with an exp, but no subject.
	noSub := signTestClaims(t, jwt.MapClaims{
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	_, err = svc.CurrentUser(ctx, noSub)
	require.ErrorIs(t, err, ErrNotFoundToken)
}

func TestRefreshMissingClaims(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newAuthService(t, newTestStore(t))

	noExp := signTestClaims(t, jwt.MapClaims{"sub": "user-123", "type": "refresh"})
	_, err := svc.Refresh(ctx, noExp)
	require.ErrorIs(t, err, ErrNotFoundToken)

	noSub := signTestClaims(t, jwt.MapClaims{
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	_, err = svc.Refresh(ctx, noSub)
	require.ErrorIs(t, err, ErrNotFoundToken)
}
