package e2e_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "github.com/opentasklabs/taskauth/internal/auth/http"
	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/internal/auth/store/drivers/sqlite"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for end-to-end tests. The whole service runs in-process
 * against an in-memory database behind an httptest server, so these tests
 * exercise the real router, middleware chain, handlers, services and store
 * over actual HTTP.
 *
 * Rate limit profiles are package-level, so tests here run sequentially
 * (no t.Parallel) and each server relaxes or tightens the profiles it
 * needs before building its middleware chain.
 */

const testSigningSecret = "e2e-test-secret"

// newTestServer builds the full service stack with relaxed rate limits
// and returns an SDK client pointed at it. maxSessions <= 0 keeps the
// default session cap.
func newTestServer(t *testing.T, strategy httpapi.TokenStrategy, maxSessions int) (*httptest.Server, *authsdk.Client) {
	t.Helper()

	relaxRateLimits()
	return buildTestServer(t, strategy, maxSessions)
}

// buildTestServer builds the stack with whatever rate limit profiles are
// currently set. Middleware captures the profiles at construction, so set
// them before calling this.
func buildTestServer(t *testing.T, strategy httpapi.TokenStrategy, maxSessions int) (*httptest.Server, *authsdk.Client) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec(testSigningSecret, "HS256")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := httpapi.NewRouter(strategy, false, "test", st, logger)
	router.AuthService = &service.AuthService{
		Store:             st,
		Codec:             codec,
		MaxActiveSessions: maxSessions,
	}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, authsdk.NewClient(srv.URL)
}

// relaxRateLimits raises every profile high enough that tests making many
// rapid requests never trip them.
func relaxRateLimits() {
	relaxed := httpx.RateLimitConfig{
		RequestsPerWindow: 10000,
		Window:            time.Minute,
		Burst:             10000,
	}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed
	httpx.PublicLimit = relaxed
}

// requireAPIError asserts that err is a typed *authsdk.APIError with the
// given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.Status)
	require.Equal(t, code, apiErr.Code)
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "bearer", resp.TokenType, "Token type should be bearer")
	require.Positive(t, resp.ExpiresIn, "ExpiresIn should be positive")
}
