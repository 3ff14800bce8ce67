package e2e_test

import (
	"context"
	"net/http"
	"testing"

	httpapi "github.com/opentasklabs/taskauth/internal/auth/http"
	"github.com/opentasklabs/taskauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t, httpapi.StrategyHeader, 0)

	_, err := client.Register(ctx, "Alice", "alice@example.com", "old-pass")
	require.NoError(t, err)

	tokens, err := client.Login(ctx, "alice@example.com", "old-pass")
	require.NoError(t, err)

	// Wrong current password
	err = client.ChangePassword(ctx, tokens.AccessToken, "wrong", "new-pass")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	// Change succeeds with the right current password
	require.NoError(t, client.ChangePassword(ctx, tokens.AccessToken, "old-pass", "new-pass"))

	_, err = client.Login(ctx, "alice@example.com", "old-pass")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	_, err = client.Login(ctx, "alice@example.com", "new-pass")
	require.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t, httpapi.StrategyHeader, 0)

	_, err := client.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	tokens, err := client.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, client.DeleteAccount(ctx, tokens.AccessToken))

	// The account is gone, and every session with it
	_, err = client.Me(ctx, tokens.AccessToken)
	requireAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeUserNotFound)

	_, err = client.Refresh(ctx, tokens.AccessToken, tokens.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeTokenNotFound)

	_, err = client.Login(ctx, "alice@example.com", "s3cret-pass")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
}
