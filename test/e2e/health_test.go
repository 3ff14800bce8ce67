package e2e_test

import (
	"context"
	"testing"

	httpapi "github.com/opentasklabs/taskauth/internal/auth/http"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t, httpapi.StrategyHeader, 0)

	live, err := client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Uptime)

	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}
