package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderTokenSource(t *testing.T) {
	t.Parallel()

	src := HeaderTokenSource{}

	t.Run("extracts bearer token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc.def.ghi")

		token, err := src.Extract(r)
		require.NoError(t, err)
		require.Equal(t, "abc.def.ghi", token)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "bearer abc")

		token, err := src.Extract(r)
		require.NoError(t, err)
		require.Equal(t, "abc", token)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := src.Extract(r)
		require.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := src.Extract(r)
		require.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer ")
		_, err := src.Extract(r)
		require.ErrorIs(t, err, ErrNoToken)
	})
}

func TestCookieTokenSource(t *testing.T) {
	t.Parallel()

	src := CookieTokenSource{Name: "users_access_token"}

	t.Run("extracts cookie value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "users_access_token", Value: "tok"})

		token, err := src.Extract(r)
		require.NoError(t, err)
		require.Equal(t, "tok", token)
	})

	t.Run("rejects missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := src.Extract(r)
		require.ErrorIs(t, err, ErrNoToken)
	})
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mk("outer"), mk("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}
