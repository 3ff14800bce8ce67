package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the taskauth service. It speaks the header token
// strategy: access tokens travel in the Authorization header and refresh
// tokens in request bodies.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new auth service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*UserResponse, error) {
	var out UserResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", "",
		RegisterRequest{Name: name, Email: email, Password: password},
		&out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges an email/password pair for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "",
		LoginRequest{Email: email, Password: password},
		&out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user behind an access token.
func (c *Client) Me(ctx context.Context, accessToken string) (*UserResponse, error) {
	var out UserResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/users/me", accessToken, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates a refresh token, returning a fresh token pair. The old
// refresh token stops working immediately.
func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", accessToken,
		RefreshRequest{RefreshToken: refreshToken},
		&out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout deletes the session behind the refresh token. Idempotent.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/logout", accessToken,
		LogoutRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ChangePassword replaces the caller's password after verifying the
// current one.
func (c *Client) ChangePassword(ctx context.Context, accessToken, current, next string) error {
	resp, err := c.do(ctx, http.MethodPut, "/v1/users/me/password", accessToken,
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteAccount removes the caller's account and every session with it.
func (c *Client) DeleteAccount(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/users/me", accessToken, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Livez reports whether the service is up.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz reports whether the service can reach its database.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs an HTTP request with an optional JSON body and optional
// bearer token.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// doJSON performs a request and decodes the JSON response into target.
// Non-expected statuses come back as a typed *APIError.
func (c *Client) doJSON(ctx context.Context, method, path, accessToken string, body, target any, expectedStatus int) error {
	resp, err := c.do(ctx, method, path, accessToken, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatusNoContent returns a typed error unless the response is 204.
func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}
	return nil
}
