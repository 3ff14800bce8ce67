package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
	"github.com/opentasklabs/taskauth/internal/auth/store"
	"github.com/opentasklabs/taskauth/pkg/cryptox"
	"github.com/opentasklabs/taskauth/pkg/idx"
	"github.com/opentasklabs/taskauth/pkg/jwtx"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

// DefaultMaxActiveSessions caps how many refresh tokens a single user may
// hold at once. Logging in past the cap evicts the oldest session first.
const DefaultMaxActiveSessions = 5

// AuthService implements the credential and token lifecycle: registration,
// login, identity resolution from access tokens, refresh rotation and
// logout. All persisted refresh tokens are stored as SHA-256 fingerprints;
// raw token strings only ever exist in transit.
type AuthService struct {
	Store store.Store
	Codec *jwtx.Codec

	// Zero values fall back to the jwtx defaults / DefaultMaxActiveSessions.
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	MaxActiveSessions int
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL == 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL == 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.RefreshTTL
}

// SessionTTL returns the effective refresh token lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.refreshTTL()
}

func (s *AuthService) maxSessions() int64 {
	if s.MaxActiveSessions < 1 {
		return DefaultMaxActiveSessions
	}
	return int64(s.MaxActiveSessions)
}

// Register creates a new user with an Argon2id password hash.
// Returns ErrUserAlreadyExists when the email is taken.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserAlreadyExists
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// Login verifies the email/password pair and issues a fresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
//
// The refresh token is persisted inside a transaction that first evicts
// the user's oldest active sessions until there is room under the cap, so
// a burst of concurrent logins cannot overshoot it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	hash, err := s.Store.Users().GetPasswordHashByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, hash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed", slog.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	pair, row, err := s.mintPair(user.ID, now)
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for {
			count, err := tx.RefreshTokens().CountActiveRefreshTokens(ctx, user.ID, now)
			if err != nil {
				return err
			}
			if count < s.maxSessions() {
				break
			}
			if err := tx.RefreshTokens().DeleteOldestActiveRefreshToken(ctx, user.ID, now); err != nil {
				return err
			}
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return pair, nil
}

// CurrentUser resolves an access token to its user. Failures are reported
// in order of specificity: a token that does not decode or carries the
// wrong kind is ErrNotValidToken; a well-signed token missing its exp or
// sub claim is ErrNotFoundToken; a valid token past its exp is
// ErrExpiredSignatureToken; a valid token whose subject no longer exists
// is ErrNotFoundUser.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (domain.User, error) {
	claims, err := s.Codec.Decode(accessToken)
	if err != nil {
		return domain.User{}, ErrNotValidToken
	}
	if claims.Kind() != jwtx.KindAccess {
		return domain.User{}, ErrNotValidToken
	}

	exp, ok := claims.Expiry()
	if !ok {
		return domain.User{}, ErrNotFoundToken
	}
	if time.Now().After(exp) {
		return domain.User{}, ErrExpiredSignatureToken
	}

	if claims.Subject == "" {
		return domain.User{}, ErrNotFoundToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFoundUser
		}
		return domain.User{}, err
	}
	return user, nil
}

// Refresh validates a refresh token and rotates it: the persisted row is
// updated in place with the new fingerprint and expiry so the session keeps
// its created_at, and the old token stops working the moment the rotation
// commits. A token with no persisted row (already rotated, logged out, or
// evicted by the session cap) yields ErrNotFoundToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Decode(refreshToken)
	if err != nil {
		return nil, ErrNotValidToken
	}
	if claims.Kind() != jwtx.KindRefresh {
		return nil, ErrNotValidToken
	}

	exp, ok := claims.Expiry()
	if !ok {
		return nil, ErrNotFoundToken
	}
	if now.After(exp) {
		return nil, ErrExpiredSignatureToken
	}

	userID := claims.Subject
	if userID == "" {
		return nil, ErrNotFoundToken
	}

	pair, row, err := s.mintPair(userID, now)
	if err != nil {
		return nil, err
	}

	oldFP := cryptox.FingerprintToken(refreshToken)
	if _, err := s.Store.RefreshTokens().RotateRefreshToken(ctx, oldFP, userID, row.TokenHash, row.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected, no session for token", slog.String("user_id", userID))
			return nil, ErrNotFoundToken
		}
		return nil, err
	}

	return pair, nil
}

// Logout deletes the session behind the given refresh token. It is
// idempotent: logging out a token that was already rotated, evicted or
// never issued succeeds silently. A refresh token minted for a different
// user than the authenticated caller is ErrForbidden.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if claims, err := s.Codec.Decode(refreshToken); err == nil {
		if claims.Subject != "" && claims.Subject != userID {
			return ErrForbidden
		}
	}

	fp := cryptox.FingerprintToken(refreshToken)
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, fp, userID)
}

// mintPair signs a new access/refresh pair for userID and builds the
// refresh row to persist. The row's expiry mirrors the refresh JWT's own
// exp claim so the database and the token can never disagree.
func (s *AuthService) mintPair(userID string, now time.Time) (*domain.TokenPair, domain.RefreshToken, error) {
	access, err := s.Codec.Mint(userID, jwtx.KindAccess, s.accessTTL())
	if err != nil {
		return nil, domain.RefreshToken{}, err
	}

	refresh, err := s.Codec.Mint(userID, jwtx.KindRefresh, s.refreshTTL())
	if err != nil {
		return nil, domain.RefreshToken{}, err
	}

	expiresAt, ok := s.Codec.ExpiryOf(refresh)
	if !ok {
		expiresAt = now.Add(s.refreshTTL())
	}

	row := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: expiresAt,
	}

	pair := &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.accessTTL(),
	}
	return pair, row, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
