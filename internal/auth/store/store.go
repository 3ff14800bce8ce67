package store

import (
	"context"
	"errors"
	"time"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (refresh rotation, login cap enforcement).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by their unique email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetPasswordHashByEmail returns just the password hash for a login
	// attempt, without materialising the full record.
	GetPasswordHashByEmail(ctx context.Context, email string) (string, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to refresh_tokens (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	// Returns ErrAlreadyExists on a duplicate token hash.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token row by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RotateRefreshToken atomically replaces the token hash and expiry of
	// the row matching (oldHash, userID), preserving the row and its
	// created_at so the session keeps its eviction-order position.
	// Returns ErrNotFound if no such row exists (already rotated, logged
	// out, or never issued for this user).
	RotateRefreshToken(ctx context.Context, oldHash, userID, newHash string, newExpiresAt time.Time) (domain.RefreshToken, error)

	// CountActiveRefreshTokens counts rows for a user with expires_at
	// after now.
	CountActiveRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error)

	// GetOldestActiveRefreshToken returns the user's active row with the
	// earliest created_at, or ErrNotFound.
	GetOldestActiveRefreshToken(ctx context.Context, userID string, now time.Time) (domain.RefreshToken, error)

	// DeleteOldestActiveRefreshToken removes the user's oldest active row.
	// No-op when the user has no active rows.
	DeleteOldestActiveRefreshToken(ctx context.Context, userID string, now time.Time) error

	// DeleteRefreshToken removes the row matching (hash, userID).
	// No-op when absent.
	DeleteRefreshToken(ctx context.Context, hash, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping; expiry is otherwise lazy.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
