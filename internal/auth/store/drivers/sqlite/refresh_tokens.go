package sqlite

import (
	"context"
	"time"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
)

type refreshTokensRepo struct {
	q querier
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at, updated_at`

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash)
	return scanRefreshToken(row)
}

// RotateRefreshToken overwrites token_hash and expires_at of the matching
// row in a single UPDATE so there is no read-then-write window; created_at
// is untouched, preserving the session's position in the eviction order.
func (r *refreshTokensRepo) RotateRefreshToken(
	ctx context.Context,
	oldHash, userID, newHash string,
	newExpiresAt time.Time,
) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx,
		`UPDATE refresh_tokens
		 SET token_hash = ?, expires_at = ?, updated_at = ?
		 WHERE token_hash = ? AND user_id = ?
		 RETURNING `+refreshTokenColumns,
		newHash, newExpiresAt, time.Now().UTC(), oldHash, userID,
	)
	return scanRefreshToken(row)
}

func (r *refreshTokensRepo) CountActiveRefreshTokens(
	ctx context.Context,
	userID string,
	now time.Time,
) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ? AND expires_at > ?`,
		userID, now,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *refreshTokensRepo) GetOldestActiveRefreshToken(
	ctx context.Context,
	userID string,
	now time.Time,
) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+`
		 FROM refresh_tokens
		 WHERE user_id = ? AND expires_at > ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`,
		userID, now,
	)
	return scanRefreshToken(row)
}

func (r *refreshTokensRepo) DeleteOldestActiveRefreshToken(
	ctx context.Context,
	userID string,
	now time.Time,
) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens
		 WHERE id = (
		     SELECT id FROM refresh_tokens
		     WHERE user_id = ? AND expires_at > ?
		     ORDER BY created_at ASC, id ASC
		     LIMIT 1
		 )`,
		userID, now,
	)
	return err
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, hash, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = ? AND user_id = ?`,
		hash, userID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

func scanRefreshToken(row rowScanner) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}
