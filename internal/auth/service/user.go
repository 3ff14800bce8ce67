package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/opentasklabs/taskauth/internal/auth/domain"
	"github.com/opentasklabs/taskauth/internal/auth/store"
	"github.com/opentasklabs/taskauth/pkg/cryptox"
	"github.com/opentasklabs/taskauth/pkg/slogx"
)

// UserService manages user accounts after authentication: profile lookup,
// password changes and account deletion.
type UserService struct {
	Store store.Store
}

// GetUser returns the user by id, or ErrNotFoundUser.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFoundUser
		}
		return domain.User{}, err
	}
	return u, nil
}

// ChangePassword verifies the current password before replacing it with a
// new Argon2id hash. A wrong current password is ErrInvalidCredentials.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFoundUser
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFoundUser
		}
		return err
	}

	l.Info("password changed", slog.String("user_id", userID))
	return nil
}

// DeleteUser removes the account. Refresh tokens cascade with the row, so
// every session for the user dies with the account.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return err
	}

	l.Info("user deleted", slog.String("user_id", userID))
	return nil
}
