package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

// UserFinder is the slice of the user store the auth service needs.
type UserFinder interface {
	// GetUserByUsername returns api.ErrNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*api.User, error)
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login verifies the credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	users  UserFinder
	codec  *TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserFinder, codec *TokenCodec, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		users:  users,
		codec:  codec,
	}
}

// Login authenticates a user and mints an access token carrying the user's
// id and role. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown username")
			return "", fmt.Errorf("unknown username: %w", api.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		l.WarnContext(ctx, "Login attempt with wrong password")
		return "", fmt.Errorf("wrong password: %w", api.ErrUnauthenticated)
	}

	token, err := s.codec.Issue(user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue access token", slog.Any("error", err))
		return "", fmt.Errorf("issue token: %w", err)
	}

	l.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return token, nil
}
