package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/FACorreiaa/go-user-admin-api/config"
	"github.com/FACorreiaa/go-user-admin-api/internal/api"
	"github.com/FACorreiaa/go-user-admin-api/internal/api/auth"
)

// Registration conflict kinds. Both wrap api.ErrConflict; handlers pick the
// response description based on which one comes back.
var (
	ErrUsernameTaken = fmt.Errorf("username already registered: %w", api.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", api.ErrConflict)
)

// ErrInvalidEmail wraps api.ErrBadRequest for syntactically invalid addresses.
var ErrInvalidEmail = fmt.Errorf("not a valid email address: %w", api.ErrBadRequest)

var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the user administration operations.
type UserService interface {
	// Register creates an ordinary (role 1) user with the given credentials.
	Register(ctx context.Context, username, email, password string) (*api.User, error)

	// GetUser fetches a single user by id.
	GetUser(ctx context.Context, userID int64) (*api.User, error)

	// ListUsers returns every user in insertion order.
	ListUsers(ctx context.Context) ([]api.User, error)

	// DeleteUser removes a user by id.
	DeleteUser(ctx context.Context, userID int64) error

	// EnsureAdmin creates the bootstrap administrator if it does not exist.
	EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

// NewUserService creates a new UserService.
func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// ValidateEmail checks the syntax of an email address.
func ValidateEmail(email string) error {
	if err := validation.Validate(email, is.Email); err != nil {
		return fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}
	return nil
}

// Register creates a new ordinary user. The username and email uniqueness
// checks here give friendly conflict answers; the database's unique
// constraints remain the authority, so two concurrent registrations of the
// same username cannot both succeed.
func (s *UserServiceImpl) Register(ctx context.Context, username, email, password string) (*api.User, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("username", username))

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		l.WarnContext(ctx, "Username already registered")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, api.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if err := ValidateEmail(email); err != nil {
		l.WarnContext(ctx, "Rejected invalid email address")
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		l.WarnContext(ctx, "Email already registered")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, api.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateUser(ctx, CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         api.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.Int64("userID", created.ID))
	return created, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*api.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]api.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID int64) error {
	return s.repo.DeleteUser(ctx, userID)
}

// EnsureAdmin creates the configured administrator account on first start.
// Existing accounts are left untouched, so a changed config password does not
// silently rewrite credentials.
func (s *UserServiceImpl) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	l := s.logger.With(slog.String("method", "EnsureAdmin"), slog.String("username", cfg.Username))

	if cfg.Username == "" || cfg.Password == "" {
		l.WarnContext(ctx, "Bootstrap admin not configured, skipping")
		return nil
	}

	_, err := s.repo.GetUserByUsername(ctx, cfg.Username)
	if err == nil {
		l.DebugContext(ctx, "Bootstrap admin already exists")
		return nil
	}
	if !errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}

	hashed, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	created, err := s.repo.CreateUser(ctx, CreateUserParams{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hashed,
		Role:         api.RoleAdmin,
	})
	if err != nil {
		// Lost a race against another instance doing the same bootstrap.
		if errors.Is(err, api.ErrConflict) {
			l.DebugContext(ctx, "Bootstrap admin created concurrently")
			return nil
		}
		return err
	}

	l.InfoContext(ctx, "Bootstrap admin created", slog.Int64("userID", created.ID))
	return nil
}
