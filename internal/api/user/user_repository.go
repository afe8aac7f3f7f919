package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

// PGXPool is the subset of pgxpool.Pool the repository uses. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CreateUserParams carries everything needed to insert a user record. The
// password is already hashed by the time it reaches the repository.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         int
}

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user record persistence.
type UserRepo interface {
	// GetUserByID retrieves a user by their numeric id.
	// Returns api.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID int64) (*api.User, error)

	// GetUserByUsername retrieves a user by their unique username.
	// Returns api.ErrNotFound if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*api.User, error)

	// GetUserByEmail retrieves a user by their unique email.
	// Returns api.ErrNotFound if the user doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (*api.User, error)

	// CreateUser inserts a new user record and returns it with the
	// store-assigned id and creation timestamp. Uniqueness of username and
	// email is enforced by the database, so concurrent registrations cannot
	// both succeed; violations come back as api.ErrConflict.
	CreateUser(ctx context.Context, params CreateUserParams) (*api.User, error)

	// ListUsers returns all users in insertion order.
	ListUsers(ctx context.Context) ([]api.User, error)

	// DeleteUser removes a user record. Returns api.ErrNotFound if no record
	// with that id exists (ids are never reused, so a second delete of the
	// same id always reports not found).
	DeleteUser(ctx context.Context, userID int64) error
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresUserRepo(pgpool PGXPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = "id, username, email, password_hash, role, created_at"

func scanUser(row pgx.Row, u *api.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID int64) (*api.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByID"), slog.Int64("userID", userID))

	var u api.User
	err := scanUser(r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user %d not found: %w", userID, api.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query user by id", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (*api.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByUsername", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByUsername"), slog.String("username", username))

	var u api.User
	err := scanUser(r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("username %q not found: %w", username, api.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query user by username", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &u, nil
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*api.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByEmail"))

	var u api.User
	err := scanUser(r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("email not found: %w", api.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query user by email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	span.SetStatus(codes.Ok, "User fetched")
	return &u, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, params CreateUserParams) (*api.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"), slog.String("username", params.Username))

	query := `
        INSERT INTO users (username, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	var u api.User
	err := scanUser(r.pgpool.QueryRow(ctx, query,
		params.Username, params.Email, params.PasswordHash, params.Role), &u)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			l.WarnContext(ctx, "Attempted to create user with duplicate username or email",
				slog.String("constraint", pgErr.ConstraintName))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Duplicate user")
			if pgErr.ConstraintName == "users_email_key" {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		l.ErrorContext(ctx, "Failed to insert new user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.Int64("userID", u.ID))
	span.SetAttributes(attribute.Int64("db.user.id", u.ID))
	span.SetStatus(codes.Ok, "User created")
	return &u, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]api.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "ListUsers", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListUsers"))

	// id order matches insertion order; ids are monotonically assigned.
	rows, err := r.pgpool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		l.ErrorContext(ctx, "Failed to query users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	var users []api.User
	for rows.Next() {
		var u api.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			l.ErrorContext(ctx, "Failed to scan user row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rows iteration failed")
		return nil, fmt.Errorf("database error iterating users: %w", err)
	}

	span.SetAttributes(attribute.Int("db.users.count", len(users)))
	span.SetStatus(codes.Ok, "Users listed")
	return users, nil
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "DeleteUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "DeleteUser"), slog.Int64("userID", userID))

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user %d not found: %w", userID, api.ErrNotFound)
	}

	l.InfoContext(ctx, "User deleted")
	span.SetStatus(codes.Ok, "User deleted")
	return nil
}
