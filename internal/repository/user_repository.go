package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diario/pkg/models"
)

// UserRepository handles user data persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateRole(ctx context.Context, userID string, role models.UserRole) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, display_name, photo_url, password_hash, role, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var roleStr string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.PhotoURL,
		&user.PasswordHash,
		&roleStr,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.UserRole(roleStr)
	return user, nil
}

// Create inserts a new user record
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, display_name, photo_url, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, CURRENT_TIMESTAMP))
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_id")
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_username")
	}
	return user, nil
}

// GetByEmail retrieves a user by email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_email")
	}
	return user, nil
}

// UsernameExists checks if a username is already taken
func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var exists bool

	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, r.mapDBError(err, "check_username_exists")
	}
	return exists, nil
}

// UpdateRole changes a user's global role. Role is re-read on every
// privileged request, so this takes effect immediately.
func (r *userRepository) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	query := `UPDATE users SET role = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, string(role))
	if err != nil {
		return r.mapDBError(err, "update_user_role")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update_user_role: %w", models.ErrUserNotFound)
	}
	return nil
}

// mapDBError maps database errors to application errors
func (r *userRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrUserNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "users_email_key" {
				return fmt.Errorf("%s: %w", operation, models.ErrEmailExists)
			}
			return fmt.Errorf("%s: %w", operation, models.ErrUsernameExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: invalid reference: %w", operation, models.ErrInvalidInput)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
