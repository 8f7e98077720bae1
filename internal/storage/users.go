package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mtgbinder/mtgbinder/internal/auth"
)

// UserRepository persists accounts. It implements auth.UserStore.
type UserRepository struct {
	db *DB
}

// CreateUser inserts a new account. A duplicate email is reported as
// auth.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Conn().ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves an account by email. Returns nil when no
// account exists, matching the auth.UserStore contract.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getUser(ctx, "email", email)
}

// GetUserByID retrieves an account by id. Returns nil when no account
// exists.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *UserRepository) getUser(ctx context.Context, column, value string) (*auth.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE %s = ?
	`, column)

	var user auth.User
	err := r.db.Conn().QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
