package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mtgbinder/mtgbinder/internal/auth"
)

// UserRepository persists accounts. It implements auth.UserStore.
type UserRepository struct {
	store *Store
}

// CreateUser inserts a new account. A duplicate email is reported as
// auth.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	_, err := r.store.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves an account by email. Returns nil when no
// account exists.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

// GetUserByID retrieves an account by id. Returns nil when no account
// exists.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) getUser(ctx context.Context, query, arg string) (*auth.User, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var user auth.User
	err := r.store.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
