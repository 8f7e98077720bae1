// Package postgres provides a PostgreSQL implementation of the
// storage repositories for hosted deployments.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultQueryTimeout bounds individual repository queries.
const DefaultQueryTimeout = 5 * time.Second

// Store wraps the connection pool and provides access to repositories.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, timeout: DefaultQueryTimeout}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrate applies all pending schema migrations. The DSN must use a
// pgx5:// scheme or a plain postgres:// URL.
func Migrate(dsn string) error {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Users returns the account repository.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Collections returns the collection repository.
func (s *Store) Collections() *CollectionRepository {
	return &CollectionRepository{store: s}
}

// Decks returns the deck repository.
func (s *Store) Decks() *DeckRepository {
	return &DeckRepository{store: s}
}

// Trades returns the trade repository.
func (s *Store) Trades() *TradeRepository {
	return &TradeRepository{store: s}
}
