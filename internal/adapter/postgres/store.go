// Package postgres implements the domain repositories on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// foreignKeyViolation is the SQLSTATE raised when a RESTRICT reference blocks a delete.
const foreignKeyViolation = "23503"

// Store owns the pgx pool and hands out the entity repositories.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, runs migrations, and returns a ready store.
func New(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return NewFromPool(ctx, pool)
}

// NewFromPool wraps an existing pool, runs migrations, and returns a ready store.
func NewFromPool(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if err := runMigrations(ctx, pool); err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying pool for use by other adapters (e.g., river).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Franchises returns the franchise repository.
func (s *Store) Franchises() *FranchiseRepository {
	return &FranchiseRepository{pool: s.pool}
}

// Branches returns the branch repository.
func (s *Store) Branches() *BranchRepository {
	return &BranchRepository{pool: s.pool}
}

// Products returns the product repository.
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{pool: s.pool}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// querySeq runs query when the sequence is ranged over and yields one
// scanned value per row. Every range re-runs the query.
func querySeq[T any](ctx context.Context, pool *pgxpool.Pool, scan func(scanner) (T, error), query string, args ...any) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		rows, err := pool.Query(ctx, query, args...)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if !yield(v, err) || err != nil {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
