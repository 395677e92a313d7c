package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Compile-time check: FranchiseRepository implements domain.FranchiseRepository.
var _ domain.FranchiseRepository = (*FranchiseRepository)(nil)

// FranchiseRepository implements domain.FranchiseRepository using PostgreSQL.
type FranchiseRepository struct {
	pool *pgxpool.Pool
}

func (r *FranchiseRepository) Save(ctx context.Context, f domain.Franchise) (domain.Franchise, error) {
	if f.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO franchises (name) VALUES ($1) RETURNING id`, f.Name,
		).Scan(&f.ID)
		if err != nil {
			return domain.Franchise{}, fmt.Errorf("inserting franchise: %w", err)
		}
		return f, nil
	}

	tag, err := r.pool.Exec(ctx, `UPDATE franchises SET name = $1 WHERE id = $2`, f.Name, f.ID)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("updating franchise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Franchise{}, domain.ErrNotFound
	}
	return f, nil
}

func (r *FranchiseRepository) FindByID(ctx context.Context, id int64) (domain.Franchise, error) {
	f, err := scanFranchise(r.pool.QueryRow(ctx, `SELECT id, name FROM franchises WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Franchise{}, domain.ErrNotFound
	}
	return f, err
}

func (r *FranchiseRepository) FindAll(ctx context.Context) iter.Seq2[domain.Franchise, error] {
	return querySeq(ctx, r.pool, scanFranchise, `SELECT id, name FROM franchises ORDER BY id`)
}

func (r *FranchiseRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM franchises WHERE id = $1`, id); err != nil {
		if isCode(err, foreignKeyViolation) {
			return fmt.Errorf("deleting franchise %d: %w", id, domain.ErrHasDependents)
		}
		return fmt.Errorf("deleting franchise: %w", err)
	}
	return nil
}

func scanFranchise(row scanner) (domain.Franchise, error) {
	var f domain.Franchise
	if err := row.Scan(&f.ID, &f.Name); err != nil {
		return domain.Franchise{}, fmt.Errorf("scanning franchise: %w", err)
	}
	return f, nil
}
