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

// Compile-time check: BranchRepository implements domain.BranchRepository.
var _ domain.BranchRepository = (*BranchRepository)(nil)

// BranchRepository implements domain.BranchRepository using PostgreSQL.
type BranchRepository struct {
	pool *pgxpool.Pool
}

func (r *BranchRepository) Save(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	if b.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO branches (franchise_id, name) VALUES ($1, $2) RETURNING id`,
			b.FranchiseID, b.Name,
		).Scan(&b.ID)
		if err != nil {
			return domain.Branch{}, fmt.Errorf("inserting branch: %w", err)
		}
		return b, nil
	}

	tag, err := r.pool.Exec(ctx, `UPDATE branches SET name = $1 WHERE id = $2`, b.Name, b.ID)
	if err != nil {
		return domain.Branch{}, fmt.Errorf("updating branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Branch{}, domain.ErrNotFound
	}
	return b, nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id int64) (domain.Branch, error) {
	b, err := scanBranch(r.pool.QueryRow(ctx,
		`SELECT id, franchise_id, name FROM branches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Branch{}, domain.ErrNotFound
	}
	return b, err
}

func (r *BranchRepository) FindByFranchiseID(ctx context.Context, franchiseID int64) iter.Seq2[domain.Branch, error] {
	return querySeq(ctx, r.pool, scanBranch,
		`SELECT id, franchise_id, name FROM branches WHERE franchise_id = $1 ORDER BY id`, franchiseID)
}

func (r *BranchRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id); err != nil {
		if isCode(err, foreignKeyViolation) {
			return fmt.Errorf("deleting branch %d: %w", id, domain.ErrHasDependents)
		}
		return fmt.Errorf("deleting branch: %w", err)
	}
	return nil
}

func scanBranch(row scanner) (domain.Branch, error) {
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.FranchiseID, &b.Name); err != nil {
		return domain.Branch{}, fmt.Errorf("scanning branch: %w", err)
	}
	return b, nil
}
