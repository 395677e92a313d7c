package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Compile-time check: BranchRepository implements domain.BranchRepository.
var _ domain.BranchRepository = (*BranchRepository)(nil)

// BranchRepository implements domain.BranchRepository using SQLite.
type BranchRepository struct {
	db *sql.DB
}

func (r *BranchRepository) Save(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	if b.ID == 0 {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO branches (franchise_id, name) VALUES (?, ?) RETURNING id`,
			b.FranchiseID, b.Name,
		).Scan(&b.ID)
		if err != nil {
			return domain.Branch{}, fmt.Errorf("inserting branch: %w", err)
		}
		return b, nil
	}

	// franchise_id is never rewritten; branches cannot move.
	result, err := r.db.ExecContext(ctx,
		`UPDATE branches SET name = ? WHERE id = ?`, b.Name, b.ID,
	)
	if err != nil {
		return domain.Branch{}, fmt.Errorf("updating branch: %w", err)
	}
	if err := requireRow(result); err != nil {
		return domain.Branch{}, err
	}
	return b, nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id int64) (domain.Branch, error) {
	b, err := scanBranch(r.db.QueryRowContext(ctx,
		`SELECT id, franchise_id, name FROM branches WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Branch{}, domain.ErrNotFound
	}
	return b, err
}

func (r *BranchRepository) FindByFranchiseID(ctx context.Context, franchiseID int64) iter.Seq2[domain.Branch, error] {
	return querySeq(ctx, r.db, scanBranch,
		`SELECT id, franchise_id, name FROM branches WHERE franchise_id = ? ORDER BY id`, franchiseID)
}

func (r *BranchRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
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
