package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Compile-time check: FranchiseRepository implements domain.FranchiseRepository.
var _ domain.FranchiseRepository = (*FranchiseRepository)(nil)

// FranchiseRepository implements domain.FranchiseRepository using SQLite.
type FranchiseRepository struct {
	db *sql.DB
}

func (r *FranchiseRepository) Save(ctx context.Context, f domain.Franchise) (domain.Franchise, error) {
	if f.ID == 0 {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO franchises (name) VALUES (?) RETURNING id`, f.Name,
		).Scan(&f.ID)
		if err != nil {
			return domain.Franchise{}, fmt.Errorf("inserting franchise: %w", err)
		}
		return f, nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE franchises SET name = ? WHERE id = ?`, f.Name, f.ID,
	)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("updating franchise: %w", err)
	}
	if err := requireRow(result); err != nil {
		return domain.Franchise{}, err
	}
	return f, nil
}

func (r *FranchiseRepository) FindByID(ctx context.Context, id int64) (domain.Franchise, error) {
	f, err := scanFranchise(r.db.QueryRowContext(ctx,
		`SELECT id, name FROM franchises WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Franchise{}, domain.ErrNotFound
	}
	return f, err
}

func (r *FranchiseRepository) FindAll(ctx context.Context) iter.Seq2[domain.Franchise, error] {
	return querySeq(ctx, r.db, scanFranchise,
		`SELECT id, name FROM franchises ORDER BY id`)
}

func (r *FranchiseRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM franchises WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
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

// requireRow maps an update that touched nothing to domain.ErrNotFound.
func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
