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

// Compile-time check: ProductRepository implements domain.ProductRepository.
var _ domain.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements domain.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

const productColumns = `id, branch_id, name, stock`

func (r *ProductRepository) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO products (branch_id, name, stock) VALUES ($1, $2, $3) RETURNING id`,
			p.BranchID, p.Name, p.Stock,
		).Scan(&p.ID)
		if err != nil {
			return domain.Product{}, fmt.Errorf("inserting product: %w", err)
		}
		return p, nil
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, stock = $2 WHERE id = $3`, p.Name, p.Stock, p.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("updating product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepository) FindByBranchID(ctx context.Context, branchID int64) iter.Seq2[domain.Product, error] {
	return querySeq(ctx, r.pool, scanProduct,
		`SELECT `+productColumns+` FROM products WHERE branch_id = $1 ORDER BY id`, branchID)
}

func (r *ProductRepository) FindTopStockByBranchID(ctx context.Context, branchID int64) (domain.Product, error) {
	return r.findOne(ctx,
		`SELECT `+productColumns+` FROM products WHERE branch_id = $1
		 ORDER BY stock DESC, id ASC LIMIT 1`, branchID)
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

func (r *ProductRepository) findOne(ctx context.Context, query string, args ...any) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func scanProduct(row scanner) (domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.BranchID, &p.Name, &p.Stock); err != nil {
		return domain.Product{}, fmt.Errorf("scanning product: %w", err)
	}
	return p, nil
}
