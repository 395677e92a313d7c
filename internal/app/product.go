package app

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// ProductUseCase orchestrates product operations.
type ProductUseCase struct {
	products  domain.ProductRepository
	branches  domain.BranchRepository
	publisher domain.EventPublisher
}

// NewProductUseCase creates a use case with the given adapters.
func NewProductUseCase(products domain.ProductRepository, branches domain.BranchRepository, publisher domain.EventPublisher) *ProductUseCase {
	return &ProductUseCase{
		products:  products,
		branches:  branches,
		publisher: publisher,
	}
}

// Create persists a new product under an existing branch.
// Stock is validated by the caller.
func (uc *ProductUseCase) Create(ctx context.Context, branchID int64, name string, stock int) (domain.Product, error) {
	if _, err := uc.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, domain.NewNotFound(domain.KindBranch, branchID)
		}
		return domain.Product{}, fmt.Errorf("finding branch %d: %w", branchID, err)
	}

	saved, err := uc.products.Save(ctx, domain.NewProduct(branchID, name, stock))
	if err != nil {
		return domain.Product{}, fmt.Errorf("saving product: %w", err)
	}

	if err := uc.publish(ctx, domain.EventCreated, saved); err != nil {
		return domain.Product{}, err
	}

	return saved, nil
}

// UpdateName renames a product.
func (uc *ProductUseCase) UpdateName(ctx context.Context, id int64, name string) (domain.Product, error) {
	return uc.update(ctx, id, func(p *domain.Product) { p.Name = name })
}

// UpdateStock replaces the stock of a product with the given value.
func (uc *ProductUseCase) UpdateStock(ctx context.Context, id int64, stock int) (domain.Product, error) {
	return uc.update(ctx, id, func(p *domain.Product) { p.Stock = stock })
}

// update loads, mutates, saves and publishes. No lock is held between the
// load and the save, so concurrent updates of one product race.
func (uc *ProductUseCase) update(ctx context.Context, id int64, mutate func(*domain.Product)) (domain.Product, error) {
	product, err := uc.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	mutate(&product)

	saved, err := uc.products.Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("saving product %d: %w", id, err)
	}

	if err := uc.publish(ctx, domain.EventUpdated, saved); err != nil {
		return domain.Product{}, err
	}

	return saved, nil
}

// Get returns a product by id or a *domain.NotFoundError.
func (uc *ProductUseCase) Get(ctx context.Context, id int64) (domain.Product, error) {
	product, err := uc.products.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, domain.NewNotFound(domain.KindProduct, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("finding product %d: %w", id, err)
	}
	return product, nil
}

// ListByBranch returns the products of a branch. An unknown branch yields
// an empty sequence.
func (uc *ProductUseCase) ListByBranch(ctx context.Context, branchID int64) iter.Seq2[domain.Product, error] {
	return uc.products.FindByBranchID(ctx, branchID)
}

// TopStockByBranch returns the product with the highest stock in a branch.
// The boolean is false when the branch has no products.
func (uc *ProductUseCase) TopStockByBranch(ctx context.Context, branchID int64) (domain.Product, bool, error) {
	product, err := uc.products.FindTopStockByBranchID(ctx, branchID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("finding top stock product of branch %d: %w", branchID, err)
	}
	return product, true, nil
}

// Delete removes a product and publishes its last known state.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	product, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.products.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}

	return uc.publish(ctx, domain.EventDeleted, product)
}

func (uc *ProductUseCase) publish(ctx context.Context, eventType domain.EventType, p domain.Product) error {
	event := domain.NewProductEvent(newMeta(eventType), p)
	return publish(ctx, uc.publisher, domain.TopicProduct, p.ID, event)
}
