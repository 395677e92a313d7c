package domain

import (
	"context"
	"iter"
)

// FranchiseRepository defines the persistence contract for franchises.
type FranchiseRepository interface {
	// Save inserts f when f.ID is zero and updates the row with f.ID otherwise.
	// It returns the stored entity with its assigned ID.
	Save(ctx context.Context, f Franchise) (Franchise, error)
	FindByID(ctx context.Context, id int64) (Franchise, error)
	FindAll(ctx context.Context) iter.Seq2[Franchise, error]
	DeleteByID(ctx context.Context, id int64) error
}

// BranchRepository defines the persistence contract for branches.
type BranchRepository interface {
	Save(ctx context.Context, b Branch) (Branch, error)
	FindByID(ctx context.Context, id int64) (Branch, error)
	FindByFranchiseID(ctx context.Context, franchiseID int64) iter.Seq2[Branch, error]
	DeleteByID(ctx context.Context, id int64) error
}

// ProductRepository defines the persistence contract for products.
type ProductRepository interface {
	Save(ctx context.Context, p Product) (Product, error)
	FindByID(ctx context.Context, id int64) (Product, error)
	FindByBranchID(ctx context.Context, branchID int64) iter.Seq2[Product, error]
	// FindTopStockByBranchID returns the product with the highest stock in the
	// branch, lowest ID first on ties, or ErrNotFound when the branch is empty.
	FindTopStockByBranchID(ctx context.Context, branchID int64) (Product, error)
	DeleteByID(ctx context.Context, id int64) error
}

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
}

// LifecycleValidator checks an event against the lifecycle state of its entity.
type LifecycleValidator interface {
	Apply(ctx context.Context, current Lifecycle, event EventType) (Lifecycle, error)
}
