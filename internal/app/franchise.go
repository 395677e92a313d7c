package app

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// FranchiseUseCase orchestrates franchise operations.
type FranchiseUseCase struct {
	repo      domain.FranchiseRepository
	publisher domain.EventPublisher
}

// NewFranchiseUseCase creates a use case with the given adapters.
func NewFranchiseUseCase(repo domain.FranchiseRepository, publisher domain.EventPublisher) *FranchiseUseCase {
	return &FranchiseUseCase{
		repo:      repo,
		publisher: publisher,
	}
}

// Create persists a new franchise and publishes a creation event.
// Names are not checked for uniqueness.
func (uc *FranchiseUseCase) Create(ctx context.Context, name string) (domain.Franchise, error) {
	saved, err := uc.repo.Save(ctx, domain.NewFranchise(name))
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("saving franchise: %w", err)
	}

	if err := uc.publish(ctx, domain.EventCreated, saved); err != nil {
		return domain.Franchise{}, err
	}

	return saved, nil
}

// UpdateName renames an existing franchise.
func (uc *FranchiseUseCase) UpdateName(ctx context.Context, id int64, name string) (domain.Franchise, error) {
	franchise, err := uc.Get(ctx, id)
	if err != nil {
		return domain.Franchise{}, err
	}

	franchise.Name = name

	saved, err := uc.repo.Save(ctx, franchise)
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("saving franchise %d: %w", id, err)
	}

	if err := uc.publish(ctx, domain.EventUpdated, saved); err != nil {
		return domain.Franchise{}, err
	}

	return saved, nil
}

// Get returns a franchise by id or a *domain.NotFoundError.
func (uc *FranchiseUseCase) Get(ctx context.Context, id int64) (domain.Franchise, error) {
	franchise, err := uc.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Franchise{}, domain.NewNotFound(domain.KindFranchise, id)
	}
	if err != nil {
		return domain.Franchise{}, fmt.Errorf("finding franchise %d: %w", id, err)
	}
	return franchise, nil
}

// List returns every franchise. Order is whatever the store yields.
func (uc *FranchiseUseCase) List(ctx context.Context) iter.Seq2[domain.Franchise, error] {
	return uc.repo.FindAll(ctx)
}

// Delete removes a franchise and publishes its last known state.
func (uc *FranchiseUseCase) Delete(ctx context.Context, id int64) error {
	franchise, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting franchise %d: %w", id, err)
	}

	return uc.publish(ctx, domain.EventDeleted, franchise)
}

func (uc *FranchiseUseCase) publish(ctx context.Context, eventType domain.EventType, f domain.Franchise) error {
	event := domain.NewFranchiseEvent(newMeta(eventType), f)
	return publish(ctx, uc.publisher, domain.TopicFranchise, f.ID, event)
}
