package app

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// BranchUseCase orchestrates branch operations.
type BranchUseCase struct {
	branches   domain.BranchRepository
	franchises domain.FranchiseRepository
	publisher  domain.EventPublisher
}

// NewBranchUseCase creates a use case with the given adapters.
func NewBranchUseCase(branches domain.BranchRepository, franchises domain.FranchiseRepository, publisher domain.EventPublisher) *BranchUseCase {
	return &BranchUseCase{
		branches:   branches,
		franchises: franchises,
		publisher:  publisher,
	}
}

// Create persists a new branch under an existing franchise.
func (uc *BranchUseCase) Create(ctx context.Context, franchiseID int64, name string) (domain.Branch, error) {
	if _, err := uc.franchises.FindByID(ctx, franchiseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Branch{}, domain.NewNotFound(domain.KindFranchise, franchiseID)
		}
		return domain.Branch{}, fmt.Errorf("finding franchise %d: %w", franchiseID, err)
	}

	saved, err := uc.branches.Save(ctx, domain.NewBranch(franchiseID, name))
	if err != nil {
		return domain.Branch{}, fmt.Errorf("saving branch: %w", err)
	}

	if err := uc.publish(ctx, domain.EventCreated, saved); err != nil {
		return domain.Branch{}, err
	}

	return saved, nil
}

// UpdateName renames a branch. FranchiseID is left untouched.
func (uc *BranchUseCase) UpdateName(ctx context.Context, id int64, name string) (domain.Branch, error) {
	branch, err := uc.Get(ctx, id)
	if err != nil {
		return domain.Branch{}, err
	}

	branch.Name = name

	saved, err := uc.branches.Save(ctx, branch)
	if err != nil {
		return domain.Branch{}, fmt.Errorf("saving branch %d: %w", id, err)
	}

	if err := uc.publish(ctx, domain.EventUpdated, saved); err != nil {
		return domain.Branch{}, err
	}

	return saved, nil
}

// Get returns a branch by id or a *domain.NotFoundError.
func (uc *BranchUseCase) Get(ctx context.Context, id int64) (domain.Branch, error) {
	branch, err := uc.branches.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Branch{}, domain.NewNotFound(domain.KindBranch, id)
	}
	if err != nil {
		return domain.Branch{}, fmt.Errorf("finding branch %d: %w", id, err)
	}
	return branch, nil
}

// ListByFranchise returns the branches of a franchise. An unknown franchise
// yields an empty sequence rather than an error.
func (uc *BranchUseCase) ListByFranchise(ctx context.Context, franchiseID int64) iter.Seq2[domain.Branch, error] {
	return uc.branches.FindByFranchiseID(ctx, franchiseID)
}

// Delete removes a branch and publishes its last known state.
func (uc *BranchUseCase) Delete(ctx context.Context, id int64) error {
	branch, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.branches.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting branch %d: %w", id, err)
	}

	return uc.publish(ctx, domain.EventDeleted, branch)
}

func (uc *BranchUseCase) publish(ctx context.Context, eventType domain.EventType, b domain.Branch) error {
	event := domain.NewBranchEvent(newMeta(eventType), b)
	return publish(ctx, uc.publisher, domain.TopicBranch, b.ID, event)
}
