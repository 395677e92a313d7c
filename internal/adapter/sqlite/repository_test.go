package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/franchiseapi/internal/adapter/sqlite"
	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustFranchise(t *testing.T, store *sqlite.Store, name string) domain.Franchise {
	t.Helper()
	f, err := store.Franchises().Save(context.Background(), domain.NewFranchise(name))
	if err != nil {
		t.Fatalf("mustFranchise failed: %v", err)
	}
	return f
}

func mustBranch(t *testing.T, store *sqlite.Store, franchiseID int64, name string) domain.Branch {
	t.Helper()
	b, err := store.Branches().Save(context.Background(), domain.NewBranch(franchiseID, name))
	if err != nil {
		t.Fatalf("mustBranch failed: %v", err)
	}
	return b
}

func mustProduct(t *testing.T, store *sqlite.Store, branchID int64, name string, stock int) domain.Product {
	t.Helper()
	p, err := store.Products().Save(context.Background(), domain.NewProduct(branchID, name, stock))
	if err != nil {
		t.Fatalf("mustProduct failed: %v", err)
	}
	return p
}

// --- Franchises ---

func TestFranchiseSave_Insert_And_FindByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	if f.ID == 0 {
		t.Fatal("ID should be assigned on insert")
	}

	got, err := store.Franchises().FindByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != f {
		t.Errorf("got %+v, want %+v", got, f)
	}
}

func TestFranchiseSave_AssignsIncreasingIDs(t *testing.T) {
	store := newTestStore(t)

	a := mustFranchise(t, store, "A")
	b := mustFranchise(t, store, "A")
	if b.ID <= a.ID {
		t.Errorf("ids = %d, %d, want strictly increasing", a.ID, b.ID)
	}
}

func TestFranchiseFindByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Franchises().FindByID(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFranchiseSave_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	f.Name = "Acme Global"

	if _, err := store.Franchises().Save(ctx, f); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := store.Franchises().FindByID(ctx, f.ID)
	if got.Name != "Acme Global" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme Global")
	}
}

func TestFranchiseSave_UpdateMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Franchises().Save(context.Background(), domain.Franchise{ID: 99, Name: "Ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFranchiseFindAll_Restartable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustFranchise(t, store, "A")
	mustFranchise(t, store, "B")

	seq := store.Franchises().FindAll(ctx)
	got, err := domain.Collect(seq)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d franchises, want 2", len(got))
	}
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("order = %q, %q, want insertion order", got[0].Name, got[1].Name)
	}

	mustFranchise(t, store, "C")
	again, _ := domain.Collect(seq)
	if len(again) != 3 {
		t.Errorf("second range got %d franchises, want 3", len(again))
	}
}

func TestFranchiseFindAll_EarlyBreak(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustFranchise(t, store, "A")
	mustFranchise(t, store, "B")

	for _, err := range store.Franchises().FindAll(ctx) {
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		break
	}

	// The connection must have been released by the early break.
	if _, err := store.Franchises().FindByID(ctx, 1); err != nil {
		t.Errorf("FindByID after break failed: %v", err)
	}
}

func TestFranchiseDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	if err := store.Franchises().DeleteByID(ctx, f.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}

	if _, err := store.Franchises().FindByID(ctx, f.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFranchiseDelete_WithBranches(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	mustBranch(t, store, f.ID, "Downtown")

	err := store.Franchises().DeleteByID(context.Background(), f.ID)
	if !errors.Is(err, domain.ErrHasDependents) {
		t.Errorf("expected ErrHasDependents, got %v", err)
	}
}

// --- Branches ---

func TestBranchSave_UnknownFranchise(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Branches().Save(context.Background(), domain.NewBranch(999, "Orphan"))
	if err == nil {
		t.Error("expected foreign key error, got nil")
	}
}

func TestBranchSave_UpdateKeepsFranchise(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	other := mustFranchise(t, store, "Other")
	b := mustBranch(t, store, f.ID, "Downtown")

	b.Name = "Midtown"
	b.FranchiseID = other.ID
	if _, err := store.Branches().Save(ctx, b); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := store.Branches().FindByID(ctx, b.ID)
	if got.Name != "Midtown" {
		t.Errorf("Name = %q, want %q", got.Name, "Midtown")
	}
	if got.FranchiseID != f.ID {
		t.Errorf("FranchiseID = %d, want %d", got.FranchiseID, f.ID)
	}
}

func TestBranchFindByFranchiseID(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	other := mustFranchise(t, store, "Other")
	mustBranch(t, store, f.ID, "One")
	mustBranch(t, store, f.ID, "Two")
	mustBranch(t, store, other.ID, "Elsewhere")

	got, err := domain.Collect(store.Branches().FindByFranchiseID(context.Background(), f.ID))
	if err != nil {
		t.Fatalf("FindByFranchiseID failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d branches, want 2", len(got))
	}
	for _, b := range got {
		if b.FranchiseID != f.ID {
			t.Errorf("branch %d belongs to franchise %d", b.ID, b.FranchiseID)
		}
	}
}

func TestBranchDelete_WithProducts(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")
	mustProduct(t, store, b.ID, "Widget", 1)

	err := store.Branches().DeleteByID(context.Background(), b.ID)
	if !errors.Is(err, domain.ErrHasDependents) {
		t.Errorf("expected ErrHasDependents, got %v", err)
	}
}

// --- Products ---

func TestProductSave_UpdateStock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")
	p := mustProduct(t, store, b.ID, "Widget", 10)

	p.Stock = 3
	if _, err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Products().FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Stock != 3 || got.Name != "Widget" || got.BranchID != b.ID {
		t.Errorf("got %+v", got)
	}
}

func TestProductSave_NegativeStockRejected(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")

	_, err := store.Products().Save(context.Background(), domain.NewProduct(b.ID, "Broken", -1))
	if err == nil {
		t.Error("expected check constraint error, got nil")
	}
}

func TestProductFindTopStockByBranchID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")
	other := mustBranch(t, store, f.ID, "Uptown")
	mustProduct(t, store, b.ID, "Low", 3)
	high := mustProduct(t, store, b.ID, "High", 9)
	mustProduct(t, store, b.ID, "Mid", 5)
	mustProduct(t, store, other.ID, "Elsewhere", 100)

	got, err := store.Products().FindTopStockByBranchID(ctx, b.ID)
	if err != nil {
		t.Fatalf("FindTopStockByBranchID failed: %v", err)
	}
	if got.ID != high.ID {
		t.Errorf("top = %+v, want %+v", got, high)
	}
}

func TestProductFindTopStockByBranchID_TieBreaksOnID(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")
	first := mustProduct(t, store, b.ID, "First", 7)
	mustProduct(t, store, b.ID, "Second", 7)

	got, err := store.Products().FindTopStockByBranchID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("FindTopStockByBranchID failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("top id = %d, want lowest id %d", got.ID, first.ID)
	}
}

func TestProductFindTopStockByBranchID_Empty(t *testing.T) {
	store := newTestStore(t)

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")

	_, err := store.Products().FindTopStockByBranchID(context.Background(), b.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProductDelete_ThenBranchDeletable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := mustFranchise(t, store, "Acme")
	b := mustBranch(t, store, f.ID, "Downtown")
	p := mustProduct(t, store, b.ID, "Widget", 1)

	if err := store.Products().DeleteByID(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := store.Branches().DeleteByID(ctx, b.ID); err != nil {
		t.Fatalf("delete branch: %v", err)
	}
	if err := store.Franchises().DeleteByID(ctx, f.ID); err != nil {
		t.Fatalf("delete franchise: %v", err)
	}
}
