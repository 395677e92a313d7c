package app_test

import (
	"context"
	"errors"
	"iter"
	"maps"
	"slices"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// --- In-memory store ---

// memStore backs all three fake repositories so foreign keys can be checked
// against the same data.
type memStore struct {
	nextID     int64
	franchises map[int64]domain.Franchise
	branches   map[int64]domain.Branch
	products   map[int64]domain.Product
	saves      int
	deletes    int
	failWith   error
}

func newMemStore() *memStore {
	return &memStore{
		franchises: make(map[int64]domain.Franchise),
		branches:   make(map[int64]domain.Branch),
		products:   make(map[int64]domain.Product),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func sortedValues[T any](m map[int64]T, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if keep(m[k]) {
			out = append(out, m[k])
		}
	}
	return out
}

func seqOf[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
	}
}

type franchiseRepo struct{ s *memStore }

func (r franchiseRepo) Save(_ context.Context, f domain.Franchise) (domain.Franchise, error) {
	if r.s.failWith != nil {
		return domain.Franchise{}, r.s.failWith
	}
	r.s.saves++
	if f.ID == 0 {
		f.ID = r.s.id()
	} else if _, ok := r.s.franchises[f.ID]; !ok {
		return domain.Franchise{}, domain.ErrNotFound
	}
	r.s.franchises[f.ID] = f
	return f, nil
}

func (r franchiseRepo) FindByID(_ context.Context, id int64) (domain.Franchise, error) {
	f, ok := r.s.franchises[id]
	if !ok {
		return domain.Franchise{}, domain.ErrNotFound
	}
	return f, nil
}

func (r franchiseRepo) FindAll(_ context.Context) iter.Seq2[domain.Franchise, error] {
	return func(yield func(domain.Franchise, error) bool) {
		for f, err := range seqOf(sortedValues(r.s.franchises, func(domain.Franchise) bool { return true })) {
			if !yield(f, err) {
				return
			}
		}
	}
}

func (r franchiseRepo) DeleteByID(_ context.Context, id int64) error {
	if r.s.failWith != nil {
		return r.s.failWith
	}
	r.s.deletes++
	delete(r.s.franchises, id)
	return nil
}

type branchRepo struct{ s *memStore }

func (r branchRepo) Save(_ context.Context, b domain.Branch) (domain.Branch, error) {
	if r.s.failWith != nil {
		return domain.Branch{}, r.s.failWith
	}
	r.s.saves++
	if b.ID == 0 {
		b.ID = r.s.id()
	} else if _, ok := r.s.branches[b.ID]; !ok {
		return domain.Branch{}, domain.ErrNotFound
	}
	r.s.branches[b.ID] = b
	return b, nil
}

func (r branchRepo) FindByID(_ context.Context, id int64) (domain.Branch, error) {
	b, ok := r.s.branches[id]
	if !ok {
		return domain.Branch{}, domain.ErrNotFound
	}
	return b, nil
}

func (r branchRepo) FindByFranchiseID(_ context.Context, franchiseID int64) iter.Seq2[domain.Branch, error] {
	return func(yield func(domain.Branch, error) bool) {
		items := sortedValues(r.s.branches, func(b domain.Branch) bool { return b.FranchiseID == franchiseID })
		for b, err := range seqOf(items) {
			if !yield(b, err) {
				return
			}
		}
	}
}

func (r branchRepo) DeleteByID(_ context.Context, id int64) error {
	if r.s.failWith != nil {
		return r.s.failWith
	}
	r.s.deletes++
	delete(r.s.branches, id)
	return nil
}

type productRepo struct{ s *memStore }

func (r productRepo) Save(_ context.Context, p domain.Product) (domain.Product, error) {
	if r.s.failWith != nil {
		return domain.Product{}, r.s.failWith
	}
	r.s.saves++
	if p.ID == 0 {
		p.ID = r.s.id()
	} else if _, ok := r.s.products[p.ID]; !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	r.s.products[p.ID] = p
	return p, nil
}

func (r productRepo) FindByID(_ context.Context, id int64) (domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r productRepo) FindByBranchID(_ context.Context, branchID int64) iter.Seq2[domain.Product, error] {
	return func(yield func(domain.Product, error) bool) {
		items := sortedValues(r.s.products, func(p domain.Product) bool { return p.BranchID == branchID })
		for p, err := range seqOf(items) {
			if !yield(p, err) {
				return
			}
		}
	}
}

func (r productRepo) FindTopStockByBranchID(_ context.Context, branchID int64) (domain.Product, error) {
	var top domain.Product
	found := false
	for _, p := range sortedValues(r.s.products, func(p domain.Product) bool { return p.BranchID == branchID }) {
		if !found || p.Stock > top.Stock {
			top, found = p, true
		}
	}
	if !found {
		return domain.Product{}, domain.ErrNotFound
	}
	return top, nil
}

func (r productRepo) DeleteByID(_ context.Context, id int64) error {
	if r.s.failWith != nil {
		return r.s.failWith
	}
	r.s.deletes++
	delete(r.s.products, id)
	return nil
}

// --- Publisher ---

type publishedEvent struct {
	topic string
	key   string
	event domain.Event
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, topic, key string, e domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{topic: topic, key: key, event: e})
	return nil
}

var errBroker = errors.New("broker unavailable")
