package otel

import (
	"context"
	"errors"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

const tracerName = "github.com/neomorfeo/franchiseapi/internal/adapter/otel"

// recordErr marks span as failed when err is non-nil.
func recordErr(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// traceSeq wraps a lazy sequence so the span covers the iteration itself,
// which is when the query actually runs. No span is started if the
// sequence is never ranged over.
func traceSeq[T any](ctx context.Context, tracer trace.Tracer, name string, attrs []attribute.KeyValue, open func(context.Context) iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
		defer span.End()

		count := 0
		for v, err := range open(ctx) {
			if err != nil {
				recordErr(span, err)
			} else {
				count++
			}
			if !yield(v, err) {
				break
			}
		}
		span.SetAttributes(attribute.Int("result.count", count))
	}
}

// --- Franchises ---

// TracingFranchiseRepository wraps a domain.FranchiseRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingFranchiseRepository struct {
	next   domain.FranchiseRepository
	tracer trace.Tracer
}

// Compile-time check: TracingFranchiseRepository implements domain.FranchiseRepository.
var _ domain.FranchiseRepository = (*TracingFranchiseRepository)(nil)

// NewTracingFranchiseRepository creates a tracing decorator around the given repository.
func NewTracingFranchiseRepository(next domain.FranchiseRepository) *TracingFranchiseRepository {
	return &TracingFranchiseRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingFranchiseRepository) Save(ctx context.Context, f domain.Franchise) (domain.Franchise, error) {
	ctx, span := r.tracer.Start(ctx, "FranchiseRepository.Save",
		trace.WithAttributes(attribute.Int64("franchise.id", f.ID)),
	)
	defer span.End()

	saved, err := r.next.Save(ctx, f)
	recordErr(span, err)
	span.SetAttributes(attribute.Int64("franchise.id", saved.ID))
	return saved, err
}

func (r *TracingFranchiseRepository) FindByID(ctx context.Context, id int64) (domain.Franchise, error) {
	ctx, span := r.tracer.Start(ctx, "FranchiseRepository.FindByID",
		trace.WithAttributes(attribute.Int64("franchise.id", id)),
	)
	defer span.End()

	f, err := r.next.FindByID(ctx, id)
	recordErr(span, err)
	return f, err
}

func (r *TracingFranchiseRepository) FindAll(ctx context.Context) iter.Seq2[domain.Franchise, error] {
	return traceSeq(ctx, r.tracer, "FranchiseRepository.FindAll", nil, r.next.FindAll)
}

func (r *TracingFranchiseRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "FranchiseRepository.DeleteByID",
		trace.WithAttributes(attribute.Int64("franchise.id", id)),
	)
	defer span.End()

	err := r.next.DeleteByID(ctx, id)
	recordErr(span, err)
	return err
}

// --- Branches ---

// TracingBranchRepository wraps a domain.BranchRepository with OpenTelemetry tracing.
type TracingBranchRepository struct {
	next   domain.BranchRepository
	tracer trace.Tracer
}

// Compile-time check: TracingBranchRepository implements domain.BranchRepository.
var _ domain.BranchRepository = (*TracingBranchRepository)(nil)

// NewTracingBranchRepository creates a tracing decorator around the given repository.
func NewTracingBranchRepository(next domain.BranchRepository) *TracingBranchRepository {
	return &TracingBranchRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingBranchRepository) Save(ctx context.Context, b domain.Branch) (domain.Branch, error) {
	ctx, span := r.tracer.Start(ctx, "BranchRepository.Save",
		trace.WithAttributes(
			attribute.Int64("branch.id", b.ID),
			attribute.Int64("franchise.id", b.FranchiseID),
		),
	)
	defer span.End()

	saved, err := r.next.Save(ctx, b)
	recordErr(span, err)
	span.SetAttributes(attribute.Int64("branch.id", saved.ID))
	return saved, err
}

func (r *TracingBranchRepository) FindByID(ctx context.Context, id int64) (domain.Branch, error) {
	ctx, span := r.tracer.Start(ctx, "BranchRepository.FindByID",
		trace.WithAttributes(attribute.Int64("branch.id", id)),
	)
	defer span.End()

	b, err := r.next.FindByID(ctx, id)
	recordErr(span, err)
	return b, err
}

func (r *TracingBranchRepository) FindByFranchiseID(ctx context.Context, franchiseID int64) iter.Seq2[domain.Branch, error] {
	return traceSeq(ctx, r.tracer, "BranchRepository.FindByFranchiseID",
		[]attribute.KeyValue{attribute.Int64("franchise.id", franchiseID)},
		func(ctx context.Context) iter.Seq2[domain.Branch, error] {
			return r.next.FindByFranchiseID(ctx, franchiseID)
		},
	)
}

func (r *TracingBranchRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "BranchRepository.DeleteByID",
		trace.WithAttributes(attribute.Int64("branch.id", id)),
	)
	defer span.End()

	err := r.next.DeleteByID(ctx, id)
	recordErr(span, err)
	return err
}

// --- Products ---

// TracingProductRepository wraps a domain.ProductRepository with OpenTelemetry tracing.
type TracingProductRepository struct {
	next   domain.ProductRepository
	tracer trace.Tracer
}

// Compile-time check: TracingProductRepository implements domain.ProductRepository.
var _ domain.ProductRepository = (*TracingProductRepository)(nil)

// NewTracingProductRepository creates a tracing decorator around the given repository.
func NewTracingProductRepository(next domain.ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{next: next, tracer: otel.Tracer(tracerName)}
}

func (r *TracingProductRepository) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Save",
		trace.WithAttributes(
			attribute.Int64("product.id", p.ID),
			attribute.Int64("branch.id", p.BranchID),
			attribute.Int("product.stock", p.Stock),
		),
	)
	defer span.End()

	saved, err := r.next.Save(ctx, p)
	recordErr(span, err)
	span.SetAttributes(attribute.Int64("product.id", saved.ID))
	return saved, err
}

func (r *TracingProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	p, err := r.next.FindByID(ctx, id)
	recordErr(span, err)
	return p, err
}

func (r *TracingProductRepository) FindByBranchID(ctx context.Context, branchID int64) iter.Seq2[domain.Product, error] {
	return traceSeq(ctx, r.tracer, "ProductRepository.FindByBranchID",
		[]attribute.KeyValue{attribute.Int64("branch.id", branchID)},
		func(ctx context.Context) iter.Seq2[domain.Product, error] {
			return r.next.FindByBranchID(ctx, branchID)
		},
	)
}

func (r *TracingProductRepository) FindTopStockByBranchID(ctx context.Context, branchID int64) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindTopStockByBranchID",
		trace.WithAttributes(attribute.Int64("branch.id", branchID)),
	)
	defer span.End()

	p, err := r.next.FindTopStockByBranchID(ctx, branchID)
	// An empty branch is an expected outcome, not a failure.
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		recordErr(span, err)
	}
	span.SetAttributes(attribute.Bool("result.found", err == nil))
	return p, err
}

func (r *TracingProductRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	err := r.next.DeleteByID(ctx, id)
	recordErr(span, err)
	return err
}
