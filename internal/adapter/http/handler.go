package http

import (
	"context"
	"errors"
	"iter"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neomorfeo/franchiseapi/internal/app"
	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// Handlers groups the use cases the REST API is built on.
type Handlers struct {
	Franchises *app.FranchiseUseCase
	Branches   *app.BranchUseCase
	Products   *app.ProductUseCase
	// Logger records the cause of 500 responses. NewRouter fills it in
	// from RouterConfig when nil.
	Logger *zap.Logger
}

// Register adds every franchise, branch and product route to the Huma API.
func Register(api huma.API, h Handlers) {
	registerFranchises(api, h)
	registerBranches(api, h)
	registerProducts(api, h)
}

// FranchiseResponse is the API representation of a franchise.
type FranchiseResponse struct {
	ID   int64  `json:"id" doc:"Unique identifier"`
	Name string `json:"name" doc:"Display name"`
}

func toFranchiseResponse(f domain.Franchise) FranchiseResponse {
	return FranchiseResponse{ID: f.ID, Name: f.Name}
}

// BranchResponse is the API representation of a branch.
type BranchResponse struct {
	ID          int64  `json:"id" doc:"Unique identifier"`
	FranchiseID int64  `json:"franchiseId" doc:"Owning franchise"`
	Name        string `json:"name" doc:"Display name"`
}

func toBranchResponse(b domain.Branch) BranchResponse {
	return BranchResponse{ID: b.ID, FranchiseID: b.FranchiseID, Name: b.Name}
}

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID       int64  `json:"id" doc:"Unique identifier"`
	BranchID int64  `json:"branchId" doc:"Owning branch"`
	Name     string `json:"name" doc:"Display name"`
	Stock    int    `json:"stock" doc:"Units in stock"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{ID: p.ID, BranchID: p.BranchID, Name: p.Name, Stock: p.Stock}
}

// NameBody is the request body for creating or renaming an entity.
// The pattern rejects names made only of whitespace.
type NameBody struct {
	Name string `json:"name" minLength:"1" maxLength:"255" pattern:"\\S" doc:"Display name"`
}

// collect drains seq into API responses. The result is never nil so
// empty lists encode as [].
func collect[T, R any](seq iter.Seq2[T, error], convert func(T) R) ([]R, error) {
	out := make([]R, 0)
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, convert(v))
	}
	return out, nil
}

// toHumaError translates domain errors to Huma HTTP errors. The client
// never sees the cause of a 500, so it is logged here.
func (h Handlers) toHumaError(ctx context.Context, err error) error {
	var nfErr *domain.NotFoundError
	if errors.As(err, &nfErr) {
		return huma.Error404NotFound(nfErr.Error())
	}
	if errors.Is(err, domain.ErrNotFound) {
		return huma.Error404NotFound("not found")
	}

	if errors.Is(err, domain.ErrHasDependents) {
		return huma.Error409Conflict(err.Error())
	}

	if h.Logger != nil {
		h.Logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(ctx)),
			zap.Error(err),
		)
	}
	return huma.Error500InternalServerError("internal server error")
}
