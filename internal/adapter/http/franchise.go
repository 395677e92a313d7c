package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/franchiseapi/internal/domain"
)

// topProductsConcurrency bounds the per-branch lookups of one request.
const topProductsConcurrency = 4

type FranchiseIDInput struct {
	ID int64 `path:"id" doc:"Franchise ID"`
}

type CreateFranchiseInput struct {
	Body NameBody
}

type UpdateFranchiseNameInput struct {
	ID   int64 `path:"id" doc:"Franchise ID"`
	Body NameBody
}

type FranchiseOutput struct {
	Body FranchiseResponse
}

type ListFranchisesOutput struct {
	Body []FranchiseResponse
}

type CreateBranchInput struct {
	ID   int64 `path:"id" doc:"Franchise ID"`
	Body NameBody
}

type ListBranchesOutput struct {
	Body []BranchResponse
}

type TopProductsOutput struct {
	Body []ProductResponse
}

func registerFranchises(api huma.API, h Handlers) {
	huma.Register(api, huma.Operation{
		OperationID: "create-franchise",
		Method:      http.MethodPost,
		Path:        "/api/v1/franchises",
		Summary:     "Create a franchise",
		Tags:        []string{"Franchises"},
	}, func(ctx context.Context, input *CreateFranchiseInput) (*FranchiseOutput, error) {
		f, err := h.Franchises.Create(ctx, input.Body.Name)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &FranchiseOutput{Body: toFranchiseResponse(f)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-franchises",
		Method:      http.MethodGet,
		Path:        "/api/v1/franchises",
		Summary:     "List franchises",
		Tags:        []string{"Franchises"},
	}, func(ctx context.Context, _ *struct{}) (*ListFranchisesOutput, error) {
		resp, err := collect(h.Franchises.List(ctx), toFranchiseResponse)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListFranchisesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-franchise",
		Method:      http.MethodGet,
		Path:        "/api/v1/franchises/{id}",
		Summary:     "Get a franchise by ID",
		Tags:        []string{"Franchises"},
	}, func(ctx context.Context, input *FranchiseIDInput) (*FranchiseOutput, error) {
		f, err := h.Franchises.Get(ctx, input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &FranchiseOutput{Body: toFranchiseResponse(f)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-franchise-name",
		Method:      http.MethodPut,
		Path:        "/api/v1/franchises/{id}/name",
		Summary:     "Rename a franchise",
		Tags:        []string{"Franchises"},
	}, func(ctx context.Context, input *UpdateFranchiseNameInput) (*FranchiseOutput, error) {
		f, err := h.Franchises.UpdateName(ctx, input.ID, input.Body.Name)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &FranchiseOutput{Body: toFranchiseResponse(f)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-franchise",
		Method:        http.MethodDelete,
		Path:          "/api/v1/franchises/{id}",
		Summary:       "Delete a franchise without branches",
		Tags:          []string{"Franchises"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *FranchiseIDInput) (*struct{}, error) {
		if err := h.Franchises.Delete(ctx, input.ID); err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-branch",
		Method:      http.MethodPost,
		Path:        "/api/v1/franchises/{id}/branches",
		Summary:     "Add a branch to a franchise",
		Tags:        []string{"Branches"},
	}, func(ctx context.Context, input *CreateBranchInput) (*BranchOutput, error) {
		b, err := h.Branches.Create(ctx, input.ID, input.Body.Name)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &BranchOutput{Body: toBranchResponse(b)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-franchise-branches",
		Method:      http.MethodGet,
		Path:        "/api/v1/franchises/{id}/branches",
		Summary:     "List the branches of a franchise",
		Tags:        []string{"Branches"},
	}, func(ctx context.Context, input *FranchiseIDInput) (*ListBranchesOutput, error) {
		resp, err := collect(h.Branches.ListByFranchise(ctx, input.ID), toBranchResponse)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListBranchesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-franchise-top-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/franchises/{id}/top-products",
		Summary:     "Highest-stock product of every branch",
		Description: "Branches without products are omitted. An unknown franchise yields an empty list.",
		Tags:        []string{"Franchises"},
	}, func(ctx context.Context, input *FranchiseIDInput) (*TopProductsOutput, error) {
		resp, err := topProducts(ctx, h, input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &TopProductsOutput{Body: resp}, nil
	})
}

// topProducts looks up the top-stock product of each branch concurrently.
// Branches are collected first so that no store connection is held while
// the per-branch queries run. Results keep branch order.
func topProducts(ctx context.Context, h Handlers, franchiseID int64) ([]ProductResponse, error) {
	branches, err := domain.Collect(h.Branches.ListByFranchise(ctx, franchiseID))
	if err != nil {
		return nil, err
	}

	found := make([]*domain.Product, len(branches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(topProductsConcurrency)
	for i, b := range branches {
		g.Go(func() error {
			p, ok, err := h.Products.TopStockByBranch(gctx, b.ID)
			if err != nil {
				return err
			}
			if ok {
				found[i] = &p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := make([]ProductResponse, 0, len(branches))
	for _, p := range found {
		if p != nil {
			resp = append(resp, toProductResponse(*p))
		}
	}
	return resp, nil
}
