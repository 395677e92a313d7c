package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type BranchIDInput struct {
	ID int64 `path:"id" doc:"Branch ID"`
}

type UpdateBranchNameInput struct {
	ID   int64 `path:"id" doc:"Branch ID"`
	Body NameBody
}

type BranchOutput struct {
	Body BranchResponse
}

type CreateProductInput struct {
	ID   int64 `path:"id" doc:"Branch ID"`
	Body struct {
		Name  string `json:"name" minLength:"1" maxLength:"255" pattern:"\\S" doc:"Display name"`
		Stock int    `json:"stock" minimum:"0" maximum:"2147483647" doc:"Initial units in stock"`
	}
}

type ListProductsOutput struct {
	Body []ProductResponse
}

func registerBranches(api huma.API, h Handlers) {
	huma.Register(api, huma.Operation{
		OperationID: "get-branch",
		Method:      http.MethodGet,
		Path:        "/api/v1/branches/{id}",
		Summary:     "Get a branch by ID",
		Tags:        []string{"Branches"},
	}, func(ctx context.Context, input *BranchIDInput) (*BranchOutput, error) {
		b, err := h.Branches.Get(ctx, input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &BranchOutput{Body: toBranchResponse(b)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-branch-name",
		Method:      http.MethodPut,
		Path:        "/api/v1/branches/{id}/name",
		Summary:     "Rename a branch",
		Tags:        []string{"Branches"},
	}, func(ctx context.Context, input *UpdateBranchNameInput) (*BranchOutput, error) {
		b, err := h.Branches.UpdateName(ctx, input.ID, input.Body.Name)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &BranchOutput{Body: toBranchResponse(b)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-branch",
		Method:        http.MethodDelete,
		Path:          "/api/v1/branches/{id}",
		Summary:       "Delete a branch without products",
		Tags:          []string{"Branches"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *BranchIDInput) (*struct{}, error) {
		if err := h.Branches.Delete(ctx, input.ID); err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-product",
		Method:      http.MethodPost,
		Path:        "/api/v1/branches/{id}/products",
		Summary:     "Add a product to a branch",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
		p, err := h.Products.Create(ctx, input.ID, input.Body.Name, input.Body.Stock)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-branch-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/branches/{id}/products",
		Summary:     "List the products of a branch",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *BranchIDInput) (*ListProductsOutput, error) {
		resp, err := collect(h.Products.ListByBranch(ctx, input.ID), toProductResponse)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListProductsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-branch-top-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/branches/{id}/top-product",
		Summary:     "Highest-stock product of a branch",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *BranchIDInput) (*ProductOutput, error) {
		p, ok, err := h.Products.TopStockByBranch(ctx, input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		if !ok {
			return nil, huma.Error404NotFound(fmt.Sprintf("branch %d has no products", input.ID))
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})
}
