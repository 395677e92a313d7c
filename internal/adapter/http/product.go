package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type ProductIDInput struct {
	ID int64 `path:"id" doc:"Product ID"`
}

type UpdateProductNameInput struct {
	ID   int64 `path:"id" doc:"Product ID"`
	Body NameBody
}

type UpdateStockInput struct {
	ID   int64 `path:"id" doc:"Product ID"`
	Body struct {
		Stock int `json:"stock" minimum:"0" maximum:"2147483647" doc:"New units in stock, replacing the current value"`
	}
}

type ProductOutput struct {
	Body ProductResponse
}

func registerProducts(api huma.API, h Handlers) {
	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get a product by ID",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
		p, err := h.Products.Get(ctx, input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-product-name",
		Method:      http.MethodPut,
		Path:        "/api/v1/products/{id}/name",
		Summary:     "Rename a product",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *UpdateProductNameInput) (*ProductOutput, error) {
		p, err := h.Products.UpdateName(ctx, input.ID, input.Body.Name)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-product-stock",
		Method:      http.MethodPut,
		Path:        "/api/v1/products/{id}/stock",
		Summary:     "Set the stock of a product",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *UpdateStockInput) (*ProductOutput, error) {
		p, err := h.Products.UpdateStock(ctx, input.ID, input.Body.Stock)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ProductOutput{Body: toProductResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-product",
		Method:        http.MethodDelete,
		Path:          "/api/v1/products/{id}",
		Summary:       "Delete a product",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ProductIDInput) (*struct{}, error) {
		if err := h.Products.Delete(ctx, input.ID); err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return nil, nil
	})
}
