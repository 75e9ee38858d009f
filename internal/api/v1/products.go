package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/nesthost/internal/domain"
)

// productBody lists the writable product fields. TenantID is accepted so
// that clients echoing a full product do not fail schema validation, but it
// is never read: ownership always comes from the session.
type productBody struct {
	TenantID string   `json:"tenantId,omitempty" doc:"Ignored; products belong to the caller's tenant"`
	Name     *string  `json:"name,omitempty" doc:"Product name"`
	Barcode  *string  `json:"barcode,omitempty" doc:"Barcode"`
	Price    *float64 `json:"price,omitempty" doc:"Unit price, rounded to cents"`
	Stock    *int     `json:"stock,omitempty" doc:"Units in stock"`
}

func (b productBody) patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:    b.Name,
		Barcode: b.Barcode,
		Price:   b.Price,
		Stock:   b.Stock,
	}
}

type CreateProductInput struct {
	Body productBody
}

type ProductOutput struct {
	Body *domain.Product
}

type ListProductsInput struct{}

type ListProductsOutput struct {
	Body []*domain.Product
}

type ProductIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

type UpdateProductInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body productBody
}

func productNotFound() error {
	return huma.Error404NotFound("product not found")
}

// parseProductID treats a malformed id like any other unknown product.
func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, productNotFound()
	}
	return id, nil
}

func RegisterProductRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/products",
		Summary:     "List products of the current tenant",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, _ *ListProductsInput) (*ListProductsOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}

		products, err := store.Products().List(ctx, tenantID)
		if err != nil {
			return nil, internalError(ctx, "failed to list products", err)
		}
		if products == nil {
			products = []*domain.Product{}
		}

		return &ListProductsOutput{Body: products}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-product",
		Method:        http.MethodPost,
		Path:          "/api/products",
		Summary:       "Create a product in the current tenant",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}

		b := input.Body
		var (
			name, barcode string
			price         float64
			stock         int
		)
		if b.Name != nil {
			name = *b.Name
		}
		if b.Barcode != nil {
			barcode = *b.Barcode
		}
		if b.Price != nil {
			price = *b.Price
		}
		if b.Stock != nil {
			stock = *b.Stock
		}

		p, err := domain.NewProduct(tenantID, name, barcode, price, stock)
		if err != nil {
			return nil, badRequest(ctx, "invalid product", err)
		}

		if err := store.Products().Create(ctx, p); err != nil {
			return nil, internalError(ctx, "failed to create product", err)
		}

		userID := callerUser(ctx)
		recordAudit(ctx, store, domain.NewAuditEntry(tenantID, userID, domain.AuditProductCreated, "product", p.ID,
			map[string]any{"name": p.Name}))
		publish(ctx, events, domain.NewProductEvent(domain.EventProductCreated, p))

		return &ProductOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/products/{id}",
		Summary:     "Get a product by ID",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parseProductID(input.ID)
		if err != nil {
			return nil, err
		}

		p, err := store.Products().GetByID(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, productNotFound()
			}
			return nil, internalError(ctx, "failed to get product", err)
		}

		return &ProductOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-product",
		Method:      http.MethodPut,
		Path:        "/api/products/{id}",
		Summary:     "Update a product; omitted fields keep their value",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parseProductID(input.ID)
		if err != nil {
			return nil, err
		}

		p, err := store.Products().GetByID(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, productNotFound()
			}
			return nil, internalError(ctx, "failed to get product", err)
		}

		if err := p.Apply(input.Body.patch()); err != nil {
			return nil, badRequest(ctx, "invalid product", err)
		}

		if err := store.Products().Update(ctx, p); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, productNotFound()
			}
			return nil, internalError(ctx, "failed to update product", err)
		}

		recordAudit(ctx, store, domain.NewAuditEntry(tenantID, callerUser(ctx), domain.AuditProductUpdated, "product", p.ID, nil))
		publish(ctx, events, domain.NewProductEvent(domain.EventProductUpdated, p))

		return &ProductOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-product",
		Method:        http.MethodDelete,
		Path:          "/api/products/{id}",
		Summary:       "Delete a product",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ProductIDInput) (*struct{}, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parseProductID(input.ID)
		if err != nil {
			return nil, err
		}

		if err := store.Products().Delete(ctx, tenantID, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, productNotFound()
			}
			return nil, internalError(ctx, "failed to delete product", err)
		}

		deleted := &domain.Product{ID: id, TenantID: tenantID}
		recordAudit(ctx, store, domain.NewAuditEntry(tenantID, callerUser(ctx), domain.AuditProductDeleted, "product", id, nil))
		publish(ctx, events, domain.NewProductEvent(domain.EventProductDeleted, deleted))

		return nil, nil
	})
}
