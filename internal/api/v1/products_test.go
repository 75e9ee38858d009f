package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/nesthost/internal/api/v1"
	"github.com/gosuda/nesthost/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /api/products
// ---------------------------------------------------------------------------

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		tid := uuid.New()
		uid := uuid.New()
		_, api := humatest.New(t)
		var created *domain.Product
		audit := &mockAuditRepo{}
		store := &mockDataStore{
			audit: audit,
			products: &mockProductRepo{
				createFunc: func(_ context.Context, p *domain.Product) error {
					created = p
					return nil
				},
			},
		}
		pub := &mockPublisher{}
		v1.RegisterProductRoutes(api, store, pub)

		resp := api.PostCtx(callerCtx(uid, tid), "/api/products", map[string]any{
			"name":    "Caneta",
			"barcode": "123",
			"price":   2.5,
			"stock":   10,
		})

		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		var body domain.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "Caneta", body.Name)
		assert.Equal(t, "123", body.Barcode)
		assert.InDelta(t, 2.5, body.Price, 1e-9)
		assert.Equal(t, 10, body.Stock)
		assert.Equal(t, tid, body.TenantID)
		assert.NotEqual(t, uuid.Nil, body.ID)

		require.NotNil(t, created)
		assert.Equal(t, tid, created.TenantID)

		assert.Equal(t, []string{domain.AuditProductCreated}, audit.actions())
		assert.Equal(t, uid, audit.recorded[0].ActorID)

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventProductCreated, events[0].Type)
		assert.Equal(t, tid, events[0].TenantID)
		assert.Equal(t, body.ID, events[0].ProductID)
	})

	t.Run("client_tenant_id_is_ignored", func(t *testing.T) {
		t.Parallel()

		tid := uuid.New()
		foreign := uuid.New()
		_, api := humatest.New(t)
		store := &mockDataStore{
			products: &mockProductRepo{
				createFunc: func(_ context.Context, p *domain.Product) error {
					assert.Equal(t, tid, p.TenantID, "tenant must come from the session")
					return nil
				},
			},
		}
		v1.RegisterProductRoutes(api, store, &mockPublisher{})

		resp := api.PostCtx(tenantCtx(tid), "/api/products", map[string]any{
			"name":     "Caneta",
			"tenantId": foreign.String(),
		})

		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		var body domain.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, tid, body.TenantID)
	})

	t.Run("missing_tenant_context", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterProductRoutes(api, &mockDataStore{products: &mockProductRepo{}}, nil)

		resp := api.PostCtx(context.Background(), "/api/products", map[string]any{"name": "Caneta"})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	invalid := []struct {
		name string
		body map[string]any
	}{
		{name: "missing_name", body: map[string]any{"price": 1}},
		{name: "negative_price", body: map[string]any{"name": "Caneta", "price": -1}},
		{name: "negative_stock", body: map[string]any{"name": "Caneta", "stock": -3}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			store := &mockDataStore{products: &mockProductRepo{
				createFunc: func(context.Context, *domain.Product) error {
					t.Error("invalid product must not be persisted")
					return nil
				},
			}}
			v1.RegisterProductRoutes(api, store, nil)

			resp := api.PostCtx(tenantCtx(uuid.New()), "/api/products", tc.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			createFunc: func(context.Context, *domain.Product) error {
				return errors.New("db: connection refused")
			},
		}}
		pub := &mockPublisher{}
		v1.RegisterProductRoutes(api, store, pub)

		resp := api.PostCtx(tenantCtx(uuid.New()), "/api/products", map[string]any{"name": "Caneta"})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.NotContains(t, resp.Body.String(), "connection refused")
		assert.Empty(t, pub.published(), "nothing is published for a failed write")
	})

	t.Run("publish_failure_does_not_fail_request", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			createFunc: func(context.Context, *domain.Product) error { return nil },
		}}
		v1.RegisterProductRoutes(api, store, &mockPublisher{err: errors.New("redis down")})

		resp := api.PostCtx(tenantCtx(uuid.New()), "/api/products", map[string]any{"name": "Caneta"})

		assert.Equal(t, http.StatusCreated, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /api/products
// ---------------------------------------------------------------------------

func TestListProducts(t *testing.T) {
	t.Parallel()

	t.Run("scoped_to_caller_tenant", func(t *testing.T) {
		t.Parallel()

		tid := uuid.New()
		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			listFunc: func(_ context.Context, tenantID uuid.UUID) ([]*domain.Product, error) {
				require.Equal(t, tid, tenantID)
				return []*domain.Product{
					{ID: uuid.New(), TenantID: tid, Name: "Caneta", Price: 2.5, Stock: 10},
					{ID: uuid.New(), TenantID: tid, Name: "Lápis", Price: 1, Stock: 5},
				}, nil
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.GetCtx(tenantCtx(tid), "/api/products")

		require.Equal(t, http.StatusOK, resp.Code)
		var body []domain.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "Caneta", body[0].Name)
	})

	t.Run("empty_tenant_returns_empty_array", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			listFunc: func(context.Context, uuid.UUID) ([]*domain.Product, error) {
				return nil, nil
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.GetCtx(tenantCtx(uuid.New()), "/api/products")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `[]`, resp.Body.String())
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			listFunc: func(context.Context, uuid.UUID) ([]*domain.Product, error) {
				return nil, errors.New("db: timeout")
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.GetCtx(tenantCtx(uuid.New()), "/api/products")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /api/products/{id}
// ---------------------------------------------------------------------------

func TestGetProduct(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		tid := uuid.New()
		pid := uuid.New()
		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			getByIDFunc: func(_ context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
				assert.Equal(t, tid, tenantID)
				assert.Equal(t, pid, id)
				return &domain.Product{ID: pid, TenantID: tid, Name: "Caneta"}, nil
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.GetCtx(tenantCtx(tid), "/api/products/"+pid.String())

		require.Equal(t, http.StatusOK, resp.Code)
		var body domain.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, pid, body.ID)
	})

	t.Run("other_tenant_is_not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			getByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Product, error) {
				return nil, fmt.Errorf("productRepo.GetByID: %w", domain.ErrNotFound)
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.GetCtx(tenantCtx(uuid.New()), "/api/products/"+uuid.NewString())

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "product not found", decodeProblem(t, resp.Body.Bytes()).Detail)
	})

	t.Run("malformed_id_is_not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterProductRoutes(api, &mockDataStore{products: &mockProductRepo{}}, nil)

		resp := api.GetCtx(tenantCtx(uuid.New()), "/api/products/not-a-uuid")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// PUT /api/products/{id}
// ---------------------------------------------------------------------------

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	existing := func(tid, pid uuid.UUID) *domain.Product {
		return &domain.Product{ID: pid, TenantID: tid, Name: "Caneta", Barcode: "123", Price: 2.5, Stock: 10}
	}

	t.Run("partial_update_keeps_omitted_fields", func(t *testing.T) {
		t.Parallel()

		tid, pid := uuid.New(), uuid.New()
		_, api := humatest.New(t)
		var saved *domain.Product
		audit := &mockAuditRepo{}
		store := &mockDataStore{
			audit: audit,
			products: &mockProductRepo{
				getByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Product, error) {
					return existing(tid, pid), nil
				},
				updateFunc: func(_ context.Context, p *domain.Product) error {
					saved = p
					return nil
				},
			},
		}
		pub := &mockPublisher{}
		v1.RegisterProductRoutes(api, store, pub)

		resp := api.PutCtx(tenantCtx(tid), "/api/products/"+pid.String(), map[string]any{
			"stock": 7,
		})

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		require.NotNil(t, saved)
		assert.Equal(t, 7, saved.Stock)
		assert.Equal(t, "Caneta", saved.Name)
		assert.Equal(t, "123", saved.Barcode)
		assert.InDelta(t, 2.5, saved.Price, 1e-9)
		assert.Equal(t, tid, saved.TenantID)

		assert.Equal(t, []string{domain.AuditProductUpdated}, audit.actions())
		require.Len(t, pub.published(), 1)
		assert.Equal(t, domain.EventProductUpdated, pub.published()[0].Type)
	})

	t.Run("tenant_id_in_body_cannot_move_product", func(t *testing.T) {
		t.Parallel()

		tid, pid := uuid.New(), uuid.New()
		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			getByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Product, error) {
				return existing(tid, pid), nil
			},
			updateFunc: func(_ context.Context, p *domain.Product) error {
				assert.Equal(t, tid, p.TenantID)
				return nil
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.PutCtx(tenantCtx(tid), "/api/products/"+pid.String(), map[string]any{
			"tenantId": uuid.NewString(),
			"name":     "Caneta Azul",
		})

		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("invalid_patch", func(t *testing.T) {
		t.Parallel()

		tid, pid := uuid.New(), uuid.New()
		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			getByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Product, error) {
				return existing(tid, pid), nil
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.PutCtx(tenantCtx(tid), "/api/products/"+pid.String(), map[string]any{
			"price": -0.01,
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			getByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Product, error) {
				return nil, domain.ErrNotFound
			},
		}}
		pub := &mockPublisher{}
		v1.RegisterProductRoutes(api, store, pub)

		resp := api.PutCtx(tenantCtx(uuid.New()), "/api/products/"+uuid.NewString(), map[string]any{"name": "x"})

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Empty(t, pub.published())
	})
}

// ---------------------------------------------------------------------------
// DELETE /api/products/{id}
// ---------------------------------------------------------------------------

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		tid, pid := uuid.New(), uuid.New()
		_, api := humatest.New(t)
		audit := &mockAuditRepo{}
		store := &mockDataStore{
			audit: audit,
			products: &mockProductRepo{
				deleteFunc: func(_ context.Context, tenantID, id uuid.UUID) error {
					assert.Equal(t, tid, tenantID)
					assert.Equal(t, pid, id)
					return nil
				},
			},
		}
		pub := &mockPublisher{}
		v1.RegisterProductRoutes(api, store, pub)

		resp := api.DeleteCtx(tenantCtx(tid), "/api/products/"+pid.String())

		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.Empty(t, resp.Body.String())
		assert.Equal(t, []string{domain.AuditProductDeleted}, audit.actions())

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventProductDeleted, events[0].Type)
		assert.Equal(t, pid, events[0].ProductID)
		assert.Nil(t, events[0].Product)
	})

	t.Run("other_tenant_is_not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{products: &mockProductRepo{
			deleteFunc: func(context.Context, uuid.UUID, uuid.UUID) error {
				return fmt.Errorf("productRepo.Delete: %w", domain.ErrNotFound)
			},
		}}
		v1.RegisterProductRoutes(api, store, nil)

		resp := api.DeleteCtx(tenantCtx(uuid.New()), "/api/products/"+uuid.NewString())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
