package domain

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxPrice keeps prices inside NUMERIC(12,2).
const maxPrice = 9_999_999_999.99

type Product struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct creates a Product owned by tenantID. The tenant always comes
// from the caller's session, never from request input.
func NewProduct(tenantID uuid.UUID, name, barcode string, price float64, stock int) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, invalid("tenantId", "is required")
	}
	now := time.Now()
	p := &Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Apply(ProductPatch{Name: &name, Barcode: &barcode, Price: &price, Stock: &stock}); err != nil {
		return nil, err
	}
	return p, nil
}

// ProductPatch carries a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Name    *string
	Barcode *string
	Price   *float64
	Stock   *int
}

// Apply validates the patch and copies the set fields onto p. On error p is
// left untouched.
func (p *Product) Apply(patch ProductPatch) error {
	next := *p

	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Barcode != nil {
		next.Barcode = strings.TrimSpace(*patch.Barcode)
	}
	if patch.Price != nil {
		next.Price = math.Round(*patch.Price*100) / 100
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
	}

	switch {
	case next.Name == "":
		return invalid("name", "is required")
	case len(next.Name) > 255:
		return invalid("name", "must be at most 255 characters")
	case len(next.Barcode) > 64:
		return invalid("barcode", "must be at most 64 characters")
	case math.IsNaN(next.Price) || next.Price < 0:
		return invalid("price", "must not be negative")
	case next.Price > maxPrice:
		return invalid("price", "is too large")
	case next.Stock < 0:
		return invalid("stock", "must not be negative")
	case next.Stock > math.MaxInt32:
		return invalid("stock", "is too large")
	}

	*p = next
	return nil
}

// ProductRepository reads and writes products. Every method is scoped by
// tenant; a product owned by another tenant is reported as ErrNotFound.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
