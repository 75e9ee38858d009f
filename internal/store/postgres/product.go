package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/nesthost/internal/domain"
)

// ProductRepo persists products. Every statement is filtered by tenant_id.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, tenant_id, name, barcode, price, stock, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TenantID, p.Name, p.Barcode, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}

	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&p.ID, &p.TenantID, &p.Name, &p.Barcode, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("productRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1
		 ORDER BY created_at, id`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("productRepo.List: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Barcode, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("productRepo.List: scan: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("productRepo.List: rows: %w", err)
	}

	return products, nil
}

// Update writes the mutable fields of p. p.UpdatedAt is refreshed.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	now := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $3, barcode = $4, price = $5, stock = $6, updated_at = $7
		 WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.Name, p.Barcode, p.Price, p.Stock, now,
	)
	if err != nil {
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("productRepo.Update: %w", domain.ErrNotFound)
	}

	p.UpdatedAt = now
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("productRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
