package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant is a store. Every user and product belongs to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTenant creates a Tenant with a fresh ID.
func NewTenant(name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("tenantName", "is required")
	}
	if len(name) > 255 {
		return nil, invalid("tenantName", "must be at most 255 characters")
	}
	return &Tenant{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}
