package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenantId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserRepository interface {
	// CreateWithTenant inserts t and u in a single transaction. u.TenantID
	// must already equal t.ID. A duplicate email yields ErrConflict.
	CreateWithTenant(ctx context.Context, t *Tenant, u *User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	// GetByEmail looks a user up across all tenants; emails are globally unique.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
