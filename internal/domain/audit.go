package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	AuditUserRegistered = "user.registered"
	AuditUserLoggedIn   = "user.logged_in"
	AuditProductCreated = "product.created"
	AuditProductUpdated = "product.updated"
	AuditProductDeleted = "product.deleted"
)

type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenantId"`
	ActorID    uuid.UUID      `json:"actorId"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"` // "user" or "product"
	ResourceID uuid.UUID      `json:"resourceId"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewAuditEntry stamps an entry with a fresh ID and the current time.
func NewAuditEntry(tenantID, actorID uuid.UUID, action, resource string, resourceID uuid.UUID, details map[string]any) *AuditEntry {
	return &AuditEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*AuditEntry, error)
}
