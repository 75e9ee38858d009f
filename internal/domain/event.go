package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product event types published on a tenant's product channel.
const (
	EventProductCreated = AuditProductCreated
	EventProductUpdated = AuditProductUpdated
	EventProductDeleted = AuditProductDeleted
)

// ProductEvent describes a committed change to one product.
type ProductEvent struct {
	Type      string    `json:"type"`
	TenantID  uuid.UUID `json:"-"`
	ProductID uuid.UUID `json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	At        time.Time `json:"at"`
}

// NewProductEvent builds an event for p. Deleted products carry no body.
func NewProductEvent(eventType string, p *Product) ProductEvent {
	ev := ProductEvent{
		Type:      eventType,
		TenantID:  p.TenantID,
		ProductID: p.ID,
		At:        time.Now(),
	}
	if eventType != EventProductDeleted {
		ev.Product = p
	}
	return ev
}
