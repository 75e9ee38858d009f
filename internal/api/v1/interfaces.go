package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/nesthost/internal/auth"
	"github.com/gosuda/nesthost/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	Users() domain.UserRepository
	Products() domain.ProductRepository
	Audit() domain.AuditRepository
}

// AuthService abstracts credential operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, p auth.RegisterParams) (*auth.Account, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error)
}

// EventPublisher fans product changes out to subscribers.
// *ws.Hub satisfies this interface.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, ev domain.ProductEvent) error
}
