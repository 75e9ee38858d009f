package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/nesthost/internal/domain"
	"github.com/gosuda/nesthost/internal/server/middleware"
)

// internalError logs err and returns a 500 whose detail does not leak it.
func internalError(ctx context.Context, msg string, err error) error {
	log.Error().Err(err).
		Str("request_id", chimw.GetReqID(ctx)).
		Msg("api: " + msg)
	return huma.Error500InternalServerError(msg)
}

// badRequest maps a domain validation failure to 400. Any other error is
// treated as internal.
func badRequest(ctx context.Context, msg string, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error400BadRequest(vErr.Error())
	}
	return internalError(ctx, msg, err)
}

// callerTenant returns the authenticated tenant, or a 403 when the request
// carries none.
func callerTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, huma.Error403Forbidden("missing tenant context")
	}
	return tenantID, nil
}

// recordAudit writes an audit entry. Failures are logged only.
func recordAudit(ctx context.Context, store DataStore, entry *domain.AuditEntry) {
	if err := store.Audit().Record(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("tenant_id", entry.TenantID.String()).
			Str("action", entry.Action).
			Msg("api: audit write failed")
	}
}

// publish sends ev to subscribers. Failures are logged only.
func publish(ctx context.Context, events EventPublisher, ev domain.ProductEvent) {
	if events == nil {
		return
	}
	if err := events.PublishProductEvent(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("tenant_id", ev.TenantID.String()).
			Str("type", ev.Type).
			Msg("api: product event publish failed")
	}
}
