package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/nesthost/internal/domain"
	"github.com/gosuda/nesthost/internal/server/middleware"
)

// auditLogLimit caps GET /api/audit.
const auditLogLimit = 100

type EmptyInput struct{}

type TenantOutput struct {
	Body *domain.Tenant
}

type UserOutput struct {
	Body *domain.User
}

type AuditLogOutput struct {
	Body []*domain.AuditEntry
}

type ProtectedOutput struct {
	Body struct {
		Message string    `json:"message"`
		UserID  uuid.UUID `json:"userId"`
		Email   string    `json:"email"`
	}
}

// callerUser returns the authenticated user id, or uuid.Nil.
func callerUser(ctx context.Context) uuid.UUID {
	id, _ := middleware.UserIDFromContext(ctx)
	return id
}

func RegisterAccountRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-current-tenant",
		Method:      http.MethodGet,
		Path:        "/api/tenant",
		Summary:     "Get the caller's tenant",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, _ *EmptyInput) (*TenantOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, tenantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, internalError(ctx, "failed to get tenant", err)
		}

		return &TenantOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/api/me",
		Summary:     "Get the authenticated user",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, _ *EmptyInput) (*UserOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}

		u, err := authSvc.GetUser(ctx, tenantID, callerUser(ctx))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, internalError(ctx, "failed to get user", err)
		}

		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audit-log",
		Method:      http.MethodGet,
		Path:        "/api/audit",
		Summary:     "List recent audit entries of the caller's tenant",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, _ *EmptyInput) (*AuditLogOutput, error) {
		tenantID, err := callerTenant(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := store.Audit().ListByTenant(ctx, tenantID, auditLogLimit)
		if err != nil {
			return nil, internalError(ctx, "failed to list audit log", err)
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}

		return &AuditLogOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "protected",
		Method:      http.MethodGet,
		Path:        "/protected",
		Summary:     "Check that a session token is accepted",
		Tags:        []string{"Account"},
	}, func(ctx context.Context, _ *EmptyInput) (*ProtectedOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing token")
		}

		out := &ProtectedOutput{}
		out.Body.Message = "access granted"
		out.Body.UserID = userID
		out.Body.Email, _ = middleware.EmailFromContext(ctx)
		return out, nil
	})
}
