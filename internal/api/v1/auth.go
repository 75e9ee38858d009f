package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/nesthost/internal/auth"
	"github.com/gosuda/nesthost/internal/domain"
)

// Auth request fields are optional at the schema level so that missing
// values surface as 400 from the service's own validation.

type RegisterInput struct {
	Body struct {
		Name       string `json:"name,omitempty" doc:"Display name"`
		Email      string `json:"email,omitempty" doc:"User email"`
		Password   string `json:"password,omitempty" doc:"Password"` //nolint:gosec // G117: login credential DTO
		TenantName string `json:"tenantName,omitempty" doc:"Name of the store created for this user"`
	}
}

// AccountView is the public representation of a registered user.
type AccountView struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	TenantID  uuid.UUID      `json:"tenantId"`
	Tenant    *domain.Tenant `json:"tenant"`
	CreatedAt time.Time      `json:"createdAt"`
}

type RegisterOutput struct {
	Body AccountView
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email,omitempty" doc:"User email"`
		Password string `json:"password,omitempty" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		Token string       `json:"token" doc:"Bearer session token"` //nolint:gosec // G117: auth response DTO
		User  *domain.User `json:"user"`
	}
}

func RegisterAuthRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a user and create their store",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		acct, err := authSvc.Register(ctx, auth.RegisterParams{
			Name:       input.Body.Name,
			Email:      input.Body.Email,
			Password:   input.Body.Password,
			TenantName: input.Body.TenantName,
		})
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error400BadRequest("user already exists")
			}
			return nil, badRequest(ctx, "failed to register user", err)
		}

		recordAudit(ctx, store, domain.NewAuditEntry(
			acct.Tenant.ID, acct.User.ID, domain.AuditUserRegistered, "user", acct.User.ID,
			map[string]any{"tenantName": acct.Tenant.Name},
		))

		return &RegisterOutput{Body: AccountView{
			ID:        acct.User.ID,
			Name:      acct.User.Name,
			Email:     acct.User.Email,
			TenantID:  acct.Tenant.ID,
			Tenant:    acct.Tenant,
			CreatedAt: acct.User.CreatedAt,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		token, user, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				log.Info().Msg("auth: failed login attempt")
				return nil, huma.Error401Unauthorized("invalid credentials")
			}
			return nil, badRequest(ctx, "login failed", err)
		}

		recordAudit(ctx, store, domain.NewAuditEntry(
			user.TenantID, user.ID, domain.AuditUserLoggedIn, "user", user.ID, nil,
		))

		out := &LoginOutput{}
		out.Body.Token = token
		out.Body.User = user
		return out, nil
	})
}
