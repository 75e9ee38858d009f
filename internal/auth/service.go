package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/gosuda/nesthost/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything beyond 72 bytes
	maxNameLen     = 255
)

// Service registers users, checks credentials and issues session tokens.
type Service struct {
	userRepo   domain.UserRepository
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int

	// dummyHash is compared against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewService creates a new auth service. A bcryptCost outside bcrypt's
// accepted range falls back to DefaultBcryptCost.
func NewService(userRepo domain.UserRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash(bcryptCost),
	}
}

// dummyHash hashes a fixed password at the service's cost. It is built once
// up front so no login request pays for GenerateFromPassword.
func dummyHash(cost int) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("nesthost-dummy-password"), cost)
	if err != nil {
		log.Error().Err(err).Msg("auth: generating dummy hash")
		return nil
	}
	return h
}

// RegisterParams is the input of Register.
type RegisterParams struct {
	Name       string
	Email      string
	Password   string //nolint:gosec // G117: credential input
	TenantName string
}

// Account is a freshly registered user together with the tenant created for it.
type Account struct {
	User   *domain.User
	Tenant *domain.Tenant
}

// Register validates p, creates a new tenant named p.TenantName and a user
// linked to it. The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*Account, error) {
	name := strings.TrimSpace(p.Name)
	email := normalizeEmail(p.Email)

	if name == "" {
		return nil, fmt.Errorf("auth.Register: %w", &domain.ValidationError{Field: "name", Reason: "is required"})
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("auth.Register: %w", &domain.ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", maxNameLen)})
	}
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	if err := validatePassword(p.Password); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	tenant, err := domain.NewTenant(p.TenantName)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateWithTenant(ctx, tenant, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("tenant_id", tenant.ID.String()).
		Msg("auth: user registered")

	return &Account{User: user, Tenant: tenant}, nil
}

// Login checks email and password and returns a signed session token along
// with the authenticated user. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("auth.Login: %w", &domain.ValidationError{Field: "email", Reason: "email and password are required"})
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("auth.Login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	token, err := IssueToken(s.jwtSecret, user.ID, user.TenantID, user.Email, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", err)
	}

	return token, user, nil
}

// GetUser returns the user with the given id inside tenantID.
func (s *Service) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return &domain.ValidationError{Field: "password", Reason: "is required"}
	case len(password) < minPasswordLen:
		return &domain.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	case len(password) > maxPasswordLen:
		return &domain.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordLen)}
	}
	return nil
}
