package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/nesthost/internal/auth"
	"github.com/gosuda/nesthost/internal/domain"
	"github.com/gosuda/nesthost/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated caller for DoCtx
// ---------------------------------------------------------------------------

func callerCtx(userID, tenantID uuid.UUID) context.Context {
	return middleware.WithIdentity(context.Background(), userID, tenantID, "ana@x.com")
}

func tenantCtx(tenantID uuid.UUID) context.Context {
	return callerCtx(uuid.New(), tenantID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants  domain.TenantRepository
	users    domain.UserRepository
	products domain.ProductRepository
	audit    domain.AuditRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository   { return m.tenants }
func (m *mockDataStore) Users() domain.UserRepository       { return m.users }
func (m *mockDataStore) Products() domain.ProductRepository { return m.products }

// Audit falls back to a recorder that accepts everything so tests that do
// not care about auditing need not wire one.
func (m *mockDataStore) Audit() domain.AuditRepository {
	if m.audit == nil {
		m.audit = &mockAuditRepo{}
	}
	return m.audit
}

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createWithTenantFunc func(ctx context.Context, t *domain.Tenant, u *domain.User) error
	getByIDFunc          func(ctx context.Context, tenantID, id uuid.UUID) (*domain.User, error)
	getByEmailFunc       func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) CreateWithTenant(ctx context.Context, t *domain.Tenant, u *domain.User) error {
	return m.createWithTenantFunc(ctx, t, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

// ---------------------------------------------------------------------------
// Mock ProductRepository
// ---------------------------------------------------------------------------

type mockProductRepo struct {
	createFunc  func(ctx context.Context, p *domain.Product) error
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error)
	listFunc    func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Product, error)
	updateFunc  func(ctx context.Context, p *domain.Product) error
	deleteFunc  func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Product, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockProductRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Product, error) {
	return m.listFunc(ctx, tenantID)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProductRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	mu               sync.Mutex
	recorded         []*domain.AuditEntry
	recordErr        error
	listByTenantFunc func(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, e)
	return m.recordErr
}

func (m *mockAuditRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	return m.listByTenantFunc(ctx, tenantID, limit)
}

func (m *mockAuditRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recorded))
	for _, e := range m.recorded {
		out = append(out, e.Action)
	}
	return out
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc func(ctx context.Context, p auth.RegisterParams) (*auth.Account, error)
	loginFunc    func(ctx context.Context, email, password string) (string, *domain.User, error)
	getUserFunc  func(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, p auth.RegisterParams) (*auth.Account, error) {
	return m.registerFunc(ctx, p)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, tenantID, userID)
}

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ProductEvent
	err    error
}

func (m *mockPublisher) PublishProductEvent(_ context.Context, ev domain.ProductEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func (m *mockPublisher) published() []domain.ProductEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ProductEvent(nil), m.events...)
}
