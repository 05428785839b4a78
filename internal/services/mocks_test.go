package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"carrinex/internal/caching"
	"carrinex/internal/models"
	"carrinex/internal/onboarding"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetCredentialByEmail(ctx context.Context, email string) (uuid.UUID, string, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountNotOnboarded(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListPendingApproval(ctx context.Context) ([]*models.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) Approve(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProvisionerRepository struct {
	mock.Mock
}

func (m *MockProvisionerRepository) ProvisionCompany(ctx context.Context, company *models.Company, locations []*models.Location, ownerID uuid.UUID) error {
	args := m.Called(ctx, company, locations, ownerID)
	return args.Error(0)
}

// provisionFunc adapts a bare function into a ProvisionService; handy for
// blocking or failing provisioning mid-test.
type provisionFunc func(ctx context.Context, ownerID uuid.UUID, draft models.CompanyDraft, locations []models.LocationDraft) (*models.Company, error)

func (f provisionFunc) Provision(ctx context.Context, ownerID uuid.UUID, draft models.CompanyDraft, locations []models.LocationDraft) (*models.Company, error) {
	return f(ctx, ownerID, draft, locations)
}

// memoryCache is an in-process CacheService standing in for redis.
// TTLs are accepted and ignored.
type memoryCache struct {
	mu      sync.Mutex
	wizards map[uuid.UUID]onboarding.Wizard
	strings map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		wizards: make(map[uuid.UUID]onboarding.Wizard),
		strings: make(map[string]string),
	}
}

func (c *memoryCache) GetWizard(_ context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wizard, ok := c.wizards[userID]
	if !ok {
		return nil, caching.ErrCacheMiss
	}
	copied := wizard
	return &copied, nil
}

func (c *memoryCache) SetWizard(_ context.Context, wizard *onboarding.Wizard, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wizards[wizard.UserID] = *wizard
	return nil
}

func (c *memoryCache) DeleteWizard(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.wizards, userID)
	return nil
}

func (c *memoryCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strings[key] = value
	return nil
}

func (c *memoryCache) GetString(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.strings[key]
	if !ok {
		return "", caching.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.strings, key)
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }
