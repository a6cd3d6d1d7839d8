package service

import (
	"context"
	"time"

	"vaultledger/events"
	"vaultledger/models"

	"github.com/stretchr/testify/mock"
)

// MockVaultRepository is a mock implementation of VaultRepository
type MockVaultRepository struct {
	mock.Mock
}

func (m *MockVaultRepository) GetByAssetID(ctx context.Context, assetID string) (*models.Vault, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vault), args.Error(1)
}

func (m *MockVaultRepository) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*models.Vault, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vault), args.Error(1)
}

func (m *MockVaultRepository) Create(ctx context.Context, vault *models.Vault) error {
	args := m.Called(ctx, vault)
	return args.Error(0)
}

func (m *MockVaultRepository) AddTotalPrincipal(ctx context.Context, vaultID int64, delta int64) error {
	args := m.Called(ctx, vaultID, delta)
	return args.Error(0)
}

func (m *MockVaultRepository) GetAll(ctx context.Context) ([]*models.Vault, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vault), args.Error(1)
}

// MockPositionRepository is a mock implementation of PositionRepository
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	args := m.Called(ctx, vaultID, ownerIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Position), args.Error(1)
}

func (m *MockPositionRepository) GetByOwnerForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	args := m.Called(ctx, vaultID, ownerIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Position), args.Error(1)
}

func (m *MockPositionRepository) GetOrCreateForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	args := m.Called(ctx, vaultID, ownerIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Position), args.Error(1)
}

func (m *MockPositionRepository) Update(ctx context.Context, position *models.Position) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, vaultID, ownerIdentity, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockCustodyClient is a mock implementation of CustodyClient
type MockCustodyClient struct {
	mock.Mock
}

func (m *MockCustodyClient) Transfer(ctx context.Context, req TransferRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCustodyClient) VaultAuthority(assetID string) string {
	args := m.Called(assetID)
	return args.String(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// capturingPublisher collects events without expectations so tests can
// inspect what a unit of work would have published
type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback carry expectations; repository getters return whatever was wired
// through SetRepositories, and EventBus captures published events for
// inspection via PublishedEvents.
type MockUnitOfWork struct {
	mock.Mock
	vaultRepo    VaultRepository
	positionRepo PositionRepository
	ledgerRepo   LedgerEntryRepository
	eventBus     *capturingPublisher
}

// SetRepositories wires the repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(vaultRepo VaultRepository, positionRepo PositionRepository, ledgerRepo LedgerEntryRepository) {
	m.vaultRepo = vaultRepo
	m.positionRepo = positionRepo
	m.ledgerRepo = ledgerRepo
	m.eventBus = &capturingPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) VaultRepository() VaultRepository {
	return m.vaultRepo
}

func (m *MockUnitOfWork) PositionRepository() PositionRepository {
	return m.positionRepo
}

func (m *MockUnitOfWork) LedgerEntryRepository() LedgerEntryRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// PublishedEvents returns the events published during the test
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.eventBus.published
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// fixedClock returns the same instant on every call
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// NewFixedClock returns a Clock pinned to the given unix second
func NewFixedClock(unixSeconds int64) Clock {
	return fixedClock{now: time.Unix(unixSeconds, 0)}
}
