package service

import (
	"context"
	"time"

	"vaultledger/events"
	"vaultledger/models"
)

// VaultRepository defines the interface for vault data access
type VaultRepository interface {
	// GetByAssetID retrieves a vault by its asset identifier
	GetByAssetID(ctx context.Context, assetID string) (*models.Vault, error)

	// GetByAssetIDForUpdate retrieves a vault and locks its row for the
	// duration of the transaction
	GetByAssetIDForUpdate(ctx context.Context, assetID string) (*models.Vault, error)

	// Create persists a new vault. A vault already configured for the asset
	// or custody account fails with ErrInvalidConfiguration.
	Create(ctx context.Context, vault *models.Vault) error

	// AddTotalPrincipal adjusts the vault's total principal by delta without
	// read-modify-write, so positions in the same vault can settle in parallel
	AddTotalPrincipal(ctx context.Context, vaultID int64, delta int64) error

	// GetAll returns all configured vaults
	GetAll(ctx context.Context) ([]*models.Vault, error)
}

// PositionRepository defines the interface for position data access
type PositionRepository interface {
	// GetByOwner retrieves a position without locking it
	GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error)

	// GetByOwnerForUpdate retrieves a position and locks its row for the
	// duration of the transaction
	GetByOwnerForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error)

	// GetOrCreateForUpdate retrieves the owner's position in the vault,
	// creating an empty one on first use, and locks its row. Operations on
	// the same position serialize on this lock.
	GetOrCreateForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error)

	// Update persists settlement results: principal, settled interest,
	// settlement time and operation counters
	Update(ctx context.Context, position *models.Position) error
}

// LedgerEntryRepository defines the interface for the operation audit trail
type LedgerEntryRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByOwner returns the most recent entries for an owner in a vault
	GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string, limit int) ([]*models.LedgerEntry, error)
}

// VaultService defines the interface for vault operations
type VaultService interface {
	// CreateVault configures a new vault for an asset
	CreateVault(ctx context.Context, ownerIdentity, assetID, custodyAccount string, interestRateBps, minDeposit int64) (*models.Vault, error)

	// Deposit moves amount from ownerAccount into the vault's custody account
	// and credits the owner's position
	Deposit(ctx context.Context, ownerIdentity, assetID, ownerAccount string, amount int64, requestID string) (*models.DepositResult, error)

	// Withdraw pays amount from the vault's custody account to ownerAccount,
	// drawing accrued interest before principal
	Withdraw(ctx context.Context, ownerIdentity, assetID, ownerAccount string, amount int64, requestID string) (*models.WithdrawResult, error)

	// GetBalance reports the owner's position including interest accrued up
	// to now, without modifying anything
	GetBalance(ctx context.Context, ownerIdentity, assetID string) (*models.BalanceInfo, error)
}

// TransferRequest describes a custody movement between external accounts
type TransferRequest struct {
	FromAccount string
	ToAccount   string
	AssetID     string
	Amount      int64
	// Authority names the principal approving the movement: the depositor's
	// identity for vault-in transfers, the vault's custody authority for
	// vault-out transfers.
	Authority string
}

// CustodyClient defines the interface to the external custody service that
// actually moves assets between accounts
type CustodyClient interface {
	// Transfer executes the movement synchronously. An error means nothing
	// moved; the caller must abort the surrounding operation.
	Transfer(ctx context.Context, req TransferRequest) error

	// VaultAuthority derives the capability naming the vault as the approving
	// principal over its own custody account. Minted once at vault creation
	// and scoped to that vault alone.
	VaultAuthority(assetID string) string
}

// Clock provides the current time for interest settlement. Substituting a
// fixed clock makes accrual deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by the system time
func NewSystemClock() Clock {
	return systemClock{}
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	VaultRepository() VaultRepository
	PositionRepository() PositionRepository
	LedgerEntryRepository() LedgerEntryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
