package service

import (
	"context"
	"fmt"

	"vaultledger/events"
	"vaultledger/interest"
	"vaultledger/models"
)

type vaultService struct {
	uowFactory UnitOfWorkFactory
	custody    CustodyClient
	clock      Clock
}

// NewVaultService creates a new vault service
func NewVaultService(uowFactory UnitOfWorkFactory, custody CustodyClient, clock Clock) VaultService {
	return &vaultService{
		uowFactory: uowFactory,
		custody:    custody,
		clock:      clock,
	}
}

func (s *vaultService) CreateVault(ctx context.Context, ownerIdentity, assetID, custodyAccount string, interestRateBps, minDeposit int64) (*models.Vault, error) {
	// Validate inputs
	if ownerIdentity == "" || assetID == "" || custodyAccount == "" {
		return nil, fmt.Errorf("%w: owner identity, asset and custody account are required", models.ErrInvalidConfiguration)
	}
	if interestRateBps < 0 {
		return nil, fmt.Errorf("%w: interest rate %d must not be negative", models.ErrInvalidConfiguration, interestRateBps)
	}
	if minDeposit < 0 {
		return nil, fmt.Errorf("%w: minimum deposit %d must not be negative", models.ErrInvalidConfiguration, minDeposit)
	}

	now := s.clock.Now()

	vault := &models.Vault{
		OwnerIdentity:    ownerIdentity,
		AssetID:          assetID,
		CustodyAccount:   custodyAccount,
		CustodyAuthority: s.custody.VaultAuthority(assetID),
		InterestRateBps:  interestRateBps,
		MinDeposit:       minDeposit,
		TotalPrincipal:   0,
		CreatedAt:        now,
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.VaultRepository().Create(ctx, vault); err != nil {
		return nil, fmt.Errorf("failed to create vault for asset %s: %w", assetID, err)
	}

	uow.EventBus().Publish(events.VaultCreatedEvent{
		OwnerIdentity:   ownerIdentity,
		VaultID:         vault.ID,
		AssetID:         assetID,
		InterestRateBps: interestRateBps,
		MinDeposit:      minDeposit,
		Timestamp:       now.Unix(),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return vault, nil
}

func (s *vaultService) Deposit(ctx context.Context, ownerIdentity, assetID, ownerAccount string, amount int64, requestID string) (*models.DepositResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	vault, err := uow.VaultRepository().GetByAssetIDForUpdate(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	if vault == nil {
		return nil, fmt.Errorf("%w: asset %s", models.ErrVaultNotFound, assetID)
	}

	if amount < vault.MinDeposit {
		return nil, fmt.Errorf("%w: minimum is %d, got %d", models.ErrInsufficientDepositAmount, vault.MinDeposit, amount)
	}

	position, err := uow.PositionRepository().GetOrCreateForUpdate(ctx, vault.ID, ownerIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	now := s.clock.Now().Unix()

	// Settle interest accrued since the last settlement. A position receiving
	// its first deposit has no principal, so there is nothing to settle; the
	// settlement time is still refreshed below.
	if position.Principal > 0 {
		accrued, err := interest.Accrue(position.Principal, vault.InterestRateBps, now-position.LastSettlementTime)
		if err != nil {
			return nil, fmt.Errorf("failed to settle interest: %w", err)
		}
		position.SettledInterest, err = interest.AddChecked(position.SettledInterest, accrued)
		if err != nil {
			return nil, fmt.Errorf("failed to settle interest: %w", err)
		}
	}

	position.Principal, err = interest.AddChecked(position.Principal, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}
	position.LastSettlementTime = now
	position.DepositCount++

	if err := uow.PositionRepository().Update(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	if err := uow.VaultRepository().AddTotalPrincipal(ctx, vault.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to update vault total: %w", err)
	}

	entry := &models.LedgerEntry{
		VaultID:        vault.ID,
		OwnerIdentity:  ownerIdentity,
		EntryType:      models.EntryTypeDeposit,
		Amount:         amount,
		PrincipalAfter: position.Principal,
		InterestAfter:  position.SettledInterest,
		RequestID:      requestID,
	}
	event := events.DepositEvent{
		OwnerIdentity: ownerIdentity,
		VaultID:       vault.ID,
		AssetID:       assetID,
		Amount:        amount,
		Timestamp:     now,
	}
	if err := RecordVaultOperation(ctx, uow, entry, event); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	// Move the asset into custody before the ledger commit becomes durable;
	// a failed transfer rolls back every mutation above.
	if err := s.custody.Transfer(ctx, TransferRequest{
		FromAccount: ownerAccount,
		ToAccount:   vault.CustodyAccount,
		AssetID:     assetID,
		Amount:      amount,
		Authority:   ownerIdentity,
	}); err != nil {
		return nil, fmt.Errorf("custody transfer failed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DepositResult{
		VaultID:         vault.ID,
		Principal:       position.Principal,
		SettledInterest: position.SettledInterest,
		DepositCount:    position.DepositCount,
	}, nil
}

func (s *vaultService) Withdraw(ctx context.Context, ownerIdentity, assetID, ownerAccount string, amount int64, requestID string) (*models.WithdrawResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must not be negative", models.ErrInsufficientBalance)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	vault, err := uow.VaultRepository().GetByAssetIDForUpdate(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	if vault == nil {
		return nil, fmt.Errorf("%w: asset %s", models.ErrVaultNotFound, assetID)
	}

	position, err := uow.PositionRepository().GetByOwnerForUpdate(ctx, vault.ID, ownerIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("%w: no position for asset %s", models.ErrPositionNotFound, assetID)
	}

	now := s.clock.Now().Unix()

	accrued, err := interest.Accrue(position.Principal, vault.InterestRateBps, now-position.LastSettlementTime)
	if err != nil {
		return nil, fmt.Errorf("failed to settle interest: %w", err)
	}
	totalInterest, err := interest.AddChecked(position.SettledInterest, accrued)
	if err != nil {
		return nil, fmt.Errorf("failed to settle interest: %w", err)
	}
	totalAvailable, err := interest.AddChecked(position.Principal, totalInterest)
	if err != nil {
		return nil, fmt.Errorf("failed to compute available balance: %w", err)
	}

	if amount > totalAvailable {
		return nil, fmt.Errorf("%w: have %d available, need %d", models.ErrInsufficientBalance, totalAvailable, amount)
	}

	// Draw down interest before principal. The split decides the future
	// accrual base, so the order must not change.
	var interestWithdrawn, principalWithdrawn int64
	if amount <= totalInterest {
		interestWithdrawn = amount
		position.SettledInterest, err = interest.SubChecked(totalInterest, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate withdrawal: %w", err)
		}
	} else {
		interestWithdrawn = totalInterest
		principalWithdrawn, err = interest.SubChecked(amount, totalInterest)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate withdrawal: %w", err)
		}
		position.SettledInterest = 0
		position.Principal, err = interest.SubChecked(position.Principal, principalWithdrawn)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate withdrawal: %w", err)
		}
	}
	position.LastSettlementTime = now
	position.WithdrawCount++

	if err := uow.PositionRepository().Update(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	if principalWithdrawn > 0 {
		if err := uow.VaultRepository().AddTotalPrincipal(ctx, vault.ID, -principalWithdrawn); err != nil {
			return nil, fmt.Errorf("failed to update vault total: %w", err)
		}
	}

	entry := &models.LedgerEntry{
		VaultID:        vault.ID,
		OwnerIdentity:  ownerIdentity,
		EntryType:      models.EntryTypeWithdraw,
		Amount:         amount,
		PrincipalAfter: position.Principal,
		InterestAfter:  position.SettledInterest,
		RequestID:      requestID,
	}
	event := events.WithdrawEvent{
		OwnerIdentity: ownerIdentity,
		VaultID:       vault.ID,
		AssetID:       assetID,
		Amount:        amount,
		Timestamp:     now,
	}
	if err := RecordVaultOperation(ctx, uow, entry, event); err != nil {
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	// The vault approves the outbound transfer with its own custody
	// authority; the withdrawer never holds rights over the pooled account.
	if err := s.custody.Transfer(ctx, TransferRequest{
		FromAccount: vault.CustodyAccount,
		ToAccount:   ownerAccount,
		AssetID:     assetID,
		Amount:      amount,
		Authority:   vault.CustodyAuthority,
	}); err != nil {
		return nil, fmt.Errorf("custody transfer failed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WithdrawResult{
		VaultID:            vault.ID,
		Principal:          position.Principal,
		SettledInterest:    position.SettledInterest,
		InterestWithdrawn:  interestWithdrawn,
		PrincipalWithdrawn: principalWithdrawn,
		WithdrawCount:      position.WithdrawCount,
	}, nil
}

func (s *vaultService) GetBalance(ctx context.Context, ownerIdentity, assetID string) (*models.BalanceInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // Read-only: always rolls back

	vault, err := uow.VaultRepository().GetByAssetID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	if vault == nil {
		return nil, fmt.Errorf("%w: asset %s", models.ErrVaultNotFound, assetID)
	}

	position, err := uow.PositionRepository().GetByOwner(ctx, vault.ID, ownerIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	if position == nil {
		// Never deposited: nothing accrues on an absent position
		return &models.BalanceInfo{}, nil
	}

	now := s.clock.Now().Unix()

	accrued, err := interest.Accrue(position.Principal, vault.InterestRateBps, now-position.LastSettlementTime)
	if err != nil {
		return nil, fmt.Errorf("failed to compute accrued interest: %w", err)
	}
	settledNow, err := interest.AddChecked(position.SettledInterest, accrued)
	if err != nil {
		return nil, fmt.Errorf("failed to compute accrued interest: %w", err)
	}
	total, err := interest.AddChecked(position.Principal, settledNow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total balance: %w", err)
	}

	return &models.BalanceInfo{
		Principal:          position.Principal,
		SettledInterest:    settledNow,
		TotalBalance:       total,
		LastSettlementTime: position.LastSettlementTime,
	}, nil
}
