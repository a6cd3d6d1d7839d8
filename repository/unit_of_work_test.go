package repository

import (
	"context"
	"testing"
	"time"

	"vaultledger/events"
	"vaultledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeDeposit, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, uow.VaultRepository().Create(ctx, vault))

	position, err := uow.PositionRepository().GetOrCreateForUpdate(ctx, vault.ID, "owner-123")
	require.NoError(t, err)

	position.Principal = 10_000
	position.LastSettlementTime = 1_700_000_000
	position.DepositCount = 1
	require.NoError(t, uow.PositionRepository().Update(ctx, position))
	require.NoError(t, uow.VaultRepository().AddTotalPrincipal(ctx, vault.ID, 10_000))

	uow.EventBus().Publish(events.DepositEvent{
		OwnerIdentity: "owner-123",
		VaultID:       vault.ID,
		AssetID:       "usd-stable",
		Amount:        10_000,
		Timestamp:     1_700_000_000,
	})

	require.NoError(t, uow.Commit())

	// Mutations are visible outside the transaction
	poolVaultRepo := NewVaultRepository(testDB.DB)
	reloaded, err := poolVaultRepo.GetByAssetID(ctx, "usd-stable")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, int64(10_000), reloaded.TotalPrincipal)

	poolPositionRepo := NewPositionRepository(testDB.DB)
	persisted, err := poolPositionRepo.GetByOwner(ctx, vault.ID, "owner-123")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, int64(10_000), persisted.Principal)

	// Pending events flush after commit
	select {
	case e := <-received:
		deposit, ok := e.(events.DepositEvent)
		require.True(t, ok)
		assert.Equal(t, int64(10_000), deposit.Amount)
	case <-time.After(2 * time.Second):
		t.Fatal("expected deposit event after commit")
	}
}

func TestUnitOfWork_RollbackDiscardsMutationsAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeVaultCreated, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, uow.VaultRepository().Create(ctx, vault))
	uow.EventBus().Publish(events.VaultCreatedEvent{
		OwnerIdentity: vault.OwnerIdentity,
		VaultID:       vault.ID,
		AssetID:       vault.AssetID,
	})

	require.NoError(t, uow.Rollback())

	// Vault never became visible
	poolVaultRepo := NewVaultRepository(testDB.DB)
	reloaded, err := poolVaultRepo.GetByAssetID(ctx, "usd-stable")
	require.NoError(t, err)
	assert.Nil(t, reloaded)

	// Pending events were discarded
	select {
	case <-received:
		t.Fatal("no event should be delivered after rollback")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnitOfWork_RollbackAfterCommitIsNoop(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, uow.VaultRepository().Create(ctx, vault))
	require.NoError(t, uow.Commit())

	// The deferred rollback pattern must not undo a committed transaction
	require.NoError(t, uow.Rollback())

	poolVaultRepo := NewVaultRepository(testDB.DB)
	reloaded, err := poolVaultRepo.GetByAssetID(ctx, "usd-stable")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
}
