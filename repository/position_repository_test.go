package repository

import (
	"context"
	"testing"

	"vaultledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionRepository_GetOrCreateForUpdate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewPositionRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("creates empty position on first use", func(t *testing.T) {
		position, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-123")
		require.NoError(t, err)
		require.NotNil(t, position)

		assert.NotZero(t, position.ID)
		assert.Equal(t, vault.ID, position.VaultID)
		assert.Equal(t, "owner-123", position.OwnerIdentity)
		assert.Equal(t, int64(0), position.Principal)
		assert.Equal(t, int64(0), position.SettledInterest)
		assert.Equal(t, int64(0), position.LastSettlementTime)
		assert.Equal(t, int64(0), position.DepositCount)
		assert.Equal(t, int64(0), position.WithdrawCount)
	})

	t.Run("returns the same position on later calls", func(t *testing.T) {
		first, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-456")
		require.NoError(t, err)

		second, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-456")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("separate owners get separate positions", func(t *testing.T) {
		a, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-a")
		require.NoError(t, err)

		b, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-b")
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestPositionRepository_GetByOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewPositionRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("no position found", func(t *testing.T) {
		position, err := repo.GetByOwner(ctx, vault.ID, "stranger-9")
		require.NoError(t, err)
		assert.Nil(t, position)
	})

	t.Run("position found", func(t *testing.T) {
		created, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-123")
		require.NoError(t, err)

		position, err := repo.GetByOwner(ctx, vault.ID, "owner-123")
		require.NoError(t, err)
		require.NotNil(t, position)
		assert.Equal(t, created.ID, position.ID)
	})
}

func TestPositionRepository_SumPrincipal(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewPositionRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("empty vault sums to zero", func(t *testing.T) {
		sum, err := repo.SumPrincipal(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), sum)
	})

	t.Run("sums across positions", func(t *testing.T) {
		for owner, principal := range map[string]int64{
			"owner-1": 10_000,
			"owner-2": 25_000,
			"owner-3": 5_000,
		} {
			position, err := repo.GetOrCreateForUpdate(ctx, vault.ID, owner)
			require.NoError(t, err)
			position.Principal = principal
			require.NoError(t, repo.Update(ctx, position))
		}

		sum, err := repo.SumPrincipal(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40_000), sum)
	})
}

func TestPositionRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewPositionRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("persists balance fields and counters", func(t *testing.T) {
		position, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-123")
		require.NoError(t, err)

		position.Principal = 50_000
		position.SettledInterest = 1_234
		position.LastSettlementTime = 1_700_000_000
		position.DepositCount = 3
		position.WithdrawCount = 1

		err = repo.Update(ctx, position)
		require.NoError(t, err)

		reloaded, err := repo.GetByOwner(ctx, vault.ID, "owner-123")
		require.NoError(t, err)
		require.NotNil(t, reloaded)

		assert.Equal(t, int64(50_000), reloaded.Principal)
		assert.Equal(t, int64(1_234), reloaded.SettledInterest)
		assert.Equal(t, int64(1_700_000_000), reloaded.LastSettlementTime)
		assert.Equal(t, int64(3), reloaded.DepositCount)
		assert.Equal(t, int64(1), reloaded.WithdrawCount)
	})

	t.Run("missing position", func(t *testing.T) {
		position, err := repo.GetOrCreateForUpdate(ctx, vault.ID, "owner-456")
		require.NoError(t, err)

		position.ID = 99_999
		err = repo.Update(ctx, position)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
