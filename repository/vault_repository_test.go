package repository

import (
	"context"
	"testing"

	"vaultledger/models"
	"vaultledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		vault := testutil.CreateTestVault("usd-stable", "custody-usd")

		err := repo.Create(ctx, vault)
		require.NoError(t, err)
		assert.NotZero(t, vault.ID)
	})

	t.Run("duplicate asset", func(t *testing.T) {
		vault := testutil.CreateTestVault("eur-stable", "custody-eur")
		err := repo.Create(ctx, vault)
		require.NoError(t, err)

		duplicate := testutil.CreateTestVault("eur-stable", "custody-eur-2")
		err = repo.Create(ctx, duplicate)
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})

	t.Run("duplicate custody account", func(t *testing.T) {
		vault := testutil.CreateTestVault("gbp-stable", "custody-gbp")
		err := repo.Create(ctx, vault)
		require.NoError(t, err)

		duplicate := testutil.CreateTestVault("chf-stable", "custody-gbp")
		err = repo.Create(ctx, duplicate)
		assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
	})
}

func TestVaultRepository_GetByAssetID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no vault found", func(t *testing.T) {
		vault, err := repo.GetByAssetID(ctx, "unknown-asset")
		require.NoError(t, err)
		assert.Nil(t, vault)
	})

	t.Run("vault found", func(t *testing.T) {
		original := testutil.CreateTestVaultWithRate("usd-stable", "custody-usd", 750, 1_000)
		err := repo.Create(ctx, original)
		require.NoError(t, err)

		vault, err := repo.GetByAssetID(ctx, "usd-stable")
		require.NoError(t, err)
		require.NotNil(t, vault)

		assert.Equal(t, original.ID, vault.ID)
		assert.Equal(t, "custody-usd", vault.CustodyAccount)
		assert.Equal(t, "vault:usd-stable", vault.CustodyAuthority)
		assert.Equal(t, int64(750), vault.InterestRateBps)
		assert.Equal(t, int64(1_000), vault.MinDeposit)
		assert.Equal(t, int64(0), vault.TotalPrincipal)
	})
}

func TestVaultRepository_AddTotalPrincipal(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	err := repo.Create(ctx, vault)
	require.NoError(t, err)

	t.Run("accumulates deltas", func(t *testing.T) {
		err := repo.AddTotalPrincipal(ctx, vault.ID, 1_000)
		require.NoError(t, err)

		err = repo.AddTotalPrincipal(ctx, vault.ID, 500)
		require.NoError(t, err)

		err = repo.AddTotalPrincipal(ctx, vault.ID, -300)
		require.NoError(t, err)

		updated, err := repo.GetByAssetID(ctx, "usd-stable")
		require.NoError(t, err)
		assert.Equal(t, int64(1_200), updated.TotalPrincipal)
	})

	t.Run("rejects going negative", func(t *testing.T) {
		err := repo.AddTotalPrincipal(ctx, vault.ID, -2_000)
		assert.Error(t, err)

		// Total is unchanged after the rejected adjustment
		updated, getErr := repo.GetByAssetID(ctx, "usd-stable")
		require.NoError(t, getErr)
		assert.Equal(t, int64(1_200), updated.TotalPrincipal)
	})

	t.Run("missing vault", func(t *testing.T) {
		err := repo.AddTotalPrincipal(ctx, 99_999, 100)
		assert.Error(t, err)
	})
}

func TestVaultRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		vaults, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, vaults)
	})

	t.Run("returns every vault", func(t *testing.T) {
		for _, asset := range []string{"usd-stable", "eur-stable", "gbp-stable"} {
			vault := testutil.CreateTestVault(asset, "custody-"+asset)
			err := repo.Create(ctx, vault)
			require.NoError(t, err)
		}

		vaults, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, vaults, 3)

		assets := make(map[string]bool)
		for _, v := range vaults {
			assets[v.AssetID] = true
		}
		assert.True(t, assets["usd-stable"])
		assert.True(t, assets["eur-stable"])
		assert.True(t, assets["gbp-stable"])
	})
}
