package repository

import (
	"context"
	"fmt"
	"testing"

	"vaultledger/models"
	"vaultledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntryRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewLedgerEntryRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("successful record", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntry(vault.ID, "owner-123", models.EntryTypeDeposit)
		entry.RequestID = "req-1"

		err := repo.Record(ctx, entry)
		require.NoError(t, err)

		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("duplicate request ID", func(t *testing.T) {
		first := testutil.CreateTestLedgerEntry(vault.ID, "owner-123", models.EntryTypeDeposit)
		first.RequestID = "req-dup"
		require.NoError(t, repo.Record(ctx, first))

		second := testutil.CreateTestLedgerEntry(vault.ID, "owner-123", models.EntryTypeDeposit)
		second.RequestID = "req-dup"
		err := repo.Record(ctx, second)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unique") // PostgreSQL unique constraint error
	})

	t.Run("empty request IDs never collide", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			entry := testutil.CreateTestLedgerEntry(vault.ID, "owner-456", models.EntryTypeWithdraw)
			err := repo.Record(ctx, entry)
			require.NoError(t, err)
		}
	})
}

func TestLedgerEntryRepository_GetByOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	vaultRepo := NewVaultRepository(testDB.DB)
	repo := NewLedgerEntryRepository(testDB.DB)
	ctx := context.Background()

	vault := testutil.CreateTestVault("usd-stable", "custody-usd")
	require.NoError(t, vaultRepo.Create(ctx, vault))

	t.Run("no entries", func(t *testing.T) {
		entries, err := repo.GetByOwner(ctx, vault.ID, "stranger-9", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			entry := testutil.CreateTestLedgerEntry(vault.ID, "owner-123", models.EntryTypeDeposit)
			entry.Amount = int64(1_000 * (i + 1))
			entry.RequestID = fmt.Sprintf("req-%d", i)
			require.NoError(t, repo.Record(ctx, entry))
		}

		entries, err := repo.GetByOwner(ctx, vault.ID, "owner-123", 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// Most recent insert comes back first
		assert.Equal(t, int64(5_000), entries[0].Amount)
		assert.Equal(t, int64(4_000), entries[1].Amount)
		assert.Equal(t, int64(3_000), entries[2].Amount)
		assert.Equal(t, "req-4", entries[0].RequestID)
	})

	t.Run("scoped to owner", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntry(vault.ID, "owner-456", models.EntryTypeWithdraw)
		require.NoError(t, repo.Record(ctx, entry))

		entries, err := repo.GetByOwner(ctx, vault.ID, "owner-456", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.EntryTypeWithdraw, entries[0].EntryType)
	})
}
