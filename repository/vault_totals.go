package repository

import (
	"context"

	"vaultledger/database"
	"vaultledger/models"

	"github.com/jackc/pgx/v5"
)

// VaultTotals pairs a vault with the summed principal of its positions as of
// one snapshot. The two figures must agree; drift means the books are wrong.
type VaultTotals struct {
	Vault             *models.Vault
	PositionPrincipal int64
}

// Consistent reports whether the vault's running total matches its positions.
func (t VaultTotals) Consistent() bool {
	return t.Vault.TotalPrincipal == t.PositionPrincipal
}

// CollectVaultTotals reads every vault together with the sum of its position
// principals inside a single read-only snapshot, so the comparison holds even
// while operations are committing concurrently.
func CollectVaultTotals(ctx context.Context, db *database.DB) ([]VaultTotals, error) {
	var totals []VaultTotals

	err := db.WithSnapshot(ctx, func(tx pgx.Tx) error {
		vaults, err := newVaultRepositoryWithTx(tx).GetAll(ctx)
		if err != nil {
			return err
		}

		positionRepo := newPositionRepositoryWithTx(tx)
		for _, vault := range vaults {
			sum, err := positionRepo.SumPrincipal(ctx, vault.ID)
			if err != nil {
				return err
			}
			totals = append(totals, VaultTotals{Vault: vault, PositionPrincipal: sum})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return totals, nil
}
