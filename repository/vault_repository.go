package repository

import (
	"context"
	"errors"
	"fmt"

	"vaultledger/database"
	"vaultledger/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// VaultRepository implements the VaultRepository interface
type VaultRepository struct {
	q queryable
}

// NewVaultRepository creates a new vault repository
func NewVaultRepository(db *database.DB) *VaultRepository {
	return &VaultRepository{q: db.Pool}
}

// newVaultRepositoryWithTx creates a new vault repository with a transaction
func newVaultRepositoryWithTx(tx queryable) *VaultRepository {
	return &VaultRepository{q: tx}
}

// GetByAssetID retrieves a vault by the asset it holds
func (r *VaultRepository) GetByAssetID(ctx context.Context, assetID string) (*models.Vault, error) {
	query := `
		SELECT id, owner_identity, asset_id, custody_account, custody_authority,
		       interest_rate_bps, min_deposit, total_principal, created_at
		FROM vaults
		WHERE asset_id = $1
	`

	var vault models.Vault
	err := r.q.QueryRow(ctx, query, assetID).Scan(
		&vault.ID,
		&vault.OwnerIdentity,
		&vault.AssetID,
		&vault.CustodyAccount,
		&vault.CustodyAuthority,
		&vault.InterestRateBps,
		&vault.MinDeposit,
		&vault.TotalPrincipal,
		&vault.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for asset %s: %w", assetID, err)
	}

	return &vault, nil
}

// GetByAssetIDForUpdate retrieves a vault by asset and locks its row for the
// duration of the surrounding transaction
func (r *VaultRepository) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*models.Vault, error) {
	query := `
		SELECT id, owner_identity, asset_id, custody_account, custody_authority,
		       interest_rate_bps, min_deposit, total_principal, created_at
		FROM vaults
		WHERE asset_id = $1
		FOR UPDATE
	`

	var vault models.Vault
	err := r.q.QueryRow(ctx, query, assetID).Scan(
		&vault.ID,
		&vault.OwnerIdentity,
		&vault.AssetID,
		&vault.CustodyAccount,
		&vault.CustodyAuthority,
		&vault.InterestRateBps,
		&vault.MinDeposit,
		&vault.TotalPrincipal,
		&vault.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock vault for asset %s: %w", assetID, err)
	}

	return &vault, nil
}

// Create inserts a new vault and fills in its generated ID.
// A vault or custody account that already exists is a configuration error.
func (r *VaultRepository) Create(ctx context.Context, vault *models.Vault) error {
	query := `
		INSERT INTO vaults (owner_identity, asset_id, custody_account, custody_authority,
		                    interest_rate_bps, min_deposit, total_principal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		vault.OwnerIdentity,
		vault.AssetID,
		vault.CustodyAccount,
		vault.CustodyAuthority,
		vault.InterestRateBps,
		vault.MinDeposit,
		vault.TotalPrincipal,
		vault.CreatedAt,
	).Scan(&vault.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: vault for asset %s already exists", models.ErrInvalidConfiguration, vault.AssetID)
		}
		return fmt.Errorf("failed to create vault for asset %s: %w", vault.AssetID, err)
	}

	return nil
}

// AddTotalPrincipal adjusts a vault's total principal by delta atomically.
// The update is relative so concurrent writers never clobber each other.
func (r *VaultRepository) AddTotalPrincipal(ctx context.Context, vaultID int64, delta int64) error {
	query := `
		UPDATE vaults
		SET total_principal = total_principal + $1
		WHERE id = $2 AND total_principal + $1 >= 0
	`

	result, err := r.q.Exec(ctx, query, delta, vaultID)
	if err != nil {
		return fmt.Errorf("failed to adjust total principal for vault %d: %w", vaultID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to adjust total principal for vault %d: vault missing or total would go negative", vaultID)
	}

	return nil
}

// GetAll returns all vaults
func (r *VaultRepository) GetAll(ctx context.Context) ([]*models.Vault, error) {
	query := `
		SELECT id, owner_identity, asset_id, custody_account, custody_authority,
		       interest_rate_bps, min_deposit, total_principal, created_at
		FROM vaults
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all vaults: %w", err)
	}
	defer rows.Close()

	var vaults []*models.Vault
	for rows.Next() {
		var vault models.Vault
		err := rows.Scan(
			&vault.ID,
			&vault.OwnerIdentity,
			&vault.AssetID,
			&vault.CustodyAccount,
			&vault.CustodyAuthority,
			&vault.InterestRateBps,
			&vault.MinDeposit,
			&vault.TotalPrincipal,
			&vault.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault: %w", err)
		}
		vaults = append(vaults, &vault)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vaults: %w", err)
	}

	return vaults, nil
}
