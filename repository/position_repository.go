package repository

import (
	"context"
	"fmt"

	"vaultledger/database"
	"vaultledger/models"

	"github.com/jackc/pgx/v5"
)

// PositionRepository implements the PositionRepository interface
type PositionRepository struct {
	q queryable
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *database.DB) *PositionRepository {
	return &PositionRepository{q: db.Pool}
}

// newPositionRepositoryWithTx creates a new position repository with a transaction
func newPositionRepositoryWithTx(tx queryable) *PositionRepository {
	return &PositionRepository{q: tx}
}

// GetByOwner retrieves an owner's position in a vault
func (r *PositionRepository) GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	query := `
		SELECT id, vault_id, owner_identity, principal, settled_interest,
		       last_settlement_time, deposit_count, withdraw_count, created_at, updated_at
		FROM positions
		WHERE vault_id = $1 AND owner_identity = $2
	`

	var position models.Position
	err := r.q.QueryRow(ctx, query, vaultID, ownerIdentity).Scan(
		&position.ID,
		&position.VaultID,
		&position.OwnerIdentity,
		&position.Principal,
		&position.SettledInterest,
		&position.LastSettlementTime,
		&position.DepositCount,
		&position.WithdrawCount,
		&position.CreatedAt,
		&position.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position for owner %s in vault %d: %w", ownerIdentity, vaultID, err)
	}

	return &position, nil
}

// GetByOwnerForUpdate retrieves an owner's position and locks its row for the
// duration of the surrounding transaction
func (r *PositionRepository) GetByOwnerForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	query := `
		SELECT id, vault_id, owner_identity, principal, settled_interest,
		       last_settlement_time, deposit_count, withdraw_count, created_at, updated_at
		FROM positions
		WHERE vault_id = $1 AND owner_identity = $2
		FOR UPDATE
	`

	var position models.Position
	err := r.q.QueryRow(ctx, query, vaultID, ownerIdentity).Scan(
		&position.ID,
		&position.VaultID,
		&position.OwnerIdentity,
		&position.Principal,
		&position.SettledInterest,
		&position.LastSettlementTime,
		&position.DepositCount,
		&position.WithdrawCount,
		&position.CreatedAt,
		&position.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock position for owner %s in vault %d: %w", ownerIdentity, vaultID, err)
	}

	return &position, nil
}

// GetOrCreateForUpdate returns an owner's position, creating an empty one on
// first use, and locks the row either way
func (r *PositionRepository) GetOrCreateForUpdate(ctx context.Context, vaultID int64, ownerIdentity string) (*models.Position, error) {
	insert := `
		INSERT INTO positions (vault_id, owner_identity)
		VALUES ($1, $2)
		ON CONFLICT (vault_id, owner_identity) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, insert, vaultID, ownerIdentity); err != nil {
		return nil, fmt.Errorf("failed to create position for owner %s in vault %d: %w", ownerIdentity, vaultID, err)
	}

	position, err := r.GetByOwnerForUpdate(ctx, vaultID, ownerIdentity)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, fmt.Errorf("position for owner %s in vault %d missing after insert", ownerIdentity, vaultID)
	}

	return position, nil
}

// SumPrincipal returns the combined principal across all positions in a vault.
// In a consistent snapshot this must equal the vault's total_principal.
func (r *PositionRepository) SumPrincipal(ctx context.Context, vaultID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0)
		FROM positions
		WHERE vault_id = $1
	`

	var sum int64
	if err := r.q.QueryRow(ctx, query, vaultID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum position principal for vault %d: %w", vaultID, err)
	}

	return sum, nil
}

// Update persists a position's balance fields and counters
func (r *PositionRepository) Update(ctx context.Context, position *models.Position) error {
	query := `
		UPDATE positions
		SET principal = $1, settled_interest = $2, last_settlement_time = $3,
		    deposit_count = $4, withdraw_count = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		position.Principal,
		position.SettledInterest,
		position.LastSettlementTime,
		position.DepositCount,
		position.WithdrawCount,
		position.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position %d: %w", position.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("position with ID %d not found", position.ID)
	}

	return nil
}
