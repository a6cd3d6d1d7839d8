package repository

import (
	"context"
	"fmt"

	"vaultledger/database"
	"vaultledger/models"
)

// LedgerEntryRepository implements the LedgerEntryRepository interface
type LedgerEntryRepository struct {
	q queryable
}

// NewLedgerEntryRepository creates a new ledger entry repository
func NewLedgerEntryRepository(db *database.DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{q: db.Pool}
}

// newLedgerEntryRepositoryWithTx creates a new ledger entry repository with a transaction
func newLedgerEntryRepositoryWithTx(tx queryable) *LedgerEntryRepository {
	return &LedgerEntryRepository{q: tx}
}

// Record appends an entry to the ledger and fills in its generated fields.
// An empty request ID is stored as NULL so it never collides with another
// unkeyed entry.
func (r *LedgerEntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (vault_id, owner_identity, entry_type, amount,
		                            principal_after, interest_after, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	var requestID *string
	if entry.RequestID != "" {
		requestID = &entry.RequestID
	}

	err := r.q.QueryRow(ctx, query,
		entry.VaultID,
		entry.OwnerIdentity,
		entry.EntryType,
		entry.Amount,
		entry.PrincipalAfter,
		entry.InterestAfter,
		requestID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record %s entry for owner %s: %w", entry.EntryType, entry.OwnerIdentity, err)
	}

	return nil
}

// GetByOwner returns an owner's most recent ledger entries in a vault,
// newest first
func (r *LedgerEntryRepository) GetByOwner(ctx context.Context, vaultID int64, ownerIdentity string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, vault_id, owner_identity, entry_type, amount,
		       principal_after, interest_after, COALESCE(request_id, ''), created_at
		FROM ledger_entries
		WHERE vault_id = $1 AND owner_identity = $2
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, vaultID, ownerIdentity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for owner %s: %w", ownerIdentity, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.VaultID,
			&entry.OwnerIdentity,
			&entry.EntryType,
			&entry.Amount,
			&entry.PrincipalAfter,
			&entry.InterestAfter,
			&entry.RequestID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
