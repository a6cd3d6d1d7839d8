package models

import (
	"time"
)

// EntryType represents the kind of vault operation recorded in the ledger
type EntryType string

const (
	EntryTypeDeposit  EntryType = "deposit"
	EntryTypeWithdraw EntryType = "withdraw"
)

// LedgerEntry represents a committed vault operation, written in the same
// transaction as the position and vault rows it describes
type LedgerEntry struct {
	ID             int64     `db:"id"`
	VaultID        int64     `db:"vault_id"`
	OwnerIdentity  string    `db:"owner_identity"`
	EntryType      EntryType `db:"entry_type"`
	Amount         int64     `db:"amount"`
	PrincipalAfter int64     `db:"principal_after"`
	InterestAfter  int64     `db:"interest_after"`
	RequestID      string    `db:"request_id"`
	CreatedAt      time.Time `db:"created_at"`
}
