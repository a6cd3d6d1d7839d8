package models

import (
	"time"
)

// Position represents a single depositor's stake in a vault.
// Principal and SettledInterest are authoritative as of LastSettlementTime;
// interest accrued since then is computed on demand and only written back
// when the position is settled by a deposit or withdrawal.
type Position struct {
	ID                 int64     `db:"id"`
	VaultID            int64     `db:"vault_id"`
	OwnerIdentity      string    `db:"owner_identity"`
	Principal          int64     `db:"principal"`
	SettledInterest    int64     `db:"settled_interest"`
	LastSettlementTime int64     `db:"last_settlement_time"` // unix seconds
	DepositCount       int64     `db:"deposit_count"`
	WithdrawCount      int64     `db:"withdraw_count"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
