package models

import (
	"time"
)

// Vault represents a pooled custody account for a single asset
type Vault struct {
	ID               int64     `db:"id"`
	OwnerIdentity    string    `db:"owner_identity"`
	AssetID          string    `db:"asset_id"`
	CustodyAccount   string    `db:"custody_account"`
	CustodyAuthority string    `db:"custody_authority"`
	InterestRateBps  int64     `db:"interest_rate_bps"`
	MinDeposit       int64     `db:"min_deposit"`
	TotalPrincipal   int64     `db:"total_principal"`
	CreatedAt        time.Time `db:"created_at"`
}
