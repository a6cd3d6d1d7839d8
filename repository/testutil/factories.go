package testutil

import (
	"time"

	"vaultledger/models"
)

// CreateTestVault creates a test vault with default values
func CreateTestVault(assetID, custodyAccount string) *models.Vault {
	return &models.Vault{
		OwnerIdentity:    "test-admin",
		AssetID:          assetID,
		CustodyAccount:   custodyAccount,
		CustodyAuthority: "vault:" + assetID,
		InterestRateBps:  500,
		MinDeposit:       100,
		TotalPrincipal:   0,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestVaultWithRate creates a test vault with a specific interest rate
// and minimum deposit
func CreateTestVaultWithRate(assetID, custodyAccount string, rateBps, minDeposit int64) *models.Vault {
	vault := CreateTestVault(assetID, custodyAccount)
	vault.InterestRateBps = rateBps
	vault.MinDeposit = minDeposit
	return vault
}

// CreateTestLedgerEntry creates a test ledger entry with default values
func CreateTestLedgerEntry(vaultID int64, ownerIdentity string, entryType models.EntryType) *models.LedgerEntry {
	return &models.LedgerEntry{
		VaultID:        vaultID,
		OwnerIdentity:  ownerIdentity,
		EntryType:      entryType,
		Amount:         1_000,
		PrincipalAfter: 1_000,
		InterestAfter:  0,
	}
}
