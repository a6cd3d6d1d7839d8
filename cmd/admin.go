package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"vaultledger/config"
	"vaultledger/custody"
	"vaultledger/database"
	"vaultledger/events"
	"vaultledger/identity"
	"vaultledger/messaging"
	"vaultledger/repository"
	"vaultledger/service"
)

// CreateVault configures a new vault from the command line
func CreateVault(args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: vaultledger create-vault <owner> <asset> <custody-account> <rate-bps> <min-deposit>")
	}

	owner, asset, custodyAccount := args[0], args[1], args[2]

	rateBps, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	minDeposit, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid minimum deposit: %w", err)
	}

	ctx := context.Background()
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())

	// Vault creation moves no funds, so the custody connection stays closed;
	// only the authority derivation is used.
	custodyClient := custody.NewClient(
		messaging.NewNATSClient(cfg.NATSServers),
		cfg.CustodySubject,
		time.Duration(cfg.CustodyTimeoutSeconds)*time.Second,
	)
	vaultService := service.NewVaultService(uowFactory, custodyClient, service.NewSystemClock())

	vault, err := vaultService.CreateVault(ctx, owner, asset, custodyAccount, rateBps, minDeposit)
	if err != nil {
		return err
	}

	log.Printf("Created vault %d for asset %s (rate %d bps, min deposit %d)", vault.ID, vault.AssetID, vault.InterestRateBps, vault.MinDeposit)
	return nil
}

// ListVaults prints every configured vault with its running total and the
// summed principal of its positions, flagging any vault whose books disagree
func ListVaults() error {
	ctx := context.Background()
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	totals, err := repository.CollectVaultTotals(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to collect vault totals: %w", err)
	}

	if len(totals) == 0 {
		log.Println("No vaults configured")
		return nil
	}

	for _, t := range totals {
		line := fmt.Sprintf("vault %d asset=%s rate=%dbps min_deposit=%d total_principal=%d positions_principal=%d",
			t.Vault.ID, t.Vault.AssetID, t.Vault.InterestRateBps, t.Vault.MinDeposit,
			t.Vault.TotalPrincipal, t.PositionPrincipal)
		if !t.Consistent() {
			line += "  MISMATCH"
		}
		log.Println(line)
	}

	return nil
}

// IssueToken signs an identity token for local development and testing
func IssueToken(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: vaultledger issue-token <owner-identity> [ttl]")
	}

	ttl := 24 * time.Hour
	if len(args) > 1 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
		ttl = parsed
	}

	cfg := config.Get()
	verifier := identity.NewVerifier(cfg.IdentityJWTSecret)

	token, err := verifier.Issue(args[0], ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
