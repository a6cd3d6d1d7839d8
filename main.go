package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vaultledger/cmd"
	"vaultledger/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; deployments set the environment directly
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error:", err)
			}
			return
		case "create-vault":
			if err := cmd.CreateVault(os.Args[2:]); err != nil {
				log.Fatal("Create vault error:", err)
			}
			return
		case "list-vaults":
			if err := cmd.ListVaults(); err != nil {
				log.Fatal("List vaults error:", err)
			}
			return
		case "issue-token":
			if err := cmd.IssueToken(os.Args[2:]); err != nil {
				log.Fatal("Issue token error:", err)
			}
			return
		}
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: vaultledger migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
