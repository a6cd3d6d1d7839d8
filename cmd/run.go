package cmd

import (
	"context"
	"fmt"
	"log"
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

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting vault ledger service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Connect the outbound NATS client used for events and custody calls
	log.Println("Connecting to NATS...")
	natsClient := messaging.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Publish committed domain events onto the vault_events stream
	publisher := messaging.NewNATSEventPublisher(natsClient, messaging.NewEventSubjectMapper())
	if err := publisher.EnsureVaultEventStream(); err != nil {
		return fmt.Errorf("failed to ensure vault event stream: %w", err)
	}
	for _, eventType := range []events.EventType{
		events.EventTypeDeposit,
		events.EventTypeWithdraw,
		events.EventTypeVaultCreated,
	} {
		eventBus.Subscribe(eventType, func(ctx context.Context, e events.Event) {
			if err := publisher.Publish(e); err != nil {
				log.Printf("Failed to publish %s event: %v", e.Type(), err)
			}
		})
	}

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	custodyClient := custody.NewClient(natsClient, cfg.CustodySubject, time.Duration(cfg.CustodyTimeoutSeconds)*time.Second)
	vaultService := service.NewVaultService(uowFactory, custodyClient, service.NewSystemClock())
	log.Println("Services initialized successfully")

	// Serve vault operations over NATS request/reply
	verifier := identity.NewVerifier(cfg.IdentityJWTSecret)
	consumer := messaging.NewVaultOpsConsumer(cfg.NATSServers, verifier, vaultService)

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(ctx)
	}()

	// Wait for context cancellation or a consumer failure
	log.Printf("Vault ledger is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-consumerErr:
		if err != nil {
			return fmt.Errorf("vault operations consumer failed: %w", err)
		}
	}

	// Cleanup resources
	log.Println("Shutting down vault ledger...")
	consumer.Stop()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close the outbound NATS connection
	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
