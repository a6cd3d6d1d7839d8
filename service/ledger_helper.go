package service

import (
	"context"
	"fmt"

	"vaultledger/events"
	"vaultledger/models"
)

// RecordVaultOperation records a ledger entry and queues the operation's event
// for publication after commit. Every committed balance mutation goes through
// here, so the audit trail and the event stream cannot diverge.
func RecordVaultOperation(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry, event events.Event) error {
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	// Queued on the transactional bus; flushed only after the commit succeeds
	uow.EventBus().Publish(event)

	return nil
}
