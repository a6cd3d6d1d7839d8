package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan DepositEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeDeposit, func(ctx context.Context, event Event) {
		defer wg.Done()
		if depositEvent, ok := event.(DepositEvent); ok {
			select {
			case eventReceived <- depositEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected DepositEvent, got %T", event)
		}
	})

	testEvent := DepositEvent{
		OwnerIdentity: "owner-123",
		VaultID:       7,
		AssetID:       "asset-usd",
		Amount:        50_000,
		Timestamp:     1_700_000_000,
	}

	// Publish to the transactional bus as the service layer would
	transactionalBus.Publish(testEvent)

	// Flush simulates a successful commit
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.OwnerIdentity, receivedEvent.OwnerIdentity)
		assert.Equal(t, testEvent.VaultID, receivedEvent.VaultID)
		assert.Equal(t, testEvent.AssetID, receivedEvent.AssetID)
		assert.Equal(t, testEvent.Amount, receivedEvent.Amount)
		assert.Equal(t, testEvent.Timestamp, receivedEvent.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan WithdrawEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeWithdraw, func(ctx context.Context, event Event) {
		defer wg.Done()
		if withdrawEvent, ok := event.(WithdrawEvent); ok {
			eventsReceived <- withdrawEvent
		}
	})

	events := []WithdrawEvent{
		{OwnerIdentity: "owner-1", VaultID: 1, AssetID: "asset-usd", Amount: 100, Timestamp: 1_700_000_001},
		{OwnerIdentity: "owner-2", VaultID: 1, AssetID: "asset-usd", Amount: 200, Timestamp: 1_700_000_002},
		{OwnerIdentity: "owner-3", VaultID: 1, AssetID: "asset-usd", Amount: 300, Timestamp: 1_700_000_003},
	}

	for _, event := range events {
		transactionalBus.Publish(event)
	}

	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	wg.Wait()

	receivedEvents := make([]WithdrawEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Handlers run concurrently, so delivery order is not guaranteed
	owners := make(map[string]bool)
	for _, received := range receivedEvents {
		owners[received.OwnerIdentity] = true
	}

	assert.True(t, owners["owner-1"])
	assert.True(t, owners["owner-2"])
	assert.True(t, owners["owner-3"])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeDeposit, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	testEvent := DepositEvent{
		OwnerIdentity: "owner-123",
		VaultID:       7,
		AssetID:       "asset-usd",
		Amount:        50_000,
		Timestamp:     1_700_000_000,
	}
	transactionalBus.Publish(testEvent)

	// Discard instead of flush, as a rollback would
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected - no event should be received
	}
}
