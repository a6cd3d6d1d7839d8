package messaging

import (
	"testing"

	"vaultledger/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper_MapEventToSubject(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		name    string
		event   events.Event
		subject string
	}{
		{
			name:    "deposit event",
			event:   events.DepositEvent{OwnerIdentity: "owner-123", Amount: 100},
			subject: "vault.events.deposited",
		},
		{
			name:    "withdraw event",
			event:   events.WithdrawEvent{OwnerIdentity: "owner-123", Amount: 100},
			subject: "vault.events.withdrawn",
		},
		{
			name:    "vault created event",
			event:   events.VaultCreatedEvent{AssetID: "usd-stable"},
			subject: "vault.events.created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
		})
	}
}

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	mapper := NewEventSubjectMapper()

	for _, subject := range mapper.GetAllSubjects() {
		eventType := mapper.MapSubjectToEventType(subject)
		assert.NotEqual(t, events.EventType(subject), eventType,
			"subject %s should map to a known event type", subject)
	}
}
