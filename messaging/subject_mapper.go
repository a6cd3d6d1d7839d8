package messaging

import (
	"fmt"

	"vaultledger/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDeposit:
		return "vault.events.deposited"
	case events.EventTypeWithdraw:
		return "vault.events.withdrawn"
	case events.EventTypeVaultCreated:
		return "vault.events.created"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "vault.events.deposited":
		return events.EventTypeDeposit
	case "vault.events.withdrawn":
		return events.EventTypeWithdraw
	case "vault.events.created":
		return events.EventTypeVaultCreated
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"vault.events.deposited",
		"vault.events.withdrawn",
		"vault.events.created",
	}
}
