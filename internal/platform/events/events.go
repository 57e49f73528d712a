// Package events publishes record mutation notifications. The store remains
// the source of truth; events are best effort and never block a write.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	AppointmentBooked    = "appointment.booked"
	AppointmentUpdated   = "appointment.updated"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentArchived  = "appointment.archived"
	LedgerRecorded       = "ledger.recorded"
	LedgerUpdated        = "ledger.updated"
	LedgerDeleted        = "ledger.deleted"
	LedgerArchived       = "ledger.archived"
	PrescriptionIssued   = "prescription.issued"
	PrescriptionUpdated  = "prescription.updated"
	PrescriptionDeleted  = "prescription.deleted"
)

// Event is the envelope written to the broker. AggregateID is the record id
// and doubles as the message key, so events for one record stay ordered.
type Event struct {
	ID          string          `json:"event_id"`
	Type        string          `json:"event_type"`
	OwnerID     string          `json:"owner_id"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// New builds an Event with a fresh id. A payload that fails to marshal is
// dropped rather than failing the caller.
func New(eventType, ownerID string, aggregateID uuid.UUID, payload interface{}) Event {
	evt := Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		OwnerID:     ownerID,
		AggregateID: aggregateID.String(),
		OccurredAt:  time.Now().UTC(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			evt.Payload = data
		}
	}
	return evt
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
