// Package queue carries reservation-hold lifecycle events over RabbitMQ:
// the publisher used by the hold orchestrator and the consumer that
// appends them to logs/hold.log.
package queue

import "time"

// DefaultQueue is the durable queue hold events are routed to.
const DefaultQueue = "hold.events"

// Event types.
const (
	HoldCreated   = "hold.created"
	HoldCancelled = "hold.cancelled"
	HoldExpired   = "hold.expired"
)

// HoldEvent is published whenever a hold is created, cancelled by the
// guest, or lapses.  It carries enough for downstream consumers to log or
// notify without calling the authority.
type HoldEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	WorkspaceID   string    `json:"workspace_id,omitempty"`
	WorkspaceType string    `json:"workspace_type,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	HoldExpiresAt time.Time `json:"hold_expires_at,omitzero"`
	OccurredAt    time.Time `json:"occurred_at"`
}
