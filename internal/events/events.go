// Package events defines the interface for publishing throw lifecycle events
// (e.g. to Kafka). Emission is best-effort and happens after commit; a lost
// event never invalidates persisted data.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeThrowCreated = "throw.created"
	TypeThrowDeleted = "throw.deleted"
)

// Event is one throw lifecycle notification. Sample payloads are never
// published; Samples carries only the count.
type Event struct {
	Type         string    `json:"type"`
	ThrowID      string    `json:"throw_id"`
	DiscID       string    `json:"disc_id,omitempty"`
	PlayerID     string    `json:"player_id,omitempty"`
	Samples      int       `json:"samples,omitempty"`
	NewRecord    bool      `json:"new_record,omitempty"`
	RecordMetric string    `json:"record_metric,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Producer emits throw events. Callers use it best-effort: log and ignore
// errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; use
	// EmitAsync from request handlers.
	Emit(ctx context.Context, ev *Event) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if
	// already closed.
	Close() error
}
