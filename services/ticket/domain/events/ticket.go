package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the ticket bounded context.
const (
	TopicTicketCreated   = "ticket.created"
	TopicTicketUpdated   = "ticket.updated"
	TopicTicketEscalated = "ticket.escalated"
)

// TicketCreatedEvent is published after a new Ticket is persisted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicTicketCreated).
type TicketCreatedEvent struct {
	EventID     uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int       `json:"version"`  // Schema version; increment on breaking changes
	TicketID    uuid.UUID `json:"ticket_id"`
	OrgID       uuid.UUID `json:"org_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TicketUpdatedEvent carries the full post-update state of a Ticket.
type TicketUpdatedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Version     int       `json:"version"`
	TicketID    uuid.UUID `json:"ticket_id"`
	OrgID       uuid.UUID `json:"org_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TicketEscalatedEvent is published by the escalation workflow when a ticket
// is still in ToDo after the configured grace period.
type TicketEscalatedEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	Version    int           `json:"version"`
	TicketID   uuid.UUID     `json:"ticket_id"`
	OrgID      uuid.UUID     `json:"org_id"`
	StaleFor   time.Duration `json:"stale_for"`
	OccurredAt time.Time     `json:"occurred_at"`
}
