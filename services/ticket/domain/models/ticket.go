package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is the core aggregate for this bounded context.
type Ticket struct {
	ID          uuid.UUID
	OrgID       uuid.UUID // tenant scope, always filter by this in queries
	Title       TicketTitle
	Description TicketDescription
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTicket constructs a Ticket in the ToDo state with a generated ID and
// current timestamps.
func NewTicket(orgID uuid.UUID, title TicketTitle, description TicketDescription) (*Ticket, error) {
	now := time.Now().UTC()
	return &Ticket{
		ID:          uuid.New(),
		OrgID:       orgID,
		Title:       title,
		Description: description,
		Status:      StatusToDo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Retitle replaces the ticket title.
func (t *Ticket) Retitle(title TicketTitle) {
	t.Title = title
	t.touch()
}

// Redescribe replaces the ticket description.
func (t *Ticket) Redescribe(description TicketDescription) {
	t.Description = description
	t.touch()
}

// MoveTo sets the ticket status.
func (t *Ticket) MoveTo(status Status) {
	t.Status = status
	t.touch()
}

func (t *Ticket) touch() {
	t.UpdatedAt = time.Now().UTC()
}
