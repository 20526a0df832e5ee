package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// TicketRepository is the persistence interface for the Ticket aggregate.
// The domain layer owns this interface; infrastructure implements it.
type TicketRepository interface {
	// Save persists a new Ticket and publishes ticket.created.
	Save(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Ticket, error)

	// FindByOrgID retrieves a paginated list of tickets for the given org,
	// newest first. Returns the tickets slice and the total count.
	FindByOrgID(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.Ticket, int, error)

	// Update persists changes to an existing Ticket and publishes ticket.updated.
	Update(ctx context.Context, ticket *models.Ticket) error

	// Delete removes a ticket by ID scoped to the given org.
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// Exists reports whether a ticket with the given ID exists for the given org.
	Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error)
}
