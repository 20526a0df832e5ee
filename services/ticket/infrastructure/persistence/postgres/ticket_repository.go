package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/ticketdesk/pkg/database"
	"github.com/ghuser/ticketdesk/pkg/events"
	ticketdomain "github.com/ghuser/ticketdesk/services/ticket/domain"
	domainevents "github.com/ghuser/ticketdesk/services/ticket/domain/events"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
	"github.com/ghuser/ticketdesk/services/ticket/domain/repositories"
	"github.com/ghuser/ticketdesk/services/ticket/infrastructure/persistence/postgres/db"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	// TEXT columns reject NUL and bytes outside the server encoding. The
	// value types allow any code point, so these are client input errors.
	pgCharacterNotInRepertoire = "22021"
	pgUntranslatableCharacter  = "22P05"

	eventVersion = 1
)

// TicketRepository implements repositories.TicketRepository against PostgreSQL.
type TicketRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewTicketRepository returns a TicketRepository backed by the given connection pool
// and event bus. The bus is used to publish ticket events in the same transaction
// as the write.
func NewTicketRepository(database *database.Database, bus *events.EventBus) *TicketRepository {
	return &TicketRepository{db: database, bus: bus}
}

var _ repositories.TicketRepository = (*TicketRepository)(nil)

// Save persists a new Ticket and publishes a TicketCreatedEvent within the same transaction.
// Returns ErrTicketAlreadyExists on unique constraint violations.
func (r *TicketRepository) Save(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertTicket(ctx, db.InsertTicketParams{
			ID:          ticket.ID,
			OrgID:       ticket.OrgID,
			Title:       ticket.Title.String(),
			Description: ticket.Description.String(),
			Status:      ticket.Status.String(),
			CreatedAt:   ticket.CreatedAt,
			UpdatedAt:   ticket.UpdatedAt,
		}); err != nil {
			return mapWriteError("insert ticket", err)
		}

		if r.bus == nil {
			return nil
		}
		event := domainevents.TicketCreatedEvent{
			EventID:     uuid.New(),
			Version:     eventVersion,
			TicketID:    ticket.ID,
			OrgID:       ticket.OrgID,
			Title:       ticket.Title.String(),
			Description: ticket.Description.String(),
			Status:      ticket.Status.String(),
			OccurredAt:  ticket.CreatedAt,
		}
		if err := r.publish(ctx, tx, domainevents.TopicTicketCreated, event.EventID, event); err != nil {
			return fmt.Errorf("publish ticket created: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a Ticket by ID scoped to the given org. Returns ErrTicketNotFound if not found.
func (r *TicketRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Ticket, error) {
	q := db.New(r.db.DB())
	row, err := q.GetTicketByID(ctx, db.GetTicketByIDParams{
		ID:    id,
		OrgID: orgID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticketdomain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("query ticket: %w", err)
	}
	return rowToTicket(row)
}

// FindByOrgID retrieves a paginated list of tickets and total count for the given org.
func (r *TicketRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Ticket, int, error) {
	q := db.New(r.db.DB())

	rows, err := q.FindTicketsByOrgID(ctx, db.FindTicketsByOrgIDParams{
		OrgID:  orgID,
		Limit:  int32(opts.Limit),  //nolint:gosec // bounded by the handler
		Offset: int32(opts.Offset), //nolint:gosec // bounded by the handler
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query tickets: %w", err)
	}

	total, err := q.CountTicketsByOrgID(ctx, orgID)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	tickets := make([]*models.Ticket, len(rows))
	for i, row := range rows {
		t, err := rowToTicket(row)
		if err != nil {
			return nil, 0, err
		}
		tickets[i] = t
	}
	return tickets, int(total), nil
}

// Update persists title, description and status changes and publishes a
// TicketUpdatedEvent in the same transaction. Returns ErrTicketNotFound when
// no row matched.
func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		n, err := q.UpdateTicket(ctx, db.UpdateTicketParams{
			ID:          ticket.ID,
			OrgID:       ticket.OrgID,
			Title:       ticket.Title.String(),
			Description: ticket.Description.String(),
			Status:      ticket.Status.String(),
			UpdatedAt:   ticket.UpdatedAt,
		})
		if err != nil {
			return mapWriteError("update ticket", err)
		}
		if n == 0 {
			return ticketdomain.ErrTicketNotFound
		}

		if r.bus == nil {
			return nil
		}
		event := domainevents.TicketUpdatedEvent{
			EventID:     uuid.New(),
			Version:     eventVersion,
			TicketID:    ticket.ID,
			OrgID:       ticket.OrgID,
			Title:       ticket.Title.String(),
			Description: ticket.Description.String(),
			Status:      ticket.Status.String(),
			CreatedAt:   ticket.CreatedAt,
			OccurredAt:  ticket.UpdatedAt,
		}
		if err := r.publish(ctx, tx, domainevents.TopicTicketUpdated, event.EventID, event); err != nil {
			return fmt.Errorf("publish ticket updated: %w", err)
		}
		return nil
	})
}

// Delete removes a ticket by ID scoped to the given org.
func (r *TicketRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	q := db.New(r.db.DB())
	if err := q.DeleteTicket(ctx, db.DeleteTicketParams{
		ID:    id,
		OrgID: orgID,
	}); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// Exists reports whether a ticket with the given ID exists for the given org.
func (r *TicketRepository) Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	q := db.New(r.db.DB())
	exists, err := q.TicketExists(ctx, db.TicketExistsParams{
		ID:    id,
		OrgID: orgID,
	})
	if err != nil {
		return false, fmt.Errorf("check ticket exists: %w", err)
	}
	return exists, nil
}

func (r *TicketRepository) publish(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, payload any) error {
	msg, err := events.NewMessage(eventID.String(), eventVersion, payload)
	if err != nil {
		return err
	}
	return r.bus.PublishTx(ctx, tx, topic, msg)
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ticketdomain.ErrTicketAlreadyExists
		case pgCheckViolation:
			return fmt.Errorf("%w: %s", ticketdomain.ErrInvalidTicket, pgErr.ConstraintName)
		case pgCharacterNotInRepertoire, pgUntranslatableCharacter:
			return fmt.Errorf("%w: text contains characters that cannot be stored", ticketdomain.ErrInvalidTicket)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// errCorruptRow marks a stored ticket that no longer passes validation.
// errhttp maps it to 500.
var errCorruptRow = errors.New("stored ticket failed validation")

// rowToTicket maps a db.TicketTicket to a domain models.Ticket. Stored text is
// re-validated so a row that violates the value-object rules surfaces as an
// error instead of an invalid aggregate.
func rowToTicket(row db.TicketTicket) (*models.Ticket, error) {
	title, err := models.NewTicketTitle(row.Title)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w: title: %w", row.ID, errCorruptRow, err)
	}
	description, err := models.NewTicketDescription(row.Description)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w: description: %w", row.ID, errCorruptRow, err)
	}
	status, err := models.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w: status: %w", row.ID, errCorruptRow, err)
	}

	return &models.Ticket{
		ID:          row.ID,
		OrgID:       row.OrgID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
