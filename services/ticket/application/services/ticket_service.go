package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	pkgcache "github.com/ghuser/ticketdesk/pkg/cache"
	"github.com/ghuser/ticketdesk/pkg/logger"
	ticketdomain "github.com/ghuser/ticketdesk/services/ticket/domain"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
	"github.com/ghuser/ticketdesk/services/ticket/domain/repositories"
	domainsvcs "github.com/ghuser/ticketdesk/services/ticket/domain/services"
)

const meterName = "github.com/ghuser/ticketdesk/services/ticket"

// TicketReadModel is the cache port used by TicketService.
// *pkgcache.TicketCache satisfies it. Set must keep a newer entry and refuse
// deleted tickets (see pkgcache.Admits); Delete must leave a tombstone.
type TicketReadModel interface {
	Get(ctx context.Context, orgID, ticketID uuid.UUID) (*pkgcache.CachedTicket, error)
	Set(ctx context.Context, t *pkgcache.CachedTicket) error
	Delete(ctx context.Context, orgID, ticketID uuid.UUID) error
}

// TicketPatch carries the optional fields of a ticket update. Nil fields are left unchanged.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *string
}

func (p TicketPatch) empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// TicketService orchestrates the ticket lifecycle.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads are served from the Redis read model when available.
type TicketService struct {
	repo  repositories.TicketRepository
	cache TicketReadModel
	log   logger.Logger

	created       metric.Int64Counter
	titleRejected metric.Int64Counter
}

// NewTicketService returns a TicketService wired with the given repository and cache.
// cache may be nil, in which case every read goes to the repository.
func NewTicketService(repo repositories.TicketRepository, cache TicketReadModel, log logger.Logger) *TicketService {
	meter := otel.Meter(meterName)
	// Instrument construction only fails on invalid names.
	created, _ := meter.Int64Counter("tickets.created",
		metric.WithDescription("Tickets successfully created"))
	titleRejected, _ := meter.Int64Counter("tickets.title_rejected",
		metric.WithDescription("Ticket titles rejected by validation"))

	return &TicketService{
		repo:          repo,
		cache:         cache,
		log:           log,
		created:       created,
		titleRejected: titleRejected,
	}
}

// Create validates and persists a Ticket. The repository publishes TicketCreatedEvent.
func (s *TicketService) Create(ctx context.Context, orgID uuid.UUID, title, description string) (*models.Ticket, error) {
	ticketTitle, err := s.parseTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	ticketDescription, err := models.NewTicketDescription(description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicketDescription, err)
	}

	ticket, err := models.NewTicket(orgID, ticketTitle, ticketDescription)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if err := domainsvcs.ValidateTicketForCreation(ticket); err != nil {
		return nil, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicket, err)
	}

	if err := s.repo.Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	s.created.Add(ctx, 1)
	s.log.InfoContext(ctx, "ticket created", "ticket_id", ticket.ID, "org_id", orgID)
	return ticket, nil
}

// GetByID retrieves a Ticket using a read-through cache:
//  1. Check Redis first.
//  2. On miss, cache error or an entry that no longer validates, query Postgres.
//  3. Warm the cache asynchronously with the Postgres result.
func (s *TicketService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Ticket, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, orgID, id)
		switch {
		case err == nil:
			ticket, convErr := fromCached(cached)
			if convErr == nil {
				return ticket, nil
			}
			s.log.WarnContext(ctx, "discarding invalid cached ticket", "ticket_id", id, "error", convErr)
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "ticket cache read failed", "ticket_id", id, "error", err)
		}
	}

	ticket, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if s.cache != nil {
		entry := toCached(ticket)
		go func() {
			if err := s.cache.Set(context.Background(), entry); err != nil {
				s.log.Warn("ticket cache warm failed", "ticket_id", entry.ID, "error", err)
			}
		}()
	}

	return ticket, nil
}

// List returns a paginated slice of tickets for the org plus total count.
func (s *TicketService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Ticket, int, error) {
	tickets, total, err := s.repo.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, total, nil
}

// Update applies patch to an existing ticket. Every supplied field is validated
// before anything is changed, so a rejected patch leaves the ticket untouched.
func (s *TicketService) Update(ctx context.Context, orgID, id uuid.UUID, patch TicketPatch) (*models.Ticket, error) {
	if patch.empty() {
		return nil, fmt.Errorf("%w: no fields to update", ticketdomain.ErrInvalidTicket)
	}

	var (
		title       *models.TicketTitle
		description *models.TicketDescription
		status      *models.Status
	)
	if patch.Title != nil {
		t, err := s.parseTitle(ctx, *patch.Title)
		if err != nil {
			return nil, err
		}
		title = &t
	}
	if patch.Description != nil {
		d, err := models.NewTicketDescription(*patch.Description)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicketDescription, err)
		}
		description = &d
	}
	if patch.Status != nil {
		st, err := models.ParseStatus(*patch.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicketStatus, err)
		}
		status = &st
	}

	ticket, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if title != nil {
		ticket.Retitle(*title)
	}
	if description != nil {
		ticket.Redescribe(*description)
	}
	if status != nil {
		ticket.MoveTo(*status)
	}

	if err := domainsvcs.ValidateTicketForUpdate(ticket); err != nil {
		return nil, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicket, err)
	}

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	s.refresh(ctx, ticket)
	return ticket, nil
}

// Delete removes a ticket by ID scoped to the given org.
// Returns ErrTicketNotFound if no matching ticket exists.
func (s *TicketService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("check ticket: %w", err)
	}
	if !exists {
		return ticketdomain.ErrTicketNotFound
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	s.forget(ctx, orgID, id)
	return nil
}

func (s *TicketService) parseTitle(ctx context.Context, raw string) (models.TicketTitle, error) {
	title, err := models.NewTicketTitle(raw)
	if err != nil {
		s.titleRejected.Add(ctx, 1)
		return models.TicketTitle{}, fmt.Errorf("%w: %w", ticketdomain.ErrInvalidTicketTitle, err)
	}
	return title, nil
}

// refresh stores the updated snapshot so older snapshots still in flight
// are refused. If the write fails the entry is tombstoned instead, which
// sends reads to the repository until it expires.
func (s *TicketService) refresh(ctx context.Context, ticket *models.Ticket) {
	if s.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.cache.Set(ctx, toCached(ticket)); err != nil {
		s.log.WarnContext(ctx, "ticket cache refresh failed", "ticket_id", ticket.ID, "error", err)
		s.forget(ctx, ticket.OrgID, ticket.ID)
	}
}

func (s *TicketService) forget(ctx context.Context, orgID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), orgID, id); err != nil {
		s.log.WarnContext(ctx, "ticket cache evict failed", "ticket_id", id, "error", err)
	}
}

func toCached(t *models.Ticket) *pkgcache.CachedTicket {
	return &pkgcache.CachedTicket{
		ID:          t.ID,
		OrgID:       t.OrgID,
		Title:       t.Title.String(),
		Description: t.Description.String(),
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// fromCached rebuilds a Ticket from the read model through the validating
// constructors, so a stale or tampered entry is rejected rather than trusted.
func fromCached(c *pkgcache.CachedTicket) (*models.Ticket, error) {
	title, err := models.NewTicketTitle(c.Title)
	if err != nil {
		return nil, err
	}
	description, err := models.NewTicketDescription(c.Description)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(c.Status)
	if err != nil {
		return nil, err
	}
	return &models.Ticket{
		ID:          c.ID,
		OrgID:       c.OrgID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
