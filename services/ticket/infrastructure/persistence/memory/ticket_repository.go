// Package memory provides an in-process TicketRepository for tests and local runs
// without PostgreSQL. It publishes no events.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	ticketdomain "github.com/ghuser/ticketdesk/services/ticket/domain"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
	"github.com/ghuser/ticketdesk/services/ticket/domain/repositories"
)

// TicketRepository is a mutex-guarded map keyed by ticket ID.
type TicketRepository struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]models.Ticket

	// Err, when set, is returned by every method.
	Err error
}

// NewTicketRepository returns an empty repository.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[uuid.UUID]models.Ticket)}
}

var _ repositories.TicketRepository = (*TicketRepository)(nil)

func (r *TicketRepository) Save(_ context.Context, ticket *models.Ticket) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; ok {
		return ticketdomain.ErrTicketAlreadyExists
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.Ticket, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok || t.OrgID != orgID {
		return nil, ticketdomain.ErrTicketNotFound
	}
	return &t, nil
}

// FindByOrgID orders by CreatedAt descending, matching the SQL adapter.
func (r *TicketRepository) FindByOrgID(_ context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Ticket, int, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	r.mu.RLock()
	var matched []*models.Ticket
	for _, t := range r.tickets {
		if t.OrgID == orgID {
			matched = append(matched, &t)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(opts.Offset, total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *TicketRepository) Update(_ context.Context, ticket *models.Ticket) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tickets[ticket.ID]
	if !ok || existing.OrgID != ticket.OrgID {
		return ticketdomain.ErrTicketNotFound
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepository) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[id]; ok && t.OrgID == orgID {
		delete(r.tickets, id)
	}
	return nil
}

func (r *TicketRepository) Exists(_ context.Context, orgID, id uuid.UUID) (bool, error) {
	if r.Err != nil {
		return false, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	return ok && t.OrgID == orgID, nil
}
