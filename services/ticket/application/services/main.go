package services

import (
	"github.com/ghuser/ticketdesk/pkg/app"
	"github.com/ghuser/ticketdesk/pkg/cache"
	"github.com/ghuser/ticketdesk/services/ticket/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Ticket *TicketService
}

// New wires all ticket application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewTicketRepository(a.Db, a.EventBus)

	var readModel TicketReadModel
	if a.Redis != nil {
		readModel = cache.NewTicketCache(a.Redis)
	}

	return &Services{
		Ticket: NewTicketService(repo, readModel, a.Logger.With("component", "ticket_service")),
	}
}
