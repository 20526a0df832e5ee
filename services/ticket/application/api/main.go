package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ticketdesk/pkg/app"
	"github.com/ghuser/ticketdesk/pkg/auth"
	"github.com/ghuser/ticketdesk/services/ticket/application/handlers"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
)

// TicketRoutes registers ticket endpoints on the provided chi router.
func TicketRoutes(r chi.Router, a *app.Application) {
	Mount(r, a, appsvcs.New(a))
}

// Mount registers ticket endpoints backed by svcs. Routes require a session
// when a.SessionStore is set.
func Mount(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	r.Group(func(r chi.Router) {
		if a.SessionStore != nil {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
		}
		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", handlers.NewPostTicketHandler(svcs).Execute)
			r.Get("/", handlers.NewListTicketsHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetTicketHandler(svcs).Execute)
			r.Patch("/{id}", handlers.NewPatchTicketHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteTicketHandler(svcs).Execute)
		})
	})
}
