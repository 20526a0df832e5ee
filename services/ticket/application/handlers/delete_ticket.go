package handlers

import (
	"net/http"

	"github.com/ghuser/ticketdesk/pkg/errhttp"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
)

// DeleteTicketHandler handles DELETE /tickets/{id} requests.
type DeleteTicketHandler struct {
	svc *appsvcs.Services
}

// NewDeleteTicketHandler returns a DeleteTicketHandler backed by the given services.
func NewDeleteTicketHandler(svc *appsvcs.Services) *DeleteTicketHandler {
	return &DeleteTicketHandler{svc: svc}
}

// Execute deletes a ticket.
//
//	@Summary	Delete ticket
//	@Tags		tickets
//	@Param		id	path	string	true	"Ticket ID"	format(uuid)
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/tickets/{id} [delete]
func (h *DeleteTicketHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := ticketIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Ticket.Delete(r.Context(), orgID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.NoContent(w)
}
