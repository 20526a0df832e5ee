package handlers

import (
	"net/http"

	"github.com/ghuser/ticketdesk/pkg/errhttp"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
)

// GetTicketHandler handles GET /tickets/{id} requests.
type GetTicketHandler struct {
	svc *appsvcs.Services
}

// NewGetTicketHandler returns a GetTicketHandler backed by the given services.
func NewGetTicketHandler(svc *appsvcs.Services) *GetTicketHandler {
	return &GetTicketHandler{svc: svc}
}

// Execute returns a single ticket.
//
//	@Summary	Get ticket
//	@Tags		tickets
//	@Produce	json
//	@Param		id	path		string	true	"Ticket ID"	format(uuid)
//	@Success	200	{object}	TicketResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/tickets/{id} [get]
func (h *GetTicketHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := ticketIDParam(w, r)
	if !ok {
		return
	}

	ticket, err := h.svc.Ticket.GetByID(r.Context(), orgID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toTicketResponse(ticket))
}
