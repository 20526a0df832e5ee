package handlers

import (
	"net/http"

	"github.com/ghuser/ticketdesk/pkg/errhttp"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/ticketdesk/pkg/validator"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
)

// CreateTicketRequest is the request body for POST /tickets.
// Title and description rules live in the domain value types so clients
// get their exact messages back.
type CreateTicketRequest struct {
	Title       string `json:"title"       example:"Printer on fire"`
	Description string `json:"description" example:"The printer on the third floor is smoking"`
} // @name CreateTicketRequest

// PostTicketHandler handles POST /tickets requests.
type PostTicketHandler struct {
	svc *appsvcs.Services
}

// NewPostTicketHandler returns a PostTicketHandler backed by the given services.
func NewPostTicketHandler(svc *appsvcs.Services) *PostTicketHandler {
	return &PostTicketHandler{svc: svc}
}

// Execute creates a new ticket.
//
//	@Summary		Create ticket
//	@Description	Opens a new ticket in the ToDo state for the caller's organization
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTicketRequest	true	"Ticket creation request"
//	@Success		201		{object}	TicketResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tickets [post]
func (h *PostTicketHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateTicketRequest](w, r)
	if !ok {
		return
	}

	ticket, err := h.svc.Ticket.Create(r.Context(), orgID, req.Title, req.Description)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toTicketResponse(ticket))
}
