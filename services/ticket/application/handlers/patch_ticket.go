package handlers

import (
	"net/http"

	"github.com/ghuser/ticketdesk/pkg/errhttp"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/ticketdesk/pkg/validator"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
)

// UpdateTicketRequest is the request body for PATCH /tickets/{id}.
// Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string `json:"title,omitempty"       example:"Printer fixed"`
	Description *string `json:"description,omitempty" example:"Replaced the fuser"`
	Status      *string `json:"status,omitempty"      example:"Done"`
} // @name UpdateTicketRequest

// PatchTicketHandler handles PATCH /tickets/{id} requests.
type PatchTicketHandler struct {
	svc *appsvcs.Services
}

// NewPatchTicketHandler returns a PatchTicketHandler backed by the given services.
func NewPatchTicketHandler(svc *appsvcs.Services) *PatchTicketHandler {
	return &PatchTicketHandler{svc: svc}
}

// Execute applies a partial update to a ticket.
//
//	@Summary		Update ticket
//	@Description	Changes the title, description or status of a ticket. Status is matched case-insensitively.
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Ticket ID"	format(uuid)
//	@Param			request	body		UpdateTicketRequest	true	"Fields to change"
//	@Success		200		{object}	TicketResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/tickets/{id} [patch]
func (h *PatchTicketHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}
	id, ok := ticketIDParam(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateTicketRequest](w, r)
	if !ok {
		return
	}

	ticket, err := h.svc.Ticket.Update(r.Context(), orgID, id, appsvcs.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toTicketResponse(ticket))
}
