package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/ticketdesk/pkg/auth"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
)

// TicketResponse is the JSON representation of a ticket.
type TicketResponse struct {
	ID          uuid.UUID `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	OrgID       uuid.UUID `json:"org_id"      example:"550e8400-e29b-41d4-a716-446655440000"`
	Title       string    `json:"title"       example:"Printer on fire"`
	Description string    `json:"description" example:"The printer on the third floor is smoking"`
	Status      string    `json:"status"      example:"ToDo"`
	CreatedAt   time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at"  example:"2024-01-15T10:30:00Z"`
} // @name TicketResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid ticket title: The title cannot be empty"`
} // @name ErrorResponse

func toTicketResponse(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		OrgID:       t.OrgID,
		Title:       t.Title.String(),
		Description: t.Description.String(),
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// requireOrgID returns the authenticated org, writing a 401 when there is none.
func requireOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID, err := auth.OrgIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return uuid.Nil, false
	}
	return orgID, true
}

// ticketIDParam parses the {id} route parameter, writing a 400 when it is not a UUID.
func ticketIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid ticket id"})
		return uuid.Nil, false
	}
	return id, true
}
