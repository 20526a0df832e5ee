package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/ticketdesk/pkg/errhttp"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/ticketdesk/pkg/validator"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
	"github.com/ghuser/ticketdesk/services/ticket/domain/repositories"
)

const defaultPageSize = 20

// ListTicketsQuery holds the pagination query parameters.
type ListTicketsQuery struct {
	Limit  int `json:"limit"  validate:"gte=1,lte=100"`
	Offset int `json:"offset" validate:"gte=0"`
}

// ListTicketsResponse is a page of tickets.
type ListTicketsResponse struct {
	Items  []TicketResponse `json:"items"`
	Total  int              `json:"total"  example:"42"`
	Limit  int              `json:"limit"  example:"20"`
	Offset int              `json:"offset" example:"0"`
} // @name ListTicketsResponse

// ListTicketsHandler handles GET /tickets requests.
type ListTicketsHandler struct {
	svc *appsvcs.Services
}

// NewListTicketsHandler returns a ListTicketsHandler backed by the given services.
func NewListTicketsHandler(svc *appsvcs.Services) *ListTicketsHandler {
	return &ListTicketsHandler{svc: svc}
}

// Execute lists the caller's tickets, newest first.
//
//	@Summary	List tickets
//	@Tags		tickets
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (1-100)"	default(20)
//	@Param		offset	query		int	false	"Items to skip"		default(0)
//	@Success	200		{object}	ListTicketsResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/tickets [get]
func (h *ListTicketsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	q := ListTicketsQuery{Limit: defaultPageSize}
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.JSON(w, http.StatusBadRequest, ErrorResponse{Error: name + " must be an integer"})
			return
		}
		*dst = n
	}
	if err := pkgvalidator.Validate(&q); err != nil {
		pkgvalidator.WriteValidationError(w, err)
		return
	}

	tickets, total, err := h.svc.Ticket.List(r.Context(), orgID, repositories.QueryOpts{
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	items := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		items[i] = toTicketResponse(t)
	}
	httpx.JSON(w, http.StatusOK, ListTicketsResponse{
		Items:  items,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}
