// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/ticketdesk/pkg/httpx"
	ticketdomain "github.com/ghuser/ticketdesk/services/ticket/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors, whose
// message is replaced by the generic status text.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	httpx.JSONError(w, status, msg)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ticketdomain.ErrTicketNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, ticketdomain.ErrTicketAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, ticketdomain.ErrInvalidTicketTitle),
		errors.Is(err, ticketdomain.ErrInvalidTicketDescription),
		errors.Is(err, ticketdomain.ErrInvalidTicketStatus),
		errors.Is(err, ticketdomain.ErrInvalidTicket):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
