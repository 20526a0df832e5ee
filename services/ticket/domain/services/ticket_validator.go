// Package services contains stateless domain services for the ticket bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
)

// ValidateTicketForCreation performs cross-field validation on a fully-constructed
// Ticket aggregate before it is persisted. Title and description constraints
// are already guaranteed by their constructors; this checks the aggregate as a whole.
func ValidateTicketForCreation(ticket *models.Ticket) error {
	if err := validateIdentity(ticket); err != nil {
		return err
	}

	if ticket.Status != models.StatusToDo {
		return fmt.Errorf("new ticket must start in %s, got %q", models.StatusToDo, ticket.Status)
	}

	return nil
}

// ValidateTicketForUpdate checks an existing Ticket after a mutation.
func ValidateTicketForUpdate(ticket *models.Ticket) error {
	if err := validateIdentity(ticket); err != nil {
		return err
	}

	if !ticket.Status.IsValid() {
		return fmt.Errorf("unknown status %q", ticket.Status)
	}

	if ticket.UpdatedAt.Before(ticket.CreatedAt) {
		return fmt.Errorf("updated_at must not precede created_at")
	}

	return nil
}

func validateIdentity(ticket *models.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket cannot be nil")
	}

	if ticket.Title.IsZero() {
		return fmt.Errorf("title must be set")
	}

	if ticket.OrgID == uuid.Nil {
		return fmt.Errorf("org_id must be set")
	}

	if ticket.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	return nil
}
