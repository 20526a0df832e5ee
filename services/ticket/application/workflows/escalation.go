// Package workflows holds the Temporal workflows and activities of the ticket context.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/ticketdesk/pkg/events"
	ticketdomain "github.com/ghuser/ticketdesk/services/ticket/domain"
	domainevents "github.com/ghuser/ticketdesk/services/ticket/domain/events"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
)

// EscalationWorkflowName is the registered name of EscalateStaleTicket.
const EscalationWorkflowName = "EscalateStaleTicket"

// EscalationInput identifies the ticket to watch and how long it may stay in ToDo.
type EscalationInput struct {
	TicketID uuid.UUID     `json:"ticket_id"`
	OrgID    uuid.UUID     `json:"org_id"`
	After    time.Duration `json:"after"`
}

// TicketStatusResult is returned by LoadTicketStatus. Found is false when the
// ticket was deleted before the timer fired.
type TicketStatusResult struct {
	Found  bool   `json:"found"`
	Status string `json:"status"`
}

// EscalateStaleTicket sleeps for in.After and then escalates the ticket if it
// is still in ToDo. It returns true when an escalation event was published.
func EscalateStaleTicket(ctx workflow.Context, in EscalationInput) (bool, error) {
	if err := workflow.Sleep(ctx, in.After); err != nil {
		return false, err
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	})

	var a *Activities
	var status TicketStatusResult
	if err := workflow.ExecuteActivity(ctx, a.LoadTicketStatus, in).Get(ctx, &status); err != nil {
		return false, fmt.Errorf("load ticket status: %w", err)
	}
	if !status.Found || status.Status != models.StatusToDo.String() {
		workflow.GetLogger(ctx).Info("ticket no longer needs escalation",
			"ticket_id", in.TicketID, "found", status.Found, "status", status.Status)
		return false, nil
	}

	if err := workflow.ExecuteActivity(ctx, a.PublishEscalation, in).Get(ctx, nil); err != nil {
		return false, fmt.Errorf("publish escalation: %w", err)
	}
	return true, nil
}

// TicketReader is the slice of the repository the activities need.
type TicketReader interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Ticket, error)
}

// Publisher is satisfied by *events.EventBus.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// Activities are the side-effecting steps of EscalateStaleTicket.
type Activities struct {
	Tickets   TicketReader
	Publisher Publisher
}

// LoadTicketStatus reads the current status of the ticket.
func (a *Activities) LoadTicketStatus(ctx context.Context, in EscalationInput) (TicketStatusResult, error) {
	ticket, err := a.Tickets.GetByID(ctx, in.OrgID, in.TicketID)
	if errors.Is(err, ticketdomain.ErrTicketNotFound) {
		return TicketStatusResult{Found: false}, nil
	}
	if err != nil {
		return TicketStatusResult{}, err
	}
	return TicketStatusResult{Found: true, Status: ticket.Status.String()}, nil
}

// PublishEscalation emits ticket.escalated.
func (a *Activities) PublishEscalation(ctx context.Context, in EscalationInput) error {
	event := domainevents.TicketEscalatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		TicketID:   in.TicketID,
		OrgID:      in.OrgID,
		StaleFor:   in.After,
		OccurredAt: time.Now().UTC(),
	}
	msg, err := events.NewMessage(event.EventID.String(), event.Version, event)
	if err != nil {
		return temporal.NewNonRetryableApplicationError("encode escalation event", "EncodeError", err)
	}
	if err := a.Publisher.Publish(ctx, domainevents.TopicTicketEscalated, msg); err != nil {
		return err
	}
	activity.GetLogger(ctx).Info("ticket escalated", "ticket_id", in.TicketID, "org_id", in.OrgID)
	return nil
}

// Register adds the escalation workflow and its activities to w.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflowWithOptions(EscalateStaleTicket, workflow.RegisterOptions{Name: EscalationWorkflowName})
	w.RegisterActivity(acts)
}

// Starter is satisfied by client.Client.
type Starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// EscalationWorkflowID is stable per ticket, so a redelivered ticket.created
// event attaches to the running workflow instead of starting a second one.
func EscalationWorkflowID(ticketID uuid.UUID) string {
	return "ticket-escalation-" + ticketID.String()
}

// StartEscalation schedules EscalateStaleTicket for a ticket on taskQueue.
func StartEscalation(ctx context.Context, c Starter, taskQueue string, in EscalationInput) (client.WorkflowRun, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        EscalationWorkflowID(in.TicketID),
		TaskQueue: taskQueue,
	}, EscalationWorkflowName, in)
	if err != nil {
		return nil, fmt.Errorf("start escalation workflow: %w", err)
	}
	return run, nil
}
