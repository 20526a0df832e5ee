// Package subscribers consumes ticket domain events in the worker process.
// Handlers must be idempotent: the event bus retries failed deliveries and
// the outbox forwarder delivers at least once.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	pkgcache "github.com/ghuser/ticketdesk/pkg/cache"
	"github.com/ghuser/ticketdesk/pkg/logger"
	"github.com/ghuser/ticketdesk/pkg/telemetry"
	"github.com/ghuser/ticketdesk/services/ticket/application/workflows"
	domainevents "github.com/ghuser/ticketdesk/services/ticket/domain/events"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
)

// CacheWriter is satisfied by *pkgcache.TicketCache.
type CacheWriter interface {
	Set(ctx context.Context, t *pkgcache.CachedTicket) error
}

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// Handlers holds the dependencies of the ticket event handlers.
// Escalations may be nil, in which case no workflow is started.
type Handlers struct {
	Cache         CacheWriter
	Escalations   workflows.Starter
	TaskQueue     string
	EscalateAfter time.Duration
	Log           logger.Logger
}

// Register subscribes every handler to its topic and drains subscriber
// errors into the log until ctx is cancelled.
func (h *Handlers) Register(ctx context.Context, bus Subscriber) error {
	routes := map[string]func(context.Context, *message.Message) error{
		domainevents.TopicTicketCreated: h.HandleTicketCreated,
		domainevents.TopicTicketUpdated: h.HandleTicketUpdated,
	}

	topics := make([]string, 0, len(routes))
	for topic, handler := range routes {
		errCh, err := bus.Subscribe(ctx, topic, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func() {
			for err := range errCh {
				h.Log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
				telemetry.CaptureError(ctx, err, map[string]string{"topic": topic})
			}
		}()
		topics = append(topics, topic)
	}

	h.Log.Info("event subscribers registered", "topics", topics)
	return nil
}

// HandleTicketCreated warms the read model and, when escalations are
// enabled, schedules the stale-ticket workflow.
func (h *Handlers) HandleTicketCreated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.TicketCreatedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		h.Log.WarnContext(ctx, "dropping undecodable ticket.created", "message_uuid", msg.UUID, "error", err)
		return nil
	}

	h.warm(ctx, &pkgcache.CachedTicket{
		ID:          evt.TicketID,
		OrgID:       evt.OrgID,
		Title:       evt.Title,
		Description: evt.Description,
		Status:      evt.Status,
		CreatedAt:   evt.OccurredAt,
		UpdatedAt:   evt.OccurredAt,
	})

	if h.Escalations == nil {
		return nil
	}
	if _, err := workflows.StartEscalation(ctx, h.Escalations, h.TaskQueue, workflows.EscalationInput{
		TicketID: evt.TicketID,
		OrgID:    evt.OrgID,
		After:    h.EscalateAfter,
	}); err != nil {
		return err
	}
	h.Log.InfoContext(ctx, "escalation scheduled", "ticket_id", evt.TicketID, "after", h.EscalateAfter.String())
	return nil
}

// HandleTicketUpdated refreshes the read model with the new ticket state.
func (h *Handlers) HandleTicketUpdated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.TicketUpdatedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		h.Log.WarnContext(ctx, "dropping undecodable ticket.updated", "message_uuid", msg.UUID, "error", err)
		return nil
	}

	h.warm(ctx, &pkgcache.CachedTicket{
		ID:          evt.TicketID,
		OrgID:       evt.OrgID,
		Title:       evt.Title,
		Description: evt.Description,
		Status:      evt.Status,
		CreatedAt:   evt.CreatedAt,
		UpdatedAt:   evt.OccurredAt,
	})
	return nil
}

// warm writes entry to the cache unless its text no longer validates.
// Cache warming is best-effort; failures are logged, never retried.
func (h *Handlers) warm(ctx context.Context, entry *pkgcache.CachedTicket) {
	if h.Cache == nil {
		return
	}
	if _, err := models.NewTicketTitle(entry.Title); err != nil {
		h.Log.WarnContext(ctx, "not caching ticket with invalid title", "ticket_id", entry.ID, "error", err)
		return
	}
	if err := h.Cache.Set(ctx, entry); err != nil {
		h.Log.WarnContext(ctx, "cache warm failed", "ticket_id", entry.ID, "error", err)
		return
	}
	h.Log.DebugContext(ctx, "cache warmed", "ticket_id", entry.ID, "org_id", entry.OrgID)
}
