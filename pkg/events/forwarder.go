package events

import (
	"context"
	"errors"
	"fmt"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
)

var (
	errNotForwarder     = errors.New("events: bus was not created with a forwarder")
	errForwarderStarted = errors.New("events: forwarder already started")
)

// StartForwarder runs the outbox relay until ctx is done and returns once it
// is consuming. It may be called once, on a bus from NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return errNotForwarder
	}
	if q.fwd != nil {
		return errForwarderStarted
	}

	outboxSub, err := newSQLSubscriber(q.db, "ticketdesk-outbox-relay", q.log)
	if err != nil {
		return err
	}
	targetPub, err := watermillsql.NewPublisher(q.db, publisherConfig(true), newLogAdapter(q.log))
	if err != nil {
		_ = outboxSub.Close()
		return fmt.Errorf("events: new relay publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(outboxSub, targetPub, newLogAdapter(q.log), forwarder.Config{
		ForwarderTopic: outboxTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = outboxSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: outbox relay started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: outbox relay stopped", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: outbox relay stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for outbox relay: %w", ctx.Err())
	}
}
