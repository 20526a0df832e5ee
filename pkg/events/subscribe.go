package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/ticketdesk/pkg/logger"
)

const errChanSize = 100

// Handler processes one event. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// Subscribe consumes topic in a background goroutine. Each message gets a
// context carrying the publisher's trace. A handler error is retried per the
// bus retry policy; once attempts run out the message is nacked and the
// error is sent on the returned channel (buffered, dropped when full).
// Callers must drain the channel. Close waits for in-flight handlers.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	msgs, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChanSize)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)
		for msg := range msgs {
			if err := q.deliver(ctx, topic, msg, handler); err != nil {
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(ctx, "events: error channel full, dropping error", "topic", topic, "error", err)
				}
			}
		}
	}()
	return errCh, nil
}

func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler Handler) error {
	msgCtx := extractTraceContext(ctx, msg)
	err := q.retry.run(msgCtx, msg, handler, q.log)

	outcome := "ack"
	if err != nil {
		outcome = "nack"
		msg.Nack()
	} else {
		msg.Ack()
	}
	if q.handled != nil {
		q.handled.Add(msgCtx, 1, metric.WithAttributes(
			attribute.String("topic", topic),
			attribute.String("outcome", outcome),
		))
	}
	return err
}

// retryPolicy retries a handler with doubling delays.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
}

func newRetryPolicy(attempts int, baseDelay time.Duration) retryPolicy {
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}
	return retryPolicy{attempts: attempts, baseDelay: baseDelay}
}

// run returns nil on the first success, ctx.Err() if cancelled between
// attempts, and otherwise the last handler error.
func (p retryPolicy) run(ctx context.Context, msg *message.Message, handler Handler, log logger.Logger) error {
	delay := p.baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.attempts {
			return fmt.Errorf("events: handler failed after %d attempts: %w", p.attempts, err)
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_attempts", p.attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
