// Package events is the ticket event bus: Watermill over PostgreSQL.
//
// Subscribers in one consumer group (<service>-consumer) share the load, so
// each message reaches one worker instance. Handlers must be idempotent;
// delivery is at least once and a failing handler is retried with
// exponential backoff before the message is nacked.
//
// The API process publishes through the forwarder: events are written to an
// outbox topic in the same transaction as the ticket row and relayed to their
// real topic by a background daemon. The worker publishes directly.
//
// OTel trace context travels in message metadata, so a span started by an
// HTTP request continues in the worker that handles its event.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/ticketdesk/pkg/config"
	"github.com/ghuser/ticketdesk/pkg/logger"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	shutdownTimeout    = 30 * time.Second
	outboxTopic        = "_ticketdesk_outbox"
	meterName          = "github.com/ghuser/ticketdesk/pkg/events"
)

// EventBus publishes and consumes domain events through Postgres tables
// managed by watermill-sql (FOR UPDATE SKIP LOCKED delivery).
type EventBus struct {
	publisher     message.Publisher
	subscriber    *watermillsql.Subscriber
	fwd           *forwarder.Forwarder
	db            *sql.DB
	log           logger.Logger
	consumerGroup string
	retry         retryPolicy
	handled       metric.Int64Counter
	wg            sync.WaitGroup
	useForwarder  bool
}

// NewEventBus returns a bus that publishes straight to the target topic.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder returns a bus whose publishes go through the
// outbox topic. Call StartForwarder before relying on delivery.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DefinitionDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{
		db:            db,
		log:           log,
		consumerGroup: cfg.ServiceName + "-consumer",
		retry:         newRetryPolicy(cfg.EventMaxAttempts, cfg.EventRetryBaseDelay),
		useForwarder:  useForwarder,
	}
	// Instrument construction only fails on invalid names.
	bus.handled, _ = otel.Meter(meterName).Int64Counter("events.handled",
		metric.WithDescription("Event deliveries by topic and outcome"))

	pub, err := watermillsql.NewPublisher(db, publisherConfig(true), newLogAdapter(log))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	bus.publisher = bus.wrapOutbox(pub)

	bus.subscriber, err = newSQLSubscriber(db, bus.consumerGroup, log)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}
	return bus, nil
}

func publisherConfig(initSchema bool) watermillsql.PublisherConfig {
	return watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: initSchema,
	}
}

func newSQLSubscriber(db *sql.DB, group string, log logger.Logger) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, newLogAdapter(log))
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// wrapOutbox envelopes messages for the outbox topic in forwarder mode.
func (q *EventBus) wrapOutbox(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic})
}

// DB returns the bus connection pool.
func (q *EventBus) DB() *sql.DB {
	return q.db
}

// Ping is the /health check for the bus database.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, stops the forwarder, waits up to 30s for in-flight
// handlers, then closes the publisher and the database.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}
