// Package events is the PostgreSQL-backed event bus used for the inventory
// outbox. Messages are written by Watermill's SQL publisher, either inside the
// caller's transaction (NewTxPublisher) or directly (Publish), and consumed by
// subscribers in a consumer group: each message goes to one instance.
//
// Handlers must be idempotent. A failing handler is retried with exponential
// backoff and then Nacked, which makes Watermill redeliver it later.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/brigade/pkg/config"
	"github.com/ghuser/brigade/pkg/logger"
)

const (
	forwarderTopic  = "_forwarder_queue"
	shutdownTimeout = 30 * time.Second
	errBuffer       = 100
)

// Handler processes one delivered message. A nil return acks it.
type Handler func(ctx context.Context, msg *message.Message) error

// Options tunes an EventBus.
type Options struct {
	// ConsumerGroup defaults to "<service>-consumer".
	ConsumerGroup string
	// Forwarder routes published messages through a durable queue drained by
	// StartForwarder, so the target topic only sees committed messages.
	Forwarder bool
}

type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
}

var defaultRetry = retryPolicy{attempts: 3, baseDelay: time.Second}

// EventBus publishes and consumes messages stored in PostgreSQL.
type EventBus struct {
	db         *sql.DB
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	opts       Options
	retry      retryPolicy
	wg         sync.WaitGroup
}

// NewEventBus opens its own connection to cfg.DatabaseURL and creates the
// Watermill tables if needed.
func NewEventBus(cfg *config.Config, log logger.Logger, opts Options) (*EventBus, error) {
	if opts.ConsumerGroup == "" {
		opts.ConsumerGroup = cfg.ServiceName + "-consumer"
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{db: db, log: log, wlog: &slogAdapter{log: log}, opts: opts, retry: defaultRetry}

	pub, err := watermillsql.NewPublisher(db, publisherConfig(true), bus.wlog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	bus.publisher = bus.route(pub)

	bus.subscriber, err = bus.newSubscriber(opts.ConsumerGroup)
	if err != nil {
		_ = bus.publisher.Close()
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

// route wraps pub in a forwarder publisher when forwarding is enabled.
func (b *EventBus) route(pub message.Publisher) message.Publisher {
	if b.opts.Forwarder {
		return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
	}
	return pub
}

func (b *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(b.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, b.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// NewTxPublisher returns a publisher that writes through tx, so messages
// commit or roll back with the caller's data. The tables must already exist.
func (b *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(tx, publisherConfig(false), b.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return b.route(pub), nil
}

// StartForwarder drains the forwarder queue into the target topics until ctx
// is cancelled. It returns once the forwarder is running.
func (b *EventBus) StartForwarder(ctx context.Context) error {
	if !b.opts.Forwarder {
		return fmt.Errorf("events: forwarder not enabled")
	}
	if b.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	sub, err := b.newSubscriber("forwarder-consumer")
	if err != nil {
		return err
	}
	target, err := watermillsql.NewPublisher(b.db, publisherConfig(true), b.wlog)
	if err != nil {
		_ = sub.Close()
		return fmt.Errorf("events: new forwarder target: %w", err)
	}
	fwd, err := forwarder.NewForwarder(sub, target, b.wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = target.Close()
		_ = sub.Close()
		return fmt.Errorf("events: new forwarder: %w", err)
	}
	b.fwd = fwd

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			b.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// Publish sends msgs to topic outside any transaction. Trace context from
// ctx is copied into each message.
func (b *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := b.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe starts delivering topic to handler in a background goroutine.
// Handler contexts carry the publisher's trace. Errors that survive the retries
// are sent on the returned channel, which callers must drain.
func (b *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(errCh)
		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			if err := b.retry.run(msgCtx, msg, handler, b.log); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s: %w", topic, err):
				default:
					b.log.ErrorContext(msgCtx, "events: error channel full", "topic", topic, "error", err)
				}
				continue
			}
			msg.Ack()
		}
	}()
	return errCh, nil
}

func (p retryPolicy) run(ctx context.Context, msg *message.Message, handler Handler, log logger.Logger) error {
	delay := p.baseDelay
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_id", msg.UUID,
			"attempt", attempt,
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
	return fmt.Errorf("events: handler failed after %d attempts: %w", p.attempts, err)
}

// Ping checks the bus connection.
func (b *EventBus) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits for in-flight handlers and
// closes the connection.
func (b *EventBus) Close() error {
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if b.fwd != nil {
		if err := b.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		b.log.Error("events: timed out waiting for handlers")
	}

	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return b.db.Close()
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
