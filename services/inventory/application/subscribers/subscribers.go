// Package subscribers consumes inventory events relayed from the outbox.
// Handlers are idempotent: the bus retries failures and redelivers on nack.
package subscribers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	pkgevents "github.com/ghuser/brigade/pkg/events"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/domain/events"
)

// CacheRefresher is satisfied by services.CatalogService.
type CacheRefresher interface {
	RefreshCache(ctx context.Context, itemID int64) error
}

// Bus is the subscribe side of events.EventBus.
type Bus interface {
	Subscribe(ctx context.Context, topic string, handler pkgevents.Handler) (<-chan error, error)
}

// Subscribers keeps the stock cache in step with committed movements and
// raises low-stock alerts.
type Subscribers struct {
	catalog  CacheRefresher
	log      logger.Logger
	lowStock metric.Int64Counter
}

// New returns Subscribers recording alerts on meter.
func New(catalog CacheRefresher, log logger.Logger, meter metric.Meter) *Subscribers {
	lowStock, _ := meter.Int64Counter("inventory.low_stock_alerts",
		metric.WithDescription("Movements that left an item below its minimum stock"))
	return &Subscribers{catalog: catalog, log: log, lowStock: lowStock}
}

// Register subscribes every handler and drains the error channels in the
// background until ctx is cancelled.
func (s *Subscribers) Register(ctx context.Context, bus Bus) error {
	topics := map[string]pkgevents.Handler{
		events.TopicStockMoved:  s.HandleStockMoved,
		events.TopicItemCreated: s.HandleItemCreated,
	}
	for topic, h := range topics {
		errCh, err := bus.Subscribe(ctx, topic, h)
		if err != nil {
			return err
		}
		go func() {
			for err := range errCh {
				s.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
	}
	s.log.Info("event subscribers registered", "topics", []string{events.TopicStockMoved, events.TopicItemCreated})
	return nil
}

// HandleStockMoved refreshes the item's cached snapshot and warns when the
// movement left it below its minimum.
func (s *Subscribers) HandleStockMoved(ctx context.Context, msg *message.Message) error {
	if !s.supported(ctx, msg, events.StockMovedVersion) {
		return nil
	}
	evt, err := pkgevents.Decode[events.StockMovedEvent](msg)
	if err != nil {
		// A payload that cannot be decoded will never succeed; drop it.
		s.log.ErrorContext(ctx, "inventory: discarding malformed stock event", "message_id", msg.UUID, "error", err)
		return nil
	}

	if err := s.catalog.RefreshCache(ctx, evt.ItemID); err != nil {
		return err
	}

	if evt.BelowMinimum() {
		s.lowStock.Add(ctx, 1, metric.WithAttributes(
			attribute.String("item_code", evt.ItemCode),
			attribute.String("movement_type", evt.MovementType),
		))
		s.log.WarnContext(ctx, "inventory: stock below minimum",
			"item_id", evt.ItemID,
			"code", evt.ItemCode,
			"quantity", evt.QuantityAfter,
			"min_stock", *evt.MinStock,
			"movement_id", evt.MovementID,
		)
	}
	return nil
}

// HandleItemCreated warms the cache for a new item.
func (s *Subscribers) HandleItemCreated(ctx context.Context, msg *message.Message) error {
	if !s.supported(ctx, msg, events.ItemCreatedVersion) {
		return nil
	}
	evt, err := pkgevents.Decode[events.ItemCreatedEvent](msg)
	if err != nil {
		s.log.ErrorContext(ctx, "inventory: discarding malformed item event", "message_id", msg.UUID, "error", err)
		return nil
	}
	if err := s.catalog.RefreshCache(ctx, evt.ItemID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "inventory: cache warmed", "item_id", evt.ItemID, "code", evt.Code)
	return nil
}

// supported rejects events written by a newer producer.
func (s *Subscribers) supported(ctx context.Context, msg *message.Message, known int) bool {
	if v := pkgevents.Version(msg); v > known {
		s.log.WarnContext(ctx, "inventory: skipping event with unknown version",
			"message_id", msg.UUID, "version", v, "known", known)
		return false
	}
	return true
}
