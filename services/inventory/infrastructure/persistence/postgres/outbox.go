package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/brigade/pkg/events"
	domainevents "github.com/ghuser/brigade/services/inventory/domain/events"
)

// Outbox implements repositories.EventOutbox on Watermill's SQL publisher,
// bound to the unit of work's transaction.
type Outbox struct {
	bus *events.EventBus
	tx  *sql.Tx
	pub message.Publisher
}

// Publish writes event to the outbox table inside the transaction.
func (o *Outbox) Publish(ctx context.Context, topic string, event any) error {
	if o.bus == nil {
		return nil
	}
	if o.pub == nil {
		pub, err := o.bus.NewTxPublisher(o.tx)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		o.pub = pub
	}

	eventID, version := envelope(event)
	msg, err := events.NewMessage(ctx, eventID, version, event)
	if err != nil {
		return err
	}
	if err := o.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("outbox publish to %s: %w", topic, err)
	}
	return nil
}

func envelope(event any) (string, int) {
	switch e := event.(type) {
	case domainevents.StockMovedEvent:
		return e.EventID.String(), e.Version
	case domainevents.ItemCreatedEvent:
		return e.EventID.String(), e.Version
	default:
		return "", 1
	}
}
