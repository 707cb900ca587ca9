package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TopicStockMoved is published once per committed journal entry.
	TopicStockMoved = "inventory.stock.moved"

	// TopicItemCreated is published when an item is added to the catalog.
	TopicItemCreated = "inventory.item.created"

	// StockMovedVersion is the current schema version of StockMovedEvent.
	StockMovedVersion = 1

	// ItemCreatedVersion is the current schema version of ItemCreatedEvent.
	ItemCreatedVersion = 1
)

// StockMovedEvent is written to the outbox in the same transaction as the
// movement it describes. Consumers subscribe via EventBus.Subscribe(ctx, events.TopicStockMoved).
type StockMovedEvent struct {
	EventID             uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version             int       `json:"version"`  // Schema version; increment on breaking changes
	MovementID          int64     `json:"movement_id"`
	ItemID              int64     `json:"item_id"`
	ItemCode            string    `json:"item_code"`
	MovementType        string    `json:"movement_type"`
	SignedQuantity      int       `json:"signed_quantity"`
	QuantityAfter       int       `json:"quantity_after"`
	MinStock            *int      `json:"min_stock,omitempty"`
	AssignmentID        *int64    `json:"assignment_id,omitempty"`
	ResponsiblePersonID int64     `json:"responsible_person_id"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// BelowMinimum reports whether the movement left the item under its threshold.
func (e StockMovedEvent) BelowMinimum() bool {
	return e.MinStock != nil && e.QuantityAfter < *e.MinStock
}

// ItemCreatedEvent is published after a new item is persisted.
type ItemCreatedEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	Version         int       `json:"version"`
	ItemID          int64     `json:"item_id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	IsPPE           bool      `json:"is_ppe"`
	InitialQuantity int       `json:"initial_quantity"`
	OccurredAt      time.Time `json:"occurred_at"`
}
