package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/brigade/services/inventory/domain/events"
)

func TestStockMovedEvent_JSONFieldNames(t *testing.T) {
	assignmentID := int64(9)
	minStock := 2
	evt := events.StockMovedEvent{
		EventID:             uuid.New(),
		Version:             events.StockMovedVersion,
		MovementID:          42,
		ItemID:              1,
		ItemCode:            "ERA-HELMET-01",
		MovementType:        "ppe-assignment-out",
		SignedQuantity:      -3,
		QuantityAfter:       2,
		MinStock:            &minStock,
		AssignmentID:        &assignmentID,
		ResponsiblePersonID: 7,
		OccurredAt:          time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{
		"event_id", "version", "movement_id", "item_id", "item_code", "movement_type",
		"signed_quantity", "quantity_after", "min_stock", "assignment_id", "responsible_person_id", "occurred_at",
	} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestStockMovedEvent_OmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(events.StockMovedEvent{ItemID: 1})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	for _, field := range []string{"min_stock", "assignment_id"} {
		if _, ok := raw[field]; ok {
			t.Errorf("field %q must be omitted when nil", field)
		}
	}
}

func TestStockMovedEvent_BelowMinimum(t *testing.T) {
	min := 3
	tests := []struct {
		name  string
		evt   events.StockMovedEvent
		below bool
	}{
		{"no threshold", events.StockMovedEvent{QuantityAfter: 0}, false},
		{"under threshold", events.StockMovedEvent{QuantityAfter: 2, MinStock: &min}, true},
		{"at threshold", events.StockMovedEvent{QuantityAfter: 3, MinStock: &min}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.evt.BelowMinimum(); got != tt.below {
				t.Fatalf("BelowMinimum() = %v, want %v", got, tt.below)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	if events.TopicStockMoved != "inventory.stock.moved" {
		t.Errorf("unexpected topic %q", events.TopicStockMoved)
	}
	if events.TopicItemCreated != "inventory.item.created" {
		t.Errorf("unexpected topic %q", events.TopicItemCreated)
	}
}
