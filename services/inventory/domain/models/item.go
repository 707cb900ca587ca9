package models

import (
	"fmt"
	"math"
	"time"
)

// InventoryItem is a countable resource held in stock. Quantity is owned by
// the stock coordinator; nothing else writes it after creation.
type InventoryItem struct {
	ID              int64
	Code            ItemCode
	Name            string
	Category        string
	Unit            string
	Quantity        int
	InitialQuantity int
	MinStock        *int
	IsPPE           bool
	ExpiryDate      *time.Time
	CreatedAt       time.Time
}

// NewItemParams carries the catalog attributes of a new item.
type NewItemParams struct {
	Code            string
	Name            string
	Category        string
	Unit            string
	InitialQuantity int
	MinStock        *int
	IsPPE           bool
	ExpiryDate      *time.Time
}

// NewInventoryItem constructs an item whose current quantity equals its initial stock.
// The ID is assigned by the store.
func NewInventoryItem(p NewItemParams) (*InventoryItem, error) {
	code, err := NewItemCode(p.Code)
	if err != nil {
		return nil, err
	}
	if p.InitialQuantity < 0 {
		return nil, fmt.Errorf("initial quantity must not be negative")
	}
	if p.InitialQuantity > math.MaxInt32 {
		return nil, fmt.Errorf("initial quantity must not exceed %d", math.MaxInt32)
	}
	if p.MinStock != nil && (*p.MinStock < 0 || *p.MinStock > math.MaxInt32) {
		return nil, fmt.Errorf("minimum stock must be between 0 and %d", math.MaxInt32)
	}
	return &InventoryItem{
		Code:            code,
		Name:            p.Name,
		Category:        p.Category,
		Unit:            p.Unit,
		Quantity:        p.InitialQuantity,
		InitialQuantity: p.InitialQuantity,
		MinStock:        p.MinStock,
		IsPPE:           p.IsPPE,
		ExpiryDate:      p.ExpiryDate,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// BelowMinimum reports whether quantity has dropped under the configured threshold.
func (i *InventoryItem) BelowMinimum() bool {
	return i.MinStock != nil && i.Quantity < *i.MinStock
}

// ExpiresBefore reports whether the item has an expiry date earlier than t.
func (i *InventoryItem) ExpiresBefore(t time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(t)
}
