package models

import (
	"fmt"
	"time"
)

// MovementType tags a journal entry with the reason stock changed.
type MovementType string

const (
	MovementPurchaseIn         MovementType = "purchase-in"
	MovementUsageOut           MovementType = "usage-out"
	MovementPositiveAdjustment MovementType = "positive-adjustment"
	MovementNegativeAdjustment MovementType = "negative-adjustment"
	MovementPPEAssignmentOut   MovementType = "ppe-assignment-out"
	MovementPPEReturnIn        MovementType = "ppe-return-in"
	// MovementPPEWriteOff documents a Lost/Damaged assignment; stock is unchanged.
	MovementPPEWriteOff MovementType = "ppe-write-off"
)

// ParseMovementType validates s against the known movement types.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementPurchaseIn, MovementUsageOut, MovementPositiveAdjustment, MovementNegativeAdjustment,
		MovementPPEAssignmentOut, MovementPPEReturnIn, MovementPPEWriteOff:
		return t, nil
	default:
		return "", fmt.Errorf("unknown movement type %q", s)
	}
}

// IsPPE reports whether the movement belongs to the assignment flow.
func (t MovementType) IsPPE() bool {
	return t == MovementPPEAssignmentOut || t == MovementPPEReturnIn || t == MovementPPEWriteOff
}

// ValidDelta reports whether signed is consistent with the direction of t.
func (t MovementType) ValidDelta(signed int) bool {
	switch t {
	case MovementPurchaseIn, MovementPositiveAdjustment, MovementPPEReturnIn:
		return signed > 0
	case MovementUsageOut, MovementNegativeAdjustment, MovementPPEAssignmentOut:
		return signed < 0
	case MovementPPEWriteOff:
		return signed == 0
	default:
		return false
	}
}

// InventoryMovement is an immutable journal entry. IDs increase strictly with
// creation order.
type InventoryMovement struct {
	ID                  int64
	ItemID              int64
	Type                MovementType
	SignedQuantity      int
	OccurredAt          time.Time
	ResponsiblePersonID int64
	LinkedAssignmentID  *int64
	Notes               *string
}

// NewMovement is the input to MovementJournal.AppendMovement.
type NewMovement struct {
	ItemID              int64
	Type                MovementType
	SignedQuantity      int
	OccurredAt          time.Time
	ResponsiblePersonID int64
	LinkedAssignmentID  *int64
	Notes               *string
}
