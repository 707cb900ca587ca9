package models

import (
	"fmt"
	"time"
)

// AssignmentStatus is the lifecycle state of a PPE assignment.
type AssignmentStatus string

const (
	StatusAssigned          AssignmentStatus = "Assigned"
	StatusPartiallyReturned AssignmentStatus = "PartiallyReturned"
	StatusFullyReturned     AssignmentStatus = "FullyReturned"
	StatusLost              AssignmentStatus = "Lost"
	StatusDamaged           AssignmentStatus = "Damaged"
)

// ParseAssignmentStatus validates s against the known statuses.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch st := AssignmentStatus(s); st {
	case StatusAssigned, StatusPartiallyReturned, StatusFullyReturned, StatusLost, StatusDamaged:
		return st, nil
	default:
		return "", fmt.Errorf("unknown assignment status %q", s)
	}
}

// Outstanding reports whether the status still counts units as held by the person.
func (s AssignmentStatus) Outstanding() bool {
	return s == StatusAssigned || s == StatusPartiallyReturned
}

// IsWriteOff reports whether s is a terminal loss status.
func (s AssignmentStatus) IsWriteOff() bool {
	return s == StatusLost || s == StatusDamaged
}

// EppAssignment records units of a PPE item handed to a person. Records are
// never deleted; returns and write-offs only move the counters and status.
type EppAssignment struct {
	ID                 int64
	ItemID             int64
	PersonID           int64
	Quantity           int
	ReturnedQuantity   int
	WrittenOffQuantity int
	AssignedDate       time.Time
	Status             AssignmentStatus
	Notes              *string
}

// OutstandingQuantity is the portion not yet returned or written off.
func (a *EppAssignment) OutstandingQuantity() int {
	return a.Quantity - a.ReturnedQuantity - a.WrittenOffQuantity
}

// ApplyReturn records qty returned units and advances the status. The caller
// validates 0 < qty <= OutstandingQuantity.
func (a *EppAssignment) ApplyReturn(qty int) {
	a.ReturnedQuantity += qty
	if a.OutstandingQuantity() == 0 {
		a.Status = StatusFullyReturned
	} else {
		a.Status = StatusPartiallyReturned
	}
}

// ApplyWriteOff closes every outstanding unit with the given loss status and
// returns the number of units written off.
func (a *EppAssignment) ApplyWriteOff(status AssignmentStatus) int {
	n := a.OutstandingQuantity()
	a.WrittenOffQuantity += n
	a.Status = status
	return n
}
