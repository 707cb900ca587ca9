package domain

import (
	"errors"
	"fmt"
	"math"
)

// MaxQuantity is the largest stock level, movement size or assignment the
// ledger accepts. Quantities are stored as 32-bit integers.
const MaxQuantity = math.MaxInt32

// Error kinds for the inventory domain. Every error returned by the stock
// ledger matches exactly one of these with errors.Is.
var (
	// ErrNotFound indicates an unknown item, assignment or person id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed request (non-positive quantity, missing date).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates the target is in the wrong state for the operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientStock indicates the requested quantity exceeds available stock.
	// The concrete error is *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStorageFailure indicates the storage layer failed mid-transaction. The
	// transaction was rolled back and the identical request may be retried.
	ErrStorageFailure = errors.New("storage failure")
)

// Specific errors. Each wraps one kind.
var (
	ErrItemNotFound       = fmt.Errorf("item %w", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)
	ErrPersonNotFound     = fmt.Errorf("person %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)

	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	ErrQuantityTooLarge  = fmt.Errorf("%w: quantity must not exceed %d", ErrInvalidInput, MaxQuantity)
	ErrInvalidDate       = fmt.Errorf("%w: date is required", ErrInvalidInput)
	ErrInvalidItem       = fmt.Errorf("%w: item", ErrInvalidInput)
	ErrInvalidStatus     = fmt.Errorf("%w: status", ErrInvalidInput)
	ErrInvalidAdjustment = fmt.Errorf("%w: adjustment must be non-zero", ErrInvalidInput)

	ErrNotPPE               = fmt.Errorf("%w: item is not a PPE item", ErrInvalidState)
	ErrAssignmentClosed     = fmt.Errorf("%w: assignment has no outstanding quantity", ErrInvalidState)
	ErrReturnExceedsHolding = fmt.Errorf("%w: returned quantity exceeds outstanding quantity", ErrInvalidState)
	ErrNegativeQuantity     = fmt.Errorf("%w: quantity cannot be negative", ErrInvalidState)
	ErrItemInUse            = fmt.Errorf("%w: item is referenced by movements or assignments", ErrInvalidState)
	ErrItemAlreadyExists    = fmt.Errorf("%w: item code already exists", ErrInvalidState)
)

// InsufficientStockError reports how much stock was actually available.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, %d available", e.ItemID, e.Requested, e.Available)
}

// Unwrap lets errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsBusinessError reports whether err is a rule violation detected before any
// write, as opposed to a storage failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInsufficientStock)
}

// StorageFailure wraps err as ErrStorageFailure unless it is already a business
// error or a storage failure.
func StorageFailure(err error) error {
	if err == nil || IsBusinessError(err) || errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
