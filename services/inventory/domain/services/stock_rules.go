// Package services contains stateless domain services for the inventory bounded context.
// They check business rules on already-loaded domain types and never touch storage,
// so every rejection happens before a write.
package services

import (
	"time"

	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
)

// ValidateQuantity requires a unit count between 1 and domain.MaxQuantity.
func ValidateQuantity(qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	if qty > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	return nil
}

// CheckCapacity fails with domain.ErrQuantityTooLarge when adding qty units
// would push the item's stock past domain.MaxQuantity.
func CheckCapacity(item *models.InventoryItem, qty int) error {
	if qty > domain.MaxQuantity-item.Quantity {
		return domain.ErrQuantityTooLarge
	}
	return nil
}

// ValidateDate rejects the zero time.
func ValidateDate(d time.Time) error {
	if d.IsZero() {
		return domain.ErrInvalidDate
	}
	return nil
}

// CheckAvailable fails with *domain.InsufficientStockError when qty exceeds stock.
func CheckAvailable(item *models.InventoryItem, qty int) error {
	if item.Quantity < qty {
		return &domain.InsufficientStockError{ItemID: item.ID, Requested: qty, Available: item.Quantity}
	}
	return nil
}

// CheckAssignable validates an assignment of qty units of item.
// Order: quantity, PPE flag, then stock.
func CheckAssignable(item *models.InventoryItem, qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if !item.IsPPE {
		return domain.ErrNotPPE
	}
	return CheckAvailable(item, qty)
}

// CheckReturnable validates returning qty units against what the assignment still holds.
func CheckReturnable(a *models.EppAssignment, qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if !a.Status.Outstanding() || a.OutstandingQuantity() == 0 {
		return domain.ErrAssignmentClosed
	}
	if qty > a.OutstandingQuantity() {
		return domain.ErrReturnExceedsHolding
	}
	return nil
}

// CheckWriteOff validates closing an assignment as Lost or Damaged.
func CheckWriteOff(a *models.EppAssignment, status models.AssignmentStatus) error {
	if !status.IsWriteOff() {
		return domain.ErrInvalidStatus
	}
	if !a.Status.Outstanding() || a.OutstandingQuantity() == 0 {
		return domain.ErrAssignmentClosed
	}
	return nil
}

// AdjustmentType picks the movement type for a signed manual correction.
func AdjustmentType(delta int) (models.MovementType, error) {
	switch {
	case delta > domain.MaxQuantity || delta < -domain.MaxQuantity:
		return "", domain.ErrQuantityTooLarge
	case delta > 0:
		return models.MovementPositiveAdjustment, nil
	case delta < 0:
		return models.MovementNegativeAdjustment, nil
	default:
		return "", domain.ErrInvalidAdjustment
	}
}
