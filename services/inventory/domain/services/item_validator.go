package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
)

const maxItemNameLength = 255

// ValidateName enforces the display name rules:
//   - 1..255 characters
//   - no leading or trailing whitespace
//   - no control characters
//   - no consecutive spaces
func ValidateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be empty")
	}
	if len(s) > maxItemNameLength {
		return fmt.Errorf("item name must not exceed %d characters", maxItemNameLength)
	}
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}
	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}
	return nil
}

// ValidateItemForCreation runs the cross-field checks on an item built with
// models.NewInventoryItem before it is persisted. Failures wrap ErrInvalidItem.
func ValidateItemForCreation(item *models.InventoryItem) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", domain.ErrInvalidItem)
	}
	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	if strings.TrimSpace(item.Unit) == "" {
		return fmt.Errorf("%w: unit must be set", domain.ErrInvalidItem)
	}
	if strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("%w: category must be set", domain.ErrInvalidItem)
	}
	if item.Quantity != item.InitialQuantity {
		return fmt.Errorf("%w: new item quantity must equal its initial quantity", domain.ErrInvalidItem)
	}
	return nil
}
