package models

import (
	"fmt"
	"strings"
)

// ItemCode is a value object for the unique, human-readable item code
// (e.g. "ERA-HELMET-01"). Codes are stored upper-case.
type ItemCode string

const (
	minItemCodeLength = 1
	maxItemCodeLength = 64
)

// NewItemCode normalizes s and returns an error if constraints are violated.
func NewItemCode(s string) (ItemCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < minItemCodeLength {
		return "", fmt.Errorf("item code must be at least %d character", minItemCodeLength)
	}
	if len(s) > maxItemCodeLength {
		return "", fmt.Errorf("item code must not exceed %d characters", maxItemCodeLength)
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.') {
			return "", fmt.Errorf("item code contains invalid character %q", r)
		}
	}
	return ItemCode(s), nil
}

// String returns the underlying string value.
func (c ItemCode) String() string {
	return string(c)
}
