package models

// Person is the read-only view of a brigade member owned by the personnel directory.
type Person struct {
	ID          int64
	DisplayName string
	Active      bool
}
