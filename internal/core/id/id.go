// Package id provides identifiers for tour groups, bonus settings and invoices.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all persisted records.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7, falling back to a random UUIDv4.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
