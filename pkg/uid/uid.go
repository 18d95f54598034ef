// Package uid generates request identifiers.
package uid

import "github.com/google/uuid"

// New returns a time-ordered UUIDv7 so ids sort with the access log.
// It falls back to a random v4 if the clock source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsValid reports whether id is a canonical hyphenated UUID.
func IsValid(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
