package utils

import "github.com/google/uuid"

// NewID returns a unique connection identifier.
func NewID() string {
	return uuid.NewString()
}
