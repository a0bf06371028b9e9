// Package uid generates identifiers for events and correlation IDs.
package uid

import "github.com/google/uuid"

// NewV7 returns a time ordered UUID. It degrades to a random v4 when the
// v7 clock sequence cannot be read.
func NewV7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
