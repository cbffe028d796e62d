package models

import "time"

// Group represents a trip group. It owns a member roster (stored as a
// separate membership relation) and the expenses recorded against it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Jeju 2025").
	Name string

	// Description is free text about the trip.
	Description string

	// StartDate and EndDate bound the trip. Date precision only.
	StartDate time.Time
	EndDate   time.Time

	// Image is the group cover image blob. May be nil.
	Image []byte

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
