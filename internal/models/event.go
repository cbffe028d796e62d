package models

import "time"

// Event is a dated entry on a group's calendar (flight, check-in, ...).
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// GroupID is the group whose calendar this event belongs to.
	GroupID string

	// Name is the display label of the event.
	Name string

	// Date is when the event happens. Date precision only.
	Date time.Time

	// Location is where the event happens. Optional.
	Location string
}
