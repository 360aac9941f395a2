package models

import "time"

// Event is a booked calendar record. StartsAt and EndsAt are stored in UTC.
type Event struct {
	ID       int64
	Title    string
	StartsAt time.Time
	EndsAt   time.Time
	Location string

	// Meeting is the validated request the event was booked from.
	Meeting *Meeting
}
