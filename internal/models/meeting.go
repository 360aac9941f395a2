package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency attached to a meeting request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a draft value onto a Priority. An empty value is
// treated as [PriorityNormal].
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Attendee is a meeting participant. Email is optional.
type Attendee struct {
	Name  string
	Email string
}

// Meeting is the normalized domain object produced by a successful validation.
// It is created once and never mutated afterwards; a later validation
// produces a new Meeting.
type Meeting struct {
	Title string
	// StartsAt is absolute, resolved into the request time zone and truncated
	// to the minute.
	StartsAt    time.Time
	DurationMin int
	Location    string
	Attendees   []Attendee
	Priority    Priority
}

// EndsAt returns StartsAt plus the meeting duration.
func (m *Meeting) EndsAt() time.Time {
	return m.StartsAt.Add(time.Duration(m.DurationMin) * time.Minute)
}

// Interval returns the meeting's half-open [start, end) span in UTC.
func (m *Meeting) Interval() (time.Time, time.Time) {
	return m.StartsAt.UTC(), m.EndsAt().UTC()
}

// Review is the human-readable summary shown before booking.
type Review struct {
	Title       string
	When        string
	DurationMin int
	Location    string
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Back-to-back intervals do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
