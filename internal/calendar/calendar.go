// Package calendar is the in-memory event store shared by every schedule
// request in the process.
package calendar

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spboyer/booker/internal/models"
)

var (
	// ErrSlotTaken is returned by CreateEvent when the meeting overlaps a
	// stored event.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNilMeeting is returned by CreateEvent for a nil meeting.
	ErrNilMeeting = errors.New("meeting is nil")
)

const timeLayout = "2006-01-02 15:04"

// InMemory stores events in insertion order. It is safe for concurrent use.
type InMemory struct {
	mu     sync.Mutex
	events []models.Event
	nextID atomic.Int64
}

// NewInMemory returns an empty calendar whose first event id is 1.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// FirstConflict describes the first stored event that overlaps m, or
// returns nil when the slot is free.
func (c *InMemory) FirstConflict(m *models.Meeting) *string {
	if m == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.firstConflictLocked(m)
}

func (c *InMemory) firstConflictLocked(m *models.Meeting) *string {
	start, end := m.Interval()
	for _, ev := range c.events {
		if models.Overlaps(start, end, ev.StartsAt, ev.EndsAt) {
			desc := describe(ev)
			return &desc
		}
	}
	return nil
}

// CreateEvent books m. The overlap check and the insert happen under one
// lock, so two callers can never book the same slot.
func (c *InMemory) CreateEvent(m *models.Meeting) (models.Event, error) {
	if m == nil {
		return models.Event{}, ErrNilMeeting
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if conflict := c.firstConflictLocked(m); conflict != nil {
		return models.Event{}, fmt.Errorf("%w: %s", ErrSlotTaken, *conflict)
	}

	start, end := m.Interval()
	ev := models.Event{
		ID:       c.nextID.Add(1),
		Title:    m.Title,
		StartsAt: start,
		EndsAt:   end,
		Location: m.Location,
		Meeting:  m,
	}
	c.events = append(c.events, ev)
	return ev, nil
}

// ListAll returns every event in stored order.
func (c *InMemory) ListAll() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Event, len(c.events))
	copy(out, c.events)
	return out
}

// List returns the events overlapping [from, to), in stored order.
func (c *InMemory) List(from, to time.Time) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Event
	for _, ev := range c.events {
		if models.Overlaps(from, to, ev.StartsAt, ev.EndsAt) {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns the number of stored events.
func (c *InMemory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func describe(ev models.Event) string {
	return fmt.Sprintf("Conflicts with event #%d %q %s–%s UTC",
		ev.ID, ev.Title, ev.StartsAt.UTC().Format(timeLayout), ev.EndsAt.UTC().Format(timeLayout))
}
