// Package workflow implements the scheduling state machine: extraction,
// validation, bounded repair, clarification, review and conflict checking.
// The engine never books anything and never talks to the user; it returns
// the final state and leaves those decisions to the caller.
package workflow

import (
	"time"

	"github.com/spboyer/booker/internal/models"
)

// State is the schedule state for one turn.
type State struct {
	UserText string
	Now      time.Time
	TZ       *time.Location

	// Draft is the raw, unvalidated structure from extraction or repair.
	Draft map[string]any

	// Meeting is set only by a successful validation; Errors is then empty.
	Meeting *models.Meeting
	Errors  []models.FieldError

	// Attempts counts repair calls in this turn.
	Attempts int

	Conflict *string

	// Clarify is stale when Meeting is non-nil.
	Clarify *string

	Review *models.Review
}

// NewState builds a fresh turn state. A nil tz means UTC.
func NewState(userText string, now time.Time, tz *time.Location) State {
	if tz == nil {
		tz = time.UTC
	}
	return State{
		UserText: userText,
		Now:      now,
		TZ:       tz,
	}
}

// RetryWith returns the state for the next clarify round: answer is appended
// to the user text and every transient field is reset. Now and TZ are kept so
// relative expressions resolve against the same anchor.
func (s State) RetryWith(answer string) State {
	return NewState(s.UserText+" "+answer, s.Now, s.TZ)
}

// NeedsClarification reports whether the engine stopped to ask the user
// something. A clarify question next to a meeting is stale and ignored.
func (s State) NeedsClarification() bool {
	return s.Clarify != nil && s.Meeting == nil
}

// ErrorStrings renders Errors for prompts and display.
func (s State) ErrorStrings() []string {
	return models.FieldErrorStrings(s.Errors)
}
