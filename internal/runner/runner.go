// Package runner drives the workflow engine through clarification rounds,
// talks to the user and performs the booking.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spboyer/booker/internal/calendar"
	"github.com/spboyer/booker/internal/models"
	"github.com/spboyer/booker/internal/session"
	"github.com/spboyer/booker/internal/workflow"
)

const (
	// DefaultMaxClarify is the number of clarify round-trips before giving up.
	DefaultMaxClarify = 3

	// MaxErrorLineRunes bounds each error line shown when no meeting could be built.
	MaxErrorLineRunes = 500
)

// Status is the terminal outcome of a schedule request.
type Status string

const (
	StatusBooked                Status = "booked"
	StatusDeclined              Status = "declined"
	StatusConflict              Status = "conflict"
	StatusAborted               Status = "aborted"
	StatusTooManyClarifications Status = "too_many_clarifications"
	StatusNoMeeting             Status = "no_meeting"
)

// Engine runs one workflow turn.
type Engine interface {
	Invoke(ctx context.Context, s workflow.State) (workflow.State, error)
}

// Calendar is the booking side of the calendar resource.
type Calendar interface {
	CreateEvent(m *models.Meeting) (models.Event, error)
	ListAll() []models.Event
}

// Outcome is what Schedule reports back.
type Outcome struct {
	Status    Status
	RequestID string

	// State is the engine result of the last turn.
	State workflow.State

	// Event is set only when Status is StatusBooked.
	Event *models.Event

	// Turns counts engine invocations.
	Turns int
}

// Options configures a [Runner].
type Options struct {
	Engine   Engine
	IO       IO
	Calendar Calendar

	// TZ anchors relative times and is used for display. Nil means UTC.
	TZ *time.Location

	// Now defaults to time.Now.
	Now func() time.Time

	// MaxClarify defaults to DefaultMaxClarify.
	MaxClarify int

	// Trace receives turn, clarify and booking events. Optional.
	Trace session.Logger
}

// Runner is the outer control loop around the workflow engine. It owns the
// decision to book.
type Runner struct {
	engine     Engine
	io         IO
	calendar   Calendar
	tz         *time.Location
	now        func() time.Time
	maxClarify int
	trace      session.Logger
}

// New builds a Runner from opts.
func New(opts Options) *Runner {
	r := &Runner{
		engine:     opts.Engine,
		io:         opts.IO,
		calendar:   opts.Calendar,
		tz:         opts.TZ,
		now:        opts.Now,
		maxClarify: opts.MaxClarify,
		trace:      opts.Trace,
	}
	if r.tz == nil {
		r.tz = time.UTC
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.maxClarify <= 0 {
		r.maxClarify = DefaultMaxClarify
	}
	if r.trace == nil {
		r.trace = session.NopLogger{}
	}
	return r
}

// Schedule handles one free-text booking request end to end. Errors are
// returned only for inference failures, IO failures and broken invariants;
// every other result is reported through Outcome.Status.
func (r *Runner) Schedule(ctx context.Context, text string) (Outcome, error) {
	requestID := uuid.NewString()
	ctx = session.WithRequestID(ctx, requestID)
	logger := slog.With("request_id", requestID)

	out := Outcome{RequestID: requestID}
	state := workflow.NewState(text, r.now().In(r.tz), r.tz)
	clarifications := 0

	for {
		out.Turns++
		r.log(session.NewEvent(session.EventTurnStart, requestID, session.TurnStartData(out.Turns, state.UserText)))
		logger.Debug("Starting turn", "turn", out.Turns, "text", state.UserText)

		result, err := r.engine.Invoke(ctx, state)
		if err != nil {
			r.log(session.NewEvent(session.EventError, requestID, session.ErrorData(err.Error(), map[string]any{"turn": out.Turns})))
			return out, fmt.Errorf("turn %d: %w", out.Turns, err)
		}
		out.State = result
		r.log(session.NewEvent(session.EventTurnComplete, requestID, session.TurnCompleteData(result.Meeting != nil, deref(result.Conflict), deref(result.Clarify))))

		if !result.NeedsClarification() {
			break
		}

		clarifications++
		answer, err := r.io.Ask(ctx, *result.Clarify)
		if err != nil {
			return out, fmt.Errorf("asking for clarification: %w", err)
		}
		r.log(session.NewEvent(session.EventClarify, requestID, session.ClarifyData(*result.Clarify, answer, clarifications)))

		if isAbort(answer) {
			r.io.Info("Aborted by user.")
			out.Status = StatusAborted
			return out, nil
		}

		state = state.RetryWith(strings.TrimSpace(answer))

		if clarifications >= r.maxClarify {
			r.io.Warn("Too many clarification attempts. Try rephrasing your request.")
			out.Status = StatusTooManyClarifications
			return out, nil
		}
	}

	result := out.State

	if result.Meeting == nil {
		r.io.Warn("Could not extract a valid meeting.")
		if result.Clarify != nil {
			r.io.Info("Clarify: " + *result.Clarify)
		}
		if len(result.Errors) > 0 {
			r.io.Info("Errors:")
			for _, e := range result.ErrorStrings() {
				r.io.Info("  " + truncateRunes(e, MaxErrorLineRunes))
			}
		}
		out.Status = StatusNoMeeting
		return out, nil
	}

	if result.Review == nil {
		return out, fmt.Errorf("%w: meeting present but review missing", workflow.ErrInvariant)
	}

	if result.Conflict != nil {
		r.reportConflict(*result.Conflict, *result.Review)
		out.Status = StatusConflict
		r.log(session.NewEvent(session.EventBooking, requestID, session.BookingData(string(out.Status), 0)))
		return out, nil
	}

	r.io.ReviewSummary(*result.Review)
	ok, err := r.io.Confirm(ctx, "Book this on the calendar?")
	if err != nil {
		return out, fmt.Errorf("asking for confirmation: %w", err)
	}

	if !ok {
		r.io.Info("Okay, not booked.")
		out.Status = StatusDeclined
	} else {
		ev, err := r.calendar.CreateEvent(result.Meeting)
		switch {
		case errors.Is(err, calendar.ErrSlotTaken):
			// booked by someone else after the conflict check
			r.io.Warn("Conflict detected:\n  " + err.Error())
			out.Status = StatusConflict
		case err != nil:
			return out, fmt.Errorf("creating event: %w", err)
		default:
			logger.Info("Event booked", "event_id", ev.ID, "title", ev.Title, "starts_at", ev.StartsAt)
			r.io.Info("Event created.")
			out.Status = StatusBooked
			out.Event = &ev
		}
	}

	var eventID int64
	if out.Event != nil {
		eventID = out.Event.ID
	}
	r.log(session.NewEvent(session.EventBooking, requestID, session.BookingData(string(out.Status), eventID)))

	r.io.ListEvents(r.calendar.ListAll(), r.tz)
	return out, nil
}

// ListEvents shows every booked event.
func (r *Runner) ListEvents() {
	r.io.ListEvents(r.calendar.ListAll(), r.tz)
}

func (r *Runner) reportConflict(conflict string, review models.Review) {
	r.io.Warn("Conflict detected:\n  " + conflict)
	r.io.ReviewSummary(review)
	r.io.ListEvents(r.calendar.ListAll(), r.tz)
}

func (r *Runner) log(ev session.Event) {
	if err := r.trace.Log(ev); err != nil {
		slog.Warn("Failed to write trace event", "type", ev.Type, "error", err)
	}
}

var abortWords = map[string]bool{
	"":       true,
	"q":      true,
	"quit":   true,
	"cancel": true,
}

func isAbort(answer string) bool {
	return abortWords[strings.ToLower(strings.TrimSpace(answer))]
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
