package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spboyer/booker/internal/calendar"
	"github.com/spboyer/booker/internal/inference"
	"github.com/spboyer/booker/internal/models"
	"github.com/spboyer/booker/internal/session"
	"github.com/spboyer/booker/internal/workflow"
	"github.com/spboyer/booker/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeIO struct {
	answers []string
	confirm bool

	asked    []string
	confirms []string
	infos    []string
	warns    []string
	reviews  []models.Review
	listings [][]models.Event
}

func (f *fakeIO) Ask(_ context.Context, prompt string) (string, error) {
	f.asked = append(f.asked, prompt)
	if len(f.answers) == 0 {
		return "", nil
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func (f *fakeIO) Confirm(_ context.Context, prompt string) (bool, error) {
	f.confirms = append(f.confirms, prompt)
	return f.confirm, nil
}

func (f *fakeIO) Info(msg string)               { f.infos = append(f.infos, msg) }
func (f *fakeIO) Warn(msg string)               { f.warns = append(f.warns, msg) }
func (f *fakeIO) ReviewSummary(r models.Review) { f.reviews = append(f.reviews, r) }

func (f *fakeIO) ListEvents(events []models.Event, _ *time.Location) {
	f.listings = append(f.listings, events)
}

type fixture struct {
	runner   *Runner
	client   *inference.MockClient
	calendar *calendar.InMemory
	io       *fakeIO
}

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func newFixture(t *testing.T, io *fakeIO) *fixture {
	t.Helper()
	loc := chicago(t)
	ctrl := gomock.NewController(t)
	client := inference.NewMockClient(ctrl)
	cal := calendar.NewInMemory()

	engine := workflow.NewEngine(client, cal, schemas.MeetingRequestSchema(), inference.Options{})
	r := New(Options{
		Engine:     engine,
		IO:         io,
		Calendar:   cal,
		TZ:         loc,
		Now:        func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, loc) },
		MaxClarify: 3,
	})
	return &fixture{runner: r, client: client, calendar: cal, io: io}
}

func lunchDraft() map[string]any {
	return map[string]any{
		"title":        "Lunch with Sam",
		"starts_at":    "tomorrow 1pm",
		"duration_min": float64(60),
	}
}

func TestSchedule_BooksOnConfirmation(t *testing.T) {
	io := &fakeIO{confirm: true}
	f := newFixture(t, io)

	f.client.EXPECT().StructuredExtract(gomock.Any(), "Lunch with Sam tomorrow 1pm for 60 minutes", gomock.Any(), gomock.Any()).Return(lunchDraft(), nil)

	out, err := f.runner.Schedule(context.Background(), "Lunch with Sam tomorrow 1pm for 60 minutes")
	require.NoError(t, err)

	assert.Equal(t, StatusBooked, out.Status)
	assert.NotEmpty(t, out.RequestID)
	require.NotNil(t, out.Event)
	assert.Equal(t, int64(1), out.Event.ID)
	assert.Equal(t, 60*time.Minute, out.Event.EndsAt.Sub(out.Event.StartsAt))

	events := f.calendar.ListAll()
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC), events[0].StartsAt)

	assert.Equal(t, []string{"Book this on the calendar?"}, io.confirms)
	require.Len(t, io.reviews, 1)
	assert.Equal(t, "2026-10-15T13:00-05:00", io.reviews[0].When)
	assert.Contains(t, io.infos, "Event created.")
	require.Len(t, io.listings, 1)
	assert.Len(t, io.listings[0], 1)
}

func TestSchedule_DeclineBooksNothing(t *testing.T) {
	io := &fakeIO{confirm: false}
	f := newFixture(t, io)

	f.client.EXPECT().StructuredExtract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(lunchDraft(), nil)

	out, err := f.runner.Schedule(context.Background(), "Lunch with Sam tomorrow 1pm")
	require.NoError(t, err)

	assert.Equal(t, StatusDeclined, out.Status)
	assert.Nil(t, out.Event)
	assert.Zero(t, f.calendar.Len())
	assert.Contains(t, io.infos, "Okay, not booked.")
}

func TestSchedule_ClarifiesMissingDuration(t *testing.T) {
	io := &fakeIO{answers: []string{"30 minutes"}, confirm: true}
	f := newFixture(t, io)

	noDuration := lunchDraft()
	delete(noDuration, "duration_min")
	withDuration := lunchDraft()
	withDuration["duration_min"] = float64(30)

	gomock.InOrder(
		f.client.EXPECT().StructuredExtract(gomock.Any(), "Lunch with Sam tomorrow 1pm", gomock.Any(), gomock.Any()).Return(noDuration, nil),
		f.client.EXPECT().RepairToSchema(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(noDuration, nil).Times(workflow.MaxRepairAttempts),
		f.client.EXPECT().StructuredExtract(gomock.Any(), "Lunch with Sam tomorrow 1pm 30 minutes", gomock.Any(), gomock.Any()).Return(withDuration, nil),
	)

	out, err := f.runner.Schedule(context.Background(), "Lunch with Sam tomorrow 1pm")
	require.NoError(t, err)

	assert.Equal(t, []string{workflow.QuestionDuration}, io.asked)
	assert.Equal(t, StatusBooked, out.Status)
	assert.Equal(t, 2, out.Turns)
	require.NotNil(t, out.State.Meeting)
	assert.Equal(t, 30, out.State.Meeting.DurationMin)
	assert.Zero(t, out.State.Attempts)
}

func TestSchedule_ConflictDoesNotBook(t *testing.T) {
	io := &fakeIO{confirm: true}
	f := newFixture(t, io)

	loc := chicago(t)
	_, err := f.calendar.CreateEvent(&models.Meeting{
		Title:       "Standup",
		StartsAt:    time.Date(2026, 10, 15, 12, 30, 0, 0, loc),
		DurationMin: 60,
	})
	require.NoError(t, err)

	f.client.EXPECT().StructuredExtract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(lunchDraft(), nil)

	out, err := f.runner.Schedule(context.Background(), "Lunch with Sam tomorrow 1pm")
	require.NoError(t, err)

	assert.Equal(t, StatusConflict, out.Status)
	assert.Nil(t, out.Event)
	assert.Equal(t, 1, f.calendar.Len())
	assert.Empty(t, io.confirms)
	require.Len(t, io.warns, 1)
	assert.Contains(t, io.warns[0], `Conflicts with event #1 "Standup"`)
	assert.Len(t, io.reviews, 1)
	assert.Len(t, io.listings, 1)
}

func TestSchedule_StopsAfterMaxClarify(t *testing.T) {
	io := &fakeIO{answers: []string{"dunno", "still dunno", "no idea", "never asked"}}
	f := newFixture(t, io)

	f.client.EXPECT().StructuredExtract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(map[string]any{
		"title":        "Sync",
		"starts_at":    "blorp",
		"duration_min": float64(30),
	}, nil).Times(3)

	out, err := f.runner.Schedule(context.Background(), "sync at blorp")
	require.NoError(t, err)

	assert.Equal(t, StatusTooManyClarifications, out.Status)
	assert.Len(t, io.asked, 3)
	assert.Equal(t, 3, out.Turns)
	assert.Equal(t, []string{"Too many clarification attempts. Try rephrasing your request."}, io.warns)
	assert.Zero(t, f.calendar.Len())
}

func TestSchedule_AbortKeywords(t *testing.T) {
	for _, answer := range []string{"", "  ", "q", "QUIT", "Cancel"} {
		t.Run(answer, func(t *testing.T) {
			io := &fakeIO{answers: []string{answer}}
			f := newFixture(t, io)

			f.client.EXPECT().StructuredExtract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(map[string]any{
				"title":        "Sync",
				"starts_at":    "monday or tuesday",
				"duration_min": float64(30),
			}, nil)

			out, err := f.runner.Schedule(context.Background(), "sync monday or tuesday")
			require.NoError(t, err)
			assert.Equal(t, StatusAborted, out.Status)
			assert.Equal(t, []string{workflow.QuestionAmbiguous}, io.asked)
			assert.Contains(t, io.infos, "Aborted by user.")
		})
	}
}

func TestSchedule_InferenceFailureIsFatal(t *testing.T) {
	f := newFixture(t, &fakeIO{})

	f.client.EXPECT().StructuredExtract(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, inference.ErrNoJSON)

	_, err := f.runner.Schedule(context.Background(), "lunch")
	require.ErrorIs(t, err, inference.ErrNoJSON)
	assert.Zero(t, f.calendar.Len())
}

type stubEngine struct {
	result workflow.State
}

func (s stubEngine) Invoke(context.Context, workflow.State) (workflow.State, error) {
	return s.result, nil
}

func TestSchedule_MeetingWithoutReviewIsInvariantViolation(t *testing.T) {
	r := New(Options{
		Engine:   stubEngine{result: workflow.State{Meeting: &models.Meeting{Title: "x", DurationMin: 30}}},
		IO:       &fakeIO{},
		Calendar: calendar.NewInMemory(),
	})

	_, err := r.Schedule(context.Background(), "x")
	require.ErrorIs(t, err, workflow.ErrInvariant)
}

func TestSchedule_StaleClarifyIsIgnored(t *testing.T) {
	q := "stale?"
	m := &models.Meeting{Title: "Sync", StartsAt: time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC), DurationMin: 30}
	io := &fakeIO{confirm: true}

	r := New(Options{
		Engine:   stubEngine{result: workflow.State{Meeting: m, Clarify: &q, Review: workflow.Summarize(m, time.UTC)}},
		IO:       io,
		Calendar: calendar.NewInMemory(),
	})

	out, err := r.Schedule(context.Background(), "sync")
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, out.Status)
	assert.Empty(t, io.asked)
}

func TestSchedule_SlotTakenAtBookingIsConflict(t *testing.T) {
	m := &models.Meeting{Title: "Sync", StartsAt: time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC), DurationMin: 30}
	cal := calendar.NewInMemory()
	_, err := cal.CreateEvent(&models.Meeting{Title: "Other", StartsAt: m.StartsAt, DurationMin: 60})
	require.NoError(t, err)

	io := &fakeIO{confirm: true}
	r := New(Options{
		Engine:   stubEngine{result: workflow.State{Meeting: m, Review: workflow.Summarize(m, time.UTC)}},
		IO:       io,
		Calendar: cal,
	})

	out, err := r.Schedule(context.Background(), "sync")
	require.NoError(t, err)
	assert.Equal(t, StatusConflict, out.Status)
	assert.Nil(t, out.Event)
	assert.Equal(t, 1, cal.Len())
	require.Len(t, io.warns, 1)
	assert.Contains(t, io.warns[0], "slot already booked")
}

func TestSchedule_NoMeetingReportsErrors(t *testing.T) {
	long := strings.Repeat("é", 600)
	io := &fakeIO{}

	r := New(Options{
		Engine: stubEngine{result: workflow.State{
			Errors: []models.FieldError{{Field: "starts_at", Kind: models.ErrorKindInvalidDatetime, Message: long}},
		}},
		IO:       io,
		Calendar: calendar.NewInMemory(),
	})

	out, err := r.Schedule(context.Background(), "lunch")
	require.NoError(t, err)
	assert.Equal(t, StatusNoMeeting, out.Status)
	assert.Equal(t, []string{"Could not extract a valid meeting."}, io.warns)
	require.Len(t, io.infos, 2)
	assert.Equal(t, "Errors:", io.infos[0])
	assert.Equal(t, MaxErrorLineRunes+2, len([]rune(io.infos[1])))
	assert.Empty(t, io.listings)
}

func TestIsAbort(t *testing.T) {
	assert.True(t, isAbort(" Q "))
	assert.False(t, isAbort("30 minutes"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
}

func TestListEvents(t *testing.T) {
	io := &fakeIO{}
	cal := calendar.NewInMemory()
	_, err := cal.CreateEvent(&models.Meeting{Title: "A", StartsAt: time.Now(), DurationMin: 5})
	require.NoError(t, err)

	New(Options{IO: io, Calendar: cal}).ListEvents()
	require.Len(t, io.listings, 1)
	assert.Len(t, io.listings[0], 1)
}

type memoryTrace struct {
	events []session.Event
}

func (m *memoryTrace) Log(ev session.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memoryTrace) Close() error { return nil }

func TestSchedule_TracesTurnAndBooking(t *testing.T) {
	m := &models.Meeting{Title: "Sync", StartsAt: time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC), DurationMin: 30}
	trace := &memoryTrace{}

	r := New(Options{
		Engine:   stubEngine{result: workflow.State{Meeting: m, Review: workflow.Summarize(m, time.UTC)}},
		IO:       &fakeIO{confirm: true},
		Calendar: calendar.NewInMemory(),
		Trace:    trace,
	})

	out, err := r.Schedule(context.Background(), "sync")
	require.NoError(t, err)

	var types []session.EventType
	for _, ev := range trace.events {
		types = append(types, ev.Type)
		assert.Equal(t, out.RequestID, ev.RequestID)
	}
	assert.Equal(t, []session.EventType{session.EventTurnStart, session.EventTurnComplete, session.EventBooking}, types)
	assert.Equal(t, "booked", trace.events[2].Data["status"])
	assert.Equal(t, int64(1), trace.events[2].Data["event_id"])
}
