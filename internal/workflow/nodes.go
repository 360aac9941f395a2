package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/spboyer/booker/internal/inference"
	"github.com/spboyer/booker/internal/models"
	"github.com/spboyer/booker/internal/validation"
)

// Node names a step in the workflow graph.
type Node string

const (
	NodeExtract  Node = "extract"
	NodeValidate Node = "validate"
	NodeRepair   Node = "repair"
	NodeClarify  Node = "clarify"
	NodeReview   Node = "review"
	NodeConflict Node = "conflict"
	NodeEnd      Node = "end"
)

// ConflictChecker finds the first stored event overlapping a meeting.
type ConflictChecker interface {
	FirstConflict(m *models.Meeting) *string
}

// StepFunc computes the patch for one node from a state snapshot.
type StepFunc func(ctx context.Context, s State) (Patch, error)

// ReviewTimeLayout is the localized, minute-precision form of Review.When.
const ReviewTimeLayout = "2006-01-02T15:04-07:00"

// Canned clarify questions.
const (
	QuestionAmbiguous       = "The date/time is ambiguous. What should I use?"
	QuestionStartsAt        = "What date and time should I use?"
	QuestionDuration        = "How long should it be (in minutes)?"
	QuestionTitle           = "What should I title this?"
	QuestionInvalidDatetime = "I couldn't resolve the date/time. What should I use?"
	QuestionInvalidDuration = "What duration (in minutes) should I use?"
	QuestionFallback        = "I'm missing something. Could you clarify the date/time or duration?"
)

func extractStep(client inference.Client, schema map[string]any, opts inference.Options) StepFunc {
	return func(ctx context.Context, s State) (Patch, error) {
		draft, err := client.StructuredExtract(ctx, s.UserText, schema, opts)
		if err != nil {
			return Patch{}, fmt.Errorf("extracting meeting: %w", err)
		}
		return Patch{}.WithDraft(draft), nil
	}
}

func validateStep(_ context.Context, s State) (Patch, error) {
	res := validation.Validate(s.Draft, s.Now, s.TZ)
	if res.OK() {
		return Patch{}.WithMeeting(res.Meeting).WithErrors(nil), nil
	}
	return Patch{}.WithMeeting(nil).WithErrors(res.Errors), nil
}

func repairStep(client inference.Client, schema map[string]any, opts inference.Options) StepFunc {
	return func(ctx context.Context, s State) (Patch, error) {
		previous := s.Draft
		if previous == nil {
			previous = map[string]any{}
		}

		draft, err := client.RepairToSchema(ctx, previous, s.ErrorStrings(), schema, opts)
		if err != nil {
			return Patch{}, fmt.Errorf("repairing draft: %w", err)
		}
		return Patch{}.WithDraft(draft).AddAttempts(1), nil
	}
}

func clarifyStep(_ context.Context, s State) (Patch, error) {
	return Patch{}.WithClarify(ClarifyQuestion(s.Errors)), nil
}

// ClarifyQuestion picks the single question to ask for errs. Missing key
// fields and ambiguity win, then unresolvable start times, then bad
// durations, then a generic question.
func ClarifyQuestion(errs []models.FieldError) string {
	has := func(match func(models.FieldError) bool) bool {
		for _, e := range errs {
			if match(e) {
				return true
			}
		}
		return false
	}
	missing := func(field string) func(models.FieldError) bool {
		return func(e models.FieldError) bool {
			return e.Field == field && e.Kind == models.ErrorKindMissingField
		}
	}

	switch {
	case has(func(e models.FieldError) bool { return e.Kind == models.ErrorKindAmbiguousDatetime }):
		return QuestionAmbiguous
	case has(missing("starts_at")):
		return QuestionStartsAt
	case has(missing("duration_min")):
		return QuestionDuration
	case has(missing("title")):
		return QuestionTitle
	case has(func(e models.FieldError) bool { return e.Field == "starts_at" || e.Kind == models.ErrorKindInvalidDatetime || e.Kind == models.ErrorKindPastDatetime }):
		return QuestionInvalidDatetime
	case has(func(e models.FieldError) bool { return e.Field == "duration_min" || e.Kind == models.ErrorKindInvalidDuration }):
		return QuestionInvalidDuration
	default:
		return QuestionFallback
	}
}

func reviewStep(_ context.Context, s State) (Patch, error) {
	r := Summarize(s.Meeting, s.TZ)
	if r == nil {
		return Patch{}, nil
	}
	return Patch{}.WithReview(r), nil
}

// Summarize builds the review record for m in tz. It returns nil for a nil meeting.
func Summarize(m *models.Meeting, tz *time.Location) *models.Review {
	if m == nil {
		return nil
	}
	if tz == nil {
		tz = time.UTC
	}
	return &models.Review{
		Title:       m.Title,
		When:        m.StartsAt.In(tz).Format(ReviewTimeLayout),
		DurationMin: m.DurationMin,
		Location:    m.Location,
	}
}

func conflictStep(cal ConflictChecker) StepFunc {
	return func(_ context.Context, s State) (Patch, error) {
		if s.Meeting == nil {
			return Patch{}.WithConflict(nil), nil
		}
		return Patch{}.WithConflict(cal.FirstConflict(s.Meeting)), nil
	}
}
