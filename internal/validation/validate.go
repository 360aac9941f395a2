// Package validation normalizes extraction drafts into meetings. Ordinary
// malformed input never produces a Go error: every failure is reported as a
// structured [models.FieldError].
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/booker/internal/models"
)

// AttendeeRequest is the draft shape of an attendee.
type AttendeeRequest struct {
	Name  string  `mapstructure:"name"`
	Email *string `mapstructure:"email"`
}

// MeetingRequest is the draft shape the model is asked to produce. It carries
// no date parsing; starts_at stays a human time expression.
type MeetingRequest struct {
	Title       string            `mapstructure:"title"`
	StartsAt    string            `mapstructure:"starts_at"`
	DurationMin int               `mapstructure:"duration_min"`
	Location    *string           `mapstructure:"location"`
	Attendees   []AttendeeRequest `mapstructure:"attendees"`
	Priority    string            `mapstructure:"priority"`
}

// Result is the outcome of validating one draft. Exactly one of Meeting and
// Errors is set.
type Result struct {
	Meeting *models.Meeting
	Errors  []models.FieldError
}

// OK reports whether validation produced a meeting.
func (r Result) OK() bool {
	return r.Meeting != nil
}

// scalarFields must not be given as lists of alternatives.
var scalarFields = []string{"title", "starts_at", "duration_min"}

// Validate checks draft against the meeting request schema and normalizes it
// into a Meeting anchored to now in loc.
func Validate(draft map[string]any, now time.Time, loc *time.Location) (result Result) {
	defer func() {
		// arbitrary model output must never take the turn down
		if r := recover(); r != nil {
			result = failed(models.FieldError{
				Kind:    models.ErrorKindWrongType,
				Message: fmt.Sprintf("draft could not be validated: %v", r),
			})
		}
	}()

	if draft == nil {
		return failed(models.FieldError{
			Kind:    models.ErrorKindMissingField,
			Message: "field required: no draft was extracted",
		})
	}

	var errs []models.FieldError
	flagged := map[string]bool{}
	for _, key := range scalarFields {
		if list, ok := draft[key].([]any); ok && len(list) > 1 {
			flagged[key] = true
			errs = append(errs, models.FieldError{
				Field:   key,
				Kind:    models.ErrorKindMultipleValues,
				Message: fmt.Sprintf("multiple values given for %s", key),
			})
		}
	}

	errs = append(errs, checkShape(draft, flagged)...)
	if len(errs) > 0 {
		sortFieldErrors(errs)
		return Result{Errors: errs}
	}

	req, err := decode(draft)
	if err != nil {
		return failed(models.FieldError{Kind: models.ErrorKindWrongType, Message: err.Error()})
	}

	return normalize(req, now, loc)
}

func decode(draft map[string]any) (MeetingRequest, error) {
	var req MeetingRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &req,
		ErrorUnused: true,
	})
	if err != nil {
		return req, fmt.Errorf("creating draft decoder: %w", err)
	}
	if err := decoder.Decode(draft); err != nil {
		return req, fmt.Errorf("decoding draft: %w", err)
	}
	return req, nil
}

func normalize(req MeetingRequest, now time.Time, loc *time.Location) Result {
	var errs []models.FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, models.FieldError{Field: "title", Kind: models.ErrorKindMissingField, Message: "field required: title is blank"})
	}

	startsAt, ferr := ResolveStart(req.StartsAt, now, loc)
	if ferr != nil {
		errs = append(errs, *ferr)
	}

	if req.DurationMin <= 0 {
		errs = append(errs, models.FieldError{Field: "duration_min", Kind: models.ErrorKindInvalidDuration, Message: "duration must be > 0"})
	}

	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "priority", Kind: models.ErrorKindInvalidValue, Message: err.Error()})
	}

	if len(errs) > 0 {
		sortFieldErrors(errs)
		return Result{Errors: errs}
	}

	m := &models.Meeting{
		Title:       title,
		StartsAt:    startsAt,
		DurationMin: req.DurationMin,
		Priority:    priority,
	}
	if req.Location != nil {
		m.Location = strings.TrimSpace(*req.Location)
	}
	for _, a := range req.Attendees {
		att := models.Attendee{Name: strings.TrimSpace(a.Name)}
		if a.Email != nil {
			att.Email = strings.TrimSpace(*a.Email)
		}
		m.Attendees = append(m.Attendees, att)
	}
	return Result{Meeting: m}
}

func failed(fe models.FieldError) Result {
	return Result{Errors: []models.FieldError{fe}}
}

// Class is the routing classification of a set of validation errors.
type Class int

const (
	// ClassNone means there are no errors.
	ClassNone Class = iota
	// ClassStructural errors are schema-shape problems only and may be repaired.
	ClassStructural
	// ClassSemantic errors contain at least one content problem and need the user.
	ClassSemantic
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassStructural:
		return "structural"
	case ClassSemantic:
		return "semantic"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Classify returns ClassStructural iff errs contains a structural indicator
// and no semantic one. Any semantic indicator wins.
func Classify(errs []models.FieldError) Class {
	if len(errs) == 0 {
		return ClassNone
	}
	structural := false
	for _, e := range errs {
		if e.Kind.Semantic() {
			return ClassSemantic
		}
		if e.Kind.Structural() {
			structural = true
		}
	}
	if structural {
		return ClassStructural
	}
	return ClassSemantic
}
