package workflow

import "github.com/spboyer/booker/internal/models"

// Patch is a partial state update returned by a step. Only fields that were
// explicitly set are merged; Attempts is a delta.
type Patch struct {
	draft    map[string]any
	meeting  *models.Meeting
	errors   []models.FieldError
	conflict *string
	clarify  *string
	review   *models.Review
	attempts int

	set fieldSet
}

type fieldSet uint8

const (
	setDraft fieldSet = 1 << iota
	setMeeting
	setErrors
	setConflict
	setClarify
	setReview
)

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.set == 0 && p.attempts == 0
}

func (p Patch) WithDraft(d map[string]any) Patch {
	p.draft = d
	p.set |= setDraft
	return p
}

func (p Patch) WithMeeting(m *models.Meeting) Patch {
	p.meeting = m
	p.set |= setMeeting
	return p
}

// WithErrors replaces the error list. A nil slice clears it.
func (p Patch) WithErrors(errs []models.FieldError) Patch {
	p.errors = errs
	p.set |= setErrors
	return p
}

func (p Patch) WithConflict(c *string) Patch {
	p.conflict = c
	p.set |= setConflict
	return p
}

func (p Patch) WithClarify(q string) Patch {
	p.clarify = &q
	p.set |= setClarify
	return p
}

func (p Patch) WithReview(r *models.Review) Patch {
	p.review = r
	p.set |= setReview
	return p
}

// AddAttempts adds n to the attempt counter when applied.
func (p Patch) AddAttempts(n int) Patch {
	p.attempts += n
	return p
}

// Apply folds p into s and returns the new state. Scalars and optionals
// overwrite, Errors is replaced, Attempts adds.
func (s State) Apply(p Patch) State {
	if p.set&setDraft != 0 {
		s.Draft = p.draft
	}
	if p.set&setMeeting != 0 {
		s.Meeting = p.meeting
	}
	if p.set&setErrors != 0 {
		s.Errors = p.errors
	}
	if p.set&setConflict != 0 {
		s.Conflict = p.conflict
	}
	if p.set&setClarify != 0 {
		s.Clarify = p.clarify
	}
	if p.set&setReview != 0 {
		s.Review = p.review
	}
	s.Attempts += p.attempts
	return s
}
