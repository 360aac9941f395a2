package models

import "fmt"

// ErrorKind classifies a single validation failure.
type ErrorKind string

const (
	// Structural kinds describe schema-shape problems a model can usually fix.
	ErrorKindMissingField    ErrorKind = "missing_field"
	ErrorKindUnexpectedField ErrorKind = "unexpected_field"
	ErrorKindWrongType       ErrorKind = "wrong_type"
	ErrorKindInvalidValue    ErrorKind = "invalid_value"

	// Semantic kinds describe content only the user can settle.
	ErrorKindAmbiguousDatetime ErrorKind = "ambiguous_datetime"
	ErrorKindInvalidDatetime   ErrorKind = "invalid_datetime"
	ErrorKindPastDatetime      ErrorKind = "past_datetime"
	ErrorKindInvalidDuration   ErrorKind = "invalid_duration"
	ErrorKindMultipleValues    ErrorKind = "multiple_values"
)

// Structural reports whether k is a schema-shape error.
func (k ErrorKind) Structural() bool {
	switch k {
	case ErrorKindMissingField, ErrorKindUnexpectedField, ErrorKindWrongType, ErrorKindInvalidValue:
		return true
	}
	return false
}

// Semantic reports whether k is a content error that needs the user.
func (k ErrorKind) Semantic() bool {
	switch k {
	case ErrorKindAmbiguousDatetime, ErrorKindInvalidDatetime, ErrorKindPastDatetime,
		ErrorKindInvalidDuration, ErrorKindMultipleValues:
		return true
	}
	return false
}

// FieldError is one structured validation failure. Field is the dotted path
// of the offending draft key, or empty when the failure concerns the whole draft.
type FieldError struct {
	Field   string
	Kind    ErrorKind
	Message string
}

func (e FieldError) String() string {
	field := e.Field
	if field == "" {
		field = "(root)"
	}
	return fmt.Sprintf("%s: %s (%s)", field, e.Message, e.Kind)
}

// FieldErrorStrings renders errs one per element, in order.
func FieldErrorStrings(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.String())
	}
	return out
}
