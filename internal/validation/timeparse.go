package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spboyer/booker/internal/models"
)

// absoluteLayouts are tried before natural-language parsing. Layouts without
// a zone are interpreted in the request time zone.
var absoluteLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 3:04pm",
	"2006-01-02 3pm",
	"2006-01-02",
}

// alternativeRe flags expressions that offer more than one choice, e.g.
// "monday or tuesday at 3pm".
var alternativeRe = regexp.MustCompile(`(?i)\b(or|either)\b`)

var timeParser = newTimeParser()

func newTimeParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ResolveStart turns a human time expression into an absolute instant in loc,
// truncated to the minute. Relative expressions are anchored to now using a
// midnight baseline so unspecified fields do not inherit the current clock
// time. Returned errors are always semantic.
func ResolveStart(expr string, now time.Time, loc *time.Location) (time.Time, *models.FieldError) {
	if loc == nil {
		loc = time.UTC
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, &models.FieldError{
			Field:   "starts_at",
			Kind:    models.ErrorKindInvalidDatetime,
			Message: "starts_at is empty, not a valid datetime",
		}
	}

	localNow := now.In(loc)
	baseline := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)

	t, ok := parseAbsolute(expr, loc)
	if !ok {
		if alternativeRe.MatchString(expr) {
			return time.Time{}, &models.FieldError{
				Field:   "starts_at",
				Kind:    models.ErrorKindAmbiguousDatetime,
				Message: "ambiguous date/time " + quote(expr),
			}
		}

		r, err := timeParser.Parse(expr, baseline)
		if err != nil || r == nil {
			return time.Time{}, &models.FieldError{
				Field:   "starts_at",
				Kind:    models.ErrorKindInvalidDatetime,
				Message: quote(expr) + " is not a valid datetime",
			}
		}
		t = r.Time
	}

	t = truncateToMinute(t.In(loc))
	if t.Before(truncateToMinute(localNow)) {
		return time.Time{}, &models.FieldError{
			Field:   "starts_at",
			Kind:    models.ErrorKindPastDatetime,
			Message: "date/time " + t.Format(time.RFC3339) + " is in the past",
		}
	}
	return t, nil
}

func parseAbsolute(expr string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, true
	}
	lower := strings.ToLower(expr)
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, lower, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func quote(s string) string {
	return `"` + s + `"`
}
