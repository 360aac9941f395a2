package runner

import (
	"context"
	"time"

	"github.com/spboyer/booker/internal/models"
)

// IO is everything the runner needs from the user interface. Ask and
// Confirm are the only calls that wait for the user.
type IO interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
	Info(msg string)
	Warn(msg string)
	ReviewSummary(r models.Review)
	ListEvents(events []models.Event, tz *time.Location)
}
