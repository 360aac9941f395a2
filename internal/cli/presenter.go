package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/booker/internal/models"
)

const (
	eventTimeLayout = "2006-01-02 15:04 MST"
	none            = "—"
)

// FormatReview renders the summary shown before booking.
func FormatReview(r models.Review) string {
	title := orNone(r.Title)
	when := orNone(r.When)
	dur := none
	if r.DurationMin > 0 {
		dur = fmt.Sprintf("%d min", r.DurationMin)
	}

	var sb strings.Builder
	sb.WriteString("✓ Parsed & normalized meeting (review before booking):\n")
	fmt.Fprintf(&sb, "  Title:    %s\n", title)
	fmt.Fprintf(&sb, "  When:     %s  (%s)\n", when, dur)
	fmt.Fprintf(&sb, "  Location: %s\n", orNone(r.Location))
	return sb.String()
}

// FormatEvents renders events as a table in tz.
func FormatEvents(events []models.Event, tz *time.Location) string {
	if len(events) == 0 {
		return "\nCalendar is empty.\n"
	}
	if tz == nil {
		tz = time.UTC
	}

	header := []string{"ID", "TITLE", "START", "END", "LOCATION"}
	rows := [][]string{header}
	for _, ev := range events {
		rows = append(rows, []string{
			"#" + strconv.FormatInt(ev.ID, 10),
			ev.Title,
			ev.StartsAt.In(tz).Format(eventTimeLayout),
			ev.EndsAt.In(tz).Format(eventTimeLayout),
			orNone(ev.Location),
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	sb.WriteString("\nCurrent events:\n")
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(padRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}
