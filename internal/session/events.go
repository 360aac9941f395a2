package session

import "time"

// EventType identifies the kind of trace event.
type EventType string

const (
	EventTurnStart    EventType = "turn_start"
	EventStep         EventType = "step"
	EventTurnComplete EventType = "turn_complete"
	EventClarify      EventType = "clarify"
	EventBooking      EventType = "booking"
	EventError        EventType = "error"
)

// Event is a single timestamped entry in a trace log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, requestID string, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		RequestID: requestID,
		Data:      data,
	}
}

// TurnStartData returns event data for the start of a workflow invocation.
func TurnStartData(turn int, userText string) map[string]any {
	return map[string]any{
		"turn":      turn,
		"user_text": userText,
	}
}

// StepData returns event data for one executed workflow node.
func StepData(node, next string, attempts, errorCount int, durationMs int64) map[string]any {
	return map[string]any{
		"node":        node,
		"next":        next,
		"attempts":    attempts,
		"error_count": errorCount,
		"duration_ms": durationMs,
	}
}

// TurnCompleteData returns event data for a finished workflow invocation.
func TurnCompleteData(hasMeeting bool, conflict, clarify string) map[string]any {
	d := map[string]any{
		"has_meeting": hasMeeting,
	}
	if conflict != "" {
		d["conflict"] = conflict
	}
	if clarify != "" {
		d["clarify"] = clarify
	}
	return d
}

// ClarifyData returns event data for a clarification round-trip.
func ClarifyData(question, answer string, round int) map[string]any {
	return map[string]any{
		"question": question,
		"answer":   answer,
		"round":    round,
	}
}

// BookingData returns event data for the booking decision.
func BookingData(status string, eventID int64) map[string]any {
	d := map[string]any{
		"status": status,
	}
	if eventID > 0 {
		d["event_id"] = eventID
	}
	return d
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
