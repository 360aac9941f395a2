package inference

import (
	"context"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/booker/internal/session"
)

// sessionEventLogger returns a [copilot.SessionEventHandler] that forwards
// events to slog at debug level, tagged with the request id carried by ctx.
func sessionEventLogger(ctx context.Context) copilot.SessionEventHandler {
	requestID := session.RequestID(ctx)

	return func(event copilot.SessionEvent) {
		if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			return
		}

		attrs := []any{
			"type", event.Type,
		}
		if requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}

		attrs = addIf(attrs, "content", event.Data.Content)
		attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
		attrs = addIf(attrs, "message", event.Data.Message)
		attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

		slog.Debug("Event received", attrs...)
	}
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
