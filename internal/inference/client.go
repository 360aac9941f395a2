// Package inference is the boundary to the natural-language model. The
// workflow only sees the [Client] interface; [CopilotClient] is the backend
// used by the CLI.
package inference

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -source=client.go -destination=mock_client.go -package=inference

var (
	// ErrNoJSON is returned when a model reply contains no JSON object.
	ErrNoJSON = errors.New("no JSON object found in model output")

	// ErrMalformedResponse is returned when the located JSON cannot be decoded.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Options is the prompt bundle assembled once at start-up and passed through
// unchanged on every call.
type Options struct {
	// System is the workflow-level system prompt.
	System string
	// Instructions is the task prompt, e.g. "extract meeting fields".
	Instructions string
	// Guardrail is the shared JSON-only fragment.
	Guardrail string
	// Examples are optional few-shot JSON strings.
	Examples []string
}

// Client extracts schema-shaped drafts from text. Both operations block until
// the model answers and fail when no well-formed JSON object can be located
// in the reply.
type Client interface {
	// StructuredExtract turns free text into a draft conforming to schema.
	StructuredExtract(ctx context.Context, userText string, schema map[string]any, opts Options) (map[string]any, error)

	// RepairToSchema asks for a corrected draft given the previous draft and
	// the validation error messages, preserving fields that were already correct.
	RepairToSchema(ctx context.Context, previous map[string]any, errs []string, schema map[string]any, opts Options) (map[string]any, error)
}
