package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/booker/internal/inference"
	"github.com/spboyer/booker/internal/session"
)

var (
	// ErrInvariant is returned when a state violates an engine invariant.
	ErrInvariant = errors.New("workflow invariant violated")

	// ErrStepLimit is returned when an invocation runs more steps than allowed.
	ErrStepLimit = errors.New("workflow step limit exceeded")
)

// DefaultMaxSteps caps the steps of one invocation. The longest legal path is
// extract, validate, repair, validate, repair, clarify.
const DefaultMaxSteps = 16

// Engine runs the workflow graph for one turn at a time.
type Engine struct {
	steps    map[Node]StepFunc
	trace    session.Logger
	maxSteps int
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithTrace records every step to logger.
func WithTrace(logger session.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.trace = logger
		}
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine wires the six steps. schema and opts are passed unchanged to
// every inference call.
func NewEngine(client inference.Client, cal ConflictChecker, schema map[string]any, opts inference.Options, engineOpts ...EngineOption) *Engine {
	e := &Engine{
		steps: map[Node]StepFunc{
			NodeExtract:  extractStep(client, schema, opts),
			NodeValidate: validateStep,
			NodeRepair:   repairStep(client, schema, opts),
			NodeClarify:  clarifyStep,
			NodeReview:   reviewStep,
			NodeConflict: conflictStep(cal),
		},
		trace:    session.NopLogger{},
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

// Invoke runs the graph from extract until it terminates and returns the
// final state. Validation failures are reported through State; only
// inference failures and broken invariants are returned as errors.
func (e *Engine) Invoke(ctx context.Context, s State) (State, error) {
	requestID := session.RequestID(ctx)
	node := NodeExtract

	for step := 0; node != NodeEnd; step++ {
		if step >= e.maxSteps {
			return s, fmt.Errorf("%w: %d steps without reaching the end", ErrStepLimit, e.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return s, err
		}

		run, ok := e.steps[node]
		if !ok {
			return s, fmt.Errorf("%w: no step registered for %q", ErrInvariant, node)
		}

		start := time.Now()
		patch, err := run(ctx, s)
		if err != nil {
			e.log(session.NewEvent(session.EventError, requestID, session.ErrorData(err.Error(), map[string]any{"node": string(node)})))
			return s, err
		}
		s = s.Apply(patch)

		if node == NodeValidate {
			if err := checkInvariant(s); err != nil {
				return s, err
			}
		}

		next := Next(node, s)
		elapsed := time.Since(start)

		slog.Debug("Workflow step", "request_id", requestID, "node", node, "next", next, "attempts", s.Attempts, "errors", len(s.Errors), "duration", elapsed)
		e.log(session.NewEvent(session.EventStep, requestID, session.StepData(string(node), string(next), s.Attempts, len(s.Errors), elapsed.Milliseconds())))

		node = next
	}

	return s, nil
}

func checkInvariant(s State) error {
	if s.Meeting != nil && len(s.Errors) > 0 {
		return fmt.Errorf("%w: meeting present with %d validation errors", ErrInvariant, len(s.Errors))
	}
	return nil
}

func (e *Engine) log(ev session.Event) {
	if err := e.trace.Log(ev); err != nil {
		slog.Warn("Failed to write workflow trace", "error", err)
	}
}
