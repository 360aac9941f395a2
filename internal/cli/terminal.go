// Package cli is the terminal adapter for the schedule runner: huh prompts
// for questions and confirmations, plain text for everything else.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/booker/internal/models"
	"golang.org/x/term"
)

// prompter asks the user for input. The huh implementation is used outside
// of tests.
type prompter interface {
	Input(ctx context.Context, title string) (string, error)
	Confirm(ctx context.Context, title string) (bool, error)
}

// TerminalIO implements runner.IO on a terminal.
type TerminalIO struct {
	out    io.Writer
	prompt prompter
}

// NewTerminalIO creates a TerminalIO reading answers from in and writing to
// out. Non-TTY input switches huh to accessible mode.
func NewTerminalIO(in io.Reader, out io.Writer) *TerminalIO {
	accessible := true
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		accessible = false
	}
	return &TerminalIO{
		out:    out,
		prompt: &huhPrompter{in: in, out: out, accessible: accessible},
	}
}

// Ask shows the question and returns the trimmed answer. Interrupting the
// prompt yields an empty answer, which callers treat as an abort.
func (t *TerminalIO) Ask(ctx context.Context, prompt string) (string, error) {
	answer, err := t.prompt.Input(ctx, "🤔 "+prompt)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question. Interrupting the prompt means no.
func (t *TerminalIO) Confirm(ctx context.Context, prompt string) (bool, error) {
	ok, err := t.prompt.Confirm(ctx, prompt)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return ok, nil
}

func (t *TerminalIO) Info(msg string) {
	fmt.Fprintln(t.out, msg) //nolint:errcheck
}

func (t *TerminalIO) Warn(msg string) {
	fmt.Fprintf(t.out, "⚠ %s\n", msg) //nolint:errcheck
}

func (t *TerminalIO) ReviewSummary(r models.Review) {
	fmt.Fprint(t.out, FormatReview(r)) //nolint:errcheck
}

func (t *TerminalIO) ListEvents(events []models.Event, tz *time.Location) {
	fmt.Fprint(t.out, FormatEvents(events, tz)) //nolint:errcheck
}

type huhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

func (h *huhPrompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(h.in).
		WithOutput(h.out).
		WithAccessible(h.accessible)
	return form.RunWithContext(ctx)
}

func (h *huhPrompter) Input(ctx context.Context, title string) (string, error) {
	var answer string
	err := h.run(ctx, huh.NewInput().
		Title(title).
		Placeholder("type an answer, or q to cancel").
		Value(&answer))
	return answer, err
}

func (h *huhPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := h.run(ctx, huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok))
	return ok, err
}
