package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/booker/internal/inference"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 80 * time.Millisecond

// StartSpinner displays an animated spinner with the given message on w.
// Call the returned function to stop the spinner and clear the line.
func StartSpinner(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once
	go func() {
		i := 0
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", runewidth.StringWidth(message)+2)) //nolint:errcheck
				close(cleared)
				return
			case <-time.After(frameInterval):
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message) //nolint:errcheck
				i++
			}
		}
	}()
	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

// WithSpinner wraps client so a spinner runs on w for the duration of every
// model call.
func WithSpinner(client inference.Client, w io.Writer) inference.Client {
	return &spinnerClient{inner: client, w: w}
}

type spinnerClient struct {
	inner inference.Client
	w     io.Writer
}

func (s *spinnerClient) StructuredExtract(ctx context.Context, userText string, schema map[string]any, opts inference.Options) (map[string]any, error) {
	stop := StartSpinner(s.w, "Reading your request...")
	defer stop()
	return s.inner.StructuredExtract(ctx, userText, schema, opts)
}

func (s *spinnerClient) RepairToSchema(ctx context.Context, previous map[string]any, errs []string, schema map[string]any, opts inference.Options) (map[string]any, error) {
	stop := StartSpinner(s.w, "Fixing up the details...")
	defer stop()
	return s.inner.RepairToSchema(ctx, previous, errs, schema, opts)
}
