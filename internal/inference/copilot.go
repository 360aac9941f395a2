package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// DefaultTimeout bounds a single model call when no timeout is configured.
const DefaultTimeout = 2 * time.Minute

// CopilotClient implements [Client] on top of the GitHub Copilot SDK. One
// session is created per call; the underlying client is started lazily and
// shared.
type CopilotClient struct {
	model       string
	temperature float64
	timeout     time.Duration

	client copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotClientOptions configures a [CopilotClient].
type CopilotClientOptions struct {
	// Model is the model id to request. Blank lets the copilot CLI choose.
	Model string

	// Temperature is recorded for logging; the copilot backend picks its own sampling.
	Temperature float64

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// NewCopilotClient overrides client construction, for tests.
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotClient creates a copilot-backed inference client.
func NewCopilotClient(opts CopilotClientOptions) *CopilotClient {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if opts.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = opts.NewCopilotClient(copilotOptions)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CopilotClient{
		model:       opts.Model,
		temperature: opts.Temperature,
		timeout:     timeout,
		client:      client,
	}
}

// StructuredExtract implements [Client].
func (c *CopilotClient) StructuredExtract(ctx context.Context, userText string, schema map[string]any, opts Options) (map[string]any, error) {
	prompt, err := ComposeExtractPrompt(userText, schema, opts)
	if err != nil {
		return nil, fmt.Errorf("composing extract prompt: %w", err)
	}

	reply, err := c.send(ctx, "extract", prompt)
	if err != nil {
		return nil, err
	}
	return DecodeDraft(reply)
}

// RepairToSchema implements [Client].
func (c *CopilotClient) RepairToSchema(ctx context.Context, previous map[string]any, errs []string, schema map[string]any, opts Options) (map[string]any, error) {
	prompt, err := ComposeRepairPrompt(previous, errs, schema, opts)
	if err != nil {
		return nil, fmt.Errorf("composing repair prompt: %w", err)
	}

	reply, err := c.send(ctx, "repair", prompt)
	if err != nil {
		return nil, err
	}
	return DecodeDraft(reply)
}

// Close stops the copilot client.
func (c *CopilotClient) Close() error {
	if err := c.client.Stop(); err != nil {
		return fmt.Errorf("stopping copilot client: %w", err)
	}
	return nil
}

func (c *CopilotClient) send(ctx context.Context, op, prompt string) (string, error) {
	c.startOnce.Do(func() {
		c.startErr = c.client.Start(ctx)
	})
	if c.startErr != nil {
		return "", fmt.Errorf("copilot failed to start: %w", c.startErr)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               c.model,
		OnPermissionRequest: allowAllTools,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	collector := newReplyCollector()

	unsubscribe := session.On(collector.On)
	defer unsubscribe()

	unsubscribe = session.On(sessionEventLogger(ctx))
	defer unsubscribe()

	slog.Debug("Sending inference request", "op", op, "model", c.model, "temperature", c.temperature, "promptBytes", len(prompt))
	start := time.Now()

	final, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%s call failed (session %s): %w", op, session.SessionID(), err)
	}
	if msg := collector.ErrorMessage(); msg != "" {
		return "", fmt.Errorf("%s call failed (session %s): %w", op, session.SessionID(), errors.New(msg))
	}

	reply := collector.Text()
	if reply == "" && final != nil && final.Data.Content != nil {
		reply = *final.Data.Content
	}

	slog.Debug("Inference reply received", "op", op, "durationMs", time.Since(start).Milliseconds(), "replyBytes", len(reply))
	return reply, nil
}

// allowAllTools answers permission requests. Extraction prompts never ask for
// tools, so approving keeps a stray request from stalling the session.
func allowAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "approved"}, nil
}

// replyCollector gathers the assistant messages of one session.
type replyCollector struct {
	mu       sync.Mutex
	parts    []string
	errorMsg string
}

func newReplyCollector() *replyCollector {
	return &replyCollector{}
}

// On is passed to [copilot.Session.On].
func (rc *replyCollector) On(event copilot.SessionEvent) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	switch event.Type {
	case copilot.AssistantMessage:
		if event.Data.Content != nil {
			rc.parts = append(rc.parts, *event.Data.Content)
		}
	case copilot.SessionError:
		if event.Data.Message == nil || *event.Data.Message == "" {
			rc.errorMsg = "session failed with unknown error"
		} else {
			rc.errorMsg = *event.Data.Message
		}
	}
}

func (rc *replyCollector) Text() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return strings.Join(rc.parts, "")
}

func (rc *replyCollector) ErrorMessage() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.errorMsg
}
