package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spboyer/booker/internal/calendar"
	"github.com/spboyer/booker/internal/cli"
	"github.com/spboyer/booker/internal/inference"
	"github.com/spboyer/booker/internal/projectconfig"
	"github.com/spboyer/booker/internal/prompts"
	"github.com/spboyer/booker/internal/runner"
	"github.com/spboyer/booker/internal/session"
	"github.com/spboyer/booker/internal/workflow"
	"github.com/spboyer/booker/schemas"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newInferenceClient builds the model backend. Tests replace it.
var newInferenceClient = func(cfg *projectconfig.ProjectConfig) (inference.Client, io.Closer) {
	client := inference.NewCopilotClient(inference.CopilotClientOptions{
		Model:       cfg.Model,
		Temperature: cfg.TemperatureOrDefault(),
		Timeout:     cfg.Timeout(),
	})
	return client, client
}

type scheduleFlags struct {
	tz          string
	model       string
	temperature float64
	promptsDir  string
	maxClarify  int
	traceLog    string
}

func newScheduleCommand() *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "schedule <request...>",
		Short: "Schedule a meeting from natural language",
		Long: `Schedule a meeting from a natural-language request.

Everything after the command is joined into one request, so quoting is optional:

  booker schedule Lunch with Sam tomorrow 1pm for 60 minutes at the office`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyScheduleFlags(cmd, cfg, &flags)
			return runSchedule(cmd, cfg, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&flags.tz, "tz", projectconfig.DefaultTimezone, "IANA time zone used to resolve and display times")
	cmd.Flags().StringVar(&flags.model, "model", projectconfig.DefaultModel, "Model used for extraction and repair")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", projectconfig.DefaultTemperature, "Sampling temperature (recorded; the copilot backend chooses its own)")
	cmd.Flags().StringVar(&flags.promptsDir, "prompts", "", "Directory with prompt overrides")
	cmd.Flags().IntVar(&flags.maxClarify, "max-clarify", projectconfig.DefaultMaxClarify, "Maximum clarification questions before giving up")
	cmd.Flags().StringVar(&flags.traceLog, "trace-log", "", "Write an NDJSON workflow trace to this file")

	return cmd
}

// applyScheduleFlags overlays explicitly set flags onto cfg.
func applyScheduleFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, flags *scheduleFlags) {
	if cmd.Flags().Changed("tz") {
		cfg.Timezone = flags.tz
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("temperature") {
		t := flags.temperature
		cfg.Temperature = &t
	}
	if cmd.Flags().Changed("prompts") {
		cfg.PromptsDir = flags.promptsDir
	}
	if cmd.Flags().Changed("max-clarify") {
		cfg.MaxClarify = flags.maxClarify
	}
	if cmd.Flags().Changed("trace-log") {
		cfg.TraceLog = flags.traceLog
	}
}

func runSchedule(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, text string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	opts, err := prompts.Load(cfg.PromptsDir, prompts.Vars{Timezone: loc.String()})
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	var trace session.Logger = session.NopLogger{}
	if cfg.TraceLog != "" {
		jl, err := session.NewJSONLogger(cfg.TraceLog)
		if err != nil {
			return fmt.Errorf("opening trace log: %w", err)
		}
		trace = jl
	}
	defer func() {
		if err := trace.Close(); err != nil {
			slog.Warn("Failed to close trace log", "error", err)
		}
	}()

	client, closer := newInferenceClient(cfg)
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Warn("Failed to stop inference client", "error", err)
		}
	}()
	if isTerminal(cmd.ErrOrStderr()) {
		client = cli.WithSpinner(client, cmd.ErrOrStderr())
	}

	slog.Debug("Scheduling", "model", cfg.Model, "temperature", cfg.TemperatureOrDefault(), "timezone", loc.String(), "maxClarify", cfg.MaxClarify)

	cal := calendar.NewInMemory()
	engine := workflow.NewEngine(client, cal, schemas.MeetingRequestSchema(), opts, workflow.WithTrace(trace))

	r := runner.New(runner.Options{
		Engine:     engine,
		IO:         cli.NewTerminalIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		Calendar:   cal,
		TZ:         loc,
		Now:        time.Now,
		MaxClarify: cfg.MaxClarify,
		Trace:      trace,
	})

	out, err := r.Schedule(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("schedule failed: %w", err)
	}
	slog.Debug("Schedule finished", "request_id", out.RequestID, "status", out.Status, "turns", out.Turns)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
