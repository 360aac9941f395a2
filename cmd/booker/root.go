package main

import (
	"fmt"
	"log/slog"

	"github.com/spboyer/booker/internal/projectconfig"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booker",
		Short: "Booker - book meetings from plain-language requests",
		Long: `Booker turns a plain-language request such as
"Lunch with Sam tomorrow 1pm for 60 minutes" into a calendar booking.

It extracts the meeting details with a language model, validates and
normalizes them, asks follow-up questions when something is missing or
ambiguous, checks for conflicts and books only after you confirm.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Path to a config file (default: nearest "+projectconfig.FileName+")")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScheduleCommand())
	cmd.AddCommand(newListCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads --config when given, otherwise the nearest .booker.yaml.
func loadConfig(cmd *cobra.Command) (*projectconfig.ProjectConfig, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	var cfg *projectconfig.ProjectConfig
	if path != "" {
		cfg, err = projectconfig.LoadFile(path)
	} else {
		cfg, err = projectconfig.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
