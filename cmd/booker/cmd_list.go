package main

import (
	"github.com/spboyer/booker/internal/calendar"
	"github.com/spboyer/booker/internal/cli"
	"github.com/spboyer/booker/internal/runner"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List booked events",
		Long: `List the events booked in this process.

The calendar lives in memory, so a fresh process always starts empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tz") {
				cfg.Timezone = tz
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			r := runner.New(runner.Options{
				IO:       cli.NewTerminalIO(cmd.InOrStdin(), cmd.OutOrStdout()),
				Calendar: calendar.NewInMemory(),
				TZ:       loc,
			})
			r.ListEvents()
			return nil
		},
	}

	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone used to display times")
	return cmd
}
