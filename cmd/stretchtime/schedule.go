package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stretchtime/internal/core/notice"
)

func newScheduleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule HH:MM",
		Short: "Set the daily reminder time",
		Long: `Set the local time of the daily reminder, as a zero padded 24 hour HH:MM.
A running tray app picks the new time up immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer current.Close()

			if err := current.daily.SetScheduledTime(args[0]); err != nil {
				return err
			}
			if !current.daily.Settings().Enabled {
				current.console.Show(fmt.Sprintf("Reminder time set to %s. Reminders are currently off.", args[0]), notice.Info)
			}
			return nil
		},
	}
}
