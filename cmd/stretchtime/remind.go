package main

import (
	"github.com/spf13/cobra"

	"stretchtime/internal/core/notice"
)

func newRemindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send a preview of the daily reminder",
		Long: `Send the daily reminder notification immediately. Notification permission
must already be granted.

The command exits right after sending, so the preview carries no "Start now" or
"Remind me in 30 min" buttons and is not counted in the reminder statistics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			defer current.Close()

			if err := current.daily.PreviewDailyReminder(false); err != nil {
				return err
			}
			current.console.Show("Reminder preview sent", notice.Success)
			return nil
		},
	}
}
