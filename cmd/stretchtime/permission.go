package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stretchtime/internal/core/notice"
)

func newPermissionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Inspect or change the notification permission",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the recorded permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer current.Close()

			fmt.Fprintln(cmd.OutOrStdout(), current.desktop.Permission())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke",
		Short: "Block reminder notifications",
		Long:  "Block reminder notifications. A running tray app disables its daily reminder.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer current.Close()

			if err := current.desktop.Revoke(); err != nil {
				return err
			}
			current.console.Show("Notification permission revoked", notice.Info)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the answer so the next enable asks again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer current.Close()

			if err := current.desktop.Reset(); err != nil {
				return err
			}
			current.console.Show("Notification permission reset", notice.Info)
			return nil
		},
	})

	return cmd
}
