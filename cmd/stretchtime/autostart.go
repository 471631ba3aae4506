package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stretchtime/internal/core/notice"
	"stretchtime/internal/platform"
	"stretchtime/internal/ui/console"
)

func newAutostartCmd(opts *options) *cobra.Command {
	service := platform.NewService()

	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage starting StretchTime at login",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Start the tray app at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			if err := service.EnableAutostart(platform.DefaultAppName, execPath); err != nil {
				return err
			}
			console.NewEmitter(cmd.OutOrStdout()).Show("Autostart enabled", notice.Success)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop starting the tray app at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.DisableAutostart(platform.DefaultAppName); err != nil {
				return err
			}
			console.NewEmitter(cmd.OutOrStdout()).Show("Autostart disabled", notice.Info)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := service.AutostartEnabled(platform.DefaultAppName)
			if err != nil {
				return err
			}
			if enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "enabled")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "disabled")
			}
			return nil
		},
	})

	return cmd
}
