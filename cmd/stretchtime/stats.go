package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daily reminder statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := opts.openSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer current.Close()

			stats := current.stats()
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			}
			current.console.Stats(stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}
