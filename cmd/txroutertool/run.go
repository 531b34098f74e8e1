package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shardmux/txrouter/pkg/routeradm"
)

func newRunCmd() *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive a scripted scenario against in-process fake shards and print the reporter dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := routeradm.NewRegistry()

			report, err := runScenario(cmd.Context(), scenario, registry)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "s1", "scenario to run: s1 (single shard, read-only), s2 (two-phase commit), s3 (single write shard)")
	return cmd
}
