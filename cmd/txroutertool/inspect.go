package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shardmux/txrouter/pkg/routeradm"
)

// newInspectCmd runs the same scenario as "run" but reports through a
// routeradm.Registry, the path an operator tool actually takes (spec.md
// §4.9's "live monitoring" consumer, not the session's own caller).
func newInspectCmd() *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run a scenario and print every tracked session's report via routeradm",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := routeradm.NewRegistry()

			if _, err := runScenario(cmd.Context(), scenario, registry); err != nil {
				return fmt.Errorf("scenario %s: %w", scenario, err)
			}

			reports := registry.ActiveReports()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, rep := range reports {
				if err := enc.Encode(rep); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "s1", "scenario to run before inspecting: s1, s2, or s3")
	return cmd
}
