package main

import (
	"fmt"

	"github.com/spf13/cobra"

	wrenchcli "github.com/wrenchdag/wrench/internal/cli"
	"github.com/wrenchdag/wrench/internal/config"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a pipeline config's graph",
		Args:  cobra.ExactArgs(1),
		Example: `  wrench validate pipeline.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := wrenchcli.NewRegistry()
			cfg, graph, err := config.Load(args[0], registry)
			if err != nil {
				return err
			}
			fmt.Printf("pipeline %q is valid: %d nodes\n", cfg.Name, len(graph.Nodes()))
			return nil
		},
	}
	return cmd
}
