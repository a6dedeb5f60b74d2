package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	wrenchcli "github.com/wrenchdag/wrench/internal/cli"
	"github.com/wrenchdag/wrench/internal/config"
	"github.com/wrenchdag/wrench/pkg/runner"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <config.yaml>",
		Short: "Print recent run records for a pipeline's Result Store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := wrenchcli.NewRegistry()
			cfg, graph, err := config.Load(args[0], registry)
			if err != nil {
				return err
			}

			s, err := wrenchcli.BuildStore(cfg.Store)
			if err != nil {
				return err
			}

			r := runner.New(cfg.Name, graph, s)
			records, err := r.History(context.Background(), limit)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records to print, most recent first (0 = unbounded)")
	return cmd
}
