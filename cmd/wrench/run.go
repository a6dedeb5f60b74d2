package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	wrenchcli "github.com/wrenchdag/wrench/internal/cli"
	"github.com/wrenchdag/wrench/internal/config"
	"github.com/wrenchdag/wrench/pkg/engine"
	"github.com/wrenchdag/wrench/pkg/runner"
)

func newRunCommand() *cobra.Command {
	var inputFlags []string

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run a pipeline once via the Pipeline Runner",
		Args:  cobra.ExactArgs(1),
		Example: `  wrench run pipeline.yaml
  wrench run pipeline.yaml --input harvester.source=/data/sensors.json`,
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

			runtimeInputs, err := parseRuntimeInputs(inputFlags)
			if err != nil {
				return err
			}

			r := runner.New(cfg.Name, graph, s)
			record, err := r.Run(context.Background(), "manual", runtimeInputs)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&inputFlags, "input", nil, "runtime input as node.param=value (repeatable)")
	return cmd
}

// parseRuntimeInputs turns "node.param=value" flags into
// engine.RuntimeInputs, attempting a JSON parse of value first (so
// numbers, booleans and objects survive) and falling back to the raw
// string.
func parseRuntimeInputs(flags []string) (engine.RuntimeInputs, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	out := make(engine.RuntimeInputs)
	for _, f := range flags {
		eq := strings.IndexByte(f, '=')
		if eq < 0 {
			return nil, fmt.Errorf("invalid --input %q: expected node.param=value", f)
		}
		ref := f[:eq]
		rawValue := f[eq+1:]

		dot := strings.IndexByte(ref, '.')
		if dot < 0 {
			return nil, fmt.Errorf("invalid --input %q: expected node.param=value", f)
		}
		node, param := ref[:dot], ref[dot+1:]

		var value any
		if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}

		if out[node] == nil {
			out[node] = make(map[string]any)
		}
		out[node][param] = value
	}
	return out, nil
}
